package contract

import "github.com/holiman/uint256"

// Simulator holds one LedgerState and one PrivateState and applies the
// contract operations to them.
//
// The zero value is a fresh simulator on the undeployed network. Use
// NewSimulator to pick another network.
type Simulator struct {
	config  Config
	ledger  LedgerState
	private PrivateState
}

// NewSimulator creates a simulator in the initial state (round 0, private
// counter 0). The config does not influence the initial state.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{
		config:  cfg.normalize(),
		ledger:  InitialLedger(),
		private: InitialPrivateState(),
	}
}

// Config returns the runtime context the simulator was created with.
func (s *Simulator) Config() Config {
	return s.config.normalize()
}

// GetLedger returns the current public state.
func (s *Simulator) GetLedger() LedgerState {
	return s.ledger
}

// GetPrivateState returns the current private state.
func (s *Simulator) GetPrivateState() PrivateState {
	return s.private
}

// Snapshot returns both states as two separate values.
func (s *Simulator) Snapshot() (LedgerState, PrivateState) {
	return s.ledger, s.private
}

// Increment adds one to the round and returns the new ledger.
func (s *Simulator) Increment() (LedgerState, error) {
	next, err := Increment(s.ledger)
	if err != nil {
		return s.ledger, err
	}
	s.ledger = next
	return next, nil
}

// Decrement subtracts n from the round and returns the new ledger.
func (s *Simulator) Decrement(n uint64) (LedgerState, error) {
	next, err := Decrement(s.ledger, n)
	if err != nil {
		return s.ledger, err
	}
	s.ledger = next
	return next, nil
}

// SetValue overwrites the round with v and returns the new ledger.
func (s *Simulator) SetValue(v uint64) LedgerState {
	s.ledger = SetValue(s.ledger, v)
	return s.ledger
}

// IncrementPrivate adds n to the private counter and returns its new value.
// The ledger is not touched.
func (s *Simulator) IncrementPrivate(n uint64) (uint256.Int, error) {
	next, err := IncrementPrivate(s.private, n)
	if err != nil {
		return s.private.PrivateCounter(), err
	}
	s.private = next
	return next.PrivateCounter(), nil
}
