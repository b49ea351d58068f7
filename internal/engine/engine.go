package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"github.com/roach88/countersim/internal/compiler"
	"github.com/roach88/countersim/internal/contract"
	"github.com/roach88/countersim/internal/ir"
	"github.com/roach88/countersim/internal/store"
)

// Operation is a named contract operation with its arguments. Unsigned
// arguments may be IRInt or decimal IRString.
type Operation struct {
	Name string
	Args ir.IRObject
}

// Outcome is the result of one applied operation.
type Outcome struct {
	// Transition is the public journal record.
	Transition ir.Transition

	// Ledger is the public state after the operation.
	Ledger contract.LedgerState

	// PrivateCounter is the private counter after a private operation and
	// zero otherwise. It is returned to the caller only.
	PrivateCounter uint256.Int
}

// Engine applies operations to one simulator session.
type Engine struct {
	sim       *contract.Simulator
	contract  *compiler.Contract
	store     *store.Store
	clock     SeqSource
	logger    *slog.Logger
	sessionID string
	specHash  string
	journaled bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithStore journals every transition to s.
func WithStore(s *store.Store) EngineOption {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock replaces the logical clock, e.g. to resume a session at a seq.
func WithClock(c SeqSource) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithContract uses an already compiled contract instead of the embedded one.
func WithContract(c *compiler.Contract) EngineOption {
	return func(e *Engine) {
		e.contract = c
	}
}

// New creates an engine with a fresh simulator for cfg. The session token
// comes from gen; a nil gen uses UUIDv7Generator.
func New(cfg contract.Config, gen SessionTokenGenerator, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		sim:    contract.NewSimulator(cfg),
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.contract == nil {
		c, err := compiler.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("load contract: %w", err)
		}
		e.contract = c
	}
	if errs := compiler.Validate(e.contract.Spec); len(errs) > 0 {
		return nil, fmt.Errorf("invalid contract: %w", errs[0])
	}

	hash, err := ir.SpecHash(e.contract.Spec)
	if err != nil {
		return nil, err
	}
	e.specHash = hash

	if gen == nil {
		gen = UUIDv7Generator{}
	}
	e.sessionID = gen.Generate()

	return e, nil
}

// SessionID returns the token naming this engine's session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Spec returns the compiled contract spec.
func (e *Engine) Spec() ir.ContractSpec {
	return e.contract.Spec
}

// Ledger returns the current public state.
func (e *Engine) Ledger() contract.LedgerState {
	return e.sim.GetLedger()
}

// PrivateState returns the current private state.
func (e *Engine) PrivateState() contract.PrivateState {
	return e.sim.GetPrivateState()
}

// Session returns the journal record describing this session.
func (e *Engine) Session() ir.Session {
	return ir.Session{
		ID:            e.sessionID,
		Network:       string(e.sim.Config().Network),
		SpecHash:      e.specHash,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}
}

// Apply validates and applies one operation.
//
// Unknown operations and bad arguments are rejected before a seq is issued
// and leave no trace. A range violation leaves the state unchanged, is
// journaled with case RangeViolation, and is returned as a RANGE_VIOLATION
// error alongside the outcome.
func (e *Engine) Apply(ctx context.Context, op Operation) (Outcome, error) {
	sig, ok := e.contract.Spec.Operation(op.Name)
	if !ok || !supported[op.Name] {
		return Outcome{}, &RuntimeError{
			Code:      ErrCodeUnknownOperation,
			Message:   fmt.Sprintf("contract %s has no operation %q", e.contract.Spec.Name, op.Name),
			SessionID: e.sessionID,
			Operation: op.Name,
		}
	}

	if err := e.contract.ValidateArgs(op.Name, op.Args); err != nil {
		return Outcome{}, e.invalidArgument(op.Name, err)
	}
	args, normalized, err := decodeArgs(sig, op.Args)
	if err != nil {
		return Outcome{}, e.invalidArgument(op.Name, err)
	}

	seq := e.clock.Next()
	before := e.sim.GetLedger()
	after, private, execErr := execute(e.sim, op.Name, args)
	if execErr != nil && !contract.IsRangeError(execErr) {
		return Outcome{}, fmt.Errorf("apply %s: %w", op.Name, execErr)
	}

	tr, err := buildTransition(e.sessionID, sig, normalized, seq, before, after, execErr)
	if err != nil {
		return Outcome{}, fmt.Errorf("apply %s: %w", op.Name, err)
	}

	out := Outcome{Transition: tr, Ledger: after}
	if sig.IsPrivate() {
		out.PrivateCounter = private
	}

	if err := e.journal(ctx, tr); err != nil {
		return out, &RuntimeError{
			Code:      ErrCodeJournal,
			Message:   "transition applied but not journaled",
			SessionID: e.sessionID,
			Operation: op.Name,
			Err:       err,
		}
	}

	attrs := []any{
		"session", e.sessionID,
		"seq", seq,
		"operation", op.Name,
		"case", tr.OutputCase,
	}
	if !sig.IsPrivate() {
		attrs = append(attrs, "round", after.Round)
	}
	e.logger.DebugContext(ctx, "transition applied", attrs...)

	if execErr != nil {
		return out, e.rangeViolation(sig, execErr)
	}
	return out, nil
}

// journal writes the session row on first use, then the transition.
func (e *Engine) journal(ctx context.Context, tr ir.Transition) error {
	if e.store == nil {
		return nil
	}
	if !e.journaled {
		if err := e.store.WriteSession(ctx, e.Session()); err != nil {
			return err
		}
		e.journaled = true
	}
	return e.store.WriteTransition(ctx, tr)
}

func (e *Engine) invalidArgument(op string, err error) *RuntimeError {
	return &RuntimeError{
		Code:      ErrCodeInvalidArgument,
		Message:   err.Error(),
		SessionID: e.sessionID,
		Operation: op,
		Err:       err,
	}
}

func (e *Engine) rangeViolation(sig ir.OperationSig, err error) *RuntimeError {
	re := &RuntimeError{
		Code:      ErrCodeRangeViolation,
		SessionID: e.sessionID,
		Operation: sig.Name,
		Err:       err,
	}
	var rangeErr *contract.RangeError
	if errors.As(err, &rangeErr) {
		re.Details = map[string]string{"limit": rangeErr.Limit}
	}
	// Private values stay out of messages that may end up in logs.
	if sig.IsPrivate() {
		re.Message = "private counter out of range"
	} else {
		re.Message = err.Error()
	}
	return re
}
