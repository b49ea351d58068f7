package contract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_InitialStateIsDeterministic(t *testing.T) {
	s0 := NewSimulator(DefaultConfig())
	s1 := NewSimulator(DefaultConfig())

	assert.Equal(t, s0.GetLedger(), s1.GetLedger())
	assert.Equal(t, s0.GetPrivateState(), s1.GetPrivateState())
	assert.True(t, s0.GetLedger().Equal(s1.GetLedger()))
	assert.True(t, s0.GetPrivateState().Equal(s1.GetPrivateState()))
}

func TestSimulator_NetworkDoesNotAffectInitialState(t *testing.T) {
	for _, network := range ValidNetworks {
		t.Run(string(network), func(t *testing.T) {
			s := NewSimulator(Config{Network: network})
			assert.Equal(t, network, s.Config().Network)
			assert.Equal(t, InitialLedger(), s.GetLedger())
			assert.Equal(t, InitialPrivateState(), s.GetPrivateState())
		})
	}
}

func TestSimulator_InitialState(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	assert.Equal(t, uint64(0), s.GetLedger().Round)
	counter := s.GetPrivateState().PrivateCounter()
	assert.True(t, counter.IsZero())
	assert.Equal(t, NewPrivateState(0), s.GetPrivateState())
}

func TestSimulator_ZeroValueIsFresh(t *testing.T) {
	var s Simulator

	assert.Equal(t, NetworkUndeployed, s.Config().Network)
	assert.Equal(t, InitialLedger(), s.GetLedger())

	ledger, err := s.Increment()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ledger.Round)
}

func TestSimulator_Increment(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	ledger, err := s.Increment()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ledger.Round)
	assert.Equal(t, ledger, s.GetLedger())
	assert.Equal(t, NewPrivateState(0), s.GetPrivateState(), "private state must not move")
}

func TestSimulator_IncrementIsNotIdempotent(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	_, err := s.Increment()
	require.NoError(t, err)
	ledger, err := s.Increment()
	require.NoError(t, err)

	assert.Equal(t, uint64(2), ledger.Round)
	assert.NotEqual(t, uint64(1), s.GetLedger().Round)
}

func TestSimulator_IncrementPrivate(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	got, err := s.IncrementPrivate(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), got.Uint64())
	assert.Equal(t, NewPrivateState(10), s.GetPrivateState())
	assert.Equal(t, InitialLedger(), s.GetLedger(), "ledger must not move")
}

func TestSimulator_IncrementPrivateLeavesRoundUntouched(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	_, err := s.Increment()
	require.NoError(t, err)
	got, err := s.IncrementPrivate(10)
	require.NoError(t, err)

	assert.Equal(t, uint64(10), got.Uint64())
	assert.Equal(t, uint64(1), s.GetLedger().Round)
}

func TestSimulator_DecrementAfterIncrements(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	_, err := s.Increment()
	require.NoError(t, err)
	_, err = s.Increment()
	require.NoError(t, err)
	ledger, err := s.Decrement(1)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), ledger.Round)
}

func TestSimulator_SetValue(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	ledger := s.SetValue(42)
	assert.Equal(t, uint64(42), ledger.Round)

	// Overwrite, not a delta
	_, err := s.Increment()
	require.NoError(t, err)
	ledger = s.SetValue(42)
	assert.Equal(t, uint64(42), ledger.Round)

	ledger = s.SetValue(math.MaxUint64)
	assert.Equal(t, uint64(math.MaxUint64), ledger.Round)
}

func TestSimulator_Isolation(t *testing.T) {
	a := NewSimulator(DefaultConfig())
	b := NewSimulator(DefaultConfig())

	_, err := a.Increment()
	require.NoError(t, err)
	a.SetValue(7)
	_, err = a.IncrementPrivate(3)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), a.GetLedger().Round)
	assert.Equal(t, InitialLedger(), b.GetLedger())
	assert.Equal(t, InitialPrivateState(), b.GetPrivateState())
}

func TestSimulator_ReturnedStateIsACopy(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	ledger := s.GetLedger()
	ledger.Round = 99
	assert.Equal(t, uint64(0), s.GetLedger().Round)

	counter := s.GetPrivateState().PrivateCounter()
	counter.SetUint64(99)
	assert.Equal(t, NewPrivateState(0), s.GetPrivateState())
}

func TestSimulator_Snapshot(t *testing.T) {
	s := NewSimulator(DefaultConfig())
	s.SetValue(5)
	_, err := s.IncrementPrivate(2)
	require.NoError(t, err)

	ledger, private := s.Snapshot()
	assert.Equal(t, LedgerState{Round: 5}, ledger)
	assert.Equal(t, NewPrivateState(2), private)
}

func TestSimulator_RangeViolationsKeepState(t *testing.T) {
	t.Run("decrement below zero", func(t *testing.T) {
		s := NewSimulator(DefaultConfig())
		s.SetValue(3)

		ledger, err := s.Decrement(4)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRange)
		assert.True(t, IsRangeError(err))
		assert.Equal(t, uint64(3), ledger.Round)
		assert.Equal(t, uint64(3), s.GetLedger().Round)
	})

	t.Run("decrement to exactly zero", func(t *testing.T) {
		s := NewSimulator(DefaultConfig())
		s.SetValue(3)

		ledger, err := s.Decrement(3)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), ledger.Round)
	})

	t.Run("increment at max", func(t *testing.T) {
		s := NewSimulator(DefaultConfig())
		s.SetValue(math.MaxUint64)

		_, err := s.Increment()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRange)
		assert.Equal(t, uint64(math.MaxUint64), s.GetLedger().Round)
	})

	t.Run("private counter accumulates past uint64", func(t *testing.T) {
		s := NewSimulator(DefaultConfig())

		_, err := s.IncrementPrivate(math.MaxUint64)
		require.NoError(t, err)
		got, err := s.IncrementPrivate(1)
		require.NoError(t, err)

		assert.False(t, got.IsUint64())
		assert.Equal(t, "18446744073709551616", got.Dec())
	})
}
