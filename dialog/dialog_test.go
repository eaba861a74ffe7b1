package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_IdleIgnoresInput(t *testing.T) {
	next, outcome := Transition(StateIdle, "42")

	assert.Equal(t, StateIdle, next)
	assert.Equal(t, Outcome{}, outcome)
}

func TestTransition_ValidInput(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		input    string
		mutation Mutation
		value    float64
	}{
		{"holding", StateAwaitingHolding, "150", MutationSetHolding, 150},
		{"holding fraction", StateAwaitingHolding, "0.5", MutationSetHolding, 0.5},
		{"increase", StateAwaitingIncrease, "2", MutationSetIncrease, 2},
		{"decrease", StateAwaitingDecrease, "7", MutationSetDecrease, 7},
		{"decrease negative", StateAwaitingDecrease, "-7", MutationSetDecrease, -7},
		{"sharp drop", StateAwaitingSharpDrop, "15", MutationSetSharpDrop, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, outcome := Transition(tt.state, tt.input)

			assert.Equal(t, StateIdle, next)
			assert.False(t, outcome.Invalid)
			assert.Equal(t, tt.mutation, outcome.Mutation)
			assert.Equal(t, tt.value, outcome.Value)
		})
	}
}

func TestTransition_InvalidInputTerminatesDialog(t *testing.T) {
	for _, input := range []string{"abc", "", "1,5", "NaN", "Inf", "-Inf"} {
		next, outcome := Transition(StateAwaitingHolding, input)

		assert.Equal(t, StateIdle, next, "input %q", input)
		assert.True(t, outcome.Invalid, "input %q", input)
		assert.Equal(t, MutationNone, outcome.Mutation)
	}
}

func TestManager_StepOnIdleChatIsNotHandled(t *testing.T) {
	manager := NewManager()

	_, handled := manager.Step(1, "hello")
	assert.False(t, handled)
}

func TestManager_BeginThenStep(t *testing.T) {
	manager := NewManager()

	manager.Begin(1, StateAwaitingIncrease)
	require.Equal(t, StateAwaitingIncrease, manager.Current(1))

	outcome, handled := manager.Step(1, "3")
	require.True(t, handled)
	assert.Equal(t, MutationSetIncrease, outcome.Mutation)
	assert.Equal(t, 3.0, outcome.Value)
	assert.Equal(t, StateIdle, manager.Current(1))
}

func TestManager_InvalidInputStillLeavesDialog(t *testing.T) {
	manager := NewManager()

	manager.Begin(1, StateAwaitingHolding)
	outcome, handled := manager.Step(1, "not a number")
	require.True(t, handled)
	assert.True(t, outcome.Invalid)

	// the user must re-select the menu option to retry
	_, handled = manager.Step(1, "100")
	assert.False(t, handled)
}

func TestManager_ChatsAreIndependent(t *testing.T) {
	manager := NewManager()

	manager.Begin(1, StateAwaitingHolding)
	manager.Begin(2, StateAwaitingDecrease)

	outcome, handled := manager.Step(2, "4")
	require.True(t, handled)
	assert.Equal(t, MutationSetDecrease, outcome.Mutation)
	assert.Equal(t, StateAwaitingHolding, manager.Current(1))
}
