// Package dialog implements the per-chat configuration state machine.
//
// A chat enters an awaiting state by selecting a menu option; the next
// inbound message, valid number or not, terminates the dialog. A user
// who typed garbage has to re-select the menu option to retry.
package dialog

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/raykavin/tokensentry/core"
)

// State is the dialog position of a single chat.
type State int

const (
	StateIdle State = iota
	StateAwaitingHolding
	StateAwaitingIncrease
	StateAwaitingDecrease
	StateAwaitingSharpDrop
)

// Mutation is the registry change produced by a completed dialog.
type Mutation int

const (
	MutationNone Mutation = iota
	MutationSetHolding
	MutationSetIncrease
	MutationSetDecrease
	MutationSetSharpDrop
)

// Outcome is the side effect of consuming one inbound message.
type Outcome struct {
	Mutation Mutation
	Value    float64
	Invalid  bool // input did not parse as a finite number
}

// Transition consumes one inbound message for the given dialog state.
// It is a pure function: state plus input in, new state plus outcome
// out. Every input moves the chat back to idle.
func Transition(state State, input string) (State, Outcome) {
	if state == StateIdle {
		return StateIdle, Outcome{}
	}

	value, err := parseNumber(input)
	if err != nil {
		return StateIdle, Outcome{Invalid: true}
	}

	return StateIdle, Outcome{Mutation: mutationFor(state), Value: value}
}

func mutationFor(state State) Mutation {
	switch state {
	case StateAwaitingHolding:
		return MutationSetHolding
	case StateAwaitingIncrease:
		return MutationSetIncrease
	case StateAwaitingDecrease:
		return MutationSetDecrease
	case StateAwaitingSharpDrop:
		return MutationSetSharpDrop
	}
	return MutationNone
}

// parseNumber parses a finite real number from user input.
func parseNumber(input string) (float64, error) {
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidNumber, input)
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", core.ErrInvalidNumber, input)
	}

	return value, nil
}

// Manager tracks the dialog state of every chat. States live for the
// process lifetime; there are no timeouts because any input terminates
// the dialog anyway.
type Manager struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewManager creates an empty dialog manager.
func NewManager() *Manager {
	return &Manager{states: make(map[int64]State)}
}

// Begin moves a chat into an awaiting state after a menu selection.
func (m *Manager) Begin(chatID int64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = state
}

// Current returns the dialog state of a chat, idle if unknown.
func (m *Manager) Current(chatID int64) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.states[chatID]
}

// Step consumes an inbound message for a chat. The boolean is false
// when the chat was idle and the message is not part of any dialog.
func (m *Manager) Step(chatID int64, input string) (Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.states[chatID]
	if state == StateIdle {
		return Outcome{}, false
	}

	next, outcome := Transition(state, input)
	m.states[chatID] = next
	return outcome, true
}
