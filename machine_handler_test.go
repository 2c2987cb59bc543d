package eventfsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlekbai/eventfsm"
)

func TestHandler_Order(t *testing.T) {
	var calls []int
	m := eventfsm.New[State, Event](StateA)
	m.On(EventX, eventfsm.Move(StateA, StateB))

	record := func(n int) eventfsm.Handler[State, Event] {
		return func(context) error {
			calls = append(calls, n)
			return nil
		}
	}
	m.AddHandler(eventfsm.Is(EventX), 50, record(50))
	m.Handle(EventX, record(100))
	m.AddHandler(eventfsm.Is(EventX), 10, record(10))

	require.True(t, m.TryEvent(EventX, nil))
	assert.Equal(t, []int{10, 50, 100}, calls)
}

// Scenario: A (order 10) is observed before B (order 100).
func TestHandler_SharedCounter(t *testing.T) {
	counter := 0
	var a, b int

	m := eventfsm.New[string, string]("idle")
	m.On("Go", eventfsm.Move("idle", "going"))
	m.AddHandler(eventfsm.Is("Go"), 100, func(eventfsm.Context[string, string]) error {
		counter++
		b = counter
		return nil
	})
	m.AddHandler(eventfsm.Is("Go"), 10, func(eventfsm.Context[string, string]) error {
		counter++
		a = counter
		return nil
	})

	require.True(t, m.TryEvent("Go", nil))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestHandler_EqualOrderKeepsInsertionOrder(t *testing.T) {
	var calls []string
	m := eventfsm.New[State, Event](StateA)
	m.On(EventX, eventfsm.Move(StateA, StateB))

	m.Handle(EventX, func(context) error { calls = append(calls, "event-1"); return nil })
	m.HandleAny(func(context) error { calls = append(calls, "any-1"); return nil })
	m.Handle(EventX, func(context) error { calls = append(calls, "event-2"); return nil })
	m.AddHandler(eventfsm.AnyEvent[Event](), 0, func(context) error { calls = append(calls, "any-first"); return nil })

	require.True(t, m.TryEvent(EventX, nil))
	assert.Equal(t, []string{"any-first", "event-1", "any-1", "event-2"}, calls)
}

func TestHandler_OnlyMatchingEvent(t *testing.T) {
	var x, y int
	m := eventfsm.New[State, Event](StateA)
	m.OnAny(eventfsm.ToAny(StateA))
	m.Handle(EventX, func(context) error { x++; return nil })
	m.Handle(EventY, func(context) error { y++; return nil })

	m.TryEvent(EventX, nil)
	m.TryEvent(EventX, nil)
	m.TryEvent(EventZ, nil)

	assert.Equal(t, 2, x)
	assert.Equal(t, 0, y)
}

func TestHandler_Remove(t *testing.T) {
	var invoked int
	m := eventfsm.New[State, Event](StateA)
	m.On(EventX, eventfsm.Move(StateA, StateB), eventfsm.Move(StateB, StateC))
	sub := m.Handle(EventX, func(context) error { invoked++; return nil })

	sub.Dispose()

	assert.True(t, m.TryEvent(EventX, nil), "A => B should succeed")
	assert.True(t, m.TryEvent(EventX, nil), "B => C should succeed")
	assert.Equal(t, 0, invoked)
}

func TestErrorHandler(t *testing.T) {
	var invoked int
	m := eventfsm.New[State, Event](StateA)
	m.On(EventX, eventfsm.Move(StateA, StateB))
	m.HandleError(func(context) error { invoked++; return nil })

	assert.Equal(t, 0, invoked)
	m.TryEvent(EventY, nil)
	assert.Equal(t, 1, invoked)

	m.TryEvent(EventX, nil)
	assert.Equal(t, 1, invoked, "successful attempts do not run error handlers")
}

func TestErrorHandler_OrderAndRemove(t *testing.T) {
	var calls []string
	m := eventfsm.New[State, Event](StateA)
	m.AddErrorHandler(200, func(context) error { calls = append(calls, "late"); return nil })
	sub := m.AddErrorHandler(5, func(context) error { calls = append(calls, "removed"); return nil })
	m.AddErrorHandler(10, func(context) error { calls = append(calls, "early"); return nil })

	m.TryEvent(EventX, nil)
	assert.Equal(t, []string{"removed", "early", "late"}, calls)

	calls = nil
	sub.Dispose()
	m.TryEvent(EventX, nil)
	assert.Equal(t, []string{"early", "late"}, calls)
}

func TestErrorHandler_Context(t *testing.T) {
	var got context
	m := eventfsm.New[State, Event](StateC)
	m.HandleError(func(c context) error { got = c; return nil })

	m.TryEvent(EventZ, "why")
	assert.Equal(t, context{Event: EventZ, From: StateC, To: StateC, Payload: "why"}, got)
}
