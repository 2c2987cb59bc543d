// Package eventfsm provides a generic, embeddable, event-driven finite state machine.
//
// A Machine holds exactly one current state. Callers register routes (which
// transitions an event licenses), guard them with conditions, and attach ordered
// handlers that run after a committed transition. Failed attempts run error
// handlers instead. The machine owns no I/O and no goroutines:
//
//   - Generic types for states and events
//   - Wildcards for "any state" and "any event" that never leak into the domain types
//   - Guard conditions over the full transition context
//   - Dynamic route mappings for open event domains
//   - Precedence-ordered success and error handlers
//   - Idempotent subscriptions for every registration
//
// # Basic Usage
//
// Create a machine with an initial state and register routes:
//
//	m := eventfsm.New[State, Event](Idle)
//	m.On(Start, eventfsm.Move(Idle, Running))
//
// Fire events to cause transitions:
//
//	ok := m.TryEvent(Start, nil)
//
// # Matching
//
// For an event E fired in state F the route table is consulted in four tiers:
// F→T, F→Any, Any→T and Any→Any. Routes registered under E and under AnyEvent
// are eligible in every tier and are examined in registration order. A route to
// Any resolves to the current state (an identity transition). When no route
// matches, route mappings are consulted in registration order.
//
// # Handlers
//
// Handlers run after the state has been committed, lowest Order first:
//
//	m.AddHandler(eventfsm.Is(Start), 10, func(c eventfsm.Context[State, Event]) error {
//	    fmt.Println(c.From, "=>", c.To)
//	    return nil
//	})
//
// # Concurrency
//
// Registries and the current state are guarded internally, and callbacks run
// without the lock held, so a handler may register routes, dispose
// subscriptions or fire nested events. Serialising TryEvent calls made from
// different goroutines is the caller's responsibility; keep handlers short.
package eventfsm
