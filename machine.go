package eventfsm

import (
	"fmt"
	"sync"
	"weak"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Machine is an event-driven state machine over states S and events E.
type Machine[S, E comparable] struct {
	// mu guards state and every registry below. Callbacks run without it.
	mu sync.RWMutex

	// state is the current state. It is never a wildcard.
	state S

	routes        *routeTable[S, E]
	mappings      *mappingRegistry[S, E]
	handlers      *handlerRegistry[S, E]
	errorHandlers handlerList[S, E]

	// nextKey identifies registrations. It only grows.
	nextKey uint64

	logger logr.Logger
}

// New creates a machine in the given initial state.
func New[S, E comparable](initial S, opts ...Option) *Machine[S, E] {
	o := newOptions(opts)
	return &Machine[S, E]{
		state:    initial,
		routes:   newRouteTable[S, E](),
		mappings: &mappingRegistry[S, E]{},
		handlers: newHandlerRegistry[S, E](),
		logger:   o.logger,
	}
}

// NewConfigured creates a machine and runs setup on it once.
func NewConfigured[S, E comparable](initial S, setup func(*Machine[S, E]), opts ...Option) *Machine[S, E] {
	return New[S, E](initial, opts...).Configure(setup)
}

// Configure runs fn against the machine and returns the machine.
func (m *Machine[S, E]) Configure(fn func(*Machine[S, E])) *Machine[S, E] {
	if fn != nil {
		fn(m)
	}
	return m
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Routes

// AddRoutes registers one rule per transition under event, all sharing cond.
// A nil cond always passes.
func (m *Machine[S, E]) AddRoutes(event Ref[E], transitions []Transition[S], cond Condition[S, E]) *Subscription {
	m.mu.Lock()
	keys := make([]uint64, len(transitions))
	for i, t := range transitions {
		keys[i] = m.newKeyLocked()
		m.routes.add(rule[S, E]{key: keys[i], event: event, transition: t, condition: cond})
	}
	m.mu.Unlock()

	m.logger.V(2).Info("routes added", "event", event, "count", len(transitions))

	return m.subscription(func(m *Machine[S, E]) {
		for _, key := range keys {
			m.routes.remove(event, key)
		}
	})
}

// On registers unguarded routes for event.
func (m *Machine[S, E]) On(event E, transitions ...Transition[S]) *Subscription {
	return m.AddRoutes(Is(event), transitions, nil)
}

// OnIf registers routes for event guarded by cond.
func (m *Machine[S, E]) OnIf(event E, cond Condition[S, E], transitions ...Transition[S]) *Subscription {
	return m.AddRoutes(Is(event), transitions, cond)
}

// OnAny registers unguarded routes that every event may take.
func (m *Machine[S, E]) OnAny(transitions ...Transition[S]) *Subscription {
	return m.AddRoutes(AnyEvent[E](), transitions, nil)
}

// AddRoutesWithHandler registers routes and a handler for event at DefaultOrder.
// The returned subscription removes both.
func (m *Machine[S, E]) AddRoutesWithHandler(event Ref[E], transitions []Transition[S], cond Condition[S, E], handler Handler[S, E]) *Subscription {
	return Subscriptions(
		m.AddRoutes(event, transitions, cond),
		m.AddHandler(event, DefaultOrder, handler),
	)
}

// Route mappings

// AddRouteMapping registers a dynamic route. Mappings are consulted in
// registration order after the static routes; the first with an opinion wins.
func (m *Machine[S, E]) AddRouteMapping(fn RouteMapping[S, E]) *Subscription {
	m.mu.Lock()
	key := m.newKeyLocked()
	m.mappings.add(mapping[S, E]{key: key, fn: fn})
	m.mu.Unlock()

	return m.subscription(func(m *Machine[S, E]) {
		m.mappings.remove(key)
	})
}

// AddRouteMappingWithHandler registers fn and a handler that runs only for
// transitions whose destination fn itself would produce.
func (m *Machine[S, E]) AddRouteMappingWithHandler(fn RouteMapping[S, E], order Order, handler Handler[S, E]) *Subscription {
	mappingSub := m.AddRouteMapping(fn)
	handlerSub := m.AddHandler(AnyEvent[E](), order, func(c Context[S, E]) error {
		to, ok := m.callMapping(fn, c.Event, c.From, c.Payload)
		if !ok || to != c.To {
			return nil
		}
		return handler(c)
	})
	return Subscriptions(mappingSub, handlerSub)
}

// Handlers

// AddHandler registers a success handler for event (or AnyEvent).
func (m *Machine[S, E]) AddHandler(event Ref[E], order Order, handler Handler[S, E]) *Subscription {
	m.mu.Lock()
	key := m.newKeyLocked()
	m.handlers.add(event, handlerEntry[S, E]{order: order, key: key, handler: handler})
	m.mu.Unlock()

	return m.subscription(func(m *Machine[S, E]) {
		m.handlers.remove(event, key)
	})
}

// Handle registers a success handler for event at DefaultOrder.
func (m *Machine[S, E]) Handle(event E, handler Handler[S, E]) *Subscription {
	return m.AddHandler(Is(event), DefaultOrder, handler)
}

// HandleAny registers a success handler for every event at DefaultOrder.
func (m *Machine[S, E]) HandleAny(handler Handler[S, E]) *Subscription {
	return m.AddHandler(AnyEvent[E](), DefaultOrder, handler)
}

// AddErrorHandler registers a handler that runs after every failed attempt.
func (m *Machine[S, E]) AddErrorHandler(order Order, handler Handler[S, E]) *Subscription {
	m.mu.Lock()
	key := m.newKeyLocked()
	m.errorHandlers = m.errorHandlers.insert(handlerEntry[S, E]{order: order, key: key, handler: handler})
	m.mu.Unlock()

	return m.subscription(func(m *Machine[S, E]) {
		m.errorHandlers, _ = m.errorHandlers.remove(key)
	})
}

// HandleError registers an error handler at DefaultOrder.
func (m *Machine[S, E]) HandleError(handler Handler[S, E]) *Subscription {
	return m.AddErrorHandler(DefaultOrder, handler)
}

// Queries

// CanTryEvent returns the state event would lead to if fired now. It never
// changes the state or runs handlers.
func (m *Machine[S, E]) CanTryEvent(event E, payload any) (S, bool) {
	m.mu.RLock()
	from := m.state
	rules := m.routes.lookup(event)
	mappings := m.mappings.snapshot()
	m.mu.RUnlock()

	return m.resolve(rules, mappings, event, from, payload)
}

// HasRoute reports whether event licenses from => to, statically or through
// a route mapping producing to.
func (m *Machine[S, E]) HasRoute(event E, from, to S, payload any) bool {
	m.mu.RLock()
	rules := m.routes.lookup(event)
	mappings := m.mappings.snapshot()
	m.mu.RUnlock()

	if routeExists(rules, event, from, to, payload, m.passes) {
		return true
	}
	_, ok := resolveMapping(mappings, event, from, payload, &to, m.callMapping)
	return ok
}

// HasTransitionRoute is HasRoute for a concrete transition. A wildcard on
// either side is a usage error and yields ErrWildcardState.
func (m *Machine[S, E]) HasTransitionRoute(event E, t Transition[S], payload any) (bool, error) {
	from, fromOK := t.From.Value()
	to, toOK := t.To.Value()
	if !fromOK || !toOK {
		return false, errors.Wrapf(ErrWildcardState, "transition %s", t)
	}
	return m.HasRoute(event, from, to, payload), nil
}

// PermittedEvents returns the concrete events whose static routes would
// succeed from the current state, in order of first registration.
func (m *Machine[S, E]) PermittedEvents(payload any) []E {
	return m.permittedEvents(m.State(), payload)
}

// permittedEvents is PermittedEvents evaluated from the given state.
func (m *Machine[S, E]) permittedEvents(from S, payload any) []E {
	m.mu.RLock()
	events := m.routes.registeredEvents()
	rules := make([][]rule[S, E], len(events))
	for i, e := range events {
		rules[i] = m.routes.lookup(e)
	}
	m.mu.RUnlock()

	var permitted []E
	for i, e := range events {
		if _, ok := resolveRoute(rules[i], e, from, payload, m.passes); ok {
			permitted = append(permitted, e)
		}
	}
	return permitted
}

// Routes describes every registered rule in registration order.
func (m *Machine[S, E]) Routes() []RouteInfo[S, E] {
	m.mu.RLock()
	rules := m.routes.all()
	m.mu.RUnlock()

	infos := make([]RouteInfo[S, E], len(rules))
	for i, r := range rules {
		infos[i] = RouteInfo[S, E]{
			Event:      r.event,
			Transition: r.transition,
			Guarded:    r.condition != nil,
			Condition:  describeFunc(r.condition),
		}
	}
	return infos
}

// Firing

// TryEvent fires event. On success the state is committed first and then the
// success handlers run in order; it returns true. Otherwise the state is left
// unchanged, the error handlers run, and it returns false.
func (m *Machine[S, E]) TryEvent(event E, payload any) bool {
	return m.attempt(event, payload, false).ok
}

// TryEvents fires each event in turn and returns how many succeeded.
func (m *Machine[S, E]) TryEvents(events ...E) int {
	succeeded := 0
	for _, e := range events {
		if m.TryEvent(e, nil) {
			succeeded++
		}
	}
	return succeeded
}

// Fire is TryEvent reporting failures as errors. It returns an
// *InvalidTransitionError if nothing licensed the event, or a *HandlerError
// if the transition was committed but a handler failed.
func (m *Machine[S, E]) Fire(event E, payload any) error {
	out := m.attempt(event, payload, true)
	if !out.ok {
		events := make([]any, len(out.permitted))
		for i, e := range out.permitted {
			events[i] = e
		}
		return &InvalidTransitionError{
			Event:           event,
			State:           out.from,
			PermittedEvents: events,
		}
	}
	if out.err != nil {
		return &HandlerError{Event: event, From: out.from, To: out.to, Err: out.err}
	}
	return nil
}

type outcome[S, E comparable] struct {
	from S
	to   S
	ok   bool
	err  error

	// permitted is set for failed attempts made with report.
	permitted []E
}

// attempt runs the commit protocol. With report, a failed attempt also
// records the events permitted from its state before any error handler runs.
func (m *Machine[S, E]) attempt(event E, payload any, report bool) outcome[S, E] {
	// Everything the attempt needs is captured before any callback runs, so
	// registrations made by callbacks only affect later attempts.
	m.mu.RLock()
	from := m.state
	rules := m.routes.lookup(event)
	mappings := m.mappings.snapshot()
	handlers := m.handlers.lookup(event)
	errorHandlers := m.errorHandlers
	m.mu.RUnlock()

	to, ok := m.resolve(rules, mappings, event, from, payload)
	if !ok {
		m.logger.V(1).Info("transition rejected", "event", event, "state", from)
		out := outcome[S, E]{from: from, to: from}
		if report {
			out.permitted = m.permittedEvents(from, payload)
		}
		// There is no destination for a failed attempt; report the unchanged state.
		m.dispatch(errorHandlers, Context[S, E]{Event: event, From: from, To: from, Payload: payload})
		return out
	}

	m.mu.Lock()
	m.state = to
	m.mu.Unlock()

	m.logger.V(1).Info("transition committed", "event", event, "from", from, "to", to)

	err := m.dispatch(handlers, Context[S, E]{Event: event, From: from, To: to, Payload: payload})
	return outcome[S, E]{from: from, to: to, ok: true, err: err}
}

func (m *Machine[S, E]) resolve(rules []rule[S, E], mappings []mapping[S, E], event E, from S, payload any) (S, bool) {
	if to, ok := resolveRoute(rules, event, from, payload, m.passes); ok {
		return to, true
	}
	return resolveMapping(mappings, event, from, payload, nil, m.callMapping)
}

// dispatch runs handlers in order. Failing handlers are logged and skipped.
func (m *Machine[S, E]) dispatch(handlers handlerList[S, E], c Context[S, E]) error {
	var errs error
	for _, h := range handlers {
		if err := m.invoke(h.handler, c); err != nil {
			m.logger.Error(err, "handler failed",
				"handler", describeFunc(h.handler), "order", h.order,
				"event", c.Event, "from", c.From, "to", c.To)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (m *Machine[S, E]) invoke(handler Handler[S, E], c Context[S, E]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r, "handler")
		}
	}()
	return handler(c)
}

// passes evaluates cond. A panicking condition does not pass.
func (m *Machine[S, E]) passes(cond Condition[S, E], c Context[S, E]) (ok bool) {
	if cond == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(panicError(r, "condition"), "condition failed",
				"condition", describeFunc(cond), "event", c.Event, "from", c.From, "to", c.To)
			ok = false
		}
	}()
	return cond(c)
}

// callMapping evaluates fn. A panicking mapping has no opinion.
func (m *Machine[S, E]) callMapping(fn RouteMapping[S, E], event E, from S, payload any) (to S, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error(panicError(r, "route mapping"), "route mapping failed",
				"mapping", describeFunc(fn), "event", event, "from", from)
			var zero S
			to, ok = zero, false
		}
	}()
	return fn(event, from, payload)
}

func (m *Machine[S, E]) newKeyLocked() uint64 {
	m.nextKey++
	return m.nextKey
}

// subscription returns a handle running remove under the machine lock. The
// handle only holds a weak reference to the machine.
func (m *Machine[S, E]) subscription(remove func(*Machine[S, E])) *Subscription {
	ref := weak.Make(m)
	return newSubscription(func() {
		machine := ref.Value()
		if machine == nil {
			return
		}
		machine.mu.Lock()
		defer machine.mu.Unlock()
		remove(machine)
	})
}

// String returns a string representation of the current state.
func (m *Machine[S, E]) String() string {
	return fmt.Sprintf("Machine { State = %v }", m.State())
}
