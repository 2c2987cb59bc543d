package eventfsm

import "sort"

// rule is one guarded route entry. Rules are immutable once registered.
type rule[S, E comparable] struct {
	key        uint64
	event      Ref[E]
	transition Transition[S]
	condition  Condition[S, E]
}

// routeTable maps an event reference to its rules in registration order.
//
// Rule slices are copy-on-write: a slice obtained from lookup is never mutated
// afterwards, so callers may keep iterating it after releasing the machine lock.
type routeTable[S, E comparable] struct {
	routes map[Ref[E]][]rule[S, E]

	// events lists concrete events in order of first registration.
	events []E
	seen   map[E]struct{}
}

func newRouteTable[S, E comparable]() *routeTable[S, E] {
	return &routeTable[S, E]{
		routes: make(map[Ref[E]][]rule[S, E]),
		seen:   make(map[E]struct{}),
	}
}

func (t *routeTable[S, E]) add(r rule[S, E]) {
	rules := t.routes[r.event]
	next := make([]rule[S, E], len(rules), len(rules)+1)
	copy(next, rules)
	t.routes[r.event] = append(next, r)

	if e, ok := r.event.Value(); ok {
		if _, seen := t.seen[e]; !seen {
			t.seen[e] = struct{}{}
			t.events = append(t.events, e)
		}
	}
}

// remove erases the rule with the given key. It returns false if there was none.
func (t *routeTable[S, E]) remove(event Ref[E], key uint64) bool {
	rules := t.routes[event]
	for i, r := range rules {
		if r.key != key {
			continue
		}
		if len(rules) == 1 {
			delete(t.routes, event)
			return true
		}
		next := make([]rule[S, E], 0, len(rules)-1)
		next = append(next, rules[:i]...)
		t.routes[event] = append(next, rules[i+1:]...)
		return true
	}
	return false
}

// lookup returns the rules eligible for event: those registered under event
// and under AnyEvent, merged in registration order.
func (t *routeTable[S, E]) lookup(event E) []rule[S, E] {
	return mergeRules(t.routes[Is(event)], t.routes[AnyEvent[E]()])
}

// registeredEvents returns a copy of the concrete events seen so far.
func (t *routeTable[S, E]) registeredEvents() []E {
	events := make([]E, len(t.events))
	copy(events, t.events)
	return events
}

// all returns every rule in registration order.
func (t *routeTable[S, E]) all() []rule[S, E] {
	var rules []rule[S, E]
	for _, rs := range t.routes {
		rules = append(rules, rs...)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].key < rules[j].key })
	return rules
}

func mergeRules[S, E comparable](a, b []rule[S, E]) []rule[S, E] {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make([]rule[S, E], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].key < b[j].key {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

// tiers is the number of precedence tiers: F→T, F→Any, Any→T, Any→Any.
const tiers = 4

// destination returns where r leads when fired from `from` in the given tier.
func (r rule[S, E]) destination(tier int, from S) (S, bool) {
	var zero S
	t := r.transition
	switch tier {
	case 0:
		if t.From == Is(from) && !t.To.IsAny() {
			return t.To.Value()
		}
	case 1:
		if t.From == Is(from) && t.To.IsAny() {
			return from, true
		}
	case 2:
		if t.From.IsAny() && !t.To.IsAny() {
			return t.To.Value()
		}
	case 3:
		if t.From.IsAny() && t.To.IsAny() {
			return from, true
		}
	}
	return zero, false
}

// passFunc evaluates a condition for a candidate context.
type passFunc[S, E comparable] func(cond Condition[S, E], c Context[S, E]) bool

// resolveRoute returns the destination of the first rule, by tier and then by
// registration order, whose condition passes for event fired in from.
func resolveRoute[S, E comparable](rules []rule[S, E], event E, from S, payload any, pass passFunc[S, E]) (S, bool) {
	for tier := 0; tier < tiers; tier++ {
		for _, r := range rules {
			to, ok := r.destination(tier, from)
			if !ok {
				continue
			}
			if pass(r.condition, Context[S, E]{Event: event, From: from, To: to, Payload: payload}) {
				return to, true
			}
		}
	}
	var zero S
	return zero, false
}

// routeExists reports whether any rule licenses from => to for event.
func routeExists[S, E comparable](rules []rule[S, E], event E, from, to S, payload any, pass passFunc[S, E]) bool {
	c := Context[S, E]{Event: event, From: from, To: to, Payload: payload}
	for _, candidate := range candidates(from, to) {
		for _, r := range rules {
			if r.transition == candidate && pass(r.condition, c) {
				return true
			}
		}
	}
	return false
}
