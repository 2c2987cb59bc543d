package eventfsm

// RouteMapping computes a preferred destination for an event fired in from.
// It returns false when it has no opinion. Mappings must be pure.
type RouteMapping[S, E comparable] func(event E, from S, payload any) (S, bool)

type mapping[S, E comparable] struct {
	key uint64
	fn  RouteMapping[S, E]
}

// mappingRegistry keeps route mappings in registration order. The slice is
// copy-on-write like the route table.
type mappingRegistry[S, E comparable] struct {
	mappings []mapping[S, E]
}

func (r *mappingRegistry[S, E]) add(m mapping[S, E]) {
	next := make([]mapping[S, E], len(r.mappings), len(r.mappings)+1)
	copy(next, r.mappings)
	r.mappings = append(next, m)
}

func (r *mappingRegistry[S, E]) remove(key uint64) bool {
	for i, m := range r.mappings {
		if m.key != key {
			continue
		}
		next := make([]mapping[S, E], 0, len(r.mappings)-1)
		next = append(next, r.mappings[:i]...)
		r.mappings = append(next, r.mappings[i+1:]...)
		return true
	}
	return false
}

func (r *mappingRegistry[S, E]) snapshot() []mapping[S, E] {
	return r.mappings
}

// callFunc invokes a route mapping.
type callFunc[S, E comparable] func(fn RouteMapping[S, E], event E, from S, payload any) (S, bool)

// resolveMapping returns the result of the first mapping with an opinion.
// When want is non-nil only a result equal to *want counts.
func resolveMapping[S, E comparable](mappings []mapping[S, E], event E, from S, payload any, want *S, call callFunc[S, E]) (S, bool) {
	for _, m := range mappings {
		to, ok := call(m.fn, event, from, payload)
		if !ok {
			continue
		}
		if want == nil || *want == to {
			return to, true
		}
	}
	var zero S
	return zero, false
}
