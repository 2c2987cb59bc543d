package eventfsm

// Condition vetoes an otherwise matching route. A nil Condition always passes.
// Conditions must not mutate the machine.
type Condition[S, E comparable] func(c Context[S, E]) bool

// All returns a condition that passes when every non-nil condition passes.
func All[S, E comparable](conditions ...Condition[S, E]) Condition[S, E] {
	return func(c Context[S, E]) bool {
		for _, cond := range conditions {
			if cond != nil && !cond(c) {
				return false
			}
		}
		return true
	}
}

// Not inverts a condition. Not(nil) never passes.
func Not[S, E comparable](cond Condition[S, E]) Condition[S, E] {
	return func(c Context[S, E]) bool {
		if cond == nil {
			return false
		}
		return !cond(c)
	}
}

// TypedCondition converts a guard over a typed payload into a Condition.
// A payload that is not a T fails the guard.
func TypedCondition[S, E comparable, T any](guard func(c Context[S, E], payload T) bool) Condition[S, E] {
	return func(c Context[S, E]) bool {
		payload, ok := PayloadAs[T](c)
		if !ok {
			return false
		}
		return guard(c, payload)
	}
}
