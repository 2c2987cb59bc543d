package eventfsm

// Transition is an ordered (from, to) pair of state references. Either side may
// be the wildcard. Transitions are comparable values.
type Transition[S comparable] struct {
	// From is the state the transition leaves.
	From Ref[S]

	// To is the state the transition enters.
	To Ref[S]
}

// NewTransition creates a new transition.
func NewTransition[S comparable](from, to Ref[S]) Transition[S] {
	return Transition[S]{From: from, To: to}
}

// Move creates a transition between two concrete states.
func Move[S comparable](from, to S) Transition[S] {
	return NewTransition(Is(from), Is(to))
}

// FromAny creates a transition into to from every state.
func FromAny[S comparable](to S) Transition[S] {
	return NewTransition(AnyState[S](), Is(to))
}

// ToAny creates a transition out of from. Fired as an event route it resolves
// to from itself.
func ToAny[S comparable](from S) Transition[S] {
	return NewTransition(Is(from), AnyState[S]())
}

// AnyToAny creates the transition that matches every pair of states.
func AnyToAny[S comparable]() Transition[S] {
	return NewTransition(AnyState[S](), AnyState[S]())
}

// MoveAll creates one transition into to per source state.
func MoveAll[S comparable](to S, froms ...S) []Transition[S] {
	transitions := make([]Transition[S], len(froms))
	for i, from := range froms {
		transitions[i] = Move(from, to)
	}
	return transitions
}

// IsConcrete returns true if neither side is the wildcard.
func (t Transition[S]) IsConcrete() bool {
	return !t.From.IsAny() && !t.To.IsAny()
}

func (t Transition[S]) String() string {
	return t.From.String() + " => " + t.To.String()
}

// candidates returns the four transitions that license from => to, in
// precedence order.
func candidates[S comparable](from, to S) [4]Transition[S] {
	return [4]Transition[S]{
		Move(from, to),
		ToAny(from),
		FromAny(to),
		AnyToAny[S](),
	}
}
