package eventfsm

// Context describes one transition attempt. It is passed by value to every
// Condition and Handler invoked during that attempt.
type Context[S, E comparable] struct {
	// Event is the event that was fired.
	Event E

	// From is the state the machine was in when the event was fired.
	From S

	// To is the resolved destination. For failed attempts it equals From.
	To S

	// Payload is the optional value passed along with the event.
	Payload any
}

// IsIdentity returns true if the attempt does not change the state.
func (c Context[S, E]) IsIdentity() bool {
	return c.From == c.To
}

// PayloadAs returns the payload as a T. The second result is false when the
// payload is nil or not a T.
func PayloadAs[T any, S, E comparable](c Context[S, E]) (T, bool) {
	v, ok := c.Payload.(T)
	return v, ok
}
