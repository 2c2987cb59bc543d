package eventfsm

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ErrWildcardState is returned by introspection queries that need concrete
// states but were given a wildcard.
var ErrWildcardState = errors.New("wildcard state is not supported here")

// InvalidTransitionError is returned by Fire when no route or route mapping
// licenses the event from the current state.
type InvalidTransitionError struct {
	Event           any
	State           any
	PermittedEvents []any
}

func (e *InvalidTransitionError) Error() string {
	if len(e.PermittedEvents) == 0 {
		return fmt.Sprintf(
			"no transition is permitted from state '%v' for event '%v'. No routed events are permitted from state.",
			e.State, e.Event)
	}
	return fmt.Sprintf(
		"no transition is permitted from state '%v' for event '%v'. Permitted events: %v.",
		e.State, e.Event, e.PermittedEvents)
}

// HandlerError is returned by Fire when the transition was committed but one
// or more handlers failed. The state change is not rolled back.
type HandlerError struct {
	Event any
	From  any
	To    any
	// Err combines every handler failure.
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handlers failed for '%v' => '%v' on event '%v': %v", e.From, e.To, e.Event, e.Err)
}

func (e *HandlerError) Unwrap() []error {
	return multierr.Errors(e.Err)
}

// panicError converts a recovered value into an error.
func panicError(recovered any, callback string) error {
	if err, ok := recovered.(error); ok {
		return errors.Wrapf(err, "%s panicked", callback)
	}
	return errors.Errorf("%s panicked: %v", callback, recovered)
}
