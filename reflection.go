package eventfsm

import (
	"reflect"
	"runtime"
	"strings"
)

// DefaultFunctionDescription is the text returned for compiler-generated functions.
var DefaultFunctionDescription = "Function"

// NullString is the string representation of a missing function.
const NullString = "<null>"

// RouteInfo describes one registered rule entry.
type RouteInfo[S, E comparable] struct {
	// Event is the event (or AnyEvent) the rule is registered under.
	Event Ref[E]

	// Transition is the transition the rule licenses.
	Transition Transition[S]

	// Guarded is true if the rule carries a Condition.
	Guarded bool

	// Condition describes the rule's Condition, or NullString.
	Condition string
}

func (r RouteInfo[S, E]) String() string {
	s := r.Event.String() + ": " + r.Transition.String()
	if r.Guarded {
		s += " [" + r.Condition + "]"
	}
	return s
}

// describeFunc returns a short, human readable name for fn.
func describeFunc(fn any) string {
	if fn == nil {
		return NullString
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return NullString
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return DefaultFunctionDescription
	}
	name := f.Name()
	// Extract just the function name from the full path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	// Closures are named like pkg.Outer.func1
	if strings.Contains(name, ".func") {
		return DefaultFunctionDescription
	}
	return name
}
