package typed

import "fmt"

// CoercionError reports input that could not be coerced into a numeric or
// date value. The encoded result carries the "NaN" sentinel.
type CoercionError struct {
	Kind  Kind
	Input any
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("typed: cannot coerce %#v to %s", e.Input, e.Kind)
}
