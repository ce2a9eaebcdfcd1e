package closure

import (
	"fmt"
	"strings"
)

// UnknownOperationError is returned when a scope has no operation with the
// given name.
type UnknownOperationError struct {
	Scope   string
	Command string
	// Known lists the operations the scope does accept, when available.
	Known []string
}

func (e *UnknownOperationError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("%s: unknown operation %q", e.Scope, e.Command)
	}
	return fmt.Sprintf("%s: unknown operation %q (known: %s)", e.Scope, e.Command, strings.Join(e.Known, ", "))
}

// TooManyArgumentsError is returned when more parameters are supplied than
// the operation declares.
type TooManyArgumentsError struct {
	Scope   string
	Command string
	Given   int
	Max     int
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("%s.%s: too many arguments: got %d, at most %d", e.Scope, e.Command, e.Given, e.Max)
}

// InvalidEnumValueError is returned when a string names no member of an
// enumeration.
type InvalidEnumValueError struct {
	Scope   string
	Command string
	Param   string
	Enum    string
	Value   string
}

func (e *InvalidEnumValueError) Error() string {
	return fmt.Sprintf("%s.%s: parameter %s: %q is not a valid %s", e.Scope, e.Command, e.Param, e.Value, e.Enum)
}

// TypeCoercionError is returned when a string cannot be converted to the
// declared primitive type.
type TypeCoercionError struct {
	Scope   string
	Command string
	Param   string
	Type    Type
	Value   string
	Err     error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s.%s: parameter %s: cannot convert %q to %s: %v", e.Scope, e.Command, e.Param, e.Value, e.Type, e.Err)
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

// ScopeInvariantError is returned when an operation descends into a scope
// whose parent is not the receiver.
type ScopeInvariantError struct {
	Scope   string
	Command string
	Child   string
}

func (e *ScopeInvariantError) Error() string {
	return fmt.Sprintf("%s.%s: returned scope %s is not a child of the receiver", e.Scope, e.Command, e.Child)
}

// AncestorNotFoundError is returned when a required typed ancestor is missing.
type AncestorNotFoundError struct {
	From string
	Want string
}

func (e *AncestorNotFoundError) Error() string {
	return fmt.Sprintf("%s: no ancestor of type %s", e.From, e.Want)
}
