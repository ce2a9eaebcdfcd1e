// Package closure implements the scope tree of an album script and the
// table-driven dispatch of commands to scope operations.
package closure

import (
	"fmt"
	"reflect"
)

// Scope is one node of the nesting hierarchy. Parent is nil for the root.
type Scope interface {
	Kind() string
	Parent() Scope
	Invoke(command string, params []string) (Outcome, error)
	// Leave is the exit hook, called once when the scope is closed.
	Leave() error
}

// Outcome tells the driver whether to stay in the receiving scope or to
// descend into a freshly created child.
type Outcome struct {
	child Scope
}

// Stay keeps the receiver as the current scope.
func Stay() Outcome { return Outcome{} }

// Descend makes child the current scope.
func Descend(child Scope) Outcome { return Outcome{child: child} }

// Child returns the scope to descend into, if any.
func (o Outcome) Child() (Scope, bool) {
	return o.child, o.child != nil
}

// Ancestor walks the parent chain of from (excluding from itself) and returns
// the nearest scope of type T.
func Ancestor[T Scope](from Scope) (T, error) {
	for s := from.Parent(); s != nil; s = s.Parent() {
		if t, ok := s.(T); ok {
			return t, nil
		}
	}
	var zero T
	return zero, &AncestorNotFoundError{From: from.Kind(), Want: typeName[T]()}
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Path lists the kinds from the root down to s.
func Path(s Scope) []string {
	var kinds []string
	for ; s != nil; s = s.Parent() {
		kinds = append([]string{s.Kind()}, kinds...)
	}
	return kinds
}

func describe(s Scope) string {
	if s == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%p)", s.Kind(), s)
}
