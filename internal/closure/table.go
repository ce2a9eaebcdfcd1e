package closure

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Op is one operation of a scope kind.
type Op[S Scope] struct {
	Name   string
	Params []Param
	Fn     func(s S, args Args) (Outcome, error)
}

// Table maps lower-cased command names to the operations of one scope kind.
// Build it once per kind, at package initialization.
type Table[S Scope] struct {
	kind string
	ops  map[string]Op[S]
}

// NewTable panics on duplicate names or on defaults that do not coerce.
func NewTable[S Scope](kind string, ops ...Op[S]) *Table[S] {
	t := &Table[S]{kind: kind, ops: make(map[string]Op[S], len(ops))}
	for _, op := range ops {
		key := strings.ToLower(op.Name)
		if _, dup := t.ops[key]; dup {
			panic(fmt.Sprintf("closure: duplicate operation %s.%s", kind, op.Name))
		}
		for _, p := range op.Params {
			if p.Type == Enum && p.Enum == nil {
				panic(fmt.Sprintf("closure: %s.%s: enum parameter %s has no enum type", kind, op.Name, p.Name))
			}
			if p.Optional {
				if _, err := p.Coerce(p.Default); err != nil {
					panic(fmt.Sprintf("closure: %s.%s: bad default: %v", kind, op.Name, err))
				}
			}
		}
		t.ops[key] = op
	}
	return t
}

// Kind is the scope kind the table serves.
func (t *Table[S]) Kind() string { return t.kind }

// Names lists the declared operation names, sorted.
func (t *Table[S]) Names() []string {
	names := make([]string, 0, len(t.ops))
	for _, op := range t.ops {
		names = append(names, op.Name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves command case-insensitively.
func (t *Table[S]) Lookup(command string) (Op[S], bool) {
	op, ok := t.ops[strings.ToLower(command)]
	return op, ok
}

// Bind resolves command and coerces params without invoking anything.
func (t *Table[S]) Bind(command string, params []string) (Op[S], Args, error) {
	op, ok := t.Lookup(command)
	if !ok {
		return Op[S]{}, Args{}, &UnknownOperationError{Scope: t.kind, Command: command, Known: t.Names()}
	}
	if len(params) > len(op.Params) {
		return op, Args{}, &TooManyArgumentsError{Scope: t.kind, Command: op.Name, Given: len(params), Max: len(op.Params)}
	}

	vals := make([]any, len(op.Params))
	for i, p := range op.Params {
		s := ""
		supplied := i < len(params)
		if supplied {
			s = params[i]
		}
		if p.Optional && (!supplied || s == "") {
			s = p.Default
		}
		v, err := p.Coerce(s)
		if err != nil {
			return op, Args{}, t.annotate(op.Name, err)
		}
		vals[i] = v
	}
	return op, Args{vals: vals}, nil
}

// Invoke dispatches command against s and checks the parent of any child
// scope it descends into.
func (t *Table[S]) Invoke(s S, command string, params []string) (Outcome, error) {
	op, args, err := t.Bind(command, params)
	if err != nil {
		return Outcome{}, err
	}
	out, err := op.Fn(s, args)
	if err != nil {
		return Outcome{}, err
	}
	if child, ok := out.Child(); ok {
		if child.Parent() != Scope(s) {
			return Outcome{}, &ScopeInvariantError{Scope: t.kind, Command: op.Name, Child: describe(child)}
		}
	}
	return out, nil
}

func (t *Table[S]) annotate(command string, err error) error {
	var iev *InvalidEnumValueError
	if errors.As(err, &iev) {
		iev.Scope, iev.Command = t.kind, command
		return iev
	}
	var tce *TypeCoercionError
	if errors.As(err, &tce) {
		tce.Scope, tce.Command = t.kind, command
		return tce
	}
	return err
}
