package closure

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Type is the declared type of an operation parameter.
type Type int

const (
	String Type = iota
	Bool
	Int
	Float
	Enum
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Enum:
		return "enum"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

var errBadBool = errors.New("expected true/false, yes/no, on/off or 1/0")

// EnumType is a named set of case-insensitive members. Members of a flag set
// may be combined with commas; the first member of a flag set is the zero
// value and the rest take successive bits.
type EnumType struct {
	Name  string
	Flags bool

	names  []string
	values []int
	index  map[string]int
}

// NewEnum declares an enumeration whose member i has value i.
func NewEnum(name string, members ...string) *EnumType {
	e := &EnumType{Name: name, index: make(map[string]int, len(members))}
	for i, m := range members {
		e.add(m, i)
	}
	return e
}

// NewFlags declares a flag set. members[0] is the empty set.
func NewFlags(name string, members ...string) *EnumType {
	e := &EnumType{Name: name, Flags: true, index: make(map[string]int, len(members))}
	for i, m := range members {
		v := 0
		if i > 0 {
			v = 1 << (i - 1)
		}
		e.add(m, v)
	}
	return e
}

func (e *EnumType) add(name string, v int) {
	key := strings.ToLower(name)
	if _, dup := e.index[key]; dup {
		panic(fmt.Sprintf("closure: duplicate member %q in enum %s", name, e.Name))
	}
	e.names = append(e.names, name)
	e.values = append(e.values, v)
	e.index[key] = v
}

// Members returns the member names in declaration order.
func (e *EnumType) Members() []string {
	return append([]string(nil), e.names...)
}

// Parse resolves s to a member value.
func (e *EnumType) Parse(s string) (int, bool) {
	if !e.Flags {
		v, ok := e.index[strings.ToLower(strings.TrimSpace(s))]
		return v, ok
	}
	v := 0
	for _, part := range strings.Split(s, ",") {
		bit, ok := e.index[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return 0, false
		}
		v |= bit
	}
	return v, true
}

// Format is the inverse of Parse.
func (e *EnumType) Format(v int) string {
	if !e.Flags {
		for i, mv := range e.values {
			if mv == v {
				return e.names[i]
			}
		}
		return strconv.Itoa(v)
	}
	if v == 0 && len(e.names) > 0 {
		return e.names[0]
	}
	var parts []string
	for i, mv := range e.values {
		if mv != 0 && v&mv == mv {
			parts = append(parts, e.names[i])
		}
	}
	return strings.Join(parts, ",")
}

// Param declares one operation parameter.
type Param struct {
	Name     string
	Type     Type
	Enum     *EnumType
	Optional bool
	// Default is written in script syntax and coerced like a supplied value.
	Default string
}

// Required declares a mandatory primitive parameter.
func Required(name string, t Type) Param { return Param{Name: name, Type: t} }

// Optional declares a primitive parameter with a default.
func Optional(name string, t Type, def string) Param {
	return Param{Name: name, Type: t, Optional: true, Default: def}
}

// RequiredEnum declares a mandatory enumeration parameter.
func RequiredEnum(name string, e *EnumType) Param {
	return Param{Name: name, Type: Enum, Enum: e}
}

// OptionalEnum declares an enumeration parameter with a default member.
func OptionalEnum(name string, e *EnumType, def string) Param {
	return Param{Name: name, Type: Enum, Enum: e, Optional: true, Default: def}
}

// Coerce converts s to the parameter's Go value: bool, int, float64, string
// or, for enumerations, the member value as int.
func (p Param) Coerce(s string) (any, error) {
	switch p.Type {
	case String:
		return s, nil
	case Enum:
		v, ok := p.Enum.Parse(s)
		if !ok {
			return nil, &InvalidEnumValueError{Param: p.Name, Enum: p.Enum.Name, Value: s}
		}
		return v, nil
	case Bool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, &TypeCoercionError{Param: p.Name, Type: p.Type, Value: s, Err: errBadBool}
	case Int:
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, &TypeCoercionError{Param: p.Name, Type: p.Type, Value: s, Err: err}
		}
		return v, nil
	case Float:
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, &TypeCoercionError{Param: p.Name, Type: p.Type, Value: s, Err: err}
		}
		return v, nil
	}
	return nil, &TypeCoercionError{Param: p.Name, Type: p.Type, Value: s, Err: errors.New("unsupported type")}
}

// FormatValue renders v in script syntax so that Coerce(FormatValue(v)) == v.
func (p Param) FormatValue(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int:
		if p.Type == Enum {
			return p.Enum.Format(x)
		}
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// Args holds the coerced arguments of one invocation, in declaration order.
type Args struct {
	vals []any
}

// NewArgs builds Args directly, mainly for tests.
func NewArgs(vals ...any) Args { return Args{vals: vals} }

func (a Args) Len() int            { return len(a.vals) }
func (a Args) Bool(i int) bool     { return a.vals[i].(bool) }
func (a Args) Int(i int) int       { return a.vals[i].(int) }
func (a Args) Float(i int) float64 { return a.vals[i].(float64) }
func (a Args) String(i int) string { return a.vals[i].(string) }
func (a Args) Enum(i int) int      { return a.vals[i].(int) }
func (a Args) Value(i int) any     { return a.vals[i] }

// Seconds reads a float parameter as a duration in seconds.
func (a Args) Seconds(i int) time.Duration {
	return time.Duration(math.Round(a.Float(i) * float64(time.Second)))
}
