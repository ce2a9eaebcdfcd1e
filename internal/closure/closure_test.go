package closure

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var (
	colors  = NewEnum("Color", "Red", "Green", "Blue")
	options = NewFlags("Options", "None", "Exit", "ByParagraph", "WithPrevious")
)

type rootScope struct {
	calls []string
	stray Scope
}

type childScope struct {
	parent Scope
	root   *rootScope
}

var rootOps = NewTable("Root",
	Op[*rootScope]{
		Name:   "Say",
		Params: []Param{Required("text", String), Optional("times", Int, "1")},
		Fn: func(s *rootScope, a Args) (Outcome, error) {
			for i := 0; i < a.Int(1); i++ {
				s.calls = append(s.calls, a.String(0))
			}
			return Stay(), nil
		},
	},
	Op[*rootScope]{
		Name: "Child",
		Fn: func(s *rootScope, a Args) (Outcome, error) {
			return Descend(newChild(s)), nil
		},
	},
	Op[*rootScope]{
		Name: "Stray",
		Fn: func(s *rootScope, a Args) (Outcome, error) {
			return Descend(s.stray), nil
		},
	},
	Op[*rootScope]{
		Name: "Paint",
		Params: []Param{
			RequiredEnum("color", colors),
			OptionalEnum("options", options, "None"),
			Optional("alpha", Float, "0.5"),
			Optional("visible", Bool, "true"),
		},
		Fn: func(s *rootScope, a Args) (Outcome, error) {
			s.calls = append(s.calls, colors.Format(a.Enum(0)), options.Format(a.Enum(1)),
				Param{Type: Float}.FormatValue(a.Float(2)), Param{Type: Bool}.FormatValue(a.Bool(3)))
			return Stay(), nil
		},
	},
)

func (s *rootScope) Kind() string  { return "Root" }
func (s *rootScope) Parent() Scope { return nil }
func (s *rootScope) Leave() error  { return nil }
func (s *rootScope) Invoke(command string, params []string) (Outcome, error) {
	return rootOps.Invoke(s, command, params)
}

func newChild(parent Scope) *childScope {
	c := &childScope{parent: parent}
	c.root, _ = Ancestor[*rootScope](c)
	return c
}

func (c *childScope) Kind() string  { return "Child" }
func (c *childScope) Parent() Scope { return c.parent }
func (c *childScope) Leave() error  { return nil }
func (c *childScope) Invoke(command string, params []string) (Outcome, error) {
	return Outcome{}, &UnknownOperationError{Scope: c.Kind(), Command: command}
}

func TestInvokeCaseInsensitive(t *testing.T) {
	r := &rootScope{}
	for _, cmd := range []string{"say", "SAY", "sAy"} {
		out, err := r.Invoke(cmd, []string{"hi"})
		if err != nil {
			t.Fatalf("Invoke(%q) failed: %v", cmd, err)
		}
		if _, ok := out.Child(); ok {
			t.Errorf("Invoke(%q): expected stay outcome", cmd)
		}
	}
	if diff := cmp.Diff([]string{"hi", "hi", "hi"}, r.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeDefaults(t *testing.T) {
	r := &rootScope{}
	if _, err := r.Invoke("Say", []string{"a", ""}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if _, err := r.Invoke("Say", []string{"b", "2"}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if _, err := r.Invoke("Paint", []string{"green"}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	want := []string{"a", "b", "b", "Green", "None", "0.5", "true"}
	if diff := cmp.Diff(want, r.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeErrors(t *testing.T) {
	r := &rootScope{}

	_, err := r.Invoke("Jump", nil)
	var uoe *UnknownOperationError
	if !errors.As(err, &uoe) || uoe.Scope != "Root" || uoe.Command != "Jump" {
		t.Fatalf("expected UnknownOperationError{Root, Jump}, got %v", err)
	}
	if diff := cmp.Diff([]string{"Child", "Paint", "Say", "Stray"}, uoe.Known); diff != "" {
		t.Errorf("Known mismatch (-want +got):\n%s", diff)
	}
	if want := `Root: unknown operation "Jump" (known: Child, Paint, Say, Stray)`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	_, err = r.Invoke("Say", []string{"a", "1", "extra"})
	var tma *TooManyArgumentsError
	if !errors.As(err, &tma) || tma.Given != 3 || tma.Max != 2 {
		t.Errorf("expected TooManyArgumentsError 3/2, got %v", err)
	}

	_, err = r.Invoke("Paint", []string{"purple"})
	var iev *InvalidEnumValueError
	if !errors.As(err, &iev) || iev.Value != "purple" || iev.Command != "Paint" || iev.Scope != "Root" {
		t.Errorf("expected InvalidEnumValueError for purple, got %v", err)
	}

	_, err = r.Invoke("Paint", nil)
	if !errors.As(err, &iev) {
		t.Errorf("expected InvalidEnumValueError for a missing required enum, got %v", err)
	}

	_, err = r.Invoke("Say", []string{"a", "many"})
	var tce *TypeCoercionError
	if !errors.As(err, &tce) || tce.Param != "times" || tce.Type != Int {
		t.Errorf("expected TypeCoercionError for times, got %v", err)
	}

	_, err = r.Invoke("Paint", []string{"red", "", "", "maybe"})
	if !errors.As(err, &tce) || tce.Type != Bool {
		t.Errorf("expected TypeCoercionError for bool, got %v", err)
	}

	if len(r.calls) != 0 {
		t.Errorf("failed invocations must not run the operation, got %v", r.calls)
	}
}

func TestDescendAndInvariant(t *testing.T) {
	r := &rootScope{}
	out, err := r.Invoke("child", nil)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	child, ok := out.Child()
	if !ok {
		t.Fatal("expected descend outcome")
	}
	if child.Parent() != Scope(r) {
		t.Error("child must be parented to the receiver")
	}
	if c := child.(*childScope); c.root != r {
		t.Error("Ancestor should resolve the root back-reference")
	}

	other := &rootScope{}
	r.stray = newChild(other)
	_, err = r.Invoke("stray", nil)
	var sie *ScopeInvariantError
	if !errors.As(err, &sie) || sie.Command != "Stray" {
		t.Errorf("expected ScopeInvariantError, got %v", err)
	}
}

func TestAncestorNotFound(t *testing.T) {
	c := newChild(&childScope{})
	_, err := Ancestor[*rootScope](c)
	var anf *AncestorNotFoundError
	if !errors.As(err, &anf) {
		t.Fatalf("expected AncestorNotFoundError, got %v", err)
	}
	if anf.From != "Child" || anf.Want != "rootScope" {
		t.Errorf("unexpected error fields: %+v", anf)
	}
}

func TestFlags(t *testing.T) {
	v, ok := options.Parse("Exit,byparagraph")
	if !ok {
		t.Fatal("expected flags to parse")
	}
	if v != 1|2 {
		t.Errorf("expected Exit|ByParagraph = 3, got %d", v)
	}
	if got := options.Format(v); got != "Exit,ByParagraph" {
		t.Errorf("Format = %q", got)
	}
	if v, _ := options.Parse("None"); v != 0 {
		t.Errorf("None should be zero, got %d", v)
	}
	if _, ok := options.Parse("Exit,Sideways"); ok {
		t.Error("unknown flag member must fail")
	}
}

func TestCoerceRoundTrip(t *testing.T) {
	tests := []struct {
		p Param
		v any
	}{
		{Required("b", Bool), true},
		{Required("b", Bool), false},
		{Required("i", Int), -42},
		{Required("i", Int), 0},
		{Required("f", Float), 3.25},
		{Required("f", Float), 1e-7},
		{Required("f", Float), math.MaxFloat64},
		{Required("s", String), "two\nlines"},
		{RequiredEnum("c", colors), 2},
		{RequiredEnum("o", options), 1 | 4},
		{RequiredEnum("o", options), 0},
	}
	for _, tt := range tests {
		s := tt.p.FormatValue(tt.v)
		got, err := tt.p.Coerce(s)
		if err != nil {
			t.Fatalf("Coerce(%q) failed: %v", s, err)
		}
		if got != tt.v {
			t.Errorf("round trip of %v via %q gave %v", tt.v, s, got)
		}
	}
}

func TestSeconds(t *testing.T) {
	a := NewArgs(1.5)
	if got := a.Seconds(0); got != 1500*time.Millisecond {
		t.Errorf("Seconds = %v", got)
	}
}

func TestPath(t *testing.T) {
	r := &rootScope{}
	c := newChild(r)
	if diff := cmp.Diff([]string{"Root", "Child"}, Path(c)); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}
}

func TestNewTablePanicsOnBadDefault(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewTable("Bad", Op[*rootScope]{Name: "x", Params: []Param{Optional("n", Int, "abc")}})
}
