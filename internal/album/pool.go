package album

import (
	"slices"

	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	"github.com/ivlev/albumscript/internal/layout"
)

// defaultTransitions is shared by every pool until it is modified.
var defaultTransitions = func() []string {
	out := make([]string, 0, len(transitionNames))
	for _, n := range transitionNames {
		if n != backend.TransitionNone {
			out = append(out, n)
		}
	}
	return out
}()

// TransitionPool is the set of transitions new pages pick from. It reads
// through to the default list until the first ADD, REMOVE or CLEAR.
type TransitionPool struct {
	doc      *Document
	override []string
}

var poolOps = closure.NewTable("TransitionPool",
	closure.Op[*TransitionPool]{
		Name:   "ADD",
		Params: []closure.Param{closure.RequiredEnum("effect", transitions)},
		Fn: func(p *TransitionPool, a closure.Args) (closure.Outcome, error) {
			p.Add(transitionNames[a.Enum(0)])
			return closure.Stay(), nil
		},
	},
	closure.Op[*TransitionPool]{
		Name:   "REMOVE",
		Params: []closure.Param{closure.RequiredEnum("effect", transitions)},
		Fn: func(p *TransitionPool, a closure.Args) (closure.Outcome, error) {
			p.Remove(transitionNames[a.Enum(0)])
			return closure.Stay(), nil
		},
	},
	closure.Op[*TransitionPool]{
		Name: "CLEAR",
		Fn: func(p *TransitionPool, a closure.Args) (closure.Outcome, error) {
			p.Clear()
			return closure.Stay(), nil
		},
	},
)

func newTransitionPool(d *Document) *TransitionPool { return &TransitionPool{doc: d} }

func (p *TransitionPool) Kind() string          { return "TransitionPool" }
func (p *TransitionPool) Parent() closure.Scope { return p.doc }
func (p *TransitionPool) Leave() error          { return nil }

func (p *TransitionPool) Invoke(command string, params []string) (closure.Outcome, error) {
	return poolOps.Invoke(p, command, params)
}

func (p *TransitionPool) current() []string {
	if p.override != nil {
		return p.override
	}
	return defaultTransitions
}

func (p *TransitionPool) materialize() {
	if p.override == nil {
		p.override = slices.Clone(defaultTransitions)
	}
}

// Add appends name to the pool; duplicates raise its odds.
func (p *TransitionPool) Add(name string) {
	p.materialize()
	p.override = append(p.override, name)
}

// Remove drops the first occurrence of name.
func (p *TransitionPool) Remove(name string) {
	p.materialize()
	if i := slices.Index(p.override, name); i >= 0 {
		p.override = slices.Delete(p.override, i, i+1)
	}
}

// Clear empties the pool; pages then get no transition.
func (p *TransitionPool) Clear() { p.override = []string{} }

// Transitions returns a copy of the eligible set.
func (p *TransitionPool) Transitions() []string { return slices.Clone(p.current()) }

// Pick returns a uniformly random member, or "none" when the pool is empty.
func (p *TransitionPool) Pick(rnd layout.Rand) string {
	cur := p.current()
	if len(cur) == 0 {
		return backend.TransitionNone
	}
	return cur[rnd.Intn(len(cur))]
}
