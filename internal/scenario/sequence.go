package scenario

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ivlev/albumscript/internal/backend"
)

// ErrDetached is returned by operations on a deleted effect.
var ErrDetached = errors.New("effect is no longer part of the sequence")

type sequence struct {
	slide *slide
	// live mirrors slide.m.Effects with stable handles.
	live []*effect
}

func (q *sequence) Count() int { return len(q.live) }

func (q *sequence) Item(i int) backend.Effect {
	if i < 0 || i >= len(q.live) {
		return nil
	}
	return q.live[i]
}

func (q *sequence) insert(i int, e *effect) {
	if i < 0 || i > len(q.live) {
		i = len(q.live)
	}
	q.live = slices.Insert(q.live, i, e)
	q.slide.m.Effects = slices.Insert(q.slide.m.Effects, i, e.m)
}

func (q *sequence) remove(i int) {
	q.live = slices.Delete(q.live, i, i+1)
	q.slide.m.Effects = slices.Delete(q.slide.m.Effects, i, i+1)
}

func (q *sequence) AddEffect(sh backend.Shape, kind backend.EffectKind, trigger backend.Trigger, index int) (backend.Effect, error) {
	if sh == nil {
		return nil, fmt.Errorf("add effect: nil shape")
	}
	if _, ok := q.slide.handles[sh.ID()]; !ok {
		return nil, fmt.Errorf("add effect: shape %d is not on slide %d", sh.ID(), q.slide.Index())
	}
	if kind < backend.Appear || kind > backend.MediaPlay {
		return nil, fmt.Errorf("add effect: unknown kind %d", int(kind))
	}
	e := &effect{seq: q, m: &Effect{
		ShapeID: sh.ID(),
		Kind:    kind.String(),
		Trigger: trigger.String(),
	}}
	q.insert(index, e)
	return e, nil
}

func (q *sequence) ConvertToTextUnit(be backend.Effect, unit backend.TextUnit) (backend.Effect, error) {
	e, err := q.own(be)
	if err != nil {
		return nil, err
	}
	if q.slide.m.Shape(e.m.ShapeID).Type != ShapeTextBox {
		return nil, fmt.Errorf("text unit on non-text shape %d", e.m.ShapeID)
	}
	e.m.TextUnit = unit.String()
	return e, nil
}

// ConvertToBuildLevel replaces e with one effect per non-empty paragraph of
// its text box; an empty box still gets one.
func (q *sequence) ConvertToBuildLevel(be backend.Effect, level backend.BuildLevel) (backend.Effect, error) {
	e, err := q.own(be)
	if err != nil {
		return nil, err
	}
	sh := q.slide.m.Shape(e.m.ShapeID)
	if sh.Type != ShapeTextBox {
		return nil, fmt.Errorf("build level on non-text shape %d", e.m.ShapeID)
	}
	if level == backend.NoBuild {
		e.m.BuildLevel, e.m.Paragraph = "", 0
		return e, nil
	}

	n := 0
	for _, p := range strings.Split(sh.Text, "\n") {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	n = max(n, 1)

	at := e.Index()
	q.remove(at)
	e.seq = nil
	var first *effect
	for i := 0; i < n; i++ {
		m := *e.m
		m.BuildLevel = level.String()
		m.Paragraph = i + 1
		sub := &effect{seq: q, m: &m}
		q.insert(at+i, sub)
		if first == nil {
			first = sub
		}
	}
	return first, nil
}

func (q *sequence) own(be backend.Effect) (*effect, error) {
	e, ok := be.(*effect)
	if !ok || e.seq != q {
		return nil, ErrDetached
	}
	return e, nil
}

type effect struct {
	seq *sequence
	m   *Effect
}

// Index is the position in the sequence, -1 once deleted.
func (e *effect) Index() int {
	if e.seq == nil {
		return -1
	}
	return slices.Index(e.seq.live, e)
}

func (e *effect) Shape() backend.Shape {
	if e.seq == nil {
		return nil
	}
	return e.seq.slide.handles[e.m.ShapeID]
}

func (e *effect) Kind() backend.EffectKind {
	k, _ := backend.ParseEffectKind(e.m.Kind)
	return k
}

// SetKind changes the effect kind and drops kind-specific settings.
func (e *effect) SetKind(k backend.EffectKind) {
	e.m.Kind = k.String()
	e.m.Motion = ""
	e.m.ScaleX, e.m.ScaleY = 0, 0
}

func (e *effect) BuildLevel() backend.BuildLevel {
	if e.m.BuildLevel == backend.ByParagraph.String() {
		return backend.ByParagraph
	}
	return backend.NoBuild
}

func (e *effect) SetExit(exit bool) { e.m.Exit = exit }

func (e *effect) Timing() backend.Timing {
	return backend.Timing{Delay: duration(e.m.Delay), Duration: duration(e.m.Duration), SmoothEnd: e.m.SmoothEnd}
}

func (e *effect) SetTiming(t backend.Timing) {
	e.m.Delay = seconds(t.Delay)
	e.m.Duration = seconds(t.Duration)
	e.m.SmoothEnd = t.SmoothEnd
}

func (e *effect) AddMotion(path string) { e.m.Motion = path }

func (e *effect) SetScale(x, y float64) { e.m.ScaleX, e.m.ScaleY = x, y }

func (e *effect) Delete() error {
	i := e.Index()
	if i < 0 {
		return ErrDetached
	}
	e.seq.remove(i)
	e.seq = nil
	return nil
}
