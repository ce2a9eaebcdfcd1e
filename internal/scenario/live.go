package scenario

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/version"
)

// DefaultCanvas is the 16:9 slide size in points.
var DefaultCanvas = backend.Size{W: 960, H: 540}

// LineSpacing and TextInset are the text metrics of auto-sized boxes, in
// font-size multiples and canvas units.
const (
	LineSpacing   = 1.2
	TextInset     = 7.2
	avgGlyphRatio = 0.5
	mediaIconSide = 48
)

// SizeProber measures pictures.
type SizeProber interface {
	Probe(path string) (w, h float64, err error)
}

// App creates in-memory presentations.
type App struct {
	Prober SizeProber
	// Out is where Finalize writes the YAML document. Empty keeps it in memory.
	Out string
}

// NewPresentation implements backend.Application.
func (a *App) NewPresentation(ctx context.Context, opts backend.Options) (backend.Presentation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.Prober == nil {
		return nil, fmt.Errorf("scenario: no picture prober configured")
	}
	return NewPresentation(opts, a.Prober, a.Out), nil
}

// Presentation is the live, mutable view of a Scenario.
type Presentation struct {
	doc     *Scenario
	prober  SizeProber
	out     string
	nextID  int
	slides  []*slide
	written bool
}

// NewPresentation starts an empty document.
func NewPresentation(opts backend.Options, prober SizeProber, out string) *Presentation {
	canvas := opts.Canvas
	if canvas.W <= 0 || canvas.H <= 0 {
		canvas = DefaultCanvas
	}
	return &Presentation{
		doc: &Scenario{
			Version:   FormatVersion,
			Generator: "albumscript " + version.Version,
			Title:     opts.Title,
			Script:    opts.Script,
			Canvas:    Size{W: canvas.W, H: canvas.H},
		},
		prober: prober,
		out:    out,
	}
}

// Scenario exposes the model built so far.
func (p *Presentation) Scenario() *Scenario { return p.doc }

// Written reports whether Finalize has stored the document.
func (p *Presentation) Written() bool { return p.written }

func (p *Presentation) SlideSize() backend.Size {
	return backend.Size{W: p.doc.Canvas.W, H: p.doc.Canvas.H}
}

func (p *Presentation) SlideCount() int { return len(p.slides) }

func (p *Presentation) AddSlide(index int) (backend.Slide, error) {
	if index < 1 || index > len(p.slides)+1 {
		return nil, fmt.Errorf("slide index %d out of range 1..%d", index, len(p.slides)+1)
	}
	m := &Slide{ID: len(p.slides) + 1, Shapes: []*Shape{}, Effects: []*Effect{}}
	s := &slide{pres: p, m: m, handles: map[int]backend.Shape{}}
	s.seq = &sequence{slide: s}
	p.slides = slices.Insert(p.slides, index-1, s)
	p.doc.Slides = slices.Insert(p.doc.Slides, index-1, m)
	return s, nil
}

func (p *Presentation) ApplyTheme(name string) error {
	t, err := LookupTheme(name)
	if err != nil {
		return err
	}
	p.doc.Theme = &t
	return nil
}

// Finalize validates the document and writes it when an output path is set.
func (p *Presentation) Finalize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Validate(p.doc); err != nil {
		return err
	}
	if p.out == "" {
		return nil
	}
	if err := WriteScenario(p.doc, p.out); err != nil {
		return err
	}
	p.written = true
	return nil
}

func (p *Presentation) newShapeID() int {
	p.nextID++
	return p.nextID
}

type slide struct {
	pres *Presentation
	m    *Slide
	seq  *sequence
	// handles keeps the typed wrapper of every shape for Effect.Shape.
	handles map[int]backend.Shape
}

func (s *slide) Index() int {
	return slices.Index(s.pres.slides, s) + 1
}

func (s *slide) add(m *Shape, h func(*shape) backend.Shape) backend.Shape {
	sh := &shape{slide: s, m: m}
	s.m.Shapes = append(s.m.Shapes, m)
	handle := h(sh)
	s.handles[m.ID] = handle
	return handle
}

func (s *slide) AddTextBox(r backend.Rect) (backend.TextBox, error) {
	m := &Shape{
		ID:    s.pres.newShapeID(),
		Type:  ShapeTextBox,
		Rect:  Rect{X: r.Left, Y: r.Top, W: r.Width, H: r.Height},
		Style: &TextStyle{FontSize: 18, Align: alignName(backend.AlignLeft)},
	}
	return s.add(m, func(sh *shape) backend.Shape { return &textBox{sh} }).(backend.TextBox), nil
}

func (s *slide) AddPicture(path string, left, top float64) (backend.Picture, error) {
	w, h, err := s.pres.prober.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("picture %s has no size", path)
	}
	m := &Shape{
		ID:      s.pres.newShapeID(),
		Type:    ShapePicture,
		Rect:    Rect{X: left, Y: top, W: w, H: h},
		Source:  path,
		Natural: &Size{W: w, H: h},
	}
	return s.add(m, func(sh *shape) backend.Shape { return &picture{sh} }).(backend.Picture), nil
}

func (s *slide) AddMedia(path string) (backend.Media, error) {
	if path == "" {
		return nil, fmt.Errorf("media path is empty")
	}
	m := &Shape{
		ID:     s.pres.newShapeID(),
		Type:   ShapeMedia,
		Rect:   Rect{W: mediaIconSide, H: mediaIconSide},
		Source: path,
	}
	return s.add(m, func(sh *shape) backend.Shape { return &media{sh} }).(backend.Media), nil
}

func (s *slide) Sequence() backend.Sequence { return s.seq }

func (s *slide) Transition() backend.Transition {
	t := s.m.Transition
	return backend.Transition{
		Effect:        t.Effect,
		Duration:      duration(t.Duration),
		AdvanceOnTime: t.AdvanceOnTime,
		AdvanceAfter:  duration(t.AdvanceAfter),
	}
}

func (s *slide) SetTransition(t backend.Transition) error {
	if t.Effect != "" && !slices.Contains(backend.Transitions(), t.Effect) {
		return fmt.Errorf("unknown transition %q", t.Effect)
	}
	if t.Duration < 0 || t.AdvanceAfter < 0 {
		return fmt.Errorf("negative transition timing")
	}
	s.m.Transition = Transition{
		Effect:        t.Effect,
		Duration:      seconds(t.Duration),
		AdvanceOnTime: t.AdvanceOnTime,
		AdvanceAfter:  seconds(t.AdvanceAfter),
	}
	return nil
}

type shape struct {
	slide *slide
	m     *Shape
}

func (s *shape) ID() int { return s.m.ID }

func (s *shape) Bounds() backend.Rect {
	r := s.m.Rect
	return backend.Rect{Left: r.X, Top: r.Y, Width: r.W, Height: r.H}
}

func (s *shape) SetBounds(r backend.Rect) {
	s.m.Rect = Rect{X: r.Left, Y: r.Top, W: r.Width, H: r.Height}
}

type picture struct{ *shape }

func (p *picture) Path() string { return p.m.Source }

func (p *picture) NaturalSize() backend.Size {
	return backend.Size{W: p.m.Natural.W, H: p.m.Natural.H}
}

type media struct{ *shape }

func (m *media) Path() string             { return m.m.Source }
func (m *media) SetStopAfterSlides(n int) { m.m.StopAfterSlides = n }

type textBox struct{ *shape }

func (t *textBox) Text() string { return t.m.Text }

func (t *textBox) SetText(s string) {
	t.m.Text = s
	t.fit()
}

func (t *textBox) AppendText(s string) {
	t.m.Text += s
	t.fit()
}

func (t *textBox) Style() backend.TextStyle {
	st := t.m.Style
	return backend.TextStyle{
		FontSize: st.FontSize,
		Bold:     st.Bold,
		Shadow:   st.Shadow,
		Outline:  st.Outline,
		Align:    parseAlign(st.Align),
		AutoSize: st.AutoSize,
		WordWrap: st.WordWrap,
	}
}

func (t *textBox) SetStyle(st backend.TextStyle) {
	t.m.Style = &TextStyle{
		FontSize: st.FontSize,
		Bold:     st.Bold,
		Shadow:   st.Shadow,
		Outline:  st.Outline,
		Align:    alignName(st.Align),
		AutoSize: st.AutoSize,
		WordWrap: st.WordWrap,
	}
	t.fit()
}

// fit grows or shrinks an auto-sized box to its estimated text height.
func (t *textBox) fit() {
	if !t.m.Style.AutoSize {
		return
	}
	t.m.Rect.H = TextHeight(t.m.Text, t.m.Style.FontSize, t.m.Rect.W, t.m.Style.WordWrap)
}

// TextHeight estimates the height of text set at fontSize in a box of the
// given width.
func TextHeight(text string, fontSize, width float64, wrap bool) float64 {
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		n := 1
		if wrap && width > 0 {
			perLine := max(1, int(math.Floor(width/(avgGlyphRatio*fontSize))))
			n = max(1, (utf8.RuneCountInString(para)+perLine-1)/perLine)
		}
		lines += n
	}
	return float64(lines)*fontSize*LineSpacing + TextInset
}

func alignName(a backend.Align) string {
	switch a {
	case backend.AlignCenter:
		return "center"
	case backend.AlignRight:
		return "right"
	default:
		return "left"
	}
}

func parseAlign(s string) backend.Align {
	switch s {
	case "center":
		return backend.AlignCenter
	case "right":
		return backend.AlignRight
	default:
		return backend.AlignLeft
	}
}
