package scenario

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ivlev/albumscript/internal/backend"
)

type sizes map[string][2]float64

func (s sizes) Probe(path string) (float64, float64, error) {
	wh, ok := s[path]
	if !ok {
		return 0, 0, fmt.Errorf("no such picture %q", path)
	}
	return wh[0], wh[1], nil
}

func newTestPresentation(t *testing.T, out string) *Presentation {
	t.Helper()
	app := &App{Prober: sizes{"a.jpg": {1600, 900}}, Out: out}
	p, err := app.NewPresentation(context.Background(), backend.Options{Title: "t"})
	if err != nil {
		t.Fatalf("NewPresentation: %v", err)
	}
	return p.(*Presentation)
}

func TestSlidesAndShapes(t *testing.T) {
	p := newTestPresentation(t, "")
	if got := p.SlideSize(); got != DefaultCanvas {
		t.Fatalf("SlideSize = %v", got)
	}
	if _, err := p.AddSlide(2); err == nil {
		t.Fatal("AddSlide(2) on empty presentation must fail")
	}
	s1, _ := p.AddSlide(1)
	s2, _ := p.AddSlide(2)
	if s1.Index() != 1 || s2.Index() != 2 || p.SlideCount() != 2 {
		t.Fatalf("indexes %d %d count %d", s1.Index(), s2.Index(), p.SlideCount())
	}

	pic, err := s1.AddPicture("a.jpg", 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(backend.Rect{Left: 10, Top: 20, Width: 1600, Height: 900}, pic.Bounds()); diff != "" {
		t.Errorf("picture bounds (-want +got):\n%s", diff)
	}
	if _, err := s1.AddPicture("missing.jpg", 0, 0); err == nil {
		t.Error("expected probe error")
	}

	m, err := s2.AddMedia("song.mp3")
	if err != nil {
		t.Fatal(err)
	}
	m.SetStopAfterSlides(3)
	if got := p.Scenario().Slides[1].Shapes[0].StopAfterSlides; got != 3 {
		t.Errorf("StopAfterSlides = %d", got)
	}
	if pic.ID() == m.ID() {
		t.Error("shape IDs must be unique across slides")
	}
}

func TestTextBoxAutoSize(t *testing.T) {
	p := newTestPresentation(t, "")
	s, _ := p.AddSlide(1)
	box, _ := s.AddTextBox(backend.Rect{Width: 960, Height: 100})
	box.SetStyle(backend.TextStyle{FontSize: 20, AutoSize: true, WordWrap: true, Align: backend.AlignCenter})
	box.SetText("one")
	lines := func(n int) float64 { return float64(n)*20*LineSpacing + TextInset }
	if got := box.Bounds().Height; math.Abs(got-lines(1)) > 1e-9 {
		t.Fatalf("one line height = %v, want %v", got, lines(1))
	}
	box.AppendText("\ntwo")
	if got := box.Bounds().Height; math.Abs(got-lines(2)) > 1e-9 {
		t.Fatalf("two line height = %v", got)
	}
	if box.Style().Align != backend.AlignCenter {
		t.Fatalf("align lost: %v", box.Style())
	}

	// 96 glyphs per line at 20pt in 960 units
	if got := TextHeight(strings.Repeat("x", 200), 20, 960, true); math.Abs(got-lines(3)) > 1e-9 {
		t.Errorf("wrapped height = %v", got)
	}
	if got := TextHeight(strings.Repeat("x", 200), 20, 960, false); math.Abs(got-lines(1)) > 1e-9 {
		t.Errorf("unwrapped height = %v", got)
	}
}

func TestSequence(t *testing.T) {
	p := newTestPresentation(t, "")
	s, _ := p.AddSlide(1)
	seq := s.Sequence()
	pic, _ := s.AddPicture("a.jpg", 0, 0)
	box, _ := s.AddTextBox(backend.Rect{Width: 500})
	box.SetText("first\n\nsecond\nthird")

	txt, err := seq.AddEffect(box, backend.Fade, backend.WithPrevious, -1)
	if err != nil {
		t.Fatal(err)
	}
	img, err := seq.AddEffect(pic, backend.GrowShrink, backend.WithPrevious, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Index() != 0 || txt.Index() != 1 || seq.Count() != 2 {
		t.Fatalf("indexes img=%d txt=%d count=%d", img.Index(), txt.Index(), seq.Count())
	}
	img.SetScale(105, 105)
	img.SetKind(backend.Custom)
	img.AddMotion("M 0 0 L 0 0.5")
	if m := p.Scenario().Slides[0].Effects[0]; m.ScaleX != 0 || m.Motion != "M 0 0 L 0 0.5" || m.Kind != "Custom" {
		t.Fatalf("SetKind must reset scale: %+v", m)
	}

	txt.SetExit(true)
	txt.SetTiming(backend.Timing{Delay: time.Second, Duration: 500 * time.Millisecond})
	first, err := seq.ConvertToBuildLevel(txt, backend.ByParagraph)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Count() != 4 || first.Index() != 1 {
		t.Fatalf("count=%d first=%d", seq.Count(), first.Index())
	}
	if txt.Index() != -1 {
		t.Fatal("converted effect must be detached")
	}
	for i := 1; i < 4; i++ {
		e := seq.Item(i)
		if e.BuildLevel() != backend.ByParagraph || e.Shape().ID() != box.ID() {
			t.Fatalf("item %d: level %v shape %d", i, e.BuildLevel(), e.Shape().ID())
		}
		m := p.Scenario().Slides[0].Effects[i]
		if m.Paragraph != i || !m.Exit || m.Delay != 1 {
			t.Fatalf("item %d not copied: %+v", i, m)
		}
	}

	if _, err := seq.ConvertToTextUnit(img, backend.ByCharacter); err == nil {
		t.Error("text unit on picture must fail")
	}
	if err := img.Delete(); err != nil {
		t.Fatal(err)
	}
	if err := img.Delete(); !errors.Is(err, ErrDetached) {
		t.Fatalf("second delete = %v", err)
	}
	if seq.Count() != 3 || first.Index() != 0 {
		t.Fatalf("after delete count=%d first=%d", seq.Count(), first.Index())
	}
}

func TestTransitionAndTheme(t *testing.T) {
	p := newTestPresentation(t, "")
	s, _ := p.AddSlide(1)
	tr := backend.Transition{Effect: "wipeleft", Duration: time.Second, AdvanceOnTime: true, AdvanceAfter: 5500 * time.Millisecond}
	if err := s.SetTransition(tr); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tr, s.Transition()); diff != "" {
		t.Errorf("transition round trip (-want +got):\n%s", diff)
	}
	if err := s.SetTransition(backend.Transition{Effect: "spin"}); err == nil {
		t.Error("unknown transition accepted")
	}
	if err := p.ApplyTheme("Dark"); err != nil {
		t.Fatal(err)
	}
	if err := p.ApplyTheme("neon"); err == nil {
		t.Error("unknown theme accepted")
	}
	r, g, b, err := ParseHexColor(p.Scenario().Theme.Background)
	if err != nil || r != 0x10 || g != 0x14 || b != 0x18 {
		t.Errorf("ParseHexColor = %d %d %d %v", r, g, b, err)
	}
}

func TestFinalizeRoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "album.yaml")
	p := newTestPresentation(t, out)
	_ = p.ApplyTheme("office")
	s, _ := p.AddSlide(1)
	pic, _ := s.AddPicture("a.jpg", 0, 0)
	e, _ := s.Sequence().AddEffect(pic, backend.Custom, backend.WithPrevious, 0)
	e.AddMotion("M 0 0 L 0.3 0")
	e.SetTiming(backend.Timing{Duration: 4 * time.Second, SmoothEnd: true})
	_ = s.SetTransition(backend.Transition{Effect: "fade", Duration: time.Second, AdvanceOnTime: true, AdvanceAfter: 5 * time.Second})

	if err := p.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !p.Written() {
		t.Fatal("document not written")
	}
	got, err := ReadScenario(out)
	if err != nil {
		t.Fatalf("ReadScenario: %v", err)
	}
	if diff := cmp.Diff(p.Scenario(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.TotalDuration() != 5 {
		t.Errorf("TotalDuration = %v", got.TotalDuration())
	}
}

func TestValidateRejects(t *testing.T) {
	sc := &Scenario{
		Version: FormatVersion,
		Canvas:  Size{W: 960, H: 540},
		Slides: []*Slide{{
			ID:      1,
			Shapes:  []*Shape{{ID: 1, Type: ShapePicture, Rect: Rect{W: 10, H: 10}}},
			Effects: []*Effect{{ShapeID: 1, Kind: "Spin", Trigger: "withPrevious"}},
		}},
	}
	err := Validate(sc)
	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("Validate = %v, want *SchemaError", err)
	}
	if !strings.Contains(serr.Error(), "kind") {
		t.Errorf("expected a problem with the effect kind, got %v", serr.Problems)
	}
}

func TestTotalDurationOverlap(t *testing.T) {
	sc := &Scenario{Slides: []*Slide{
		{Transition: Transition{Effect: "fade", Duration: 1, AdvanceOnTime: true, AdvanceAfter: 5}},
		{Transition: Transition{Effect: "cut", Duration: 1, AdvanceOnTime: true, AdvanceAfter: 4}},
		{Transition: Transition{Effect: "wipeup", Duration: 1, AdvanceOnTime: true, AdvanceAfter: 6}},
	}}
	if got := sc.TotalDuration(); got != 14 {
		t.Fatalf("TotalDuration = %v, want 14", got)
	}
}
