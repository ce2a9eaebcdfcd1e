// Package backend declares the presentation-authoring contract the album
// interpreter drives. Calls are synchronous and every returned error is fatal
// to the run.
package backend

import (
	"context"
	"time"
)

// Size is a width and height in canvas units.
type Size struct {
	W, H float64
}

// Rect is a shape placement in canvas units.
type Rect struct {
	Left, Top, Width, Height float64
}

// Timing is the schedule of one effect relative to the slide start.
type Timing struct {
	Delay     time.Duration
	Duration  time.Duration
	SmoothEnd bool
}

// Transition holds the entry transition and the auto-advance settings of a
// slide.
type Transition struct {
	Effect        string
	Duration      time.Duration
	AdvanceOnTime bool
	AdvanceAfter  time.Duration
}

// Options configures a new presentation.
type Options struct {
	Title string
	// Canvas is the slide size. Zero means the backend default.
	Canvas Size
	// Script is the path of the script being interpreted, for provenance.
	Script string
}

// Application creates presentations.
type Application interface {
	NewPresentation(ctx context.Context, opts Options) (Presentation, error)
}

// Presentation is one document under construction.
type Presentation interface {
	SlideSize() Size
	SlideCount() int
	// AddSlide inserts a blank slide at the 1-based index.
	AddSlide(index int) (Slide, error)
	ApplyTheme(name string) error
	// Finalize is called once after the whole script has been interpreted.
	Finalize(ctx context.Context) error
}

// Slide is one page of the presentation.
type Slide interface {
	Index() int
	AddTextBox(r Rect) (TextBox, error)
	// AddPicture inserts the image at its natural size.
	AddPicture(path string, left, top float64) (Picture, error)
	AddMedia(path string) (Media, error)
	Sequence() Sequence
	Transition() Transition
	SetTransition(t Transition) error
}

// Shape is anything placed on a slide.
type Shape interface {
	ID() int
	Bounds() Rect
	SetBounds(r Rect)
}

// Align is the horizontal paragraph alignment of a text box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle is the formatting shared by all paragraphs of a text box.
type TextStyle struct {
	FontSize float64
	Bold     bool
	Shadow   bool
	Outline  bool
	Align    Align
	// AutoSize grows the box height to fit its text.
	AutoSize bool
	WordWrap bool
}

// TextBox is a shape holding rich text.
type TextBox interface {
	Shape
	Text() string
	SetText(s string)
	// AppendText adds s to the end of the text without a separator.
	AppendText(s string)
	Style() TextStyle
	SetStyle(st TextStyle)
}

// Picture is a placed image.
type Picture interface {
	Shape
	Path() string
	NaturalSize() Size
}

// Media is an audio or video clip.
type Media interface {
	Shape
	Path() string
	SetStopAfterSlides(n int)
}

// Sequence is the ordered list of effects of a slide. Indexes are 0-based.
type Sequence interface {
	// AddEffect inserts at index, or appends when index < 0.
	AddEffect(shape Shape, kind EffectKind, trigger Trigger, index int) (Effect, error)
	ConvertToTextUnit(e Effect, unit TextUnit) (Effect, error)
	// ConvertToBuildLevel replaces e by one effect per paragraph and returns
	// the first of them.
	ConvertToBuildLevel(e Effect, level BuildLevel) (Effect, error)
	Count() int
	Item(i int) Effect
}

// Effect is one animation of a shape.
type Effect interface {
	Index() int
	Shape() Shape
	Kind() EffectKind
	SetKind(k EffectKind)
	BuildLevel() BuildLevel
	SetExit(exit bool)
	Timing() Timing
	SetTiming(t Timing)
	// AddMotion attaches a motion path in canvas-relative units.
	AddMotion(path string)
	// SetScale sets the target size in percent for GrowShrink effects.
	SetScale(x, y float64)
	Delete() error
}
