// Package scenario is the default presentation backend: an in-memory slide
// model that is written out as a YAML scenario once the script is done.
package scenario

import (
	"math"
	"time"

	"github.com/ivlev/albumscript/internal/backend"
)

// FormatVersion is written to every scenario document.
const FormatVersion = "2.0"

// Scenario represents a complete album ready for rendering
type Scenario struct {
	Version   string   `yaml:"version" json:"version"`
	Generator string   `yaml:"generator,omitempty" json:"generator,omitempty"`
	Title     string   `yaml:"title,omitempty" json:"title,omitempty"`
	Script    string   `yaml:"script,omitempty" json:"script,omitempty"`
	Theme     *Theme   `yaml:"theme,omitempty" json:"theme,omitempty"`
	Canvas    Size     `yaml:"canvas" json:"canvas"`
	Slides    []*Slide `yaml:"slides" json:"slides"`
}

// Size is a width and height in canvas units
type Size struct {
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Rect represents a shape placement
type Rect struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	W float64 `yaml:"w" json:"w"`
	H float64 `yaml:"h" json:"h"`
}

// Transition is the entry transition and auto-advance of a slide.
type Transition struct {
	Effect        string  `yaml:"effect" json:"effect"`
	Duration      float64 `yaml:"duration" json:"duration"` // seconds
	AdvanceOnTime bool    `yaml:"advance_on_time" json:"advance_on_time"`
	AdvanceAfter  float64 `yaml:"advance_after" json:"advance_after"` // seconds
}

// Slide represents a single page with its shapes and animation sequence
type Slide struct {
	ID         int        `yaml:"id" json:"id"`
	Transition Transition `yaml:"transition" json:"transition"`
	Shapes     []*Shape   `yaml:"shapes" json:"shapes"`
	Effects    []*Effect  `yaml:"effects" json:"effects"`
}

// Shape types.
const (
	ShapePicture = "picture"
	ShapeTextBox = "textbox"
	ShapeMedia   = "media"
)

// Shape is a picture, text box or media clip placed on a slide.
type Shape struct {
	ID   int    `yaml:"id" json:"id"`
	Type string `yaml:"type" json:"type"`
	Rect Rect   `yaml:"rect" json:"rect"`

	Source  string `yaml:"source,omitempty" json:"source,omitempty"`
	Natural *Size  `yaml:"natural,omitempty" json:"natural,omitempty"`

	Text  string     `yaml:"text,omitempty" json:"text,omitempty"`
	Style *TextStyle `yaml:"style,omitempty" json:"style,omitempty"`

	StopAfterSlides int `yaml:"stop_after_slides,omitempty" json:"stop_after_slides,omitempty"`
}

// TextStyle is the formatting of a text box.
type TextStyle struct {
	FontSize float64 `yaml:"font_size" json:"font_size"`
	Bold     bool    `yaml:"bold,omitempty" json:"bold,omitempty"`
	Shadow   bool    `yaml:"shadow,omitempty" json:"shadow,omitempty"`
	Outline  bool    `yaml:"outline,omitempty" json:"outline,omitempty"`
	Align    string  `yaml:"align" json:"align"`
	AutoSize bool    `yaml:"auto_size,omitempty" json:"auto_size,omitempty"`
	WordWrap bool    `yaml:"word_wrap,omitempty" json:"word_wrap,omitempty"`
}

// Effect is one entry of a slide's animation sequence. Delay is measured
// from the slide start.
type Effect struct {
	ShapeID    int     `yaml:"shape" json:"shape"`
	Kind       string  `yaml:"kind" json:"kind"`
	Exit       bool    `yaml:"exit,omitempty" json:"exit,omitempty"`
	Trigger    string  `yaml:"trigger" json:"trigger"`
	Delay      float64 `yaml:"delay" json:"delay"`       // seconds
	Duration   float64 `yaml:"duration" json:"duration"` // seconds
	SmoothEnd  bool    `yaml:"smooth_end,omitempty" json:"smooth_end,omitempty"`
	BuildLevel string  `yaml:"build_level,omitempty" json:"build_level,omitempty"`
	TextUnit   string  `yaml:"text_unit,omitempty" json:"text_unit,omitempty"`
	// Paragraph is the 1-based paragraph a build-level effect animates.
	Paragraph int     `yaml:"paragraph,omitempty" json:"paragraph,omitempty"`
	Motion    string  `yaml:"motion,omitempty" json:"motion,omitempty"`
	ScaleX    float64 `yaml:"scale_x,omitempty" json:"scale_x,omitempty"`
	ScaleY    float64 `yaml:"scale_y,omitempty" json:"scale_y,omitempty"`
}

// End is the time the effect finishes, in seconds from the slide start.
func (e *Effect) End() float64 { return e.Delay + e.Duration }

// Shape finds a shape of the slide by ID.
func (s *Slide) Shape(id int) *Shape {
	for _, sh := range s.Shapes {
		if sh.ID == id {
			return sh
		}
	}
	return nil
}

// EffectsOf lists the effects animating shape id, in sequence order.
func (s *Slide) EffectsOf(id int) []*Effect {
	var out []*Effect
	for _, e := range s.Effects {
		if e.ShapeID == id {
			out = append(out, e)
		}
	}
	return out
}

// Length is how long the slide is shown: the advance time when set, else
// the end of its last effect.
func (s *Slide) Length() float64 {
	if s.Transition.AdvanceOnTime && s.Transition.AdvanceAfter > 0 {
		return s.Transition.AdvanceAfter
	}
	var end float64
	for _, e := range s.Effects {
		end = math.Max(end, e.End())
	}
	return end
}

// TotalDuration sums slide lengths minus the transition overlaps.
func (sc *Scenario) TotalDuration() float64 {
	var total float64
	for i, s := range sc.Slides {
		total += s.Length()
		if i > 0 {
			total -= OverlapOf(s)
		}
	}
	return total
}

// OverlapOf is the part of a slide's entry transition that overlaps the
// previous slide.
func OverlapOf(s *Slide) float64 {
	if !backend.RenderedTransition(s.Transition.Effect) {
		return 0
	}
	return s.Transition.Duration
}

func seconds(d time.Duration) float64 { return d.Seconds() }

func duration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
