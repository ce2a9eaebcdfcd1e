// Package effects builds the ffmpeg filter graph of one slide segment from
// its scenario: camera moves for the primary picture, overlays and text.
package effects

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/albumscript/internal/config"
	"github.com/ivlev/albumscript/internal/renderer"
	"github.com/ivlev/albumscript/internal/scenario"
)

// Effect generates the filter graph of a segment.
type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// smoothSteps is how many linear pieces approximate an eased move.
const smoothSteps = 8

// zoomSupersample renders zoomed stages larger so zoompan does not jitter.
const zoomSupersample = 2

// View is the part of the stage shown on the canvas from Time on.
type View struct {
	Time float64
	Rect scenario.Rect
}

// Stage is the still input frame of a segment and the camera moving over it.
// The primary picture stays put; its motion and scale effects become inverse
// camera moves. Coordinates are canvas units unless noted.
type Stage struct {
	Canvas  scenario.Size
	Picture *scenario.Shape
	World   scenario.Rect
	// Scale is input frame pixels per canvas unit.
	Scale  float64
	Zoom   bool
	Smooth bool
	Views  []View
}

// NewStage lays out a slide for an output outW pixels wide.
func NewStage(slide *scenario.Slide, canvas scenario.Size, outW int) (*Stage, error) {
	if canvas.W <= 0 || canvas.H <= 0 {
		return nil, fmt.Errorf("invalid canvas %vx%v", canvas.W, canvas.H)
	}
	st := &Stage{
		Canvas:  canvas,
		Picture: PrimaryPicture(slide),
		Scale:   float64(outW) / canvas.W,
	}
	v := scenario.Rect{W: canvas.W, H: canvas.H}
	st.Views = []View{{Time: 0, Rect: v}}
	world := v

	if pic := st.Picture; pic != nil {
		world = union(world, pic.Rect)
		cx, cy := pic.Rect.X+pic.Rect.W/2, pic.Rect.Y+pic.Rect.H/2
		for _, e := range slide.EffectsOf(pic.ID) {
			next := v
			switch {
			case e.Motion != "":
				dx, dy, err := ParseMotion(e.Motion)
				if err != nil {
					return nil, fmt.Errorf("slide %d: %w", slide.ID, err)
				}
				next.X -= dx * canvas.W
				next.Y -= dy * canvas.H
			case e.ScaleX > 0 && e.ScaleY > 0:
				// картинка растёт вокруг своего центра: камера сжимается вокруг него же
				fx, fy := 100/e.ScaleX, 100/e.ScaleY
				next = scenario.Rect{X: cx + (v.X-cx)*fx, Y: cy + (v.Y-cy)*fy, W: v.W * fx, H: v.H * fy}
				st.Zoom = true
			default:
				continue
			}
			st.Views = append(st.Views, View{Time: e.Delay, Rect: v}, View{Time: e.End(), Rect: next})
			st.Smooth = st.Smooth || e.SmoothEnd
			world = union(world, next)
			v = next
		}
	}

	if st.Zoom {
		world = fitAspect(world, canvas.W/canvas.H)
		st.Scale *= zoomSupersample
	}
	st.World = world
	return st, nil
}

// PrimaryPicture is the first picture with a camera effect, else the first
// picture of the slide.
func PrimaryPicture(slide *scenario.Slide) *scenario.Shape {
	var first *scenario.Shape
	for _, sh := range slide.Shapes {
		if sh.Type != scenario.ShapePicture {
			continue
		}
		if first == nil {
			first = sh
		}
		for _, e := range slide.EffectsOf(sh.ID) {
			if e.Motion != "" || e.ScaleX > 0 {
				return sh
			}
		}
	}
	return first
}

// FrameSize is the input frame size in pixels.
func (s *Stage) FrameSize() (w, h int) {
	return int(math.Round(s.World.W * s.Scale)), int(math.Round(s.World.H * s.Scale))
}

// PictureRect is where the primary picture is drawn on the input frame.
func (s *Stage) PictureRect() image.Rectangle {
	if s.Picture == nil {
		return image.Rectangle{}
	}
	r := s.pixels(s.Picture.Rect)
	return image.Rect(int(math.Round(r.X)), int(math.Round(r.Y)), int(math.Round(r.X+r.W)), int(math.Round(r.Y+r.H)))
}

func (s *Stage) pixels(r scenario.Rect) renderer.Rect {
	return renderer.Rect{
		X: (r.X - s.World.X) * s.Scale,
		Y: (r.Y - s.World.Y) * s.Scale,
		W: r.W * s.Scale,
		H: r.H * s.Scale,
	}
}

// Keyframes is the camera path in input frame pixels.
func (s *Stage) Keyframes() []renderer.Keyframe {
	kfs := make([]renderer.Keyframe, len(s.Views))
	for i, v := range s.Views {
		kfs[i] = renderer.Keyframe{Time: v.Time, Rect: s.pixels(v.Rect)}
	}
	if s.Smooth {
		kfs = renderer.Ease(kfs, smoothSteps)
	}
	return kfs
}

// ParseMotion reads the displacement of a "M x0 y0 L ... x1 y1" path, in
// canvas fractions.
func ParseMotion(path string) (dx, dy float64, err error) {
	var nums []float64
	for _, f := range strings.Fields(path) {
		if f == "M" || f == "L" {
			continue
		}
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid motion path %q", path)
		}
		nums = append(nums, n)
	}
	if len(nums) < 4 || len(nums)%2 != 0 || !strings.HasPrefix(path, "M ") {
		return 0, 0, fmt.Errorf("invalid motion path %q", path)
	}
	return nums[len(nums)-2] - nums[0], nums[len(nums)-1] - nums[1], nil
}

func union(a, b scenario.Rect) scenario.Rect {
	x0, y0 := math.Min(a.X, b.X), math.Min(a.Y, b.Y)
	x1, y1 := math.Max(a.X+a.W, b.X+b.W), math.Max(a.Y+a.H, b.Y+b.H)
	return scenario.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// fitAspect grows r around its centre to the aspect ratio w/h.
func fitAspect(r scenario.Rect, aspect float64) scenario.Rect {
	if r.W/r.H < aspect {
		w := r.H * aspect
		r.X -= (w - r.W) / 2
		r.W = w
	} else {
		h := r.W / aspect
		r.Y -= (h - r.H) / 2
		r.H = h
	}
	return r
}
