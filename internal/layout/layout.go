// Package layout places the primary image of a page on the canvas and picks
// its motion.
package layout

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// BaseDuration is the length of every image motion that is not a long scroll.
	BaseDuration = 4 * time.Second
	// NearFitThreshold: below this overflow the image is zoomed, not scrolled.
	NearFitThreshold = 1.2
	// LongOverflow: above this overflow the scroll duration grows with it.
	LongOverflow = 2.0
	// ZoomFactor is the scale change of the Expand and Shrink motions.
	ZoomFactor = 1.05
)

// Animation is the motion applied to a primary image.
type Animation int

const (
	None Animation = iota
	Fit
	ScrollNear
	ScrollFar
	Expand
	Shrink
	ExpandOrShrink
)

var animationNames = [...]string{"None", "Fit", "ScrollNear", "ScrollFar", "Expand", "Shrink", "ExpandOrShrink"}

// AnimationNames lists the members in value order.
func AnimationNames() []string { return animationNames[:] }

func (a Animation) String() string {
	if a >= 0 && int(a) < len(animationNames) {
		return animationNames[a]
	}
	return fmt.Sprintf("Animation(%d)", int(a))
}

// Effect is the backend effect a plan needs.
type Effect int

const (
	NoEffect Effect = iota
	GrowShrink
	MotionPath
)

// Size is a width and height in canvas units.
type Size struct {
	W, H float64
}

// Rect is a placement in canvas units.
type Rect struct {
	Left, Top, Width, Height float64
}

// Rand is the random source used for automatic choices.
type Rand interface {
	Intn(n int) int
}

// Plan describes where the image goes and how it moves.
type Plan struct {
	Animation Animation
	Vertical  bool
	Overflow  float64
	Bounds    Rect
	Effect    Effect
	// Scale is the GrowShrink target in percent of the current size.
	Scale float64
	// Path is the motion path in canvas-relative units.
	Path     string
	Duration time.Duration
}

// Vertical reports whether the image is taller than the canvas relative to
// its width.
func Vertical(img, canvas Size) bool {
	return img.W/img.H < canvas.W/canvas.H
}

// Cover scales img so that it fills the canvas on the axis where it is
// relatively shorter; the other axis overflows.
func Cover(img, canvas Size) Size {
	if Vertical(img, canvas) {
		return Size{W: canvas.W, H: img.H * canvas.W / img.W}
	}
	return Size{W: img.W * canvas.H / img.H, H: canvas.H}
}

// Contain scales img so that it fits inside the canvas.
func Contain(img, canvas Size) Size {
	if Vertical(img, canvas) {
		return Size{W: img.W * canvas.H / img.H, H: canvas.H}
	}
	return Size{W: canvas.W, H: img.H * canvas.W / img.W}
}

// Overflow is the long side of the cover-fitted image over the matching
// canvas side; it is >= 1.
func Overflow(img, canvas Size) float64 {
	c := Cover(img, canvas)
	if Vertical(img, canvas) {
		return c.H / canvas.H
	}
	return c.W / canvas.W
}

// Choose picks the motion for a freshly placed image.
func Choose(img, canvas Size, rnd Rand) Animation {
	if Overflow(img, canvas) < NearFitThreshold {
		return [...]Animation{Fit, Expand, Shrink}[rnd.Intn(3)]
	}
	if Vertical(img, canvas) {
		return ScrollNear
	}
	return ScrollFar
}

// ScrollDuration stretches long scrolls so that they keep a readable pace.
func ScrollDuration(overflow float64) time.Duration {
	if overflow > LongOverflow {
		return time.Duration(float64(BaseDuration) * overflow)
	}
	return BaseDuration
}

// ScrollPath is the straight motion along the overflowing axis. The offset is
// overflow-1 canvas units, negated for a far scroll.
func ScrollPath(vertical bool, overflow float64, far bool) string {
	offset := overflow - 1
	if far {
		offset = -offset
	}
	v := strconv.FormatFloat(offset, 'f', -1, 64)
	if vertical {
		return "M 0 0 L 0 " + v
	}
	return "M 0 0 L " + v + " 0"
}

// Place computes the plan for animation a. ExpandOrShrink is resolved with rnd.
func Place(a Animation, img, canvas Size, rnd Rand) Plan {
	if a == ExpandOrShrink {
		if rnd.Intn(2) == 0 {
			a = Expand
		} else {
			a = Shrink
		}
	}

	p := Plan{
		Animation: a,
		Vertical:  Vertical(img, canvas),
		Overflow:  Overflow(img, canvas),
		Duration:  BaseDuration,
	}
	cover := Cover(img, canvas)

	switch a {
	case None:
		p.Bounds = centered(Contain(img, canvas), canvas)
	case Fit:
		p.Bounds = centered(cover, canvas)
	case Expand:
		p.Bounds = centered(cover, canvas)
		p.Effect = GrowShrink
		p.Scale = ZoomFactor * 100
	case Shrink:
		p.Bounds = scaleFromCenter(centered(cover, canvas), ZoomFactor)
		p.Effect = GrowShrink
		p.Scale = 100 / ZoomFactor
	case ScrollNear, ScrollFar:
		far := a == ScrollFar
		p.Bounds = Rect{Width: cover.W, Height: cover.H}
		if !far {
			if p.Vertical {
				p.Bounds.Top = canvas.H - cover.H
			} else {
				p.Bounds.Left = canvas.W - cover.W
			}
		}
		p.Effect = MotionPath
		p.Path = ScrollPath(p.Vertical, p.Overflow, far)
		p.Duration = ScrollDuration(p.Overflow)
	}
	return p
}

func centered(s, canvas Size) Rect {
	return Rect{Left: (canvas.W - s.W) / 2, Top: (canvas.H - s.H) / 2, Width: s.W, Height: s.H}
}

func scaleFromCenter(r Rect, ratio float64) Rect {
	r.Left -= r.Width * (ratio - 1) / 2
	r.Top -= r.Height * (ratio - 1) / 2
	r.Width *= ratio
	r.Height *= ratio
	return r
}
