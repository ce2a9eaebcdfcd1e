package album

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	"github.com/ivlev/albumscript/internal/layout"
	"github.com/ivlev/albumscript/internal/qr"
	"github.com/ivlev/albumscript/internal/timing"
	"github.com/skip2/go-qrcode"
)

const (
	// DefaultPersist is how long a page stays after its last animation.
	DefaultPersist = time.Second
	// TextAnimationDuration is the length of every ANIMATION effect.
	TextAnimationDuration = 500 * time.Millisecond

	captionFontSize  = 24
	subtitleFontSize = 20
	debugFontSize    = 9
	qrMarginRatio    = 0.02
)

// Page is the scope of one slide.
type Page struct {
	doc   *Document
	slide backend.Slide
	log   *slog.Logger

	image         backend.Picture
	imageEffect   backend.Effect
	imageDuration time.Duration
	caption       backend.TextBox

	persist  time.Duration
	timeline timing.Timeline
	texts    []*Text
	qrCount  int
}

var pageOps = closure.NewTable("Page",
	closure.Op[*Page]{
		Name:   "TEXT",
		Params: []closure.Param{closure.Optional("text", closure.String, "")},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			t, err := p.AddText(a.String(0))
			if err != nil {
				return closure.Outcome{}, err
			}
			return closure.Descend(t), nil
		},
	},
	closure.Op[*Page]{
		Name:   "SUBTITLE2",
		Params: []closure.Param{closure.Optional("text", closure.String, "")},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			t, err := p.AddText(a.String(0))
			if err != nil {
				return closure.Outcome{}, err
			}
			t.SetFontSize(subtitleFontSize)
			t.Bottom(0)
			return closure.Descend(t), nil
		},
	},
	closure.Op[*Page]{
		Name:   "PERSIST",
		Params: []closure.Param{closure.Required("seconds", closure.Float)},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			d := a.Seconds(0)
			if d < 0 {
				return closure.Outcome{}, fmt.Errorf("persist %v is negative", d)
			}
			p.persist = d
			return closure.Stay(), nil
		},
	},
	closure.Op[*Page]{
		Name:   "TRANSITION",
		Params: []closure.Param{closure.OptionalEnum("effect", transitions, backend.TransitionNone)},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			return closure.Stay(), p.SetTransition(transitionNames[a.Enum(0)])
		},
	},
	closure.Op[*Page]{
		Name:   "IMAGEANIMATION",
		Params: []closure.Param{closure.RequiredEnum("kind", imageAnimations)},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			return closure.Stay(), p.SetImageAnimation(layout.Animation(a.Enum(0)))
		},
	},
	closure.Op[*Page]{
		Name: "MUSIC",
		Params: []closure.Param{
			closure.Optional("path", closure.String, ""),
			closure.Optional("stopAfterSlides", closure.Int, "999"),
		},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			return closure.Stay(), p.AddMusic(a.String(0), a.Int(1))
		},
	},
	closure.Op[*Page]{
		Name: "QRCODE",
		Params: []closure.Param{
			closure.Required("content", closure.String),
			closure.Optional("size", closure.Float, "0.2"),
		},
		Fn: func(p *Page, a closure.Args) (closure.Outcome, error) {
			return closure.Stay(), p.AddQRCode(a.String(0), a.Float(1))
		},
	},
)

func newPage(d *Document, slide backend.Slide) *Page {
	return &Page{
		doc:           d,
		slide:         slide,
		log:           d.log.With(slog.Int("slide", slide.Index())),
		imageDuration: layout.BaseDuration,
		persist:       DefaultPersist,
	}
}

func (p *Page) init(image, caption string) error {
	t := p.slide.Transition()
	t.Effect = p.doc.pool.Pick(p.doc.rnd)
	t.Duration = TransitionDuration
	if err := p.slide.SetTransition(t); err != nil {
		return fmt.Errorf("set transition: %w", err)
	}

	if image != "" {
		pic, err := p.slide.AddPicture(image, 0, 0)
		if err != nil {
			return fmt.Errorf("add picture %s: %w", image, err)
		}
		p.image = pic
		kind := layout.Choose(layout.Size(pic.NaturalSize()), layout.Size(p.doc.canvas), p.doc.rnd)
		if err := p.applyImageAnimation(kind); err != nil {
			return err
		}
		if p.doc.debug {
			if err := p.addDebugLabel(image); err != nil {
				return err
			}
		}
	}

	if caption != "" {
		box, err := p.createTextBox(caption, 0)
		if err != nil {
			return err
		}
		b := box.Bounds()
		b.Top = p.doc.canvas.H - b.Height
		box.SetBounds(b)
		p.caption = box
	}
	p.log.Debug("page opened", slog.String("image", image), slog.String("transition", t.Effect))
	return nil
}

func (p *Page) Kind() string          { return "Page" }
func (p *Page) Parent() closure.Scope { return p.doc }

func (p *Page) Invoke(command string, params []string) (closure.Outcome, error) {
	return pageOps.Invoke(p, command, params)
}

// Leave schedules the automatic advance once every animation and the image
// motion have finished, plus the persist time.
func (p *Page) Leave() error {
	t := p.slide.Transition()
	t.AdvanceOnTime = true
	t.AdvanceAfter = max(p.imageDuration, p.timeline.LatestEnd()) + p.persist
	if err := p.slide.SetTransition(t); err != nil {
		return fmt.Errorf("page %d: set advance: %w", p.slide.Index(), err)
	}
	p.log.Debug("page closed", slog.Duration("advance_after", t.AdvanceAfter), slog.Int("animations", p.timeline.Len()))
	return nil
}

func (p *Page) Slide() backend.Slide             { return p.slide }
func (p *Page) Image() backend.Picture           { return p.image }
func (p *Page) Caption() backend.TextBox         { return p.caption }
func (p *Page) ImageDuration() time.Duration     { return p.imageDuration }
func (p *Page) Persist() time.Duration           { return p.persist }
func (p *Page) Timeline() []timing.AnimationInfo { return p.timeline.Items() }

// SetTransition overrides the randomly picked entry transition.
func (p *Page) SetTransition(effect string) error {
	t := p.slide.Transition()
	t.Effect = effect
	return p.slide.SetTransition(t)
}

// SetImageAnimation re-places the primary image. Pages without an image
// ignore it.
func (p *Page) SetImageAnimation(kind layout.Animation) error {
	if p.image == nil {
		p.log.Debug("IMAGEANIMATION ignored: page has no image")
		return nil
	}
	return p.applyImageAnimation(kind)
}

func (p *Page) applyImageAnimation(kind layout.Animation) error {
	plan := layout.Place(kind, layout.Size(p.image.NaturalSize()), layout.Size(p.doc.canvas), p.doc.rnd)
	p.image.SetBounds(backend.Rect(plan.Bounds))
	p.imageDuration = plan.Duration

	var (
		e   backend.Effect
		err error
	)
	switch plan.Effect {
	case layout.NoEffect:
		if p.imageEffect != nil {
			err = p.imageEffect.Delete()
			p.imageEffect = nil
		}
		return err
	case layout.GrowShrink:
		if e, err = p.substituteImageEffect(backend.GrowShrink); err != nil {
			return err
		}
		e.SetScale(plan.Scale, plan.Scale)
	case layout.MotionPath:
		if e, err = p.substituteImageEffect(backend.Custom); err != nil {
			return err
		}
		e.AddMotion(plan.Path)
	}
	e.SetTiming(backend.Timing{Duration: p.imageDuration, SmoothEnd: true})
	p.log.Debug("image placed", slog.String("animation", plan.Animation.String()), slog.Float64("overflow", plan.Overflow))
	return nil
}

// substituteImageEffect reuses the image effect, or creates it as the first
// effect of the slide.
func (p *Page) substituteImageEffect(kind backend.EffectKind) (backend.Effect, error) {
	if p.imageEffect != nil {
		p.imageEffect.SetKind(kind)
		return p.imageEffect, nil
	}
	e, err := p.slide.Sequence().AddEffect(p.image, kind, backend.WithPrevious, 0)
	if err != nil {
		return nil, fmt.Errorf("image effect: %w", err)
	}
	p.imageEffect = e
	return e, nil
}

func (p *Page) addDebugLabel(path string) error {
	box, err := p.slide.AddTextBox(backend.Rect{Width: 50, Height: 50})
	if err != nil {
		return fmt.Errorf("debug label: %w", err)
	}
	box.SetStyle(backend.TextStyle{FontSize: debugFontSize, AutoSize: true})
	box.SetText(path)
	return nil
}

// createTextBox adds a full-width caption-styled box at top y.
func (p *Page) createTextBox(text string, y float64) (backend.TextBox, error) {
	box, err := p.slide.AddTextBox(backend.Rect{Top: y, Width: p.doc.canvas.W, Height: 100})
	if err != nil {
		return nil, fmt.Errorf("add text box: %w", err)
	}
	box.SetStyle(backend.TextStyle{
		FontSize: captionFontSize,
		Bold:     true,
		Shadow:   true,
		Outline:  true,
		Align:    backend.AlignCenter,
		AutoSize: true,
		WordWrap: true,
	})
	box.SetText(text)
	return box, nil
}

// AddText adds a text box at the top of the slide and returns its scope.
func (p *Page) AddText(text string) (*Text, error) {
	box, err := p.createTextBox(text, 0)
	if err != nil {
		return nil, err
	}
	t, err := newText(p, box)
	if err != nil {
		return nil, err
	}
	p.texts = append(p.texts, t)
	return t, nil
}

// AddAnimation registers an effect of length dur on shape, delay after the
// point it chains from.
func (p *Page) AddAnimation(shape backend.Shape, kind backend.EffectKind, delay, dur time.Duration, opts Options) (timing.AnimationInfo, error) {
	seq := p.slide.Sequence()
	e, err := seq.AddEffect(shape, kind, backend.WithPrevious, -1)
	if err != nil {
		return timing.AnimationInfo{}, fmt.Errorf("add effect: %w", err)
	}
	e.SetExit(opts.Has(Exit))

	mode := timing.Sequential
	if opts.Has(WithPrevious) {
		mode = timing.Concurrent
	}
	info := p.timeline.Schedule(mode, delay, dur)
	e.SetTiming(backend.Timing{Delay: info.StartAt, Duration: info.Duration})

	if opts.Has(ByCharacter) {
		if e, err = seq.ConvertToTextUnit(e, backend.ByCharacter); err != nil {
			return timing.AnimationInfo{}, fmt.Errorf("by character: %w", err)
		}
	}
	if opts.Has(ByParagraph) {
		first, err := seq.ConvertToBuildLevel(e, backend.ByParagraph)
		if err != nil {
			return timing.AnimationInfo{}, fmt.Errorf("by paragraph: %w", err)
		}
		var run []backend.Effect
		for i := first.Index(); i < seq.Count(); i++ {
			it := seq.Item(i)
			if it.Shape().ID() != shape.ID() || it.BuildLevel() != backend.ByParagraph {
				break
			}
			run = append(run, it)
		}
		if len(run) == 0 {
			return timing.AnimationInfo{}, errors.New("by paragraph: no paragraph effects")
		}
		for i, sub := range timing.Distribute(info.StartAt, dur, len(run)) {
			run[i].SetTiming(backend.Timing{Delay: sub.StartAt, Duration: sub.Duration})
		}
		info.Duration = timing.Span(dur, len(run))
	}

	p.timeline.Append(info)
	return *info, nil
}

// AddMusic plays path from this slide on, stopping after stopAfter slides.
func (p *Page) AddMusic(path string, stopAfter int) error {
	if stopAfter < 0 {
		return fmt.Errorf("stop after %d slides: must not be negative", stopAfter)
	}
	if path == "" {
		p.log.Warn("MUSIC without a path ignored")
		return nil
	}
	m, err := p.slide.AddMedia(p.doc.Resolve(path))
	if err != nil {
		return fmt.Errorf("add media %s: %w", path, err)
	}
	if _, err := p.slide.Sequence().AddEffect(m, backend.MediaPlay, backend.WithPrevious, -1); err != nil {
		return fmt.Errorf("media effect: %w", err)
	}
	b := m.Bounds()
	b.Left, b.Top = -b.Width, -b.Height
	m.SetBounds(b)
	m.SetStopAfterSlides(stopAfter)
	return nil
}

// AddQRCode renders content as a QR code picture in the bottom-right corner.
// size is the side as a fraction of the canvas height.
func (p *Page) AddQRCode(content string, size float64) error {
	if size <= 0 || size > 1 {
		return fmt.Errorf("qr code size %v out of range (0, 1]", size)
	}
	canvas := p.doc.canvas
	side := size * canvas.H
	margin := qrMarginRatio * canvas.H

	p.qrCount++
	path := p.doc.assetPath(fmt.Sprintf("qr-%d-%d.png", p.slide.Index(), p.qrCount))
	if err := qr.WriteFile(content, int(side), qrcode.Medium, path); err != nil {
		return err
	}
	pic, err := p.slide.AddPicture(path, 0, 0)
	if err != nil {
		return fmt.Errorf("add qr picture: %w", err)
	}
	pic.SetBounds(backend.Rect{Left: canvas.W - side - margin, Top: canvas.H - side - margin, Width: side, Height: side})
	return nil
}
