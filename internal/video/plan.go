package video

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ivlev/albumscript/internal/backend"
	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/scenario"
)

// fallbackDuration is used for slides that neither advance on time nor
// animate anything.
const fallbackDuration = 4.0

// Segment is one slide rendered to its own clip.
type Segment struct {
	Slide    *scenario.Slide
	Duration float64
	// Transition and Fade describe how the segment enters over the previous
	// one. Fade is zero for cuts and for the first segment.
	Transition string
	Fade       float64
}

// AudioTrack is a music clip placed on the timeline.
type AudioTrack struct {
	Path     string
	Start    float64
	Duration float64 // 0 plays to the end of the video
}

// Plan is the timeline of the final video.
type Plan struct {
	Segments []Segment
	Audio    []AudioTrack
}

// NewPlan lays out the slides of sc at the given frame rate. Transitions
// longer than half of either neighbour are shortened.
func NewPlan(sc *scenario.Scenario, fps int, log *slog.Logger) (*Plan, error) {
	if len(sc.Slides) == 0 {
		return nil, fmt.Errorf("сценарий не содержит слайдов")
	}
	if log == nil {
		log = applog.Discard()
	}
	p := &Plan{}
	for i, s := range sc.Slides {
		d := s.Length()
		if d <= 0 {
			log.Warn("слайд без длительности", "slide", s.ID, "duration", fallbackDuration)
			d = fallbackDuration
		}
		seg := Segment{Slide: s, Duration: frames(d, fps)}
		if i > 0 && backend.RenderedTransition(s.Transition.Effect) {
			seg.Transition = s.Transition.Effect
			seg.Fade = s.Transition.Duration
			limit := math.Min(p.Segments[i-1].Duration, seg.Duration) / 2
			if seg.Fade > limit {
				log.Warn("переход уменьшен из-за короткого клипа", "slide", s.ID, "from", seg.Fade, "to", limit)
				seg.Fade = limit
			}
		}
		p.Segments = append(p.Segments, seg)
	}
	p.Audio = p.audioTracks()
	return p, nil
}

// audioTracks finds every media shape. A clip starts with its MediaPlay
// effect and stops when its slide count runs out.
func (p *Plan) audioTracks() []AudioTrack {
	starts := p.Starts()
	var out []AudioTrack
	for i, seg := range p.Segments {
		for _, sh := range seg.Slide.Shapes {
			if sh.Type != scenario.ShapeMedia || sh.Source == "" {
				continue
			}
			tr := AudioTrack{Path: sh.Source, Start: starts[i]}
			for _, e := range seg.Slide.EffectsOf(sh.ID) {
				if e.Kind == backend.MediaPlay.String() {
					tr.Start += e.Delay
					break
				}
			}
			if n := sh.StopAfterSlides; n > 0 && i+n < len(p.Segments) {
				tr.Duration = starts[i+n] - tr.Start
			}
			out = append(out, tr)
		}
	}
	return out
}

// Starts is where each segment begins in the final video.
func (p *Plan) Starts() []float64 {
	out := make([]float64, len(p.Segments))
	var elapsed float64
	for i, seg := range p.Segments {
		elapsed -= seg.Fade
		out[i] = elapsed
		elapsed += seg.Duration
	}
	return out
}

// Total is the length of the final video.
func (p *Plan) Total() float64 {
	var total float64
	for _, seg := range p.Segments {
		total += seg.Duration - seg.Fade
	}
	return total
}

// FitTo scales the timeline so the video lasts total seconds.
func (p *Plan) FitTo(total float64, fps int) {
	current := p.Total()
	if current <= 0 || total <= 0 {
		return
	}
	scale := total / current
	for i := range p.Segments {
		seg := &p.Segments[i]
		seg.Duration = frames(seg.Duration*scale, fps)
		seg.Fade *= scale
	}
	for i := range p.Audio {
		p.Audio[i].Start *= scale
		p.Audio[i].Duration *= scale
	}
}

// HasTransitions reports whether any segment blends into its predecessor.
func (p *Plan) HasTransitions() bool {
	for _, seg := range p.Segments {
		if seg.Fade > 0 {
			return true
		}
	}
	return false
}

// FilterGraph chains the segment inputs 0..n-1 and the audio inputs that
// follow them. It returns the graph and the labels to map.
func (p *Plan) FilterGraph() (graph, video, audio string) {
	var parts []string
	n := len(p.Segments)

	video = "[0:v]"
	if n > 1 && !p.HasTransitions() {
		var in strings.Builder
		for i := 0; i < n; i++ {
			fmt.Fprintf(&in, "[%d:v]", i)
		}
		parts = append(parts, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vconcat]", in.String(), n))
		video = "[vconcat]"
	} else {
		elapsed := 0.0
		for i, seg := range p.Segments {
			if i == 0 {
				elapsed = seg.Duration
				continue
			}
			out := fmt.Sprintf("[v%d]", i)
			if seg.Fade > 0 {
				// offset отсчитывается от начала уже склеенной цепочки
				parts = append(parts, fmt.Sprintf("%s[%d:v]xfade=transition=%s:duration=%s:offset=%s%s",
					video, i, seg.Transition, num(seg.Fade), num(elapsed-seg.Fade), out))
			} else {
				parts = append(parts, fmt.Sprintf("%s[%d:v]concat=n=2:v=1:a=0%s", video, i, out))
			}
			elapsed += seg.Duration - seg.Fade
			video = out
		}
	}

	var mixed []string
	for j, tr := range p.Audio {
		f := fmt.Sprintf("[%d:a]", n+j)
		if tr.Duration > 0 {
			f += fmt.Sprintf("atrim=0:%s,asetpts=PTS-STARTPTS,", num(tr.Duration))
		}
		label := fmt.Sprintf("[a%d]", j)
		f += fmt.Sprintf("adelay=%d:all=1%s", int(math.Round(tr.Start*1000)), label)
		parts = append(parts, f)
		mixed = append(mixed, label)
	}
	switch len(mixed) {
	case 0:
	case 1:
		audio = mixed[0]
	default:
		parts = append(parts, fmt.Sprintf("%samix=inputs=%d:duration=longest:normalize=0[aout]", strings.Join(mixed, ""), len(mixed)))
		audio = "[aout]"
	}
	if video == "[0:v]" {
		// единственный сегмент идёт мимо графа
		video = "0:v"
	}
	return strings.Join(parts, ";"), video, audio
}

// frames rounds seconds to whole frames, at least one.
func frames(d float64, fps int) float64 {
	if fps <= 0 {
		return d
	}
	n := math.Max(1, math.Round(d*float64(fps)))
	return n / float64(fps)
}

func num(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
