// Package storyboard draws the timing of a scenario as an SVG chart: one row
// per slide, one bar per animation and a marker where the slide advances.
package storyboard

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"github.com/ivlev/albumscript/internal/scenario"
)

const (
	labelWidth = 140
	barHeight  = 14
	rowGap     = 10
	headerH    = 24
	minBar     = 2
)

// Options sets the chart scale.
type Options struct {
	PixelsPerSecond int
}

var kindColors = map[string]string{
	"Custom":     "#4e79a7",
	"GrowShrink": "#59a14f",
	"MediaPlay":  "#b07aa1",
}

// Write renders sc as SVG to w.
func Write(w io.Writer, sc *scenario.Scenario, opt Options) error {
	pps := opt.PixelsPerSecond
	if pps <= 0 {
		pps = 40
	}
	var longest float64
	height := headerH
	for _, s := range sc.Slides {
		longest = math.Max(longest, math.Max(s.Length(), latestEnd(s)))
		height += rowHeight(s)
	}
	width := labelWidth + int(math.Ceil(longest))*pps + 20

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Title(fmt.Sprintf("%s: %d slides", title(sc), len(sc.Slides)))
	canvas.Rect(0, 0, width, height, "fill:white")

	// шкала секунд
	for sec := 0; sec <= int(math.Ceil(longest)); sec++ {
		x := labelWidth + sec*pps
		canvas.Line(x, headerH-4, x, height, "stroke:#e0e0e0;stroke-width:1")
		canvas.Text(x, headerH-8, fmt.Sprintf("%ds", sec), "font-size:10px;font-family:sans-serif;text-anchor:middle;fill:#808080")
	}

	y := headerH
	for _, s := range sc.Slides {
		canvas.Group(fmt.Sprintf(`id="slide-%d"`, s.ID))
		label := fmt.Sprintf("Slide %d", s.ID)
		if t := s.Transition.Effect; t != "" {
			label += " · " + t
		}
		canvas.Text(6, y+barHeight-3, label, "font-size:11px;font-family:sans-serif;fill:#202020")

		for i, e := range s.Effects {
			by := y + i*barHeight
			x := labelWidth + int(math.Round(e.Delay*float64(pps)))
			bw := max(minBar, int(math.Round(e.Duration*float64(pps))))
			canvas.Rect(x, by+1, bw, barHeight-2, `class="bar"`, "fill:"+barColor(e)+";fill-opacity:0.85")
			canvas.Text(x+bw+4, by+barHeight-3, barLabel(s, e), "font-size:9px;font-family:sans-serif;fill:#404040")
		}

		if adv := s.Length(); adv > 0 {
			x := labelWidth + int(math.Round(adv*float64(pps)))
			canvas.Line(x, y, x, y+rowHeight(s)-rowGap, `class="advance"`, "stroke:#e15759;stroke-width:2")
		}
		canvas.Gend()
		y += rowHeight(s)
	}
	canvas.End()
	return nil
}

// WriteFile renders sc to path.
func WriteFile(path string, sc *scenario.Scenario, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, sc, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func rowHeight(s *scenario.Slide) int {
	return max(1, len(s.Effects))*barHeight + rowGap
}

func latestEnd(s *scenario.Slide) float64 {
	var end float64
	for _, e := range s.Effects {
		end = math.Max(end, e.End())
	}
	return end
}

func barColor(e *scenario.Effect) string {
	if e.Exit {
		return "#f28e2b"
	}
	if c, ok := kindColors[e.Kind]; ok {
		return c
	}
	return "#76b7b2"
}

func barLabel(s *scenario.Slide, e *scenario.Effect) string {
	name := e.Kind
	if sh := s.Shape(e.ShapeID); sh != nil {
		name = fmt.Sprintf("%s #%d %s", sh.Type, sh.ID, e.Kind)
	}
	if e.Paragraph > 0 {
		name += fmt.Sprintf(" ¶%d", e.Paragraph)
	}
	return name
}

func title(sc *scenario.Scenario) string {
	if sc.Title != "" {
		return sc.Title
	}
	return "album"
}
