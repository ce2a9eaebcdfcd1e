package effects

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ivlev/albumscript/internal/config"
	"github.com/ivlev/albumscript/internal/renderer"
	"github.com/ivlev/albumscript/internal/scenario"
)

// Overlay is a secondary picture drawn fixed on the canvas.
type Overlay struct {
	Path string
	Rect scenario.Rect
}

// SlideEffect renders one scenario slide. Input 0 is the stage frame, inputs
// 1.. are the overlays in order. The graph ends in [out].
type SlideEffect struct {
	Stage    *Stage
	Slide    *scenario.Slide
	Theme    *scenario.Theme
	Overlays []Overlay
	// TextDir holds the drawtext text files written by Prepare.
	TextDir string
	// DrawText is false when ffmpeg lacks the drawtext filter.
	DrawText bool
}

// Prepare writes one text file per drawn line.
func (e *SlideEffect) Prepare() error {
	if !e.DrawText {
		return nil
	}
	for _, sh := range e.textShapes() {
		for i, line := range strings.Split(sh.Text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := os.WriteFile(e.textFile(sh.ID, i), []byte(line), 0644); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *SlideEffect) textFile(shapeID, line int) string {
	return filepath.Join(e.TextDir, fmt.Sprintf("s%d-%d-%d.txt", e.Slide.ID, shapeID, line))
}

func (e *SlideEffect) textShapes() []*scenario.Shape {
	var out []*scenario.Shape
	for _, sh := range e.Slide.Shapes {
		if sh.Type == scenario.ShapeTextBox && sh.Text != "" {
			out = append(out, sh)
		}
	}
	return out
}

// GenerateFilter returns the -filter_complex graph of the segment.
func (e *SlideEffect) GenerateFilter(p config.SegmentParams) string {
	st := e.Stage
	fw, fh := st.FrameSize()
	kfs := st.Keyframes()

	var camera string
	if st.Zoom {
		camera = renderer.GenerateZoomPanFilter(kfs, p.Duration, p.FPS, fw, p.Width, p.Height)
	} else {
		cw, ch := round(st.Canvas.W*st.Scale), round(st.Canvas.H*st.Scale)
		camera = renderer.GeneratePanFilter(kfs, p.Duration, p.FPS, fw, fh, cw, ch)
	}

	var graph []string
	graph = append(graph, fmt.Sprintf("[0:v]%s,scale=%d:%d,setsar=1[bg]", camera, p.Width, p.Height))
	cur := "[bg]"

	k := float64(p.Width) / st.Canvas.W
	for i, o := range e.Overlays {
		in, scaled, out := fmt.Sprintf("[%d:v]", i+1), fmt.Sprintf("[o%d]", i+1), fmt.Sprintf("[v%d]", i+1)
		graph = append(graph,
			fmt.Sprintf("%sscale=%d:%d%s", in, even(o.Rect.W*k), even(o.Rect.H*k), scaled),
			fmt.Sprintf("%s%soverlay=x=%d:y=%d%s", cur, scaled, round(o.Rect.X*k), round(o.Rect.Y*k), out),
		)
		cur = out
	}

	var draws []string
	if e.DrawText {
		for _, sh := range e.textShapes() {
			draws = append(draws, e.drawShape(sh, k)...)
		}
		if p.Debug {
			draws = append(draws, fmt.Sprintf("drawtext=text='Slide %d':x=10:y=10:fontsize=24:fontcolor=yellow:box=1:boxcolor=black@0.5", p.PageIndex+1))
		}
	}
	draws = append(draws, "format=yuv420p")
	graph = append(graph, cur+strings.Join(draws, ",")+"[out]")
	return strings.Join(graph, ";")
}

// drawShape draws every line of a text box separately so build-by-paragraph
// effects can fade lines on their own.
func (e *SlideEffect) drawShape(sh *scenario.Shape, k float64) []string {
	style := scenario.TextStyle{FontSize: 18, Align: "left"}
	if sh.Style != nil {
		style = *sh.Style
	}
	fs := style.FontSize * k
	inset := scenario.TextInset / 2 * k
	left := sh.Rect.X*k + inset
	inner := sh.Rect.W*k - 2*inset
	effects := e.Slide.EffectsOf(sh.ID)

	var out []string
	paragraph := 0
	for i, line := range strings.Split(sh.Text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		paragraph++
		y := sh.Rect.Y*k + inset + float64(i)*fs*scenario.LineSpacing

		var x string
		switch style.Align {
		case "center":
			x = fmt.Sprintf("%.2f+(%.2f-text_w)/2", left, inner)
		case "right":
			x = fmt.Sprintf("%.2f+%.2f-text_w", left, inner)
		default:
			x = fmt.Sprintf("%.2f", left)
		}

		opts := []string{
			fmt.Sprintf("textfile='%s'", e.textFile(sh.ID, i)),
			"expansion=none",
			fmt.Sprintf("fontsize=%.2f", fs),
			"fontcolor=" + e.color(func(t *scenario.Theme) string { return t.Foreground }, "white"),
			fmt.Sprintf("x='%s'", x),
			fmt.Sprintf("y=%.2f", y),
		}
		if e.Theme != nil && e.Theme.Font != "" {
			opts = append(opts, "font='"+e.Theme.Font+"'")
		}
		if style.Outline {
			opts = append(opts, "borderw=2", "bordercolor="+e.color(func(t *scenario.Theme) string { return t.Outline }, "black"))
		}
		if style.Shadow {
			opts = append(opts, "shadowx=2", "shadowy=2", "shadowcolor=black@0.6")
		}
		if pts := AlphaPoints(effects, paragraph); len(pts) > 0 {
			opts = append(opts, fmt.Sprintf("alpha='%s'", renderer.Alpha(pts)))
		}
		out = append(out, "drawtext="+strings.Join(opts, ":"))
	}
	return out
}

func (e *SlideEffect) color(pick func(*scenario.Theme) string, def string) string {
	if e.Theme == nil || pick(e.Theme) == "" {
		return def
	}
	return "0x" + strings.TrimPrefix(pick(e.Theme), "#")
}

// AlphaPoints is the opacity curve of paragraph n (1-based) of a shape.
// Effects on the whole shape and on that paragraph apply; media effects do
// not. An entrance fades in over its duration, an exit fades out.
func AlphaPoints(effects []*scenario.Effect, n int) []renderer.Point {
	var own []*scenario.Effect
	for _, ef := range effects {
		if ef.Kind == "MediaPlay" || (ef.Paragraph != 0 && ef.Paragraph != n) {
			continue
		}
		own = append(own, ef)
	}
	if len(own) == 0 {
		return nil
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].Delay < own[j].Delay })

	initial := 0.0
	if own[0].Exit {
		initial = 1
	}
	pts := []renderer.Point{{T: 0, V: initial}}
	for _, ef := range own {
		from, to := 0.0, 1.0
		if ef.Exit {
			from, to = 1, 0
		}
		pts = append(pts, renderer.Point{T: ef.Delay, V: from}, renderer.Point{T: ef.End(), V: to})
	}
	return pts
}

func round(x float64) int { return int(math.Round(x)) }

// even rounds to the nearest even size; yuv420p needs it.
func even(x float64) int {
	n := round(x)
	return max(2, n+n%2)
}
