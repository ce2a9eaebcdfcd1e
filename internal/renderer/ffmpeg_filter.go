// Package renderer turns keyframed camera moves and fades into ffmpeg
// filter expressions.
package renderer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Rect is a viewport into the input frame, in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Keyframe pins the viewport at a moment of the segment (seconds).
type Keyframe struct {
	Time float64
	Rect Rect
}

// Point is one sample of a piecewise linear function.
type Point struct {
	T, V float64
}

// Piecewise builds an ffmpeg expression of variable v that interpolates
// linearly between the points and holds the end values outside them. Points
// sharing a time keep the last value.
func Piecewise(v string, pts []Point) string {
	pts = normalize(pts)
	if len(pts) == 0 {
		return "0"
	}
	if len(pts) == 1 {
		return num(pts[0].V)
	}

	var b strings.Builder
	open := 0
	if pts[0].T > 0 {
		fmt.Fprintf(&b, "if(lt(%s,%s),%s,", v, num(pts[0].T), num(pts[0].V))
		open++
	}
	for i := 0; i+1 < len(pts); i++ {
		a, c := pts[i], pts[i+1]
		fmt.Fprintf(&b, "if(lte(%s,%s),%s,", v, num(c.T), segment(v, a, c))
		open++
	}
	b.WriteString(num(pts[len(pts)-1].V))
	b.WriteString(strings.Repeat(")", open))
	return b.String()
}

func normalize(pts []Point) []Point {
	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })
	out := sorted[:0]
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].T == p.T {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func segment(v string, a, c Point) string {
	if a.V == c.V {
		return num(a.V)
	}
	slope := (c.V - a.V) / (c.T - a.T)
	return fmt.Sprintf("%s+(%s-%s)*(%s)", num(a.V), v, num(a.T), num(slope))
}

func num(x float64) string {
	return strconv.FormatFloat(math.Round(x*1e6)/1e6, 'f', -1, 64)
}

// GenerateZoomPanFilter builds a zoompan filter that follows the keyframed
// viewport over an input frame inW pixels wide, producing duration seconds
// of outW×outH video. Viewports must share the output aspect ratio.
func GenerateZoomPanFilter(keyframes []Keyframe, duration float64, fps int, inW, outW, outH int) string {
	if len(keyframes) == 0 {
		return ""
	}
	frames := int(math.Round(duration * float64(fps)))
	z, x, y := frameSeries(keyframes, fps, func(r Rect) float64 { return float64(inW) / r.W })
	return fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=%d:s=%dx%d:fps=%d",
		Piecewise("on", z), Piecewise("on", x), Piecewise("on", y), frames, outW, outH, fps)
}

// GeneratePanFilter repeats a single input frame for duration seconds and
// slides a fixed outW×outH window over it. Viewport sizes are ignored.
func GeneratePanFilter(keyframes []Keyframe, duration float64, fps int, inW, inH, outW, outH int) string {
	if len(keyframes) == 0 {
		return ""
	}
	frames := int(math.Round(duration * float64(fps)))
	_, x, y := frameSeries(keyframes, fps, nil)
	return fmt.Sprintf("zoompan=z=1:d=%d:s=%dx%d:fps=%d,crop=%d:%d:x='%s':y='%s'",
		frames, inW, inH, fps, outW, outH, Piecewise("n", x), Piecewise("n", y))
}

func frameSeries(keyframes []Keyframe, fps int, zoom func(Rect) float64) (z, x, y []Point) {
	for _, kf := range keyframes {
		f := math.Round(kf.Time * float64(fps))
		if zoom != nil {
			z = append(z, Point{f, zoom(kf.Rect)})
		}
		x = append(x, Point{f, kf.Rect.X})
		y = append(y, Point{f, kf.Rect.Y})
	}
	return z, x, y
}

// Alpha is a piecewise opacity expression of the timestamp t.
func Alpha(pts []Point) string {
	return Piecewise("t", pts)
}
