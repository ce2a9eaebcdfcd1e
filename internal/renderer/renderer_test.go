package renderer

import (
	"math"
	"strings"
	"testing"
)

func TestPiecewise(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want string
	}{
		{"empty", nil, "0"},
		{"constant", []Point{{0, 1.5}}, "1.5"},
		{"ramp", []Point{{0, 0}, {10, 1}}, "if(lte(on,10),0+(on-0)*(0.1),1)"},
		{"delayed hold", []Point{{5, 0}, {5, 1}, {10, 1}}, "if(lt(on,5),1,if(lte(on,10),1,1))"},
		{"late start", []Point{{2, 0}, {4, 1}}, "if(lt(on,2),0,if(lte(on,4),0+(on-2)*(0.5),1))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Piecewise("on", tt.pts); got != tt.want {
				t.Errorf("Piecewise = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateZoomPanFilter(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Rect: Rect{X: 0, Y: 0, W: 1920, H: 1080}},
		{Time: 2, Rect: Rect{X: 96, Y: 54, W: 1728, H: 972}},
	}
	filter := GenerateZoomPanFilter(keyframes, 3, 30, 1920, 1280, 720)

	for _, part := range []string{"zoompan=", "z='if(lte(on,60),1+", "x='if(lte(on,60),0+", ":d=90:", ":s=1280x720:", ":fps=30"} {
		if !strings.Contains(filter, part) {
			t.Errorf("filter %q lacks %q", filter, part)
		}
	}
	if GenerateZoomPanFilter(nil, 3, 30, 1920, 1280, 720) != "" {
		t.Error("expected empty filter without keyframes")
	}
}

func TestGeneratePanFilter(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Rect: Rect{X: 0, Y: 1000, W: 1280, H: 720}},
		{Time: 4, Rect: Rect{X: 0, Y: 0, W: 1280, H: 720}},
	}
	filter := GeneratePanFilter(keyframes, 5, 25, 1280, 1720, 1280, 720)
	want := "zoompan=z=1:d=125:s=1280x1720:fps=25,crop=1280:720:x='if(lte(n,100),0,0)':y='if(lte(n,100),1000+(n-0)*(-10),0)'"
	if filter != want {
		t.Errorf("filter =\n%s\nwant\n%s", filter, want)
	}
}

func TestInterpolateKeyframes(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Rect: Rect{X: 0, W: 100, H: 50}},
		{Time: 2, Rect: Rect{X: 100, W: 200, H: 100}},
	}
	tests := []struct {
		time, wantX float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 100 * 4 * 0.25 * 0.25 * 0.25},
		{1, 50},
		{2, 100},
		{5, 100},
	}
	for _, tt := range tests {
		got := InterpolateKeyframes(keyframes, tt.time)
		if math.Abs(got.X-tt.wantX) > 1e-9 {
			t.Errorf("X at %.1f = %v, want %v", tt.time, got.X, tt.wantX)
		}
	}
}

func TestEase(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Rect: Rect{W: 100}},
		{Time: 1, Rect: Rect{W: 100}},
		{Time: 3, Rect: Rect{X: 40, W: 100}},
	}
	got := Ease(keyframes, 4)
	// hold untouched, moving segment split into 4 pieces
	if len(got) != 2+4 {
		t.Fatalf("len = %d, want 6: %+v", len(got), got)
	}
	if got[3].Time != 2 || got[3].Rect.X != 20 {
		t.Errorf("midpoint = %+v", got[3])
	}
	if got[5] != keyframes[2] {
		t.Errorf("last = %+v", got[5])
	}
}
