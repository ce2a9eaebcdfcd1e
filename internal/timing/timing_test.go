package timing

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const half = 500 * time.Millisecond

func TestSequentialChaining(t *testing.T) {
	var tl Timeline
	delays := []time.Duration{0, 200 * time.Millisecond, 0, time.Second}
	var prev *AnimationInfo
	for _, d := range delays {
		info := tl.Schedule(Sequential, d, half)
		if prev != nil && info.StartAt < prev.EndAt() {
			t.Errorf("sequential start %v before previous end %v", info.StartAt, prev.EndAt())
		}
		tl.Append(info)
		prev = info
	}
	want := []AnimationInfo{
		{0, half},
		{700 * time.Millisecond, half},
		{1200 * time.Millisecond, half},
		{2700 * time.Millisecond, half},
	}
	if diff := cmp.Diff(want, tl.Items()); diff != "" {
		t.Errorf("timeline mismatch (-want +got):\n%s", diff)
	}
	if tl.LatestEnd() != 3200*time.Millisecond {
		t.Errorf("LatestEnd = %v", tl.LatestEnd())
	}
}

func TestConcurrentChaining(t *testing.T) {
	var tl Timeline
	first := tl.Schedule(Concurrent, 300*time.Millisecond, time.Second)
	tl.Append(first)
	second := tl.Schedule(Concurrent, 100*time.Millisecond, half)
	tl.Append(second)

	if second.StartAt != first.StartAt+100*time.Millisecond {
		t.Errorf("concurrent start = %v, want previous start + delay", second.StartAt)
	}
	if tl.LatestEnd() != first.EndAt() {
		t.Errorf("LatestEnd = %v, want %v", tl.LatestEnd(), first.EndAt())
	}
}

func TestEmptyTimeline(t *testing.T) {
	var tl Timeline
	if tl.Base(Sequential) != 0 || tl.Base(Concurrent) != 0 {
		t.Error("empty timeline must chain from zero")
	}
	if tl.LatestEnd() != 0 || tl.Last() != nil {
		t.Error("empty timeline has no end")
	}
}

func TestDistribute(t *testing.T) {
	units := Distribute(time.Second, half, 3)
	want := []AnimationInfo{
		{time.Second, half},
		{1500 * time.Millisecond, half},
		{2 * time.Second, half},
	}
	if diff := cmp.Diff(want, units); diff != "" {
		t.Errorf("Distribute mismatch (-want +got):\n%s", diff)
	}
	if got := units[len(units)-1].EndAt() - units[0].StartAt; got != Span(half, 3) {
		t.Errorf("combined span %v, want %v", got, Span(half, 3))
	}
}
