// Package timing schedules the animations of one page.
package timing

import "time"

// AnimationInfo is the absolute schedule of one registered animation,
// relative to the moment the page appears.
type AnimationInfo struct {
	StartAt  time.Duration
	Duration time.Duration
}

// EndAt is StartAt + Duration.
func (a AnimationInfo) EndAt() time.Duration { return a.StartAt + a.Duration }

// Chaining selects the base time of a new animation.
type Chaining int

const (
	// Sequential starts after the previous animation ends.
	Sequential Chaining = iota
	// Concurrent starts together with the previous animation.
	Concurrent
)

func (c Chaining) String() string {
	if c == Concurrent {
		return "concurrent"
	}
	return "sequential"
}

// Timeline is the append-only list of animations registered on one page.
// Animations are never reordered once appended.
type Timeline struct {
	items []*AnimationInfo
}

// Len is the number of registered animations.
func (t *Timeline) Len() int { return len(t.items) }

// Last returns the most recently registered animation, or nil.
func (t *Timeline) Last() *AnimationInfo {
	if len(t.items) == 0 {
		return nil
	}
	return t.items[len(t.items)-1]
}

// Base is the time a new animation chains from: the end (sequential) or the
// start (concurrent) of the last registered animation, zero when empty.
func (t *Timeline) Base(mode Chaining) time.Duration {
	last := t.Last()
	if last == nil {
		return 0
	}
	if mode == Concurrent {
		return last.StartAt
	}
	return last.EndAt()
}

// Schedule computes the AnimationInfo for a new animation without
// registering it.
func (t *Timeline) Schedule(mode Chaining, delay, duration time.Duration) *AnimationInfo {
	return &AnimationInfo{StartAt: t.Base(mode) + delay, Duration: duration}
}

// Append registers info. The caller may have updated its duration after a
// fan-out.
func (t *Timeline) Append(info *AnimationInfo) {
	t.items = append(t.items, info)
}

// Items returns copies of the registered animations in registration order.
func (t *Timeline) Items() []AnimationInfo {
	out := make([]AnimationInfo, len(t.items))
	for i, it := range t.items {
		out[i] = *it
	}
	return out
}

// LatestEnd is the maximum end time over all animations, zero when empty.
func (t *Timeline) LatestEnd() time.Duration {
	var latest time.Duration
	for _, it := range t.items {
		if end := it.EndAt(); end > latest {
			latest = end
		}
	}
	return latest
}

// Distribute spreads count sub-units of length d back to back from startAt.
func Distribute(startAt, d time.Duration, count int) []AnimationInfo {
	out := make([]AnimationInfo, count)
	for i := range out {
		out[i] = AnimationInfo{StartAt: startAt + time.Duration(i)*d, Duration: d}
	}
	return out
}

// Span is the total length covered by count sub-units of length d.
func Span(d time.Duration, count int) time.Duration {
	return time.Duration(count) * d
}
