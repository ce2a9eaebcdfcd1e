package renderer

// InterpolateKeyframes returns the viewport at currentTime, eased between the
// surrounding keyframes.
func InterpolateKeyframes(keyframes []Keyframe, currentTime float64) Rect {
	if len(keyframes) == 0 {
		return Rect{}
	}
	if currentTime <= keyframes[0].Time {
		return keyframes[0].Rect
	}
	last := keyframes[len(keyframes)-1]
	if currentTime >= last.Time {
		return last.Rect
	}

	var prev, next Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prev, next = keyframes[i], keyframes[i+1]
			break
		}
	}

	span := next.Time - prev.Time
	if span == 0 {
		return next.Rect
	}
	t := easeInOutCubic((currentTime - prev.Time) / span)
	return Rect{
		X: lerp(prev.Rect.X, next.Rect.X, t),
		Y: lerp(prev.Rect.Y, next.Rect.Y, t),
		W: lerp(prev.Rect.W, next.Rect.W, t),
		H: lerp(prev.Rect.H, next.Rect.H, t),
	}
}

// Ease resamples every moving segment into steps linear pieces that follow
// the eased curve. Holds stay as they are.
func Ease(keyframes []Keyframe, steps int) []Keyframe {
	if len(keyframes) < 2 || steps < 2 {
		return keyframes
	}
	out := []Keyframe{keyframes[0]}
	for i := 0; i+1 < len(keyframes); i++ {
		a, b := keyframes[i], keyframes[i+1]
		if a.Rect != b.Rect && b.Time > a.Time {
			for s := 1; s < steps; s++ {
				tm := a.Time + (b.Time-a.Time)*float64(s)/float64(steps)
				out = append(out, Keyframe{Time: tm, Rect: InterpolateKeyframes(keyframes[i:i+2], tm)})
			}
		}
		out = append(out, b)
	}
	return out
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
