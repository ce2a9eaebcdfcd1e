package backend

import "fmt"

// EffectKind is the visual effect of an animation.
type EffectKind int

const (
	Appear EffectKind = iota
	Fade
	Fly
	Wipe
	Zoom
	Float
	Split
	Wheel
	Dissolve
	GrowShrink
	Custom
	MediaPlay
)

var effectKindNames = [...]string{
	"Appear", "Fade", "Fly", "Wipe", "Zoom", "Float",
	"Split", "Wheel", "Dissolve", "GrowShrink", "Custom", "MediaPlay",
}

// EffectKindNames lists the kinds in value order.
func EffectKindNames() []string { return effectKindNames[:] }

func (k EffectKind) String() string {
	if k >= 0 && int(k) < len(effectKindNames) {
		return effectKindNames[k]
	}
	return fmt.Sprintf("EffectKind(%d)", int(k))
}

// ParseEffectKind is the inverse of String.
func ParseEffectKind(s string) (EffectKind, bool) {
	for i, n := range effectKindNames {
		if n == s {
			return EffectKind(i), true
		}
	}
	return 0, false
}

// Trigger tells when an effect starts relative to the previous one.
type Trigger int

const (
	OnClick Trigger = iota
	WithPrevious
	AfterPrevious
)

func (t Trigger) String() string {
	switch t {
	case WithPrevious:
		return "withPrevious"
	case AfterPrevious:
		return "afterPrevious"
	default:
		return "onClick"
	}
}

// TextUnit splits a text effect into sub-units.
type TextUnit int

const (
	WholeText TextUnit = iota
	ByWord
	ByCharacter
)

func (u TextUnit) String() string {
	switch u {
	case ByWord:
		return "byWord"
	case ByCharacter:
		return "byCharacter"
	default:
		return ""
	}
}

// BuildLevel splits a text effect into paragraph effects.
type BuildLevel int

const (
	NoBuild BuildLevel = iota
	ByParagraph
)

func (l BuildLevel) String() string {
	if l == ByParagraph {
		return "byParagraph"
	}
	return ""
}

// Entry transition identifiers. Apart from None and Cut they are ffmpeg
// xfade transition names.
const (
	TransitionNone = "none"
	TransitionCut  = "cut"
)

var xfadeTransitions = []string{
	"fade", "fadeblack", "fadewhite", "fadegrays", "dissolve", "pixelize",
	"wipeleft", "wiperight", "wipeup", "wipedown",
	"wipetl", "wipetr", "wipebl", "wipebr",
	"slideleft", "slideright", "slideup", "slidedown",
	"smoothleft", "smoothright", "smoothup", "smoothdown",
	"circlecrop", "rectcrop", "circleopen", "circleclose",
	"vertopen", "vertclose", "horzopen", "horzclose",
	"diagtl", "diagtr", "diagbl", "diagbr",
	"hlslice", "hrslice", "vuslice", "vdslice",
	"radial", "distance", "hblur", "squeezeh", "squeezev", "zoomin",
}

// Transitions returns every known identifier, None first.
func Transitions() []string {
	out := make([]string, 0, len(xfadeTransitions)+2)
	out = append(out, TransitionNone, TransitionCut)
	return append(out, xfadeTransitions...)
}

// RenderedTransition reports whether the identifier needs an xfade blend.
func RenderedTransition(name string) bool {
	return name != "" && name != TransitionNone && name != TransitionCut
}
