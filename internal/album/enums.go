package album

import (
	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	"github.com/ivlev/albumscript/internal/layout"
)

// Options are the flags of the ANIMATION command.
type Options int

const (
	Exit Options = 1 << iota
	ByParagraph
	ByCharacter
	WithPrevious
	// AfterPrevious spells out the default sequential chaining.
	AfterPrevious

	NoOptions Options = 0
)

// Has reports whether every flag of f is set.
func (o Options) Has(f Options) bool { return o&f == f }

var (
	effectKinds     = closure.NewEnum("EffectKind", backend.EffectKindNames()...)
	animationFlags  = closure.NewFlags("AnimationOptions", "None", "Exit", "ByParagraph", "ByCharacter", "WithPrevious", "AfterPrevious")
	imageAnimations = closure.NewEnum("ImageAnimation", layout.AnimationNames()...)
	transitionNames = backend.Transitions()
	transitions     = closure.NewEnum("Transition", transitionNames...)
)

func (o Options) String() string { return animationFlags.Format(int(o)) }
