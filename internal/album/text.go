package album

import (
	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
)

// Text is the scope of one text box. Positions are canvas fractions.
type Text struct {
	page *Page
	doc  *Document
	box  backend.TextBox
}

var textOps = closure.NewTable("Text",
	closure.Op[*Text]{
		Name:   "LEFT",
		Params: []closure.Param{closure.Optional("value", closure.Float, "0")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.Left(a.Float(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Text]{
		Name:   "TOP",
		Params: []closure.Param{closure.Optional("value", closure.Float, "0")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.Top(a.Float(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Text]{
		Name:   "BOTTOM",
		Params: []closure.Param{closure.Optional("value", closure.Float, "0")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.Bottom(a.Float(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Text]{
		Name:   "VCENTER",
		Params: []closure.Param{closure.Optional("offset", closure.Float, "0")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.VCenter(a.Float(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Text]{
		Name: "ANIMATION",
		Params: []closure.Param{
			closure.OptionalEnum("effect", effectKinds, "Fade"),
			closure.OptionalEnum("options", animationFlags, "None"),
			closure.Optional("delay", closure.Float, "0"),
		},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			_, err := t.page.AddAnimation(t.box, backend.EffectKind(a.Enum(0)), a.Seconds(2), TextAnimationDuration, Options(a.Enum(1)))
			return closure.Stay(), err
		},
	},
	closure.Op[*Text]{
		Name:   "FONTSIZE",
		Params: []closure.Param{closure.Optional("size", closure.Float, "24")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.SetFontSize(a.Float(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Text]{
		Name:   "PARAGRAPH",
		Params: []closure.Param{closure.Optional("text", closure.String, "")},
		Fn: func(t *Text, a closure.Args) (closure.Outcome, error) {
			t.AddParagraph(a.String(0))
			return closure.Stay(), nil
		},
	},
)

func newText(p *Page, box backend.TextBox) (*Text, error) {
	t := &Text{page: p, box: box}
	doc, err := closure.Ancestor[*Document](t)
	if err != nil {
		return nil, err
	}
	t.doc = doc
	return t, nil
}

func (t *Text) Kind() string          { return "Text" }
func (t *Text) Parent() closure.Scope { return t.page }
func (t *Text) Leave() error          { return nil }

func (t *Text) Invoke(command string, params []string) (closure.Outcome, error) {
	return textOps.Invoke(t, command, params)
}

// Box is the underlying text box.
func (t *Text) Box() backend.TextBox { return t.box }

func (t *Text) move(left, top float64) {
	b := t.box.Bounds()
	b.Left, b.Top = left, top
	t.box.SetBounds(b)
}

func (t *Text) Left(v float64) { t.move(v*t.doc.canvas.W, t.box.Bounds().Top) }
func (t *Text) Top(v float64)  { t.move(t.box.Bounds().Left, v*t.doc.canvas.H) }

// Bottom anchors the box above the page caption, shifted by v canvas heights.
func (t *Text) Bottom(v float64) {
	h := t.doc.canvas.H
	var captionHeight float64
	if c := t.page.caption; c != nil {
		captionHeight = c.Bounds().Height
	}
	b := t.box.Bounds()
	t.move(b.Left, h-captionHeight-b.Height+v*h)
}

// VCenter centers the box vertically, shifted by offset canvas heights.
func (t *Text) VCenter(offset float64) {
	h := t.doc.canvas.H
	b := t.box.Bounds()
	t.move(b.Left, (h-b.Height)/2+offset*h)
}

func (t *Text) SetFontSize(size float64) {
	st := t.box.Style()
	st.FontSize = size
	t.box.SetStyle(st)
}

// AddParagraph appends s as a new paragraph.
func (t *Text) AddParagraph(s string) {
	if t.box.Text() != "" {
		t.box.AppendText("\n")
	}
	t.box.AppendText(s)
}
