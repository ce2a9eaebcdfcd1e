// Package engine runs album scripts: the indentation driver that walks the
// scope tree, and the project pipeline around it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/script"
)

// rootIndent is below any real indentation, so the root is never popped by a
// script line.
const rootIndent = -1

// Observer receives scope stack events. Depth 0 is the root.
type Observer interface {
	Entered(s closure.Scope, depth int)
	Left(s closure.Scope)
}

// LineError ties a failure to the script line that caused it.
type LineError struct {
	LineNo int
	Text   string
	Err    error
}

func (e *LineError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.LineNo, e.Err)
	}
	return fmt.Sprintf("line %d %q: %v", e.LineNo, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Interpreter feeds script lines to a scope tree.
type Interpreter struct {
	Root closure.Scope
	// Presentation is finalized after the last exit hook. Nil skips it.
	Presentation backend.Presentation
	Observer     Observer
	Logger       *slog.Logger
}

// frame is one open scope. body is the indentation of its first child line,
// -1 until one is seen.
type frame struct {
	scope  closure.Scope
	indent int
	body   int
}

func NewInterpreter(root closure.Scope, pres backend.Presentation) *Interpreter {
	return &Interpreter{Root: root, Presentation: pres}
}

// Run interprets the script read from r. The first failure aborts the run.
func (in *Interpreter) Run(ctx context.Context, r io.Reader) error {
	log := in.Logger
	if log == nil {
		log = applog.WithComponent("interpreter")
	}

	stack := []frame{{scope: in.Root, indent: rootIndent, body: -1}}
	in.entered(in.Root, 0)

	rd := script.NewReader(r)
	for {
		inst, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var mal *script.MalformedLineError
			if errors.As(err, &mal) {
				return &LineError{LineNo: mal.Line, Text: mal.Text, Err: err}
			}
			return &LineError{LineNo: rd.LineNo(), Err: err}
		}

		// Закрываем вложенные области, которые строка не продолжает
		for inst.Indent <= stack[len(stack)-1].indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if err := in.leave(top.scope); err != nil {
				return &LineError{LineNo: inst.LineNo, Text: inst.Text, Err: err}
			}
		}

		top := &stack[len(stack)-1]
		if top.body < 0 {
			top.body = inst.Indent
		} else if inst.Indent != top.body {
			err := &script.MalformedLineError{
				Line:   inst.LineNo,
				Text:   inst.Text,
				Reason: fmt.Sprintf("inconsistent indentation %d in %s body indented %d", inst.Indent, top.scope.Kind(), top.body),
			}
			return &LineError{LineNo: inst.LineNo, Text: inst.Text, Err: err}
		}

		out, err := top.scope.Invoke(inst.Command, inst.Params)
		if err != nil {
			return &LineError{LineNo: inst.LineNo, Text: inst.Text, Err: err}
		}
		log.Debug("dispatched", "line", inst.LineNo, "scope", top.scope.Kind(), "cmd", inst.Command, "params", len(inst.Params))

		if child, ok := out.Child(); ok && child != top.scope {
			stack = append(stack, frame{scope: child, indent: inst.Indent, body: -1})
			in.entered(child, len(stack)-1)
		}
	}

	// Конец файла: закрываем всё, включая корень
	for i := len(stack) - 1; i >= 0; i-- {
		if err := in.leave(stack[i].scope); err != nil {
			return &LineError{LineNo: rd.LineNo(), Err: err}
		}
	}

	if in.Presentation == nil {
		return nil
	}
	if err := in.Presentation.Finalize(ctx); err != nil {
		return fmt.Errorf("finalize presentation: %w", err)
	}
	return nil
}

func (in *Interpreter) entered(s closure.Scope, depth int) {
	if in.Observer != nil {
		in.Observer.Entered(s, depth)
	}
}

func (in *Interpreter) leave(s closure.Scope) error {
	if err := s.Leave(); err != nil {
		return fmt.Errorf("leave %s: %w", s.Kind(), err)
	}
	if in.Observer != nil {
		in.Observer.Left(s)
	}
	return nil
}
