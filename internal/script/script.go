// Package script turns album script lines into instructions.
package script

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// ParamSeparator splits the parameter expression into parameters.
	ParamSeparator = "\t"
	// LineBreakMarker is replaced by "\n" inside every parameter.
	LineBreakMarker = "|"
	// CommentMarker starts a comment line (after optional whitespace).
	CommentMarker = "#"
)

var lineRe = regexp.MustCompile(`^(\s*)(\S+)(?:\s(.*))?$`)

// Instruction is one parsed script line.
type Instruction struct {
	LineNo  int
	Indent  int
	Command string
	Params  []string
	Text    string
}

// MalformedLineError reports a line that does not follow the script grammar.
type MalformedLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("line %d: malformed line %q: %s", e.Line, e.Text, e.Reason)
}

// IsSkippable reports whether the line is blank or a comment.
func IsSkippable(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, CommentMarker)
}

// Parse converts one non-skippable line into an Instruction.
// Indentation is the number of leading whitespace characters; a tab counts as one.
func Parse(lineNo int, line string) (Instruction, error) {
	m := lineRe.FindStringSubmatch(line)
	if m == nil {
		return Instruction{}, &MalformedLineError{Line: lineNo, Text: line, Reason: "expected <indent><command>[ <params>]"}
	}

	ins := Instruction{
		LineNo:  lineNo,
		Indent:  len([]rune(m[1])),
		Command: m[2],
		Text:    line,
	}
	// A bare command (or one followed by a single separator) has no parameters.
	if m[3] != "" {
		ins.Params = SplitParams(m[3])
	}
	return ins, nil
}

// SplitParams splits a parameter expression on the separator, keeping empty
// entries, and substitutes the line-break marker in each value.
func SplitParams(expr string) []string {
	parts := strings.Split(expr, ParamSeparator)
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, LineBreakMarker, "\n")
	}
	return parts
}
