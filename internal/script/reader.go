package script

import (
	"bufio"
	"io"
	"strings"
)

// Reader yields instructions for the non-skippable lines of a script.
type Reader struct {
	sc     *bufio.Scanner
	lineNo int
}

// NewReader wraps r. Lines may end in LF or CRLF.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next instruction. It returns io.EOF after the last line.
func (r *Reader) Next() (Instruction, error) {
	for r.sc.Scan() {
		r.lineNo++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if r.lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if IsSkippable(line) {
			continue
		}
		return Parse(r.lineNo, line)
	}
	if err := r.sc.Err(); err != nil {
		return Instruction{}, err
	}
	return Instruction{}, io.EOF
}

// LineNo is the number of the last line read (1-based).
func (r *Reader) LineNo() int { return r.lineNo }
