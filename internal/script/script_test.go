package script

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Instruction
	}{
		{"PAGE", Instruction{Indent: 0, Command: "PAGE"}},
		{"PAGE\tphoto.jpg\tHello", Instruction{Command: "PAGE", Params: []string{"photo.jpg", "Hello"}}},
		{"  TEXT\tWorld", Instruction{Indent: 2, Command: "TEXT", Params: []string{"World"}}},
		{"\t\tANIMATION", Instruction{Indent: 2, Command: "ANIMATION"}},
		{"PAGE\t\tcaption only", Instruction{Command: "PAGE", Params: []string{"", "caption only"}}},
		{"PAGE\ta\t\t", Instruction{Command: "PAGE", Params: []string{"a", "", ""}}},
		{"TEXT\tline one|line two", Instruction{Command: "TEXT", Params: []string{"line one\nline two"}}},
		{"DIR assets", Instruction{Command: "DIR", Params: []string{"assets"}}},
		{"PERSIST\t", Instruction{Command: "PERSIST"}},
	}

	for _, tt := range tests {
		got, err := Parse(7, tt.line)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.line, err)
		}
		tt.want.LineNo = 7
		tt.want.Text = tt.line
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		_, err := Parse(3, line)
		var mle *MalformedLineError
		if !errors.As(err, &mle) {
			t.Fatalf("Parse(%q): expected MalformedLineError, got %v", line, err)
		}
		if mle.Line != 3 {
			t.Errorf("expected line 3, got %d", mle.Line)
		}
	}
}

func TestIsSkippable(t *testing.T) {
	tests := map[string]bool{
		"":              true,
		"   ":           true,
		"# comment":     true,
		"    # nested":  true,
		"PAGE":          false,
		"TEXT\t# text": false,
	}
	for line, want := range tests {
		if got := IsSkippable(line); got != want {
			t.Errorf("IsSkippable(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestReader(t *testing.T) {
	src := "# album\r\nDIR assets\r\n\r\nPAGE\tphoto.jpg\r\n  # note\r\n  TEXT\tWorld\r\n"
	r := NewReader(strings.NewReader(src))

	var got []Instruction
	for {
		ins, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, ins)
	}

	want := []Instruction{
		{LineNo: 2, Command: "DIR", Params: []string{"assets"}, Text: "DIR assets"},
		{LineNo: 4, Command: "PAGE", Params: []string{"photo.jpg"}, Text: "PAGE\tphoto.jpg"},
		{LineNo: 6, Indent: 2, Command: "TEXT", Params: []string{"World"}, Text: "  TEXT\tWorld"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instructions mismatch (-want +got):\n%s", diff)
	}
	if r.LineNo() != 6 {
		t.Errorf("expected 6 lines read, got %d", r.LineNo())
	}
}
