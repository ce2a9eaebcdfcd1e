package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("ALB_LOG_LEVEL", "warn")
	t.Setenv("ALB_LOG_FORMAT", "json")
	t.Setenv("ALB_LOG_SOURCE", "true")
	t.Setenv("ALB_LOG_FILE", "")
	t.Setenv("ALB_LOG_COLOR", "never")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" || opts.Color != "never" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("ALB_SURELY_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestPrettyTextHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn}, w: &buf, mu: &sync.Mutex{}}

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true),
		slog.String("text", "two words"), slog.Duration("d", 1500*time.Millisecond))
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ERR", "boom", "k=v", "grp.n=42", "grp.pi=3.14", "grp.ok=true", `grp.text="two words"`, "grp.d=1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("no color expected when disabled: %q", out)
	}
}

func TestLevelTagColor(t *testing.T) {
	h := &prettyTextHandler{opts: prettyOpts{Color: true}}
	if got := h.levelTag(slog.LevelWarn); got != ansiYellow+"WRN"+ansiReset {
		t.Fatalf("levelTag = %q", got)
	}
	if useColor("never", os.Stderr) {
		t.Fatalf("never must disable color")
	}
	if !useColor("always", &bytes.Buffer{}) {
		t.Fatalf("always must enable color")
	}
	if useColor("auto", &bytes.Buffer{}) {
		t.Fatalf("a buffer is not a terminal")
	}
}

func TestInitWritesRotatedJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "albumscript.log")
	var console bytes.Buffer

	Init(Options{Level: "debug", Format: "console", File: path, Color: "never", Output: &console})
	t.Cleanup(func() { _ = Close() })

	l := WithOperation(WithComponent("engine"), "run")
	l.Info("page closed", slog.Int("slide", 3))
	if err := Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(console.String(), "page closed") || !strings.Contains(console.String(), "component=engine") {
		t.Fatalf("console output missing record: %q", console.String())
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("last line is not JSON: %v (%q)", err, last)
	}
	if m["msg"] != "page closed" || m["component"] != "engine" || m["op"] != "run" || m["app"] != "albumscript" {
		t.Fatalf("unexpected fields: %v", m)
	}
	if m["slide"] != float64(3) {
		t.Fatalf("slide attr = %v", m["slide"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
