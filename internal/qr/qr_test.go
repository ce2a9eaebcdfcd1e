package qr

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	qrcode "github.com/skip2/go-qrcode"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets", "qr.png")
	if err := WriteFile("https://example.org/album", 10, qrcode.Medium, path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != MinSize || cfg.Height != MinSize {
		t.Errorf("expected %dx%d, got %dx%d", MinSize, MinSize, cfg.Width, cfg.Height)
	}
}

func TestWriteFileEmpty(t *testing.T) {
	if err := WriteFile("", 128, qrcode.Medium, filepath.Join(t.TempDir(), "x.png")); err == nil {
		t.Fatal("expected an error for empty content")
	}
}

func TestLevel(t *testing.T) {
	tests := map[string]qrcode.RecoveryLevel{
		"":        qrcode.Medium,
		"low":     qrcode.Low,
		"HIGH":    qrcode.High,
		"highest": qrcode.Highest,
	}
	for in, want := range tests {
		got, err := Level(in)
		if err != nil || got != want {
			t.Errorf("Level(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := Level("ultra"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
