package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatestScript(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"old.txt", "new.album", "newest.mp3", "README.md"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("PAGE\n"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindLatestScript(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "new.album"); got != want {
		t.Errorf("FindLatestScript = %q, want %q", got, want)
	}
	got, err = FindLatestAudio(dir)
	if err != nil || filepath.Base(got) != "newest.mp3" {
		t.Errorf("FindLatestAudio = %q, %v", got, err)
	}

	if _, err := FindLatestScript(t.TempDir()); err == nil {
		t.Error("expected error for empty dir")
	}
}

func TestListings(t *testing.T) {
	encoders := ` V....D libx264              libx264 H.264 / AVC
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder
`
	if got := bestEncoder(encoders); got != "h264_nvenc" {
		t.Errorf("bestEncoder = %q", got)
	}
	if got := bestEncoder(""); got != "libx264" {
		t.Errorf("bestEncoder(empty) = %q", got)
	}

	filters := ` ... zoompan           V->V       Apply Zoom & Pan effect.
 T.C drawtext          V->V       Draw text on top of video frames using libfreetype library.
`
	if !hasListEntry(filters, "drawtext") || hasListEntry(filters, "draw") {
		t.Error("hasListEntry mismatch")
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("183.040000\n")
	if err != nil || d != 183.04 {
		t.Fatalf("ParseDuration = %v, %v", d, err)
	}
	if _, err := ParseDuration("N/A"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWorkersFor(t *testing.T) {
	tests := []struct {
		cpus  int
		avail uint64
		want  int
	}{
		{8, 0, 8},
		{8, 16 << 30, 8},
		{8, 1 << 30, 2},
		{8, 100 << 20, 1},
	}
	for _, tt := range tests {
		if got := workersFor(tt.cpus, tt.avail); got != tt.want {
			t.Errorf("workersFor(%d, %d) = %d, want %d", tt.cpus, tt.avail, got, tt.want)
		}
	}
	if RecommendedWorkers() < 1 {
		t.Error("RecommendedWorkers < 1")
	}
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()
	img := p.Get(4, 3)
	if img.Rect.Dx() != 4 || img.Rect.Dy() != 3 {
		t.Fatalf("Get size = %v", img.Rect)
	}
	p.Put(img)
	if got := p.Get(4, 3); got.Rect.Dx() != 4 {
		t.Fatalf("reused frame size = %v", got.Rect)
	}
	if got := GetFrame(2, 2); len(got.Pix) != 16 {
		t.Fatalf("GetFrame pix = %d", len(got.Pix))
	}
}
