package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "album.txt")
	writeFile(t, script, "PAGE\n")
	writeFile(t, filepath.Join(dir, FileName), "theme: dark\nfps: 25\nquality: 20\nworkers: 3\nlog:\n  level: DEBUG\n")
	t.Setenv(EnvFPS, "24")
	t.Setenv(EnvQuality, "not-a-number")

	cfg, err := Resolve([]string{"-script", script, "-workers", "5"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.ConfigFile != filepath.Join(dir, FileName) {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if cfg.Theme != "dark" {
		t.Errorf("Theme = %q, want dark from file", cfg.Theme)
	}
	if cfg.FPS != 24 {
		t.Errorf("FPS = %d, want 24 from env", cfg.FPS)
	}
	if cfg.Quality != 20 {
		t.Errorf("Quality = %d, want 20 (bad env ignored)", cfg.Quality)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5 from flag", cfg.Workers)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size = %dx%d, want defaults", cfg.Width, cfg.Height)
	}
	if !cfg.ShowStats {
		t.Error("ShowStats reset by a file that does not mention it")
	}
}

func TestResolvePositionalScriptAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "album.txt")
	cfg, err := Resolve([]string{"-preset", "9:16", script})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.ScriptPath != script || cfg.ConfigFile != "" {
		t.Errorf("ScriptPath = %q ConfigFile = %q", cfg.ScriptPath, cfg.ConfigFile)
	}
	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("size = %dx%d, want 720x1280", cfg.Width, cfg.Height)
	}

	if _, err := Resolve([]string{"-config", filepath.Join(dir, "nope.yaml")}); err == nil {
		t.Fatal("expected error for explicit missing config")
	}
}

func TestEnvBooleans(t *testing.T) {
	t.Setenv(EnvDebug, "yes")
	t.Setenv(EnvStats, "off")
	cfg := Defaults()
	cfg.ApplyEnv()
	if !cfg.Debug || cfg.ShowStats {
		t.Fatalf("Debug=%v ShowStats=%v", cfg.Debug, cfg.ShowStats)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"defaults", func(*Config) {}, 1280, 720, false},
		{"instagram", func(c *Config) { c.Preset = "4:5" }, 1080, 1350, false},
		{"odd size", func(c *Config) { c.Width, c.Height = 1001, 601 }, 1002, 602, false},
		{"unknown preset", func(c *Config) { c.Preset = "1:1" }, 0, 0, true},
		{"zero fps", func(c *Config) { c.FPS = 0 }, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			tt.mutate(&c)
			err := c.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if c.Width != tt.wantW || c.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", c.Width, c.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestCanvas(t *testing.T) {
	c := Defaults()
	if w, h := c.Canvas(); w != 960 || h != 540 {
		t.Fatalf("Canvas = %vx%v, want 960x540", w, h)
	}
}
