// Package config resolves the run configuration: built-in defaults, then a
// YAML file, then ALB_* environment variables, then command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	applog "github.com/ivlev/albumscript/internal/log"
)

// FileName is looked up next to the script when no -config flag is given.
const FileName = "albumscript.yaml"

// canvasHeight is the height of the presentation canvas; the width follows
// the video aspect ratio.
const canvasHeight = 540

type Config struct {
	ScriptPath     string `yaml:"script"`
	OutputScenario string `yaml:"scenario"`
	OutputVideo    string `yaml:"video"`
	Handout        string `yaml:"handout"`
	Storyboard     string `yaml:"storyboard"`

	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Preset  string `yaml:"preset"`
	FPS     int    `yaml:"fps"`
	Workers int    `yaml:"workers"`
	DPI     int    `yaml:"dpi"`

	VideoEncoder string `yaml:"encoder"`
	Quality      int    `yaml:"quality"`
	// FitToAudio stretches slide lengths to the music track.
	FitToAudio bool `yaml:"fit_to_audio"`

	Theme     string `yaml:"theme"`
	Seed      int64  `yaml:"seed"`
	Debug     bool   `yaml:"debug"`
	ShowStats bool   `yaml:"stats"`
	HistoryDB string `yaml:"history_db"`
	AssetDir  string `yaml:"asset_dir"`

	Log applog.Options `yaml:"log"`

	// History is the number of past runs to print; set from flags only.
	History      int    `yaml:"-"`
	ConfigFile   string `yaml:"-"`
	BuildVersion string `yaml:"-"`
}

// SegmentParams describes one slide segment of the video.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	FadeDuration  float64
	PageIndex     int
	Debug         bool
	// Filter is the complete -vf graph of the segment.
	Filter string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Width:     1280,
		Height:    720,
		FPS:       30,
		Workers:   runtime.NumCPU(),
		DPI:       150,
		Theme:     "office",
		ShowStats: true,
		HistoryDB: filepath.Join("output", "history.db"),
		Log:       applog.Options{Level: "info", Format: "console", Color: "auto"},
	}
}

// Env var names used as overrides.
const (
	EnvTheme      = "ALB_THEME"
	EnvWorkers    = "ALB_WORKERS"
	EnvFPS        = "ALB_FPS"
	EnvQuality    = "ALB_QUALITY"
	EnvEncoder    = "ALB_ENCODER"
	EnvSeed       = "ALB_SEED"
	EnvDebug      = "ALB_DEBUG"
	EnvStats      = "ALB_STATS"
	EnvHistoryDB  = "ALB_HISTORY_DB"
	EnvAssetDir   = "ALB_ASSET_DIR"
	EnvLogLevel   = "ALB_LOG_LEVEL"
	EnvLogFormat  = "ALB_LOG_FORMAT"
	EnvLogSource  = "ALB_LOG_SOURCE"
	EnvLogFile    = "ALB_LOG_FILE"
	EnvFitToAudio = "ALB_FIT_TO_AUDIO"
)

// Resolve builds the configuration for a command line. args excludes the
// program name.
func Resolve(args []string) (*Config, error) {
	// Первый проход: только путь к конфигу и скрипт
	probe := Defaults()
	pre := flag.NewFlagSet("albumscript", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	probe.Bind(pre)
	if err := pre.Parse(args); err != nil {
		return nil, err
	}

	cfg := Defaults()
	path := probe.ConfigFile
	explicit := path != ""
	script := probe.ScriptPath
	if script == "" && pre.NArg() > 0 {
		script = pre.Arg(0)
	}
	if !explicit && script != "" {
		path = filepath.Join(filepath.Dir(script), FileName)
	}
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		} else {
			cfg.ConfigFile = path
		}
	}
	cfg.ApplyEnv()

	fs := flag.NewFlagSet("albumscript", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ScriptPath == "" && fs.NArg() > 0 {
		cfg.ScriptPath = fs.Arg(0)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bind registers every flag on fs with the current values as defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Путь к YAML-конфигу (по умолчанию: albumscript.yaml рядом со скриптом)")
	fs.StringVar(&c.ScriptPath, "script", c.ScriptPath, "Путь к скрипту альбома (по умолчанию: самый свежий файл в input/scripts/)")
	fs.StringVar(&c.OutputScenario, "scenario", c.OutputScenario, "Путь к YAML-сценарию (если пусто, генерируется автоматически в output/)")
	fs.StringVar(&c.OutputVideo, "video", c.OutputVideo, "Путь к видео (если пусто, видео не рендерится)")
	fs.StringVar(&c.Handout, "handout", c.Handout, "Путь к PDF-раздатке")
	fs.StringVar(&c.Storyboard, "storyboard", c.Storyboard, "Путь к SVG-раскадровке")
	fs.IntVar(&c.Width, "width", c.Width, "Ширина")
	fs.IntVar(&c.Height, "height", c.Height, "Высота")
	fs.StringVar(&c.Preset, "preset", c.Preset, "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	fs.IntVar(&c.FPS, "fps", c.FPS, "FPS")
	fs.IntVar(&c.Workers, "workers", c.Workers, "Потоки (0 - по числу ядер и памяти)")
	fs.IntVar(&c.DPI, "dpi", c.DPI, "DPI для страниц PDF")
	fs.StringVar(&c.VideoEncoder, "encoder", c.VideoEncoder, "Видеокодек (по умолчанию: лучший доступный H.264)")
	fs.IntVar(&c.Quality, "quality", c.Quality, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	fs.BoolVar(&c.FitToAudio, "fit-audio", c.FitToAudio, "Растянуть слайды под длительность музыки")
	fs.StringVar(&c.Theme, "theme", c.Theme, "Тема оформления: office, dark, light, sepia")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "Зерно генератора случайных чисел (0 - по времени)")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Подписи с путями к изображениям")
	fs.BoolVar(&c.ShowStats, "stats", c.ShowStats, "Показать отчёт о производительности")
	fs.StringVar(&c.HistoryDB, "history-db", c.HistoryDB, "Путь к базе истории запусков (пусто - не вести)")
	fs.IntVar(&c.History, "history", c.History, "Показать N последних запусков и выйти")
	fs.StringVar(&c.AssetDir, "assets", c.AssetDir, "Папка для сгенерированных файлов (QR-коды)")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Уровень логирования: debug, info, warn, error")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Формат логов: console, json")
	fs.StringVar(&c.Log.File, "log-file", c.Log.File, "Файл логов (с ротацией)")
}

// MergeFile overlays the keys present in a YAML file onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	return nil
}

// ApplyEnv overlays ALB_* variables onto c. Unparsable numbers are ignored.
func (c *Config) ApplyEnv() {
	if v := env(EnvTheme); v != "" {
		c.Theme = v
	}
	if v := env(EnvEncoder); v != "" {
		c.VideoEncoder = v
	}
	if v := env(EnvHistoryDB); v != "" {
		c.HistoryDB = v
	}
	if v := env(EnvAssetDir); v != "" {
		c.AssetDir = v
	}
	envInt(EnvWorkers, &c.Workers)
	envInt(EnvFPS, &c.FPS)
	envInt(EnvQuality, &c.Quality)
	if v := env(EnvSeed); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	envBool(EnvDebug, &c.Debug)
	envBool(EnvStats, &c.ShowStats)
	envBool(EnvFitToAudio, &c.FitToAudio)

	if v := env(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	envBool(EnvLogSource, &c.Log.AddSource)
	if v := env(EnvLogFile); v != "" {
		c.Log.File = v
	}
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envInt(key string, dst *int) {
	if v := env(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := env(key); v != "" {
		lv := strings.ToLower(v)
		*dst = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
}

// Normalize applies the preset and checks the numeric settings.
func (c *Config) Normalize() error {
	switch c.Preset {
	case "":
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	default:
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	}
	// libx264 требует чётные размеры
	c.Width += c.Width % 2
	c.Height += c.Height % 2
	if c.FPS <= 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers %d", c.Workers)
	}
	if c.DPI <= 0 {
		return fmt.Errorf("invalid dpi %d", c.DPI)
	}
	return nil
}

// Canvas is the presentation slide size matching the video aspect ratio.
func (c *Config) Canvas() (w, h float64) {
	return canvasHeight * float64(c.Width) / float64(c.Height), canvasHeight
}
