package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/albumscript/internal/album"
	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	"github.com/ivlev/albumscript/internal/config"
	"github.com/ivlev/albumscript/internal/handout"
	"github.com/ivlev/albumscript/internal/history"
	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/scenario"
	"github.com/ivlev/albumscript/internal/source"
	"github.com/ivlev/albumscript/internal/storyboard"
	"github.com/ivlev/albumscript/internal/video"
)

// Renderer turns a finished scenario into a video file.
type Renderer interface {
	Render(ctx context.Context, sc *scenario.Scenario, out string) (video.Stats, error)
}

// Project runs one album script through the whole pipeline.
type Project struct {
	Config *config.Config
	Prober scenario.SizeProber
	// Renderer is used when Config.OutputVideo is set.
	Renderer Renderer
	// History, when set, gets one record per run, failed runs included.
	History *history.Store
	Logger  *slog.Logger
}

// Result describes a finished run.
type Result struct {
	Scenario *scenario.Scenario
	Video    video.Stats
	Elapsed  time.Duration
}

func NewProject(cfg *config.Config) *Project {
	return &Project{
		Config:   cfg,
		Prober:   source.NewProber(),
		Renderer: video.NewRenderer(cfg),
		Logger:   applog.WithComponent("project"),
	}
}

// DefaultScenarioPath is output/<script name>.yaml.
func DefaultScenarioPath(scriptPath string) string {
	base := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	return filepath.Join("output", base+".yaml")
}

func (p *Project) Run(ctx context.Context) (res Result, err error) {
	startTime := time.Now()
	cfg := p.Config
	log := p.Logger
	if log == nil {
		log = applog.Discard()
	}
	if p.History != nil {
		defer func() { p.record(ctx, res, err, startTime) }()
	}

	f, err := os.Open(cfg.ScriptPath)
	if err != nil {
		return res, fmt.Errorf("открытие скрипта: %w", err)
	}
	defer f.Close()

	out := cfg.OutputScenario
	if out == "" {
		out = DefaultScenarioPath(cfg.ScriptPath)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return res, err
	}

	cw, ch := cfg.Canvas()
	app := &scenario.App{Prober: p.Prober, Out: out}
	pres, err := app.NewPresentation(ctx, backend.Options{
		Title:  strings.TrimSuffix(filepath.Base(cfg.ScriptPath), filepath.Ext(cfg.ScriptPath)),
		Canvas: backend.Size{W: cw, H: ch},
		Script: cfg.ScriptPath,
	})
	if err != nil {
		return res, err
	}
	if err := pres.ApplyTheme(cfg.Theme); err != nil {
		return res, err
	}

	workDir, err := filepath.Abs(filepath.Dir(cfg.ScriptPath))
	if err != nil {
		return res, err
	}
	var rnd *rand.Rand
	if cfg.Seed != 0 {
		rnd = rand.New(rand.NewSource(cfg.Seed))
	}
	doc := album.NewDocument(pres, album.Config{
		WorkDir:  workDir,
		AssetDir: cfg.AssetDir,
		Rand:     rnd,
		Logger:   log.With(slog.String("component", "album")),
	})

	fmt.Printf("[*] Скрипт: %s | Тема: %s | Холст: %.0fx%.0f\n", cfg.ScriptPath, cfg.Theme, cw, ch)
	in := NewInterpreter(doc, pres)
	in.Logger = log
	if cfg.Debug {
		in.Observer = logObserver{log}
	}
	// Run финализирует презентацию: сценарий валидируется и пишется в out
	if err := in.Run(ctx, f); err != nil {
		return res, err
	}
	sc := pres.(*scenario.Presentation).Scenario()
	res.Scenario = sc
	fmt.Printf("[+++] Сценарий сохранен: %s (слайдов: %d, %.2fs)\n", out, len(sc.Slides), sc.TotalDuration())

	if cfg.Storyboard != "" {
		if err := storyboard.WriteFile(cfg.Storyboard, sc, storyboard.Options{}); err != nil {
			return res, fmt.Errorf("раскадровка: %w", err)
		}
		fmt.Printf("[+++] Раскадровка: %s\n", cfg.Storyboard)
	}
	if cfg.Handout != "" {
		if err := handout.Write(sc, cfg.Handout, handout.Options{DPI: cfg.DPI, PageNumbers: true}); err != nil {
			return res, fmt.Errorf("раздатка: %w", err)
		}
		fmt.Printf("[+++] Раздатка: %s\n", cfg.Handout)
	}
	if cfg.OutputVideo != "" {
		if p.Renderer == nil {
			return res, fmt.Errorf("видео недоступно: рендерер не настроен")
		}
		fmt.Println("--- [PROJECT: ALBUM VIDEO] ---")
		fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Кодек: %s | Потоки: %d\n", cfg.Width, cfg.Height, cfg.FPS, cfg.VideoEncoder, cfg.Workers)
		fmt.Println("-----------------------------")
		if res.Video, err = p.Renderer.Render(ctx, sc, cfg.OutputVideo); err != nil {
			return res, err
		}
		fmt.Printf("[+++] Видео: %s\n", cfg.OutputVideo)
	}

	res.Elapsed = time.Since(startTime)
	if cfg.ShowStats {
		fmt.Print(report(cfg.BuildVersion, len(sc.Slides), res))
	}
	return res, nil
}

func report(build string, slides int, res Result) string {
	st := res.Video
	return fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Slides: %d\n"+
			"Total Time: %.2fs\n"+
			"Rendering (CPU): %.2fs\n"+
			"Encoding (GPU/CPU): %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Video Length: %.2fs\n"+
			"----------------------------\n",
		build, slides, res.Elapsed.Seconds(), st.Compose.Seconds(), st.Encode.Seconds(), st.Concat.Seconds(), st.Length,
	)
}

func (p *Project) record(ctx context.Context, res Result, runErr error, started time.Time) {
	r := history.Run{
		Started: started,
		Build:   p.Config.BuildVersion,
		Script:  p.Config.ScriptPath,
		Output:  p.Config.OutputVideo,
		Elapsed: time.Since(started),
		Compose: res.Video.Compose,
		Encode:  res.Video.Encode,
		Concat:  res.Video.Concat,
	}
	if res.Scenario != nil {
		r.Pages = len(res.Scenario.Slides)
	}
	if runErr != nil {
		r.Err = runErr.Error()
	}
	if _, err := p.History.Record(ctx, r); err != nil {
		fmt.Printf("[!] Не удалось записать историю: %v\n", err)
	}
}

// logObserver traces the scope stack at debug level.
type logObserver struct{ log *slog.Logger }

func (o logObserver) Entered(s closure.Scope, depth int) {
	o.log.Debug("scope entered", slog.String("kind", s.Kind()), slog.Int("depth", depth))
}

func (o logObserver) Left(s closure.Scope) {
	o.log.Debug("scope left", slog.String("kind", s.Kind()))
}
