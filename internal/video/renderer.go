package video

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/albumscript/internal/config"
	"github.com/ivlev/albumscript/internal/effects"
	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/scenario"
	"github.com/ivlev/albumscript/internal/source"
	"github.com/ivlev/albumscript/internal/system"
)

// Stats times the stages of a render.
type Stats struct {
	Segments int
	Length   float64
	Compose  time.Duration
	Encode   time.Duration
	Concat   time.Duration
}

// Renderer renders scenarios with a pool of segment workers.
type Renderer struct {
	Config  *config.Config
	Encoder VideoEncoder
	Logger  *slog.Logger
	// DrawText is false when ffmpeg was built without drawtext.
	DrawText bool
	// ProbeAudio measures music for FitToAudio; system.GetAudioDuration
	// when nil.
	ProbeAudio func(ctx context.Context, path string) (float64, error)
}

// NewRenderer returns a renderer using the local ffmpeg.
func NewRenderer(cfg *config.Config) *Renderer {
	return &Renderer{
		Config:   cfg,
		Encoder:  &FFmpegEncoder{},
		Logger:   applog.WithComponent("video"),
		DrawText: system.CheckFilterSupport("drawtext"),
	}
}

// Render writes the video of sc to out.
func (r *Renderer) Render(ctx context.Context, sc *scenario.Scenario, out string) (Stats, error) {
	log := r.Logger
	if log == nil {
		log = applog.Discard()
	}
	log = applog.WithOperation(log, "render")
	cfg := r.Config

	plan, err := NewPlan(sc, cfg.FPS, log)
	if err != nil {
		return Stats{}, err
	}
	if cfg.FitToAudio && len(plan.Audio) > 0 {
		probe := r.ProbeAudio
		if probe == nil {
			probe = system.GetAudioDuration
		}
		d, err := probe(ctx, plan.Audio[0].Path)
		if err != nil {
			return Stats{}, fmt.Errorf("длительность музыки: %w", err)
		}
		// музыка должна закончиться вместе с видео, хотя её начало тоже сдвигается
		before := plan.Total()
		if start := plan.Audio[0].Start; start < before {
			plan.FitTo(d*before/(before-start), cfg.FPS)
		}
		fmt.Printf("[*] Сценарий масштабирован под аудио (x%.3f): %.2fs\n", plan.Total()/before, plan.Total())
	}

	tmpDir, err := os.MkdirTemp("", "albumscript_")
	if err != nil {
		return Stats{}, err
	}
	defer os.RemoveAll(tmpDir)

	theme := sc.Theme
	canvas := sc.Canvas
	if canvas.W <= 0 || canvas.H <= 0 {
		cw, ch := cfg.Canvas()
		canvas = scenario.Size{W: cw, H: ch}
	}

	stats := Stats{Segments: len(plan.Segments), Length: plan.Total()}
	var mu sync.Mutex
	results := make([]string, len(plan.Segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, cfg.Workers))
	for i, seg := range plan.Segments {
		g.Go(func() error {
			composeStart := time.Now()
			stage, err := effects.NewStage(seg.Slide, canvas, cfg.Width)
			if err != nil {
				return err
			}
			frame, err := compose(stage, theme, cfg.DPI)
			if err != nil {
				return fmt.Errorf("слайд %d: %w", seg.Slide.ID, err)
			}
			defer system.PutFrame(frame)

			segDir := filepath.Join(tmpDir, fmt.Sprintf("s%d", i))
			if err := os.MkdirAll(segDir, 0755); err != nil {
				return err
			}
			eff := &effects.SlideEffect{
				Stage:    stage,
				Slide:    seg.Slide,
				Theme:    theme,
				TextDir:  segDir,
				DrawText: r.DrawText,
			}
			var inputs []string
			for _, sh := range seg.Slide.Shapes {
				if sh.Type != scenario.ShapePicture || sh == stage.Picture {
					continue
				}
				path, err := source.Materialize(sh.Source, segDir, cfg.DPI)
				if err != nil {
					return fmt.Errorf("слайд %d: %w", seg.Slide.ID, err)
				}
				inputs = append(inputs, path)
				eff.Overlays = append(eff.Overlays, effects.Overlay{Path: path, Rect: sh.Rect})
			}
			if err := eff.Prepare(); err != nil {
				return err
			}
			params := config.SegmentParams{
				Width:        cfg.Width,
				Height:       cfg.Height,
				FPS:          cfg.FPS,
				Duration:     seg.Duration,
				FadeDuration: seg.Fade,
				PageIndex:    i,
				Debug:        cfg.Debug,
			}
			params.Filter = eff.GenerateFilter(params)
			composed := time.Since(composeStart)

			encodeStart := time.Now()
			segPath := filepath.Join(tmpDir, fmt.Sprintf("s%d.mp4", i))
			if err := r.Encoder.EncodeSegment(gctx, frame, inputs, segPath, params, cfg.VideoEncoder, cfg.Quality); err != nil {
				return fmt.Errorf("сегмент %d: %w", i, err)
			}

			mu.Lock()
			results[i] = segPath
			stats.Compose += composed
			stats.Encode += time.Since(encodeStart)
			mu.Unlock()
			log.Debug("segment ready", "index", i, "slide", seg.Slide.ID, "duration", seg.Duration)
			fmt.Printf("[>] Ready: %d/%d\n", i+1, len(plan.Segments))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	fmt.Println("[*] Сборка финального видео (с эффектами переходов)...")
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return stats, err
	}
	concatStart := time.Now()
	if err := r.Encoder.Concatenate(ctx, plan, results, out, tmpDir, cfg.VideoEncoder, cfg.Quality); err != nil {
		return stats, fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	stats.Concat = time.Since(concatStart)
	return stats, nil
}

// compose paints the stage frame: the theme background with the primary
// picture scaled into place.
func compose(stage *effects.Stage, theme *scenario.Theme, dpi int) (*image.RGBA, error) {
	w, h := stage.FrameSize()
	frame := system.GetFrame(w, h)
	draw.Draw(frame, frame.Bounds(), image.NewUniform(background(theme)), image.Point{}, draw.Src)

	if stage.Picture == nil {
		return frame, nil
	}
	img, err := source.Decode(stage.Picture.Source, dpi)
	if err != nil {
		system.PutFrame(frame)
		return nil, err
	}
	xdraw.CatmullRom.Scale(frame, stage.PictureRect(), img, img.Bounds(), xdraw.Over, nil)
	return frame, nil
}

func background(theme *scenario.Theme) color.RGBA {
	if theme == nil {
		return color.RGBA{A: 255}
	}
	r, g, b, err := scenario.ParseHexColor(theme.Background)
	if err != nil {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
