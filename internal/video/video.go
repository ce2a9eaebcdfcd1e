// Package video turns a scenario into an mp4: one ffmpeg segment per slide,
// then a final pass that joins them with transitions and music.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/albumscript/internal/config"
)

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, img image.Image, overlays []string, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, plan *Plan, segmentPaths []string, finalPath, tmpDir, encoderName string, quality int) error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	img image.Image,
	overlays []string,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	inputW, inputH := img.Bounds().Dx(), img.Bounds().Dy()
	args := segmentArgs(inputW, inputH, overlays, videoPath, params, encoderName, quality)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Один кадр raw RGBA: zoompan с d=N размножит его
	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write raw error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out.String())
	}
	return nil
}

func segmentArgs(
	inputW, inputH int,
	overlays []string,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-i", "-",
	}
	for _, o := range overlays {
		args = append(args, "-i", o)
	}
	args = append(args,
		"-filter_complex", params.Filter,
		"-map", "[out]",
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	)
	args = append(args, qualityArgs(encoderName, quality)...)
	return append(args, videoPath)
}

// qualityArgs maps the quality setting onto the encoder's own knob.
func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox не везде понимает -q:v, используем битрейт: 75 -> 7.5 Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

func (e *FFmpegEncoder) Concatenate(ctx context.Context, plan *Plan, segmentPaths []string, finalPath, tmpDir, encoderName string, quality int) error {
	// Без переходов и музыки сегменты склеиваются без перекодирования
	if !plan.HasTransitions() && len(plan.Audio) == 0 {
		listPath := filepath.Join(tmpDir, "inputs.txt")
		if err := writeConcatList(listPath, segmentPaths); err != nil {
			return err
		}
		cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
			"-f", "concat", "-safe", "0", "-i", listPath,
			"-c", "copy", finalPath,
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
		}
		return nil
	}

	args := concatArgs(plan, segmentPaths, finalPath, encoderName, quality)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg xfade error: %v, output: %s", err, string(out))
	}
	return nil
}

func writeConcatList(path string, segmentPaths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, p := range segmentPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			f.Close()
			return err
		}
		fmt.Fprintf(f, "file '%s'\n", abs)
	}
	return f.Close()
}

func concatArgs(plan *Plan, segmentPaths []string, finalPath, encoderName string, quality int) []string {
	args := []string{"-y"}
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}
	for _, tr := range plan.Audio {
		args = append(args, "-i", tr.Path)
	}

	graph, videoOut, audioOut := plan.FilterGraph()
	if graph != "" {
		args = append(args, "-filter_complex", graph)
	}
	args = append(args, "-map", videoOut)
	if audioOut != "" {
		args = append(args, "-map", audioOut, "-c:a", "aac")
	}
	// музыка не должна удлинять видео
	args = append(args, "-t", fmt.Sprintf("%f", plan.Total()))

	args = append(args, "-c:v", encoderName, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(encoderName, quality)...)
	return append(args, finalPath)
}
