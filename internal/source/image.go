package source

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// IsImage reports whether path has a supported raster extension.
func IsImage(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// ImageSource is a single image file or a directory of them, one page each.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImage(entry.Name()) {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

func (s *ImageSource) GetPageDimensions(index int) (float64, float64, error) {
	if index < 0 || index >= len(s.paths) {
		return 0, 0, fmt.Errorf("image page %d out of range", index+1)
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", s.paths[index], err)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// RenderPage decodes the image; dpi is ignored.
func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	if index < 0 || index >= len(s.paths) {
		return nil, fmt.Errorf("image page %d out of range", index+1)
	}
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.paths[index], err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// Prober measures picture references and caches the result per path.
type Prober struct {
	mu    sync.Mutex
	cache map[string][2]float64
}

func NewProber() *Prober {
	return &Prober{cache: make(map[string][2]float64)}
}

// Probe returns the natural size of the picture in pixels.
func (p *Prober) Probe(path string) (float64, float64, error) {
	p.mu.Lock()
	if wh, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return wh[0], wh[1], nil
	}
	p.mu.Unlock()

	ref, err := ParseRef(path)
	if err != nil {
		return 0, 0, err
	}
	src, err := Open(ref)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()
	w, h, err := src.GetPageDimensions(ref.Page)
	if err != nil {
		return 0, 0, err
	}

	p.mu.Lock()
	p.cache[path] = [2]float64{w, h}
	p.mu.Unlock()
	return w, h, nil
}

// Decode loads the picture behind path.
func Decode(path string, dpi int) (image.Image, error) {
	ref, err := ParseRef(path)
	if err != nil {
		return nil, err
	}
	src, err := Open(ref)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.RenderPage(ref.Page, dpi)
}

// Materialize makes path usable by tools that only read JPEG and PNG files.
// Such files are returned unchanged; anything else is rendered to a PNG
// in dir.
func Materialize(path, dir string, dpi int) (string, error) {
	ref, err := ParseRef(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(ref.File)) {
	case ".jpg", ".jpeg", ".png":
		return ref.File, nil
	}

	img, err := Decode(path, dpi)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(ref.File), filepath.Ext(ref.File))
	out := filepath.Join(dir, fmt.Sprintf("%s-p%d.png", base, ref.Page+1))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := WritePNG(out, img); err != nil {
		return "", err
	}
	return out, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteJPEG encodes img to path at the given quality.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
