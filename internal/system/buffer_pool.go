package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы
// параллельные воркеры видео не нагружали GC.
type ImagePool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var frames = NewImagePool()

// GetFrame returns a w×h RGBA frame from the shared pool. Its pixels are not
// cleared.
func GetFrame(w, h int) *image.RGBA { return frames.Get(w, h) }

// PutFrame hands a frame back to the shared pool.
func PutFrame(img *image.RGBA) { frames.Put(img) }

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	sp, ok := p.pools[size]
	if !ok {
		sp = &sync.Pool{New: func() any {
			return image.NewRGBA(image.Rectangle{Max: size})
		}}
		p.pools[size] = sp
	}
	return sp
}

func (p *ImagePool) Get(w, h int) *image.RGBA {
	return p.pool(image.Pt(w, h)).Get().(*image.RGBA)
}

// Put ignores frames that do not start at the origin.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}
