// Package source opens the pictures an album refers to: plain image files
// and single pages of PDF documents addressed as "file.pdf#N".
package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// DefaultDPI is the rendering resolution of PDF pages.
const DefaultDPI = 150

// Source is a paged picture container.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Ref is a parsed picture reference. Page is 0-based.
type Ref struct {
	File string
	Page int
}

// ParseRef splits "deck.pdf#3" into the file and the 0-based page 2. Paths
// without a page selector address page 0.
func ParseRef(path string) (Ref, error) {
	i := strings.LastIndexByte(path, '#')
	if i < 0 || !IsPDF(path[:i]) {
		return Ref{File: path}, nil
	}
	n, err := strconv.Atoi(path[i+1:])
	if err != nil || n < 1 {
		return Ref{}, fmt.Errorf("invalid page selector in %q", path)
	}
	return Ref{File: path[:i], Page: n - 1}, nil
}

// IsPDF reports whether path names a PDF document.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Open returns the container behind ref.
func Open(ref Ref) (Source, error) {
	if IsPDF(ref.File) {
		return NewFitzPDFSource(ref.File)
	}
	return NewImageSource(ref.File)
}

// FitzPDFSource renders PDF pages through MuPDF.
type FitzPDFSource struct {
	mu   sync.Mutex
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// GetPageDimensions returns the page size in pixels at DefaultDPI.
func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	if err := f.checkPage(index); err != nil {
		return 0, 0, err
	}
	f.mu.Lock()
	rect, err := f.doc.Bound(index)
	f.mu.Unlock()
	if err != nil {
		return 0, 0, err
	}
	// Bound отдаёт размер в пунктах (72 dpi)
	scale := float64(DefaultDPI) / 72
	return float64(rect.Dx()) * scale, float64(rect.Dy()) * scale, nil
}

// RenderPage opens a private document handle so that pages can be rendered
// from several goroutines.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	if err := f.checkPage(index); err != nil {
		return nil, err
	}
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) checkPage(index int) error {
	if index < 0 || index >= f.PageCount() {
		return fmt.Errorf("%s: page %d out of range 1..%d", f.path, index+1, f.PageCount())
	}
	return nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
