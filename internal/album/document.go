// Package album implements the scopes of an album script: the document
// root, pages, text boxes and the transition pool.
package album

import (
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/ivlev/albumscript/internal/backend"
	"github.com/ivlev/albumscript/internal/closure"
	applog "github.com/ivlev/albumscript/internal/log"
)

// TransitionDuration is the entry transition length of every page.
const TransitionDuration = time.Second

// Config carries the run settings a Document needs.
type Config struct {
	// WorkDir is the initial working directory, normally the script's directory.
	WorkDir string
	// AssetDir receives generated files such as QR codes. Empty means WorkDir.
	AssetDir string
	// Rand drives every random choice. Nil means a time-seeded source.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Document is the root scope.
type Document struct {
	pres     backend.Presentation
	canvas   backend.Size
	workDir  string
	assetDir string
	debug    bool
	rnd      *rand.Rand
	log      *slog.Logger

	pool  *TransitionPool
	pages []*Page
}

var documentOps = closure.NewTable("Document",
	closure.Op[*Document]{
		Name:   "DIR",
		Params: []closure.Param{closure.Required("path", closure.String)},
		Fn: func(d *Document, a closure.Args) (closure.Outcome, error) {
			d.SetWorkDir(a.String(0))
			return closure.Stay(), nil
		},
	},
	closure.Op[*Document]{
		Name:   "DEBUG",
		Params: []closure.Param{closure.Required("value", closure.Bool)},
		Fn: func(d *Document, a closure.Args) (closure.Outcome, error) {
			d.debug = a.Bool(0)
			return closure.Stay(), nil
		},
	},
	closure.Op[*Document]{
		Name: "PAGE",
		Params: []closure.Param{
			closure.Optional("image", closure.String, ""),
			closure.Optional("caption", closure.String, ""),
		},
		Fn: func(d *Document, a closure.Args) (closure.Outcome, error) {
			p, err := d.AddPage(a.String(0), a.String(1))
			if err != nil {
				return closure.Outcome{}, err
			}
			return closure.Descend(p), nil
		},
	},
	closure.Op[*Document]{
		Name: "TRANSITIONS",
		Fn: func(d *Document, a closure.Args) (closure.Outcome, error) {
			return closure.Descend(d.pool), nil
		},
	},
)

// NewDocument creates the root scope over pres. The canvas size is read once.
func NewDocument(pres backend.Presentation, cfg Config) *Document {
	d := &Document{
		pres:     pres,
		canvas:   pres.SlideSize(),
		workDir:  cfg.WorkDir,
		assetDir: cfg.AssetDir,
		rnd:      cfg.Rand,
		log:      cfg.Logger,
	}
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if d.log == nil {
		d.log = applog.WithComponent("album")
	}
	d.pool = newTransitionPool(d)
	return d
}

func (d *Document) Kind() string          { return "Document" }
func (d *Document) Parent() closure.Scope { return nil }

func (d *Document) Invoke(command string, params []string) (closure.Outcome, error) {
	return documentOps.Invoke(d, command, params)
}

// Leave closes the album.
func (d *Document) Leave() error {
	d.log.Debug("document closed", slog.Int("pages", len(d.pages)), slog.String("work_dir", d.workDir))
	return nil
}

// SetWorkDir joins path onto the working directory; an absolute path
// replaces it.
func (d *Document) SetWorkDir(path string) {
	if filepath.IsAbs(path) || d.workDir == "" {
		d.workDir = filepath.Clean(path)
		return
	}
	d.workDir = filepath.Join(d.workDir, path)
}

// WorkDir is the directory relative asset paths are resolved against.
func (d *Document) WorkDir() string { return d.workDir }

// Debug reports whether pages get a debug label.
func (d *Document) Debug() bool { return d.debug }

// Canvas is the cached slide size.
func (d *Document) Canvas() backend.Size { return d.canvas }

// Pool is the permanent transition pool scope.
func (d *Document) Pool() *TransitionPool { return d.pool }

// Pages lists the pages created so far.
func (d *Document) Pages() []*Page { return append([]*Page(nil), d.pages...) }

// Resolve makes an asset path absolute against the working directory.
func (d *Document) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(d.workDir, path)
}

func (d *Document) assetPath(name string) string {
	dir := d.assetDir
	if dir == "" {
		dir = d.workDir
	}
	return filepath.Join(dir, name)
}

// AddPage appends a slide and returns its scope. image is resolved against
// the working directory.
func (d *Document) AddPage(image, caption string) (*Page, error) {
	slide, err := d.pres.AddSlide(d.pres.SlideCount() + 1)
	if err != nil {
		return nil, fmt.Errorf("add slide: %w", err)
	}
	p := newPage(d, slide)
	if err := p.init(d.Resolve(image), caption); err != nil {
		return nil, fmt.Errorf("page %d: %w", slide.Index(), err)
	}
	d.pages = append(d.pages, p)
	return p, nil
}
