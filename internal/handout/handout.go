// Package handout prints a scenario as a PDF, one canvas-sized page per
// slide, showing every slide as it looks once its animations have played.
package handout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/ivlev/albumscript/internal/scenario"
	"github.com/ivlev/albumscript/internal/source"
	"github.com/ivlev/albumscript/internal/version"
)

// Options controls the handout.
type Options struct {
	// DPI is used for pictures that have to be rasterized first.
	DPI int
	// TmpDir receives rasterized pictures. Empty means a fresh temp dir.
	TmpDir string
	// PageNumbers adds "n / total" to the corner of every page.
	PageNumbers bool
}

const fontFamily = "Helvetica"

// Render lays out the handout. Units are canvas points.
func Render(sc *scenario.Scenario, opt Options) (*gofpdf.Fpdf, error) {
	if len(sc.Slides) == 0 {
		return nil, fmt.Errorf("сценарий не содержит слайдов")
	}
	if opt.DPI <= 0 {
		opt.DPI = source.DefaultDPI
	}
	if opt.TmpDir == "" {
		dir, err := os.MkdirTemp("", "albumscript_handout_")
		if err != nil {
			return nil, err
		}
		defer os.RemoveAll(dir)
		opt.TmpDir = dir
	}
	canvas := sc.Canvas
	if canvas.W <= 0 || canvas.H <= 0 {
		canvas = scenario.Size{W: scenario.DefaultCanvas.W, H: scenario.DefaultCanvas.H}
	}
	theme := sc.Theme
	if theme == nil {
		t, _ := scenario.LookupTheme("office")
		theme = &t
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: canvas.W, Ht: canvas.H},
	})
	pdf.SetTitle(sc.Title, true)
	pdf.SetCreator("albumscript "+version.Version, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for n, slide := range sc.Slides {
		pdf.AddPage()
		setFill(pdf, theme.Background)
		pdf.Rect(0, 0, canvas.W, canvas.H, "F")

		// картинки могут выходить за холст: обрезаем по нему
		pdf.ClipRect(0, 0, canvas.W, canvas.H, false)
		for _, sh := range slide.Shapes {
			var err error
			switch sh.Type {
			case scenario.ShapePicture:
				err = drawPicture(pdf, sh, opt)
			case scenario.ShapeTextBox:
				drawText(pdf, sh, theme, tr)
			}
			if err != nil {
				pdf.ClipEnd()
				return nil, fmt.Errorf("слайд %d: %w", slide.ID, err)
			}
		}
		pdf.ClipEnd()

		if opt.PageNumbers {
			pdf.SetFont(fontFamily, "", 8)
			setText(pdf, theme.Foreground)
			pdf.SetXY(canvas.W-60, canvas.H-14)
			pdf.CellFormat(54, 10, fmt.Sprintf("%d / %d", n+1, len(sc.Slides)), "", 0, "R", false, 0, "")
		}
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

// Write renders the handout to path.
func Write(sc *scenario.Scenario, path string, opt Options) error {
	pdf, err := Render(sc, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawPicture(pdf *gofpdf.Fpdf, sh *scenario.Shape, opt Options) error {
	path, err := source.Materialize(sh.Source, opt.TmpDir, opt.DPI)
	if err != nil {
		return err
	}
	r := sh.Rect
	pdf.ImageOptions(path, r.X, r.Y, r.W, r.H, false, gofpdf.ImageOptions{ReadDpi: false}, 0, "")
	return pdf.Error()
}

func drawText(pdf *gofpdf.Fpdf, sh *scenario.Shape, theme *scenario.Theme, tr func(string) string) {
	style := scenario.TextStyle{FontSize: 18, Align: "left"}
	if sh.Style != nil {
		style = *sh.Style
	}
	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	pdf.SetFont(fontFamily, fontStyle, style.FontSize)
	setText(pdf, theme.Foreground)

	align := "L"
	switch style.Align {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}
	inset := scenario.TextInset / 2
	lineH := style.FontSize * scenario.LineSpacing
	for i, line := range strings.Split(sh.Text, "\n") {
		pdf.SetXY(sh.Rect.X+inset, sh.Rect.Y+inset+float64(i)*lineH)
		pdf.CellFormat(sh.Rect.W-2*inset, lineH, tr(line), "", 0, align, false, 0, "")
	}
}

func setFill(pdf *gofpdf.Fpdf, hex string) {
	r, g, b, err := scenario.ParseHexColor(hex)
	if err != nil {
		return
	}
	pdf.SetFillColor(int(r), int(g), int(b))
}

func setText(pdf *gofpdf.Fpdf, hex string) {
	r, g, b, err := scenario.ParseHexColor(hex)
	if err != nil {
		return
	}
	pdf.SetTextColor(int(r), int(g), int(b))
}
