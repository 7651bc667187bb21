package export

import (
	"bytes"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Page geometry in millimetres and the raster resolution.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	paddingMM    = 20.0
	fontSizePt   = 12.0
	lineHeight   = 1.6
	rasterDPI    = 150.0
)

func mmToPx(mm float64) float64 {
	return mm / 25.4 * rasterDPI
}

// PDFRenderer rasterizes a letter body onto one A4 page.
type PDFRenderer struct {
	// FontPath is a TrueType font file. Empty uses Go Regular, which has no
	// Indic glyphs; set it to a Noto font for those scripts.
	FontPath string
}

// NewPDFRenderer creates a renderer using the font at fontPath, or the
// built-in font when fontPath is empty. The font is validated eagerly.
func NewPDFRenderer(fontPath string) (*PDFRenderer, error) {
	r := &PDFRenderer{FontPath: fontPath}
	if _, err := r.fontFace(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PDFRenderer) fontFace() (font.Face, error) {
	data := goregular.TTF
	if r.FontPath != "" {
		b, err := os.ReadFile(r.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		data = b
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    fontSizePt,
		DPI:     rasterDPI,
		Hinting: font.HintingFull,
	}), nil
}

// Render returns a single-page A4 PDF holding an image of the body.
func (r *PDFRenderer) Render(doc models.Document) ([]byte, error) {
	if doc.IsError() {
		return nil, ErrErrorDocument
	}
	png, heightPx, err := r.rasterize(doc.Content)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("LetterCraft", true)
	pdf.AddPage()

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("letter", opts, bytes.NewReader(png))

	// Overflowing bodies are scaled down to keep a single page.
	w, h := pageWidthMM, pageHeightMM
	if full := math.Ceil(mmToPx(pageHeightMM)); heightPx > full {
		w = pageWidthMM * full / heightPx
	}
	pdf.ImageOptions("letter", (pageWidthMM-w)/2, 0, w, h, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterize draws body onto a white A4 canvas, growing it downwards if the
// text does not fit. It returns the PNG and the canvas height in pixels.
func (r *PDFRenderer) rasterize(body string) ([]byte, float64, error) {
	face, err := r.fontFace()
	if err != nil {
		return nil, 0, err
	}
	width := math.Ceil(mmToPx(pageWidthMM))
	pageHeight := math.Ceil(mmToPx(pageHeightMM))
	pad := mmToPx(paddingMM)

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	lines := wrapLines(measure, body, width-2*pad)
	step := measure.FontHeight() * lineHeight

	height := pageHeight
	if need := 2*pad + float64(len(lines))*step; need > height {
		height = math.Ceil(need)
		slog.Debug("PDFRenderer.rasterize: body taller than one page", "lines", len(lines), "height_px", height)
	}

	dc := gg.NewContext(int(width), int(height))
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetFontFace(face)
	y := pad
	for _, line := range lines {
		if line != "" {
			dc.DrawStringAnchored(line, pad, y, 0, 1)
		}
		y += step
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), height, nil
}

// wrapLines word-wraps each source line to width, keeping blank lines that
// separate paragraphs.
func wrapLines(dc *gg.Context, body string, width float64) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, dc.WordWrap(line, width)...)
	}
	return out
}
