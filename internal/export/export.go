// Package export renders letter documents as downloadable files and as an
// HTML preview.
package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// Format is a download format.
type Format string

const (
	FormatText Format = "txt"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// Content types of the produced files.
const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypePDF  = "application/pdf"
)

var (
	// ErrErrorDocument is returned when asked to export a synthesized error document.
	ErrErrorDocument = errors.New("error documents cannot be exported")
	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("unknown export format")
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ParseFormat accepts txt, text, html, docx (served as HTML) and pdf.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "html", "docx":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FileName turns a title into a download name: every whitespace run becomes
// an underscore and ext is appended.
func FileName(title string, ext Format) string {
	return whitespaceRun.ReplaceAllString(title, "_") + "." + string(ext)
}

// Artifact is one rendered file.
type Artifact struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Exporter renders documents in every supported format.
type Exporter struct {
	pdf *PDFRenderer
}

// NewExporter creates an Exporter using the given PDF renderer. A nil
// renderer uses the default font.
func NewExporter(pdf *PDFRenderer) *Exporter {
	if pdf == nil {
		pdf = &PDFRenderer{}
	}
	return &Exporter{pdf: pdf}
}

// Export renders doc as f.
func (e *Exporter) Export(doc models.Document, f Format) (Artifact, error) {
	if doc.IsError() {
		return Artifact{}, ErrErrorDocument
	}
	var (
		data []byte
		ct   string
		err  error
	)
	switch f {
	case FormatText:
		data, ct = Text(doc), ContentTypeText
	case FormatHTML:
		data, err = HTML(doc)
		ct = ContentTypeHTML
	case FormatPDF:
		data, err = e.pdf.Render(doc)
		ct = ContentTypePDF
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{FileName: FileName(doc.Title, f), ContentType: ct, Data: data}, nil
}

// Text returns the raw body as UTF-8.
func Text(doc models.Document) []byte {
	return []byte(doc.Content)
}
