package export

import (
	"bytes"
	"fmt"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in letter bodies is not rendered.
var previewMarkdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Preview renders the body as an HTML fragment for the preview pane. Line
// breaks are kept as <br>. Error documents preview normally so the message
// can be shown.
func Preview(doc models.Document) (string, error) {
	var buf bytes.Buffer
	if err := previewMarkdown.Convert([]byte(doc.Content), &buf); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return buf.String(), nil
}
