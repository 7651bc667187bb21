package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/mukherjeesourav86-gif/ai-letter-writing/internal/models"
)

// FontStylesheetURL loads the web fonts needed for Latin, Devanagari, Bengali
// and Tamil text.
const FontStylesheetURL = "https://fonts.googleapis.com/css2?family=Poppins&family=Noto+Sans&family=Noto+Sans+Bengali&family=Noto+Sans+Devanagari&family=Noto+Sans+Tamil&display=swap"

var htmlTemplate = template.Must(template.New("letter").Parse(`<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link href="{{.FontURL}}" rel="stylesheet">
<style>
body {
  font-family: 'Poppins', 'Noto Sans', 'Noto Sans Devanagari', 'Noto Sans Bengali', 'Noto Sans Tamil', sans-serif;
  line-height: 1.6;
  margin: 40px;
}
pre {
  white-space: pre-wrap;
  font-family: inherit;
}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<pre>{{.Content}}</pre>
</body>
</html>
`))

// HTML renders doc as a standalone HTML page. It stands in for a word
// processor file: most editors open it directly.
func HTML(doc models.Document) ([]byte, error) {
	if doc.IsError() {
		return nil, ErrErrorDocument
	}
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Language string
		Title    string
		FontURL  string
		Content  string
	}{
		Language: doc.Language,
		Title:    doc.Title,
		FontURL:  FontStylesheetURL,
		Content:  doc.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML export: %w", err)
	}
	return buf.Bytes(), nil
}
