package mail

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>%s</title></head>
<body style="font-family:Helvetica,Arial,sans-serif;color:#1f2937;line-height:1.6;max-width:600px;margin:0 auto;padding:24px;">
%s
</body>
</html>`

// MarkdownToHTML renders a markdown email body into a complete HTML document.
func MarkdownToHTML(title, body string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return fmt.Sprintf(layout, html.EscapeString(title), buf.String()), nil
}
