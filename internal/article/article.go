// Package article turns a selection of images into a single HTML article.
package article

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/bilgisen/picreel/internal/models"
)

// head and tail paragraphs are trusted configuration and may contain HTML.
var md = goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))

// Options holds the fixed paragraphs placed around the items.
type Options struct {
	Head string
	Tail string
}

// Article is the generated document.
type Article struct {
	Markdown string
	HTML     string
	Items    int
}

// Build renders one numbered section per record, in the order given.
func Build(records []*models.ImageRecord, opts Options) (*Article, error) {
	var src strings.Builder

	if head := strings.TrimSpace(opts.Head); head != "" {
		src.WriteString(head)
		src.WriteString("\n\n")
	}

	for i, rec := range records {
		caption := escape(strings.Join(strings.Fields(rec.Caption), " "))
		fmt.Fprintf(&src, "# %02d. %s\n\n", i+1, caption)
		fmt.Fprintf(&src, "![%s](%s)\n\n", caption, dataURI(rec))
	}

	if tail := strings.TrimSpace(opts.Tail); tail != "" {
		src.WriteString(tail)
		src.WriteString("\n")
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(src.String()), &buf); err != nil {
		return nil, fmt.Errorf("rendering article: %w", err)
	}
	return &Article{Markdown: src.String(), HTML: buf.String(), Items: len(records)}, nil
}

func dataURI(rec *models.ImageRecord) string {
	mime := rec.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(rec.ImageData)
}

// escape backslash-escapes ASCII punctuation so captions are taken literally.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune("\\`*_{}[]()<>#+-.!|~&\"'", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
