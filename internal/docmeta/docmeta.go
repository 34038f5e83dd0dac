// Package docmeta extracts display metadata from cached HTML documents so
// the offline cache screen can show something better than a raw file name.
package docmeta

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const snippetMaxRunes = 200

type Meta struct {
	Title   string
	Snippet string
}

// IsHTML reports whether a content type warrants metadata extraction.
func IsHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml")
}

// Extract parses an HTML document and pulls out its title and a plain-text
// snippet. Parse failures yield empty metadata, never an error: metadata is
// cosmetic and must not block caching the document.
func Extract(r io.Reader) Meta {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Meta{}
	}

	var meta Meta
	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	doc.Find("script, style, noscript").Remove()
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	meta.Snippet = snippet(body.Text())

	return meta
}

// snippet collapses whitespace and truncates to a display-sized run of text.
func snippet(s string) string {
	fields := strings.Fields(s)
	joined := strings.Join(fields, " ")

	runes := []rune(joined)
	if len(runes) <= snippetMaxRunes {
		return joined
	}
	cut := string(runes[:snippetMaxRunes])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
