// Package content fetches the full text of a single article page. Used to
// upgrade articles whose feed summary was too thin to render. A selector
// cascade handles well-structured news sites; readability extraction is
// the fallback for everything else.
package content

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"ainews/internal/fetch"
)

const maxContentLen = 1800

// Paragraph container selectors, tried in order; three matched paragraphs
// are enough to stop.
var paragraphSelectors = []string{
	"article p",
	".article-body p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

type Extractor struct {
	client *fetch.Client
}

func NewExtractor(client *fetch.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract returns the readable text of the page at rawURL, bounded in
// length. Empty result is an error; callers keep whatever description they
// already had.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	body, err := e.client.GetBytes(ctx, rawURL)
	if err != nil {
		return "", err
	}

	if text := extractParagraphs(body); text != "" {
		return clip(text), nil
	}

	// Selector cascade found nothing; let readability have a go.
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	art, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability extraction: %w", err)
	}
	text := strings.TrimSpace(art.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content at %s", rawURL)
	}
	return clip(text), nil
}

func extractParagraphs(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var paragraphs []string
	for _, selector := range paragraphSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.Join(strings.Fields(s.Text()), " ")
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}
	return strings.Join(paragraphs, "\n\n")
}

func clip(text string) string {
	if len(text) <= maxContentLen {
		return text
	}
	// Cut on a paragraph boundary where possible.
	clipped := text[:maxContentLen]
	if i := strings.LastIndex(clipped, "\n\n"); i > 0 {
		return clipped[:i]
	}
	return clipped
}
