// Package feed extracts article candidates from RSS/Atom feeds. Feeds are
// the most reliable source kind: they carry structured dates, so they run
// before page scraping in the pipeline.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"ainews/internal/article"
	"ainews/internal/dateparse"
	"ainews/internal/fetch"
	"ainews/internal/source"
)

// Per-run caps to bound worst-case latency and store churn.
const (
	defaultItemLimit = 25
	summaryMaxLen    = 300
)

// Extractor fetches and parses one feed source at a time.
type Extractor struct {
	client *fetch.Client
	parser *gofeed.Parser
	limit  int
	log    *slog.Logger
}

func NewExtractor(client *fetch.Client, limit int, log *slog.Logger) *Extractor {
	if limit <= 0 {
		limit = defaultItemLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{
		client: client,
		parser: gofeed.NewParser(),
		limit:  limit,
		log:    log,
	}
}

// Extract downloads the feed and yields up to the per-run cap of
// candidates. Entries missing a title or link are silently skipped. A
// network or parse failure for the whole feed is returned as an error; the
// caller logs it and moves on.
func (e *Extractor) Extract(ctx context.Context, src source.Source) ([]article.Candidate, error) {
	body, err := e.client.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	parsed, err := e.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.URL, err)
	}

	candidates := make([]article.Candidate, 0, e.limit)
	for _, item := range parsed.Items {
		if len(candidates) >= e.limit {
			break
		}

		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}

		c := article.Candidate{
			Title:    title,
			Link:     link,
			Summary:  itemSummary(item, title),
			ImageURL: itemImage(item, src.URL),
		}
		if t := itemPublished(item); t != nil {
			c.Published = t
		}
		candidates = append(candidates, c)
	}

	e.log.Debug("feed extracted", "source", src.URL, "items", len(candidates))
	return candidates, nil
}

// itemSummary strips HTML from the entry summary and truncates it. Falls
// back to the title when the entry has no summary at all.
func itemSummary(item *gofeed.Item, title string) string {
	raw := item.Description
	if raw == "" {
		raw = item.Content
	}
	text := stripHTML(raw)
	if text == "" {
		return title
	}
	if len([]rune(text)) > summaryMaxLen {
		text = string([]rune(text)[:summaryMaxLen])
	}
	return text
}

// itemImage resolves the entry image, trying in order: explicit
// media:content url, media:thumbnail url, first <img> in the rendered
// content, first <img> in the summary HTML.
func itemImage(item *gofeed.Item, base string) string {
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return absURL(base, u)
				}
			}
		}
	}
	if u := firstImage(item.Content); u != "" {
		return absURL(base, u)
	}
	if u := firstImage(item.Description); u != "" {
		return absURL(base, u)
	}
	return ""
}

func itemPublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	for _, raw := range []string{item.Published, item.Updated} {
		if raw == "" {
			continue
		}
		if t, ok := dateparse.Parse(raw); ok {
			return &t
		}
	}
	return nil
}

// stripHTML returns the text content of an HTML fragment.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// firstImage returns the src of the first <img> in an HTML fragment.
func firstImage(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// absURL resolves ref against base when ref is relative.
func absURL(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
