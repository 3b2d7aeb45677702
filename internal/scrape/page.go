// Package scrape extracts article candidates from arbitrary HTML pages.
// Pages have no reliable structure, so everything here is an ordered list
// of best-effort heuristics: the first selector that yields matches wins.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ainews/internal/article"
	"ainews/internal/dateparse"
	"ainews/internal/fetch"
	"ainews/internal/ratelimit"
	"ainews/internal/source"
)

const (
	defaultItemLimit = 20
	minTitleLen      = 10 // below this it's navigation/button noise
	summaryMaxLen    = 300
)

// Candidate container selectors, most semantic first.
var containerSelectors = []string{
	"article",
	"[class*='post']",
	"[class*='article']",
	"[class*='entry']",
	"[class*='story']",
	"[class*='card']",
}

var descriptionSelectors = []string{
	"[class*='excerpt']",
	"[class*='summary']",
	"[class*='description']",
	"[class*='subtitle']",
}

var dateSelectors = []string{
	"time",
	"[class*='date']",
	"[class*='time']",
}

// Extractor scrapes one page source at a time, pausing between fetches to
// stay polite to remote hosts.
type Extractor struct {
	client  *fetch.Client
	limiter *ratelimit.Limiter
	limit   int
	log     *slog.Logger
}

func NewExtractor(client *fetch.Client, limiter *ratelimit.Limiter, limit int, log *slog.Logger) *Extractor {
	if limit <= 0 {
		limit = defaultItemLimit
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{client: client, limiter: limiter, limit: limit, log: log}
}

// Extract fetches the page and pulls candidates out of the first container
// selector that matches anything. A non-2xx status or network failure
// yields zero items and an error for the caller to log.
func (e *Extractor) Extract(ctx context.Context, src source.Source) ([]article.Candidate, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := e.client.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", src.URL, err)
	}

	var sel *goquery.Selection
	for _, selector := range containerSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			sel = found
			break
		}
	}
	if sel == nil {
		e.log.Debug("no candidate containers", "source", src.URL)
		return nil, nil
	}

	var candidates []article.Candidate
	sel.EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if c, ok := e.candidate(el, src.URL); ok {
			candidates = append(candidates, c)
		}
		return len(candidates) < e.limit
	})

	e.log.Debug("page extracted", "source", src.URL, "items", len(candidates))
	return candidates, nil
}

// candidate pulls one article candidate out of a container element.
func (e *Extractor) candidate(el *goquery.Selection, base string) (article.Candidate, bool) {
	title := cleanText(el.Find("h1, h2, h3, h4, a").First().Text())
	if len([]rune(title)) < minTitleLen {
		return article.Candidate{}, false
	}

	link := ""
	if href, ok := el.Find("a[href]").First().Attr("href"); ok {
		link = absURL(base, strings.TrimSpace(href))
	}
	if link == "" {
		return article.Candidate{}, false
	}

	c := article.Candidate{
		Title:    title,
		Link:     link,
		Summary:  e.description(el, title),
		ImageURL: e.image(el, base),
	}

	// Walk every date selector until one parses. A container with no date
	// markup at all is stamped with the current time; only date text that
	// exists but cannot be parsed leaves Published unset.
	sawDateText := false
	for _, selector := range dateSelectors {
		raw := cleanText(el.Find(selector).First().Text())
		if raw == "" {
			continue
		}
		sawDateText = true
		if t, ok := dateparse.Parse(raw); ok {
			c.Published = &t
			break
		}
	}
	if !sawDateText {
		now := time.Now()
		c.Published = &now
	}
	return c, true
}

func (e *Extractor) description(el *goquery.Selection, title string) string {
	for _, selector := range descriptionSelectors {
		if text := cleanText(el.Find(selector).First().Text()); text != "" {
			if len([]rune(text)) > summaryMaxLen {
				text = string([]rune(text)[:summaryMaxLen])
			}
			return text
		}
	}
	return title
}

// image returns the first <img> src, or its lazy-load attribute when the
// real src is deferred.
func (e *Extractor) image(el *goquery.Selection, base string) string {
	img := el.Find("img").First()
	src, ok := img.Attr("src")
	if !ok || src == "" {
		src, _ = img.Attr("data-src")
	}
	if src == "" {
		return ""
	}
	return absURL(base, src)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

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
