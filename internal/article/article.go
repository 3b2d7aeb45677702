// Package article holds the canonical article record and the pure
// normalization step that turns raw extracted candidates into it.
package article

import (
	"strings"
	"time"
	"unicode/utf8"

	"ainews/internal/dateparse"
	"ainews/internal/source"
)

const (
	// Field length caps applied during normalization.
	MaxTitleLen       = 200
	MaxDescriptionLen = 400

	DefaultCategory = "general"
)

// Candidate is an unvalidated record produced by an extractor, prior to
// becoming an Article. Published is nil when the source carried no date or
// the date did not parse.
type Candidate struct {
	Title     string
	Link      string
	Summary   string
	ImageURL  string
	Published *time.Time
}

// Article is the canonical unit of content. Field names in the persisted
// JSON are fixed; the rendering side depends on them verbatim.
type Article struct {
	ID            string `json:"id,omitempty"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Description   string `json:"description"`
	ImageURL      string `json:"image_url"`
	PublishedDate string `json:"published_date"`
	Source        string `json:"source"`
	SourceType    string `json:"source_type"`
	Category      string `json:"category"`
	CollectedAt   string `json:"collected_at"`
}

// HasKnownDate reports whether the candidate carried a parsable date.
// Articles built from dateless candidates get the ingestion date instead,
// which matters to the strict recency policy.
func (c Candidate) HasKnownDate() bool {
	return c.Published != nil
}

// Normalize maps a candidate plus its source descriptor into an Article.
// Pure: no I/O, the clock is an argument.
func Normalize(c Candidate, src source.Source, now time.Time) Article {
	published := now
	if c.Published != nil {
		published = *c.Published
	}

	category := src.Category
	if category == "" {
		category = DefaultCategory
	}

	description := strings.TrimSpace(c.Summary)
	if description == "" {
		description = strings.TrimSpace(c.Title)
	}

	sourceName := src.Name
	if sourceName == "" {
		sourceName = src.URL
	}

	return Article{
		Title:         truncate(strings.TrimSpace(c.Title), MaxTitleLen),
		URL:           strings.TrimSpace(c.Link),
		Description:   truncate(description, MaxDescriptionLen),
		ImageURL:      c.ImageURL,
		PublishedDate: dateparse.Canonical(published),
		Source:        sourceName,
		SourceType:    string(src.Kind),
		Category:      category,
		CollectedAt:   now.Format(time.RFC3339),
	}
}

// Published returns the article's calendar date. Zero time when the stored
// string is malformed, which Accept never lets happen.
func (a Article) Published() time.Time {
	t, _ := time.Parse(dateparse.Layout, a.PublishedDate)
	return t
}

// truncate cuts s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
