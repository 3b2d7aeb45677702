package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainews/internal/fetch"
	"ainews/internal/source"
)

const testPage = `<!DOCTYPE html>
<html><body>
<article>
  <h2>A very detailed AI announcement</h2>
  <a href="/posts/announcement">read</a>
  <p class="excerpt">The short version of the story.</p>
  <img data-src="/img/hero.jpg">
  <span class="published-date">2024-10-15</span>
</article>
<article>
  <h3>Menu</h3>
  <a href="/nav">nav</a>
</article>
<article>
  <h2>Another reasonably long headline here</h2>
  <a href="https://elsewhere.example.com/full">x</a>
</article>
</body></html>`

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExtractor(limit int) *Extractor {
	return NewExtractor(fetch.New(5*time.Second), nil, limit, nil)
}

func TestExtract(t *testing.T) {
	srv := servePage(t, testPage)

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL, Kind: source.KindPage})
	require.NoError(t, err)
	require.Len(t, got, 2, "sub-threshold title must be rejected")

	first := got[0]
	assert.Equal(t, "A very detailed AI announcement", first.Title)
	assert.Equal(t, srv.URL+"/posts/announcement", first.Link, "relative href resolved")
	assert.Equal(t, "The short version of the story.", first.Summary)
	assert.Equal(t, srv.URL+"/img/hero.jpg", first.ImageURL, "lazy-load attribute used")
	require.NotNil(t, first.Published)
	assert.Equal(t, "2024-10-15", first.Published.Format("2006-01-02"))

	second := got[1]
	assert.Equal(t, "https://elsewhere.example.com/full", second.Link, "absolute href untouched")
	assert.Equal(t, second.Title, second.Summary, "description falls back to title")
	require.NotNil(t, second.Published, "no date markup means the collection time")
	assert.WithinDuration(t, time.Now(), *second.Published, time.Minute)
}

func TestExtractDatelessItemStampsNow(t *testing.T) {
	body := `<html><body>
	<article>
	  <h2>Fresh item without any date markup</h2>
	  <a href="https://x/fresh">go</a>
	  <p class="excerpt">Still worth collecting.</p>
	</article>
	</body></html>`
	srv := servePage(t, body)

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Published)
	assert.WithinDuration(t, time.Now(), *got[0].Published, time.Minute)
}

func TestExtractUnparsableDateStaysUnset(t *testing.T) {
	body := `<html><body>
	<article>
	  <h2>Item whose date label is just noise</h2>
	  <a href="https://x/noise">go</a>
	  <time>Latest</time>
	  <span class="date-badge">Trending</span>
	</article>
	</body></html>`
	srv := servePage(t, body)

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Published, "unparsable date text must not pass for fresh")
}

func TestExtractDateCascadeSkipsUnparsableLabel(t *testing.T) {
	// A decorative <time> label must not shadow a parseable sibling.
	body := `<html><body>
	<article>
	  <h2>Item with a decorative time label</h2>
	  <a href="https://x/labelled">go</a>
	  <time>Updated</time>
	  <span class="post-date">2024-10-15</span>
	</article>
	</body></html>`
	srv := servePage(t, body)

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Published)
	assert.Equal(t, "2024-10-15", got[0].Published.Format("2006-01-02"))
}

func TestExtractClassHeuristicFallback(t *testing.T) {
	// No <article> elements; the class-substring cascade must kick in.
	body := `<html><body>
	<div class="news-card">
	  <h2>Headline long enough to keep around</h2>
	  <a href="https://x/1">go</a>
	</div>
	</body></html>`
	srv := servePage(t, body)

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://x/1", got[0].Link)
}

func TestExtractCandidateLimit(t *testing.T) {
	body := "<html><body>"
	for i := 0; i < 30; i++ {
		body += fmt.Sprintf(`<article><h2>Headline number %02d padded out</h2><a href="https://x/%d">go</a></article>`, i, i)
	}
	body += "</body></html>"
	srv := servePage(t, body)

	got, err := newTestExtractor(5).Extract(context.Background(), source.Source{URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestExtractNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	got, err := newTestExtractor(20).Extract(context.Background(), source.Source{URL: srv.URL})
	assert.Error(t, err)
	assert.Empty(t, got)
}
