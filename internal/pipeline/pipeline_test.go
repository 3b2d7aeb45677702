package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ainews/internal/article"
	"ainews/internal/config"
	"ainews/internal/source"
	"ainews/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreFilePath:  filepath.Join(t.TempDir(), "news.json"),
		MaxArticles:    500,
		RecencyFilter:  true,
		MaxAgeHours:    24,
		FeedItemLimit:  25,
		PageItemLimit:  20,
		RequestTimeout: 5 * time.Second,
	}
}

func rssFeed(items ...string) string {
	body := `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>`
	for _, it := range items {
		body += it
	}
	return body + `</channel></rss>`
}

func rssItem(title, link string, published time.Time) string {
	return fmt.Sprintf(
		`<item><title>%s</title><link>%s</link><description>%s</description><pubDate>%s</pubDate></item>`,
		title, link, title, published.Format(time.RFC1123Z))
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunDeduplicatesAcrossSources(t *testing.T) {
	now := time.Now()
	srvA := serve(t, rssFeed(rssItem("From source A", "https://x/1", now.Add(-2*time.Hour))))
	srvB := serve(t, rssFeed(rssItem("From source B", "https://x/1", now.Add(-1*time.Hour))))

	cfg := testConfig(t)
	sources := &source.Config{Feeds: []source.Source{
		{URL: srvA.URL, Name: "A", Kind: source.KindFeed},
		{URL: srvB.URL, Name: "B", Kind: source.KindFeed},
	}}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalStored, "same url from two sources is one article")
	assert.Equal(t, 1, report.NewlyAdded)
	assert.Equal(t, "From source A", report.Articles[0].Title, "first accepted wins, no update-in-place")
}

func TestRunRecencyFilter(t *testing.T) {
	now := time.Now()
	srv := serve(t, rssFeed(
		rssItem("Fresh enough", "https://x/fresh", now.Add(-2*time.Hour)),
		rssItem("Two days old", "https://x/stale", now.Add(-48*time.Hour)),
		rssItem("From the future", "https://x/future", now.Add(2*time.Hour)),
		`<item><title>No date at all</title><link>https://x/nodate</link></item>`,
	))

	cfg := testConfig(t)
	sources := &source.Config{Feeds: []source.Source{{URL: srv.URL, Kind: source.KindFeed}}}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalStored)
	assert.Equal(t, "https://x/fresh", report.Articles[0].URL)
}

func TestRunRecencyFilterDisabled(t *testing.T) {
	now := time.Now()
	srv := serve(t, rssFeed(
		rssItem("Two days old", "https://x/stale", now.Add(-48*time.Hour)),
		`<item><title>No date at all</title><link>https://x/nodate</link></item>`,
	))

	cfg := testConfig(t)
	cfg.RecencyFilter = false
	sources := &source.Config{Feeds: []source.Source{{URL: srv.URL, Kind: source.KindFeed}}}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalStored, "only the size cap bounds the store")

	// The dateless item fell back to the ingestion date.
	for _, a := range report.Articles {
		assert.NotEmpty(t, a.PublishedDate)
	}
}

func TestRunKeepsDatelessPageItems(t *testing.T) {
	srv := serve(t, `<html><body>
	<article>
	  <h2>A page story without any date markup</h2>
	  <a href="/story">read</a>
	  <p class="excerpt">Pages often omit machine-readable dates.</p>
	</article>
	</body></html>`)

	cfg := testConfig(t)
	sources := &source.Config{Pages: []source.Source{{URL: srv.URL, Name: "P", Kind: source.KindPage}}}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.TotalStored, "dateless page item defaults to now and passes the recency gate")
	assert.Equal(t, "A page story without any date markup", report.Articles[0].Title)
}

func TestRunToleratesFailedSource(t *testing.T) {
	now := time.Now()
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()
	alive := serve(t, rssFeed(rssItem("Still here", "https://x/1", now.Add(-1*time.Hour))))

	cfg := testConfig(t)
	sources := &source.Config{Feeds: []source.Source{
		{URL: dead.URL, Kind: source.KindFeed},
		{URL: alive.URL, Kind: source.KindFeed},
	}}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.SourcesFailed)
	assert.Equal(t, 1, report.TotalStored)
}

func TestRunPersistsStore(t *testing.T) {
	now := time.Now()
	srv := serve(t, rssFeed(rssItem("Persist me", "https://x/1", now.Add(-1*time.Hour))))

	cfg := testConfig(t)
	sources := &source.Config{Feeds: []source.Source{{URL: srv.URL, Name: "S", Category: "llms", Kind: source.KindFeed}}}

	st := store.New(cfg.StoreFilePath)
	_, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(cfg.StoreFilePath)
	require.NoError(t, err)

	var persisted []article.Article
	require.NoError(t, json.Unmarshal(data, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "Persist me", persisted[0].Title)
	assert.Equal(t, "rss", persisted[0].SourceType)
	assert.Equal(t, "llms", persisted[0].Category)
	assert.NotEmpty(t, persisted[0].ID)

	// Second run against the same file adds nothing new.
	st2 := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st2, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.NewlyAdded)
	assert.Equal(t, 1, report.TotalStored)
}

func TestRunSpecialSources(t *testing.T) {
	ph := serve(t, `{"data":[{"name":"NeatTool","slug":"neattool","tagline":"An AI thing"}]}`)

	cfg := testConfig(t)
	sources := &source.Config{
		ProductHunt: []source.Source{{URL: ph.URL, Name: "Product Hunt", Category: "fun", Kind: source.KindProductHunt}},
		Influencers: true,
	}

	st := store.New(cfg.StoreFilePath)
	report, err := New(cfg, sources, st, nil).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.TotalStored)

	types := map[string]bool{}
	for _, a := range report.Articles {
		types[a.SourceType] = true
	}
	assert.True(t, types["producthunt"])
	assert.True(t, types["influencer"])
}

func TestRunCancelledStillPersists(t *testing.T) {
	now := time.Now()
	srv := serve(t, rssFeed(rssItem("Got in first", "https://x/1", now.Add(-1*time.Hour))))

	cfg := testConfig(t)
	sources := &source.Config{Feeds: []source.Source{{URL: srv.URL, Kind: source.KindFeed}}}

	st := store.New(cfg.StoreFilePath)
	require.True(t, st.Accept(article.Article{
		URL:           "https://x/previous",
		Title:         "Accumulated earlier",
		PublishedDate: now.Format("2006-01-02"),
		CollectedAt:   now.Format(time.RFC3339),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, sources, st, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.NewlyAdded, "no fetches after cancellation")
	assert.Equal(t, 1, report.TotalStored, "accumulated articles still persisted")
	assert.FileExists(t, cfg.StoreFilePath)
}
