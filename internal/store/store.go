// Package store is the dedup/merge store: the accumulated article
// collection keyed by url, persisted as a single JSON array file. The file
// is always rewritten whole; at hundreds of records that is cheaper than
// any incremental format would be to maintain.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ainews/internal/article"
)

// DefaultCap bounds the retained collection size.
const DefaultCap = 500

// Store holds all known articles for the duration of a run. Accept is the
// only mutation point and is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	filePath string
	byURL    map[string]int
	articles []article.Article
}

func New(filePath string) *Store {
	return &Store{
		filePath: filePath,
		byURL:    make(map[string]int),
	}
}

// Load reads the persisted collection into memory. A missing file means an
// empty store, not an error. Entries without a url are dropped on load so
// the uniqueness invariant holds from the start.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read store file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var articles []article.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return fmt.Errorf("unmarshal store file: %w", err)
	}

	for _, a := range articles {
		if a.URL == "" {
			continue
		}
		if _, dup := s.byURL[a.URL]; dup {
			continue
		}
		s.byURL[a.URL] = len(s.articles)
		s.articles = append(s.articles, a)
	}
	return nil
}

// Accept is the sole admission gate: it rejects articles with an empty or
// already-known url and inserts everything else. Recency filtering is the
// caller's job and happens before this point.
func (s *Store) Accept(a article.Article) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.URL == "" {
		return false
	}
	if _, dup := s.byURL[a.URL]; dup {
		return false
	}
	s.byURL[a.URL] = len(s.articles)
	s.articles = append(s.articles, a)
	return true
}

// Len returns the current number of stored articles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articles)
}

// Finalize orders the collection by published date, most recent first, and
// evicts everything past the cap: the chronologically newest N survive.
// Stable surrogate ids are assigned here, derived from the url so they do
// not change between runs. The finalized slice replaces the working set.
func (s *Store) Finalize(limit int) []article.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.articles, func(i, j int) bool {
		a, b := s.articles[i], s.articles[j]
		if a.PublishedDate != b.PublishedDate {
			return a.PublishedDate > b.PublishedDate
		}
		if a.CollectedAt != b.CollectedAt {
			return a.CollectedAt > b.CollectedAt
		}
		return a.URL < b.URL
	})

	if limit > 0 && len(s.articles) > limit {
		s.articles = s.articles[:limit]
	}

	s.byURL = make(map[string]int, len(s.articles))
	for i := range s.articles {
		s.articles[i].ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte(s.articles[i].URL)).String()
		s.byURL[s.articles[i].URL] = i
	}

	out := make([]article.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// Save rewrites the whole store file.
func (s *Store) Save() error {
	s.mu.RLock()
	articles := make([]article.Article, len(s.articles))
	copy(articles, s.articles)
	s.mu.RUnlock()

	if articles == nil {
		articles = []article.Article{}
	}

	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create store dir: %w", err)
		}
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}
