package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ainews/internal/article"
	"ainews/internal/fetch"
	"ainews/internal/source"
)

const productHuntLimit = 10

// phFeed is the shape of the Product Hunt feed API response; only the
// fields we map are declared.
type phFeed struct {
	Data []struct {
		Name      string `json:"name"`
		Slug      string `json:"slug"`
		Tagline   string `json:"tagline"`
		Thumbnail struct {
			ImageURL string `json:"image_url"`
		} `json:"thumbnail"`
	} `json:"data"`
}

// ProductHuntExtractor pulls fresh AI tool launches from the Product Hunt
// feed API.
type ProductHuntExtractor struct {
	client *fetch.Client
	log    *slog.Logger
}

func NewProductHuntExtractor(client *fetch.Client, log *slog.Logger) *ProductHuntExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &ProductHuntExtractor{client: client, log: log}
}

func (e *ProductHuntExtractor) Extract(ctx context.Context, src source.Source) ([]article.Candidate, error) {
	raw, err := e.client.GetBytes(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch product hunt feed: %w", err)
	}

	var payload phFeed
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode product hunt feed: %w", err)
	}

	now := time.Now()
	candidates := make([]article.Candidate, 0, productHuntLimit)
	for _, post := range payload.Data {
		if len(candidates) >= productHuntLimit {
			break
		}
		if post.Name == "" || post.Slug == "" {
			continue
		}
		// Launches carry no date of their own; stamp the ingestion time.
		candidates = append(candidates, article.Candidate{
			Title:     post.Name,
			Link:      "https://www.producthunt.com/posts/" + post.Slug,
			Summary:   post.Tagline,
			ImageURL:  post.Thumbnail.ImageURL,
			Published: &now,
		})
	}

	e.log.Debug("product hunt extracted", "items", len(candidates))
	return candidates, nil
}
