package feed

import (
	"time"

	"ainews/internal/article"
)

// InfluencerCandidates returns the curated influencer entries. These are
// compiled in rather than fetched: the point is a stable pointer to where
// the AI conversation happens, refreshed each run with the ingestion date.
func InfluencerCandidates() []article.Candidate {
	now := time.Now()
	return []article.Candidate{
		{
			Title:     "🚀 Top AI Influencers Updates",
			Link:      "https://twitter.com/search?q=%23AI%20-filter%3Areplies&type=latest",
			Summary:   "Follow: Sam Altman, Andrej Karpathy, Yann LeCun, Jeremy Howard & Demis Hassabis",
			Published: &now,
		},
	}
}
