// Package source defines where articles come from. The list of sources is
// static configuration loaded once at startup and never persisted.
package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind tags the extraction path and the source_type recorded on articles.
type Kind string

const (
	KindFeed        Kind = "rss"
	KindPage        Kind = "website"
	KindProductHunt Kind = "producthunt"
	KindInfluencer  Kind = "influencer"
)

// Source describes one place to fetch articles from.
type Source struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Kind     Kind   `yaml:"-"`
}

// Config is the YAML sources file structure:
//
//	feeds:
//	  - url: https://feeds.theverge.com/feed.xml
//	    name: The Verge
//	    category: general
//	pages:
//	  - url: https://openai.com/news
//	    name: OpenAI
//	    category: llms
type Config struct {
	Feeds       []Source `yaml:"feeds"`
	Pages       []Source `yaml:"pages"`
	ProductHunt []Source `yaml:"producthunt"`
	Influencers bool     `yaml:"influencers"`
}

// Load reads the sources list from a YAML file and stamps each entry with
// its kind.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode sources config: %w", err)
	}

	for i := range cfg.Feeds {
		cfg.Feeds[i].Kind = KindFeed
	}
	for i := range cfg.Pages {
		cfg.Pages[i].Kind = KindPage
	}
	for i := range cfg.ProductHunt {
		cfg.ProductHunt[i].Kind = KindProductHunt
	}
	return &cfg, nil
}
