package config

import (
	"fmt"
	"os"

	"github.com/equityscope/newsradar/internal/models"
	"gopkg.in/yaml.v3"
)

// Watchlist is the YAML shape of the optional watchlist file. Any section
// left empty falls back to the built-in defaults.
type Watchlist struct {
	Groups        []models.WatchlistGroup `yaml:"groups"`
	Feeds         []models.FeedSource     `yaml:"feeds"`
	Whitelist     []string                `yaml:"whitelist"`
	Blacklist     []string                `yaml:"blacklist"`
	QueryTemplate string                  `yaml:"query_template"`
}

// LoadWatchlist reads and parses a watchlist YAML file.
func LoadWatchlist(path string) (*Watchlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var wl Watchlist
	if err := yaml.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, g := range wl.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("group %d has no name", i)
		}
	}
	for i, f := range wl.Feeds {
		if f.Name == "" || f.Endpoint == "" {
			return nil, fmt.Errorf("feed %d must have both name and url", i)
		}
	}

	return &wl, nil
}
