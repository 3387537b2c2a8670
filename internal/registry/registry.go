package registry

import (
	"fmt"
	"strings"

	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/models"
)

// Registry resolves watchlist group names into the ordered list of feed
// sources a scan should cover. It is built once from configuration and
// read-only afterwards.
type Registry struct {
	staticFeeds   []models.FeedSource
	groups        []models.WatchlistGroup
	queryTemplate string
}

// ScanTarget pairs a feed source with the watchlist term that selects it.
// Term is empty for static feeds.
type ScanTarget struct {
	Source models.FeedSource
	Term   string
}

// New builds a registry from loaded configuration.
func New(cfg *config.Config) *Registry {
	return &Registry{
		staticFeeds:   cfg.StaticFeeds,
		groups:        cfg.Groups,
		queryTemplate: cfg.QueryTemplate,
	}
}

// Groups returns the configured watchlist group names in order.
func (r *Registry) Groups() []string {
	names := make([]string, 0, len(r.groups))
	for _, g := range r.groups {
		names = append(names, g.Name)
	}
	return names
}

// Resolve returns the scan targets for one group: every static feed, then one
// query-style source per company term. An empty group name resolves every
// configured group.
func (r *Registry) Resolve(groupName string) ([]ScanTarget, error) {
	targets := make([]ScanTarget, 0, len(r.staticFeeds))
	for _, feed := range r.staticFeeds {
		targets = append(targets, ScanTarget{Source: feed})
	}

	if groupName == "" {
		for _, g := range r.groups {
			targets = append(targets, r.groupTargets(g)...)
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no sources configured")
		}
		return targets, nil
	}

	for _, g := range r.groups {
		if strings.EqualFold(g.Name, groupName) {
			targets = append(targets, r.groupTargets(g)...)
			return targets, nil
		}
	}

	return nil, fmt.Errorf("unknown watchlist group %q", groupName)
}

func (r *Registry) groupTargets(g models.WatchlistGroup) []ScanTarget {
	targets := make([]ScanTarget, 0, len(g.Companies))
	for _, company := range g.Companies {
		targets = append(targets, ScanTarget{
			Source: models.FeedSource{
				Name:     company,
				Endpoint: r.queryTemplate,
				Kind:     models.KindQueryTemplate,
			},
			Term: company,
		})
	}
	return targets
}
