package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/equityscope/newsradar/internal/alerts"
	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/models"
	"github.com/equityscope/newsradar/internal/pipeline"
	"github.com/equityscope/newsradar/internal/registry"
	"github.com/equityscope/newsradar/internal/sources"
	"github.com/equityscope/newsradar/internal/storage"
	"github.com/sirupsen/logrus"
)

// Service runs aggregation scans: fan out fetches across a watchlist group,
// normalize, dedup/filter/sort, then hand the result to the snapshot store
// and the alert sender.
type Service struct {
	config   *config.Config
	registry *registry.Registry
	fetcher  sources.Fetcher
	store    storage.SnapshotStore
	alerts   alerts.Sender
	metrics  *Metrics
	mu       sync.RWMutex
}

// Metrics holds counters from the most recent scan
type Metrics struct {
	TotalRecords    int            `json:"total_records"`
	LastRun         time.Time      `json:"last_run"`
	LastRunDuration string         `json:"last_run_duration"`
	SourceMetrics   map[string]int `json:"source_metrics"`
	ErrorCount      int            `json:"error_count"`
}

// fetchOutcome is one source's contribution to a scan. Each fetch writes its
// own outcome exactly once; the join barrier is the only synchronization.
type fetchOutcome struct {
	records []models.HeadlineRecord
	failure *models.FetchError
}

// NewService creates a new aggregation service
func NewService(cfg *config.Config, reg *registry.Registry, fetcher sources.Fetcher, store storage.SnapshotStore, sender alerts.Sender) *Service {
	return &Service{
		config:   cfg,
		registry: reg,
		fetcher:  fetcher,
		store:    store,
		alerts:   sender,
		metrics: &Metrics{
			SourceMetrics: make(map[string]int),
		},
	}
}

// Scan performs one aggregation run over a watchlist group (all groups when
// groupName is empty) and applies the caller's filter state. Per-source
// failures are contained; the scan only fails hard when the registry
// resolves no sources at all.
func (s *Service) Scan(ctx context.Context, groupName string, state models.FilterState) (*models.ScanResult, error) {
	start := time.Now()

	targets, err := s.registry.Resolve(groupName)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Scanning %d sources for group %q", len(targets), displayGroup(groupName))

	outcomes := s.fetchAll(ctx, targets)

	var allRecords []models.HeadlineRecord
	var failures []string
	perSource := make(map[string]int)
	for _, outcome := range outcomes {
		if outcome.failure != nil {
			logrus.Errorf("Fetch failed: %v", outcome.failure)
			failures = append(failures, outcome.failure.Source)
			continue
		}
		allRecords = append(allRecords, outcome.records...)
		for _, r := range outcome.records {
			perSource[r.Source]++
		}
	}

	logrus.Infof("Collected %d records from %d sources (%d failed)", len(allRecords), len(targets), len(failures))

	processed := pipeline.Process(allRecords, state)

	result := &models.ScanResult{
		Group:     displayGroup(groupName),
		Records:   processed,
		Sources:   pipeline.DistinctSources(processed),
		Failures:  failures,
		FetchedAt: start.UTC(),
	}

	s.storeSnapshot(result)
	s.dispatchAlert(result)
	s.updateMetrics(processed, perSource, time.Since(start), len(failures))

	logrus.Infof("Scan completed in %v: %d records after dedup/filter", time.Since(start), len(processed))
	return result, nil
}

// fetchAll fans one fetch per target out across a bounded worker pool and
// joins before returning. Every target gets its own outcome slot; a slow
// source delays the join but never blocks collection of its siblings.
func (s *Service) fetchAll(ctx context.Context, targets []registry.ScanTarget) []fetchOutcome {
	outcomes := make([]fetchOutcome, len(targets))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.MaxConcurrentFetch)

	for i, target := range targets {
		wg.Add(1)
		go func(slot int, t registry.ScanTarget) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			raws, ferr := s.fetcher.Fetch(ctx, t.Source, t.Term)
			if ferr != nil {
				outcomes[slot] = fetchOutcome{failure: ferr}
				return
			}
			outcomes[slot] = fetchOutcome{
				records: pipeline.NormalizeAll(raws, t.Source, t.Term),
			}
		}(i, target)
	}

	wg.Wait()
	return outcomes
}

func (s *Service) storeSnapshot(result *models.ScanResult) {
	if len(result.Records) == 0 {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logrus.Errorf("Failed to marshal scan snapshot: %v", err)
		return
	}

	filename := fmt.Sprintf("headlines-%s.json", result.FetchedAt.Format("2006-01-02-15-04-05"))
	if err := s.store.Store(filename, data); err != nil {
		logrus.Errorf("Failed to store scan snapshot: %v", err)
	}
}

// dispatchAlert hands the filtered set to the dispatcher and, when a payload
// comes back, to the transport. Delivery failures are logged and never roll
// back the scan result.
func (s *Service) dispatchAlert(result *models.ScanResult) {
	payload := alerts.BuildPayload(result.Records, result.Group, s.config.AlertPolicy())
	if payload == nil {
		return
	}

	if err := s.alerts.SendAlert(payload); err != nil {
		logrus.Errorf("Alert delivery failed (result set unaffected): %v", err)
	}
}

func (s *Service) updateMetrics(records []models.HeadlineRecord, perSource map[string]int, duration time.Duration, errorCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRecords = len(records)
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
	s.metrics.ErrorCount = errorCount
	s.metrics.SourceMetrics = perSource
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

func displayGroup(groupName string) string {
	if groupName == "" {
		return "all"
	}
	return groupName
}
