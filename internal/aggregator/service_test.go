package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/models"
	"github.com/equityscope/newsradar/internal/registry"
	"github.com/equityscope/newsradar/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFetcher is a mock implementation of the sources.Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, source models.FeedSource, term string) ([]models.RawEntry, *models.FetchError) {
	args := m.Called(source.Name)

	var entries []models.RawEntry
	if v := args.Get(0); v != nil {
		entries = v.([]models.RawEntry)
	}
	var ferr *models.FetchError
	if v := args.Get(1); v != nil {
		ferr = v.(*models.FetchError)
	}
	return entries, ferr
}

// MockSender is a mock implementation of the alerts.Sender interface
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendAlert(payload *models.AlertPayload) error {
	args := m.Called(payload)
	return args.Error(0)
}

func testConfig(feedNames ...string) *config.Config {
	feeds := make([]models.FeedSource, 0, len(feedNames))
	for _, name := range feedNames {
		feeds = append(feeds, models.FeedSource{
			Name:     name,
			Endpoint: "https://example.com/" + name,
			Kind:     models.KindStaticURL,
		})
	}
	return &config.Config{
		StaticFeeds:        feeds,
		QueryTemplate:      "https://news.example.com/rss/search?q=%s",
		MaxConcurrentFetch: 20,
		EntriesPerSource:   10,
		AlertPayloadLimit:  5,
	}
}

func newTestService(cfg *config.Config, fetcher *MockFetcher, sender *MockSender) *Service {
	return NewService(cfg, registry.New(cfg), fetcher, storage.NewMemoryStore(), sender)
}

func entry(title, link string, published *time.Time) models.RawEntry {
	return models.RawEntry{Title: title, Link: link, Published: published}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestScan_FaultIsolation(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A", "Wire B", "Wire C")
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return(nil, &models.FetchError{Source: "Wire A", Err: errors.New("connection timed out")})
	fetcher.On("Fetch", "Wire B").Return([]models.RawEntry{
		entry("Headline from B", "https://b/1", timePtr(jan10)),
	}, nil)
	fetcher.On("Fetch", "Wire C").Return([]models.RawEntry{
		entry("Headline from C", "https://c/1", timePtr(jan10)),
	}, nil)

	service := newTestService(cfg, fetcher, &MockSender{})

	result, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	sources := []string{result.Records[0].Source, result.Records[1].Source}
	assert.ElementsMatch(t, []string{"Wire B", "Wire C"}, sources)
	assert.Equal(t, []string{"Wire A"}, result.Failures)
	fetcher.AssertNumberOfCalls(t, "Fetch", 3)
}

func TestScan_DedupAndSentinelOrdering(t *testing.T) {
	// Three sources: the first returns a dated headline, the second returns
	// the same headline a day later plus an undated entry, the third fails.
	// Dedup keeps the first-seen duplicate, the undated entry sorts last,
	// and the failed source contributes nothing.
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	jan11 := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A", "Wire B", "Wire C")
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{
		entry("Acme Corp wins contract", "https://a/1", timePtr(jan10)),
	}, nil)
	fetcher.On("Fetch", "Wire B").Return([]models.RawEntry{
		entry("Acme Corp wins contract", "https://b/1", timePtr(jan11)),
		entry("Acme Corp schedules investor day", "https://b/2", nil),
	}, nil)
	fetcher.On("Fetch", "Wire C").Return(nil, &models.FetchError{Source: "Wire C", Err: errors.New("HTTP 500")})

	service := newTestService(cfg, fetcher, &MockSender{})

	result, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "Acme Corp wins contract", result.Records[0].Headline)
	assert.Equal(t, jan10, result.Records[0].PublishedAt)
	assert.Equal(t, "Wire A", result.Records[0].Source)

	assert.Equal(t, "Acme Corp schedules investor day", result.Records[1].Headline)
	assert.True(t, result.Records[1].PublishedAt.Equal(models.SentinelTime))
	assert.Equal(t, models.UnknownDateLabel, result.Records[1].DisplayDate)
}

func TestScan_UnknownGroupFails(t *testing.T) {
	cfg := testConfig("Wire A")
	service := newTestService(cfg, &MockFetcher{}, &MockSender{})

	_, err := service.Scan(context.Background(), "no-such-group", models.FilterState{})
	assert.Error(t, err)
}

func TestScan_SnapshotStored(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A")
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{
		entry("Headline", "https://a/1", timePtr(jan10)),
	}, nil)

	store := storage.NewMemoryStore()
	service := NewService(cfg, registry.New(cfg), fetcher, store, &MockSender{})

	_, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)

	names, err := store.List("headlines-")
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestScan_AlertDispatched(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A")
	cfg.AlertsEnabled = true

	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{
		entry("Headline one", "https://a/1", timePtr(jan10)),
		entry("Headline two", "https://a/2", timePtr(jan10)),
	}, nil)

	sender := &MockSender{}
	sender.On("SendAlert", mock.MatchedBy(func(p *models.AlertPayload) bool {
		return p.Group == "all" && p.Count == 2
	})).Return(nil)

	service := newTestService(cfg, fetcher, sender)

	_, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestScan_AlertDeliveryFailureDoesNotFailScan(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A")
	cfg.AlertsEnabled = true

	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{
		entry("Headline", "https://a/1", timePtr(jan10)),
	}, nil)

	sender := &MockSender{}
	sender.On("SendAlert", mock.Anything).Return(errors.New("smtp unreachable"))

	service := newTestService(cfg, fetcher, sender)

	result, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestScan_NoAlertWhenDisabledOrEmpty(t *testing.T) {
	cfg := testConfig("Wire A")
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{}, nil)

	sender := &MockSender{}

	service := newTestService(cfg, fetcher, sender)

	result, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	sender.AssertNotCalled(t, "SendAlert", mock.Anything)
}

func TestScan_GroupResolvesQuerySources(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A")
	cfg.Groups = []models.WatchlistGroup{
		{Name: "TSX Watchlist", Companies: []string{"Aritzia"}},
	}

	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{}, nil)
	fetcher.On("Fetch", "Aritzia").Return([]models.RawEntry{
		entry("Aritzia beats estimates - Financial Post", "https://g/1", timePtr(jan10)),
	}, nil)

	service := newTestService(cfg, fetcher, &MockSender{})

	result, err := service.Scan(context.Background(), "TSX Watchlist", models.FilterState{SortKey: models.SortByCompany})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "Aritzia", result.Records[0].Company)
	assert.Equal(t, "Financial Post", result.Records[0].Source)
	assert.Equal(t, "Aritzia beats estimates", result.Records[0].Headline)
	assert.Equal(t, "TSX Watchlist", result.Group)
}

func TestGetMetrics(t *testing.T) {
	jan10 := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	cfg := testConfig("Wire A", "Wire B")
	fetcher := &MockFetcher{}
	fetcher.On("Fetch", "Wire A").Return([]models.RawEntry{
		entry("Headline", "https://a/1", timePtr(jan10)),
	}, nil)
	fetcher.On("Fetch", "Wire B").Return(nil, &models.FetchError{Source: "Wire B", Err: errors.New("boom")})

	service := newTestService(cfg, fetcher, &MockSender{})

	_, err := service.Scan(context.Background(), "", models.FilterState{SortKey: models.SortNewestFirst})
	require.NoError(t, err)

	metrics := service.GetMetrics()
	assert.Contains(t, metrics, `"total_records": 1`)
	assert.Contains(t, metrics, `"error_count": 1`)
}
