package sources

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/equityscope/newsradar/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// Options tune the feed fetcher. Zero values fall back to the defaults below.
type Options struct {
	Timeout       time.Duration
	MaxEntries    int
	RecencyWindow time.Duration
	// InsecureSkipTLSVerify disables certificate checks on the HTTP client.
	// Security-relevant: only honored when an operator sets it explicitly,
	// and logged loudly at construction time.
	InsecureSkipTLSVerify bool
}

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxEntries    = 10
	defaultRecencyWindow = 7 * 24 * time.Hour
)

// FeedFetcher fetches RSS/Atom feeds over HTTP and parses them into raw
// entries. One instance is shared by all concurrent fetches; the underlying
// client is safe for concurrent use and each fetch parses with its own
// parser.
type FeedFetcher struct {
	client        *resty.Client
	maxEntries    int
	recencyWindow time.Duration
}

// Ensure FeedFetcher implements Fetcher
var _ Fetcher = (*FeedFetcher)(nil)

// NewFeedFetcher creates a feed fetcher with the given options.
func NewFeedFetcher(opts Options) *FeedFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = defaultRecencyWindow
	}

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", "newsradar/1.0")

	if opts.InsecureSkipTLSVerify {
		logrus.Warn("TLS certificate verification is DISABLED for feed fetches (INSECURE_SKIP_TLS_VERIFY)")
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	return &FeedFetcher{
		client:        client,
		maxEntries:    opts.MaxEntries,
		recencyWindow: opts.RecencyWindow,
	}
}

// Fetch pulls one source and returns at most MaxEntries raw entries. For
// query-template sources the term is URL-escaped into the endpoint and a
// local recency cut is applied on top of whatever window the remote service
// honors. All failures are contained into a FetchError tagged with the
// source name.
func (f *FeedFetcher) Fetch(ctx context.Context, source models.FeedSource, term string) ([]models.RawEntry, *models.FetchError) {
	endpoint, err := f.buildURL(source, term)
	if err != nil {
		return nil, &models.FetchError{Source: source.Name, Err: err}
	}

	resp, err := f.client.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		return nil, &models.FetchError{Source: source.Name, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &models.FetchError{
			Source: source.Name,
			Err:    fmt.Errorf("feed returned status %d", resp.StatusCode()),
		}
	}

	// gofeed parsers lazily install their translators on first use, so a
	// shared parser is not safe under concurrent fetches. A fresh one per
	// fetch is cheap.
	feed, err := gofeed.NewParser().ParseString(resp.String())
	if err != nil {
		return nil, &models.FetchError{
			Source: source.Name,
			Err:    fmt.Errorf("parsing feed: %w", err),
		}
	}

	cutoff := time.Now().Add(-f.recencyWindow)
	entries := make([]models.RawEntry, 0, f.maxEntries)
	for _, item := range feed.Items {
		if len(entries) >= f.maxEntries {
			break
		}

		entry := toRawEntry(item)

		// Defense in depth for search-style feeds: the query already asserts
		// the window remotely, but a misbehaving remote must not flood the
		// pipeline with stale items. Entries with no date pass through; the
		// normalizer assigns the sentinel.
		if source.Kind == models.KindQueryTemplate && entry.Published != nil && entry.Published.Before(cutoff) {
			logrus.Debugf("Skipping stale entry from %s: %s", source.Name, entry.Title)
			continue
		}

		entries = append(entries, entry)
	}

	logrus.Debugf("Fetched %d entries from %s", len(entries), source.Name)
	return entries, nil
}

func (f *FeedFetcher) buildURL(source models.FeedSource, term string) (string, error) {
	switch source.Kind {
	case models.KindStaticURL:
		return source.Endpoint, nil
	case models.KindQueryTemplate:
		if term == "" {
			return "", fmt.Errorf("query-template source requires a search term")
		}
		return fmt.Sprintf(source.Endpoint, url.QueryEscape(term)), nil
	default:
		return "", fmt.Errorf("unknown source kind %q", source.Kind)
	}
}

func toRawEntry(item *gofeed.Item) models.RawEntry {
	entry := models.RawEntry{
		Title: item.Title,
		Link:  item.Link,
	}

	if item.PublishedParsed != nil {
		entry.Published = item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		entry.Published = item.UpdatedParsed
	}

	// Publisher metadata when the feed carries it. Google News style feeds
	// instead encode the publisher as a title suffix, which the normalizer
	// handles.
	if item.Author != nil && item.Author.Name != "" {
		entry.Publisher = item.Author.Name
	} else if item.DublinCoreExt != nil && len(item.DublinCoreExt.Creator) > 0 {
		entry.Publisher = item.DublinCoreExt.Creator[0]
	}

	return entry
}
