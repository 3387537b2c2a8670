package pipeline

import (
	"strings"

	"github.com/equityscope/newsradar/internal/models"
	"github.com/sirupsen/logrus"
)

// Normalize maps one raw entry into the canonical headline record. The bool
// result is false when the entry is malformed (missing headline or link) and
// must be dropped; normalization itself never fails.
//
// Source resolution prefers the entry's own publisher metadata. Search-style
// feeds encode the publisher as a " - Publisher" title suffix instead, which
// is split off so the suffix never pollutes the headline. The origin feed's
// display name is the last resort.
func Normalize(raw models.RawEntry, origin models.FeedSource, term string) (models.HeadlineRecord, bool) {
	headline := StripMarkup(raw.Title)
	link := strings.TrimSpace(raw.Link)

	source := raw.Publisher
	if origin.Kind == models.KindQueryTemplate {
		if title, publisher, ok := splitPublisherSuffix(headline); ok {
			headline = title
			if source == "" {
				source = publisher
			}
		}
	}
	if source == "" {
		source = origin.Name
	}

	if headline == "" || link == "" {
		logrus.Debugf("Dropping malformed entry from %s (headline=%q link=%q)", origin.Name, headline, link)
		return models.HeadlineRecord{}, false
	}

	record := models.HeadlineRecord{
		Source:   source,
		Company:  term,
		Headline: headline,
		Link:     link,
	}

	if raw.Published != nil {
		record.PublishedAt = raw.Published.UTC()
		record.DisplayDate = record.PublishedAt.Format(models.DisplayDateFormat)
	} else {
		record.PublishedAt = models.SentinelTime
		record.DisplayDate = models.UnknownDateLabel
	}

	return record, true
}

// NormalizeAll normalizes a batch from one origin, dropping malformed entries.
func NormalizeAll(raws []models.RawEntry, origin models.FeedSource, term string) []models.HeadlineRecord {
	records := make([]models.HeadlineRecord, 0, len(raws))
	for _, raw := range raws {
		if record, ok := Normalize(raw, origin, term); ok {
			records = append(records, record)
		}
	}
	return records
}

// splitPublisherSuffix splits a Google News style "Headline - Publisher"
// title at its last separator.
func splitPublisherSuffix(title string) (headline, publisher string, ok bool) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 {
		return title, "", false
	}
	headline = strings.TrimSpace(title[:idx])
	publisher = strings.TrimSpace(title[idx+3:])
	if headline == "" || publisher == "" {
		return title, "", false
	}
	return headline, publisher, true
}
