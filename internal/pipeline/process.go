package pipeline

import (
	"sort"
	"strings"

	"github.com/equityscope/newsradar/internal/models"
)

// Process runs the dedup/sort/filter sequence in its fixed order: dedup,
// sort, whitelist, blacklist, keyword. The filter predicates are
// order-independent among themselves but blacklist must be evaluated after
// whitelist so that a source present in both is excluded. Empty input or an
// all-filtered-out result yields an empty slice, not an error.
func Process(records []models.HeadlineRecord, state models.FilterState) []models.HeadlineRecord {
	out := Dedup(records)
	out = Sort(out, state.SortKey)
	out = applyWhitelist(out, state.Whitelist)
	out = applyBlacklist(out, state.Blacklist)
	out = applyKeyword(out, state.Keyword)
	return out
}

// Dedup collapses records whose headlines are equal under case-insensitive
// comparison, keeping the first-encountered instance. Survivor order is
// preserved, so running it twice is a no-op.
func Dedup(records []models.HeadlineRecord) []models.HeadlineRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.HeadlineRecord, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(r.Headline)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// Sort orders records by the given key. Unknown keys fall back to
// newest-first. The sort is stable, so sentinel-dated records keep a
// consistent relative order.
func Sort(records []models.HeadlineRecord, key models.SortKey) []models.HeadlineRecord {
	out := make([]models.HeadlineRecord, len(records))
	copy(out, records)

	switch key {
	case models.SortBySource:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Source != out[j].Source {
				return out[i].Source < out[j].Source
			}
			return out[i].PublishedAt.After(out[j].PublishedAt)
		})
	case models.SortByCompany:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Company != out[j].Company {
				return out[i].Company < out[j].Company
			}
			return out[i].PublishedAt.After(out[j].PublishedAt)
		})
	default: // newest first
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
				return out[i].PublishedAt.After(out[j].PublishedAt)
			}
			return out[i].Source < out[j].Source
		})
	}

	return out
}

// applyWhitelist retains only whitelisted sources. A non-empty whitelist is
// exclusive; an empty one admits everything.
func applyWhitelist(records []models.HeadlineRecord, whitelist []string) []models.HeadlineRecord {
	if len(whitelist) == 0 {
		return records
	}
	allowed := toSet(whitelist)
	out := make([]models.HeadlineRecord, 0, len(records))
	for _, r := range records {
		if allowed[strings.ToLower(r.Source)] {
			out = append(out, r)
		}
	}
	return out
}

// applyBlacklist removes blacklisted sources. Evaluated after the whitelist:
// a source present in both is excluded.
func applyBlacklist(records []models.HeadlineRecord, blacklist []string) []models.HeadlineRecord {
	if len(blacklist) == 0 {
		return records
	}
	blocked := toSet(blacklist)
	out := make([]models.HeadlineRecord, 0, len(records))
	for _, r := range records {
		if !blocked[strings.ToLower(r.Source)] {
			out = append(out, r)
		}
	}
	return out
}

// applyKeyword retains records whose headline or company contains any of the
// comma-separated keywords as a case-insensitive substring. Each field is
// matched on its own so a term cannot span the headline/company boundary.
func applyKeyword(records []models.HeadlineRecord, keyword string) []models.HeadlineRecord {
	terms := splitKeywords(keyword)
	if len(terms) == 0 {
		return records
	}

	out := make([]models.HeadlineRecord, 0, len(records))
	for _, r := range records {
		headline := strings.ToLower(r.Headline)
		company := strings.ToLower(r.Company)
		for _, term := range terms {
			if strings.Contains(headline, term) || strings.Contains(company, term) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// DistinctSources returns the sorted set of source names in the records, for
// populating the presentation layer's filter controls.
func DistinctSources(records []models.HeadlineRecord) []string {
	seen := make(map[string]bool, len(records))
	var sources []string
	for _, r := range records {
		if !seen[r.Source] {
			seen[r.Source] = true
			sources = append(sources, r.Source)
		}
	}
	sort.Strings(sources)
	return sources
}

func splitKeywords(keyword string) []string {
	var terms []string
	for _, part := range strings.Split(keyword, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			terms = append(terms, part)
		}
	}
	return terms
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return set
}
