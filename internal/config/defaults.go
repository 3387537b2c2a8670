package config

import "github.com/equityscope/newsradar/internal/models"

// defaultQueryTemplate searches Google News for a company term, restricted to
// the last 7 days by the query itself. The fetcher additionally enforces the
// recency window locally.
const defaultQueryTemplate = "https://news.google.com/rss/search?q=%s+when:7d&hl=en-US&gl=US&ceid=US:en"

func defaultStaticFeeds() []models.FeedSource {
	return []models.FeedSource{
		{
			Name:     "Globe & Mail: Investing",
			Endpoint: "https://www.theglobeandmail.com/arc/outboundfeeds/rss/category/investing/",
			Kind:     models.KindStaticURL,
		},
		{
			Name:     "Globe & Mail: Business",
			Endpoint: "https://www.theglobeandmail.com/arc/outboundfeeds/rss/category/business/",
			Kind:     models.KindStaticURL,
		},
		{
			Name:     "Yahoo Finance: Top Stories",
			Endpoint: "https://finance.yahoo.com/news/rssindex",
			Kind:     models.KindStaticURL,
		},
	}
}

func defaultGroups() []models.WatchlistGroup {
	return []models.WatchlistGroup{
		{
			Name: "TSX Watchlist",
			Companies: []string{
				"5N Plus",
				"Aritzia",
				"NFI Group",
				"Converge Technology Solutions",
			},
		},
	}
}

// Sources that tend to flood query feeds with promotional or paywalled
// rewrites of the same wire story.
func defaultBlacklist() []string {
	return []string{
		"MarketBeat",
		"Simply Wall St",
		"Zacks Investment Research",
	}
}
