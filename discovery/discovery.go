// Package discovery turns an already-fetched RSS or Atom payload into
// candidate articles for a source. Many configured sites publish feeds
// alongside their list pages; a feed gives the fetch engine article
// URLs plus fallback metadata without touching the site's HTML. This
// package performs no network I/O -- the fetching layer supplies the
// payload.
package discovery

import (
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/pevans/newsharvest/extract"
)

// Candidate is one article discovered from a feed: the URL to fetch
// plus whatever metadata the feed already carried.
type Candidate struct {
	URL       string
	Title     string
	Summary   string
	Category  string
	Published *time.Time
}

// FromFeed parses a feed payload and returns the candidate articles
// that pass the source's URL patterns. The gofeed library detects and
// normalizes RSS and Atom transparently. Items without a link, and
// items the extractor's URL patterns reject, are skipped -- skipping
// is logged, never an error.
func FromFeed(r io.Reader, ex *extract.Extractor, category string, logger *zap.Logger) ([]Candidate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	candidates := make([]Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		if ex != nil && !ex.IsValidArticleURL(item.Link) {
			logger.Debug("feed item rejected by url patterns", zap.String("url", item.Link))
			continue
		}

		c := Candidate{
			URL:      item.Link,
			Title:    item.Title,
			Summary:  item.Description,
			Category: category,
		}

		// Feeds disagree on which timestamp they publish; prefer the
		// published time, fall back to updated.
		if item.PublishedParsed != nil {
			c.Published = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			c.Published = item.UpdatedParsed
		}

		candidates = append(candidates, c)
	}

	logger.Debug("feed discovery finished",
		zap.String("feed", feed.Title),
		zap.Int("items", len(feed.Items)),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}
