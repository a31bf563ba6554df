package pipeline

import (
	"sync"

	"go.uber.org/zap"
)

// Deduper holds the run-scoped dedup state: the URLs and record IDs
// already accepted during this run. It is the only stateful stage;
// both checks and both inserts for one record happen inside a single
// critical section so that two workers submitting the same record
// concurrently cannot both pass.
type Deduper struct {
	mu         sync.Mutex
	seenURLs   map[string]struct{}
	seenIDs    map[string]struct{}
	duplicates int
	logger     *zap.Logger
}

// NewDeduper creates empty dedup state for a run.
func NewDeduper(logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{
		seenURLs: make(map[string]struct{}),
		seenIDs:  make(map[string]struct{}),
		logger:   logger,
	}
}

// Check admits a record by URL and news ID. The first occurrence of a
// URL/ID pair is recorded and accepted; any later occurrence is
// rejected and counted. A URL rejection leaves the state untouched.
func (d *Deduper) Check(url, newsID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.seenURLs[url]; dup {
		d.duplicates++
		d.logger.Debug("duplicate url", zap.String("url", url))
		return &Reject{Reason: "duplicate url"}
	}
	d.seenURLs[url] = struct{}{}

	if _, dup := d.seenIDs[newsID]; dup {
		d.duplicates++
		d.logger.Debug("duplicate id", zap.String("news_id", newsID))
		return &Reject{Reason: "duplicate id"}
	}
	d.seenIDs[newsID] = struct{}{}

	return nil
}

// Duplicates returns the number of records rejected so far. The run
// lifecycle reads it once at end of run for the summary.
func (d *Deduper) Duplicates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.duplicates
}

// Seen returns how many unique records have been admitted.
func (d *Deduper) Seen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seenIDs)
}
