package pipeline

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sink receives canonical records. Storage collaborators implement it
// with upsert-by-URL semantics downstream.
type Sink interface {
	Save(record *CanonicalRecord) error
}

// Run composes the three stages over one crawl run and owns the
// dedup state for its lifetime. Process may be called from any number
// of fetch workers; the Deduper serializes the only shared mutation.
type Run struct {
	ID uuid.UUID

	validator *Validator
	deduper   *Deduper
	sink      Sink
	logger    *zap.Logger

	accepted atomic.Int64
	rejected atomic.Int64
}

// NewRun starts a pipeline run. sink may be nil when the caller only
// wants the record back from Process.
func NewRun(sink Sink, logger *zap.Logger) *Run {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New()
	logger = logger.With(zap.String("run_id", id.String()))

	return &Run{
		ID:        id,
		validator: NewValidator(logger),
		deduper:   NewDeduper(logger),
		sink:      sink,
		logger:    logger,
	}
}

// Deduper exposes the run's dedup state for callers that drive the
// stages themselves.
func (r *Run) Deduper() *Deduper {
	return r.deduper
}

// Process takes one raw extracted record through validation,
// deduplication, cleaning, and the sink. A *Reject return means the
// record was dropped for a per-record reason; any other non-nil error
// came from the sink. Neither aborts the run.
func (r *Run) Process(f Fields) (*CanonicalRecord, error) {
	if err := r.validator.Check(f); err != nil {
		r.rejected.Add(1)
		if rej, ok := AsReject(err); ok {
			r.logger.Debug("record rejected",
				zap.String("reason", rej.Reason),
				zap.String("url", f.String("url")))
		}
		return nil, err
	}

	if err := r.deduper.Check(f.String("url"), f.String("news_id")); err != nil {
		r.rejected.Add(1)
		return nil, err
	}

	record := Canonical(Clean(f))

	if r.sink != nil {
		if err := r.sink.Save(record); err != nil {
			return nil, fmt.Errorf("save record: %w", err)
		}
	}

	r.accepted.Add(1)
	return record, nil
}

// Accepted returns how many records passed every stage.
func (r *Run) Accepted() int {
	return int(r.accepted.Load())
}

// Rejected returns how many records were dropped by validation or
// deduplication.
func (r *Run) Rejected() int {
	return int(r.rejected.Load())
}

// Close emits the end-of-run summary. The dedup state is garbage
// after this; a new run starts fresh.
func (r *Run) Close() {
	r.logger.Info("run finished",
		zap.Int("accepted", r.Accepted()),
		zap.Int("rejected", r.Rejected()),
		zap.Int("duplicates", r.deduper.Duplicates()))
}
