// Package newsstore provides the storage collaborators that receive
// canonical records from the pipeline: a sqlite store with
// upsert-by-URL semantics and a JSON-directory store. Both implement
// the same Store interface.
package newsstore

import (
	"github.com/pevans/newsharvest/pipeline"
)

// Store persists canonical records keyed by URL. Saving a record whose
// URL already exists replaces it.
type Store interface {
	Save(record *pipeline.CanonicalRecord) error
	Close() error
}
