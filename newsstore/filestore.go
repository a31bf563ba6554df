package newsstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pevans/newsharvest/pipeline"
)

// FileStore keeps one JSON file per record in a directory, named by
// the record's news ID. Saving the same URL twice overwrites the same
// file, which gives the expected upsert behavior.
type FileStore struct {
	dir string
}

// ReadError describes a failure to read a single record file.
type ReadError struct {
	Filename string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filename, e.Err)
}

// ListResult contains the records found in the directory, plus any
// per-file errors that occurred while reading them.
type ListResult struct {
	Records []pipeline.CanonicalRecord
	Errors  []ReadError
}

// NewFileStore creates a file store rooted at dir, creating the
// directory if needed (0700: owner-only access).
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a record as JSON, keyed by its news ID.
func (fs *FileStore) Save(record *pipeline.CanonicalRecord) error {
	if record.NewsID == "" {
		return fmt.Errorf("record has no news id")
	}
	filename := filepath.Join(fs.dir, record.NewsID+".json")

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	return nil
}

// Get retrieves a record by news ID. Returns nil when not present.
func (fs *FileStore) Get(newsID string) (*pipeline.CanonicalRecord, error) {
	data, err := os.ReadFile(filepath.Join(fs.dir, newsID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record pipeline.CanonicalRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return &record, nil
}

// List returns every record in the store. Corrupted files are
// collected in the result's Errors slice rather than failing the whole
// listing; a non-nil error return means the directory itself was
// unreadable.
func (fs *FileStore) List() (*ListResult, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	result := &ListResult{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(fs.dir, entry.Name()))
		if err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		var record pipeline.CanonicalRecord
		if err := json.Unmarshal(data, &record); err != nil {
			result.Errors = append(result.Errors, ReadError{Filename: entry.Name(), Err: err})
			continue
		}

		result.Records = append(result.Records, record)
	}

	return result, nil
}

// Delete removes a record by news ID.
func (fs *FileStore) Delete(newsID string) error {
	if err := os.Remove(filepath.Join(fs.dir, newsID+".json")); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// Close is a no-op; file handles are not held between calls.
func (fs *FileStore) Close() error {
	return nil
}
