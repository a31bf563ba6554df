package newsstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pevans/newsharvest/pipeline"
)

// SQLStore persists canonical records in SQLite, one row per URL.
type SQLStore struct {
	db      *sql.DB
	saved   atomic.Int64
	updated atomic.Int64
}

// NewSQLStore opens (or creates) the database at the given path.
func NewSQLStore(dbPath string) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the news table if it doesn't exist.
func (s *SQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		url TEXT PRIMARY KEY,
		news_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT,
		summary TEXT,
		author TEXT,
		publish_time TEXT,
		update_time TEXT,
		crawl_time TEXT,
		category TEXT,
		images TEXT,
		tags TEXT,
		source_name TEXT NOT NULL,
		source_country TEXT,
		language TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_news_news_id ON news (news_id);
	CREATE INDEX IF NOT EXISTS idx_news_source ON news (source_name, publish_time);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save upserts a record by URL. New URLs insert, known URLs update;
// the two counters track which happened.
func (s *SQLStore) Save(record *pipeline.CanonicalRecord) error {
	images, err := json.Marshal(record.Images)
	if err != nil {
		return fmt.Errorf("failed to marshal images: %w", err)
	}
	tags, err := json.Marshal(record.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	var exists int
	err = s.db.QueryRow("SELECT COUNT(1) FROM news WHERE url = ?", record.URL).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check existing record: %w", err)
	}

	query := `
	INSERT INTO news (
		url, news_id, title, content, summary, author,
		publish_time, update_time, crawl_time, category,
		images, tags, source_name, source_country, language
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (url) DO UPDATE SET
		news_id = excluded.news_id,
		title = excluded.title,
		content = excluded.content,
		summary = excluded.summary,
		author = excluded.author,
		publish_time = excluded.publish_time,
		update_time = excluded.update_time,
		crawl_time = excluded.crawl_time,
		category = excluded.category,
		images = excluded.images,
		tags = excluded.tags,
		source_name = excluded.source_name,
		source_country = excluded.source_country,
		language = excluded.language
	`

	_, err = s.db.Exec(query,
		record.URL, record.NewsID, record.Title, record.Content,
		record.Summary, record.Author, record.PublishTime,
		record.UpdateTime, record.CrawlTime, record.Category,
		string(images), string(tags), record.SourceName,
		record.SourceCountry, record.Language)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	if exists > 0 {
		s.updated.Add(1)
	} else {
		s.saved.Add(1)
	}
	return nil
}

// Get retrieves a record by URL. Returns nil when the URL is unknown.
func (s *SQLStore) Get(url string) (*pipeline.CanonicalRecord, error) {
	query := `
	SELECT url, news_id, title, content, summary, author,
		publish_time, update_time, crawl_time, category,
		images, tags, source_name, source_country, language
	FROM news WHERE url = ?
	`

	var record pipeline.CanonicalRecord
	var images, tags string

	err := s.db.QueryRow(query, url).Scan(
		&record.URL, &record.NewsID, &record.Title, &record.Content,
		&record.Summary, &record.Author, &record.PublishTime,
		&record.UpdateTime, &record.CrawlTime, &record.Category,
		&images, &tags, &record.SourceName,
		&record.SourceCountry, &record.Language)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}

	if err := json.Unmarshal([]byte(images), &record.Images); err != nil {
		return nil, fmt.Errorf("failed to unmarshal images: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &record.Tags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
	}

	return &record, nil
}

// Count returns the number of stored records.
func (s *SQLStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(1) FROM news").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Saved returns how many Save calls inserted a new URL.
func (s *SQLStore) Saved() int {
	return int(s.saved.Load())
}

// Updated returns how many Save calls replaced an existing URL.
func (s *SQLStore) Updated() int {
	return int(s.updated.Load())
}
