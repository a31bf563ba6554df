// Package pipeline turns a raw extracted field map into a canonical
// news record. Records flow through three stages: validation (accept
// or reject against required-field and format rules), deduplication
// (run-scoped URL and ID seen sets), and cleaning (deterministic,
// idempotent normalization of every field). A Run composes the stages
// and owns the dedup state for one crawl.
package pipeline

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pevans/newsharvest/sources"
)

// Fields is the raw extracted record: field name to value, where a
// value is a string or an ordered []string. Produced fresh per
// document; no cross-document state.
type Fields map[string]any

// NewsID derives the deterministic record identifier from a URL: the
// hex md5 of the URL bytes. Equal URLs always produce equal IDs, and
// nothing but the URL participates. Empty in, empty out.
func NewsID(url string) string {
	if url == "" {
		return ""
	}
	sum := md5.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

// NewFields assembles the pipeline input for one document: the
// extracted fields plus the source identity, the page URL, and the
// crawl timestamps. Values already present in the extraction win.
func NewFields(extracted map[string]any, src *sources.SourceConfig, pageURL, category string) Fields {
	f := make(Fields, len(extracted)+8)
	for k, v := range extracted {
		f[k] = v
	}

	if _, ok := f["url"]; !ok && pageURL != "" {
		f["url"] = pageURL
	}
	if _, ok := f["news_id"]; !ok {
		f["news_id"] = NewsID(f.String("url"))
	}
	if _, ok := f["crawl_time"]; !ok {
		f["crawl_time"] = time.Now().UTC().Format(time.RFC3339)
	}
	if category != "" {
		f["category"] = category
	}
	if src != nil {
		f["source_name"] = src.Name
		f["source_country"] = src.Country
		f["language"] = src.Language
	}

	return f
}

// String returns a field as a single string, joining list values with
// a space. Absent fields are empty.
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, " ")
	default:
		return ""
	}
}

// list coerces a field into a slice: a single string becomes a
// one-element slice.
func (f Fields) list(key string) []string {
	switch v := f[key].(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}

// CanonicalRecord is the validated, deduplicated, cleaned output
// record handed to storage.
type CanonicalRecord struct {
	NewsID        string   `json:"news_id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Content       string   `json:"content,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Author        string   `json:"author,omitempty"`
	PublishTime   string   `json:"publish_time,omitempty"`
	UpdateTime    string   `json:"update_time,omitempty"`
	CrawlTime     string   `json:"crawl_time,omitempty"`
	Category      string   `json:"category,omitempty"`
	Images        []string `json:"images,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	SourceName    string   `json:"source_name"`
	SourceCountry string   `json:"source_country,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// Canonical builds the output record from a cleaned field map.
func Canonical(f Fields) *CanonicalRecord {
	return &CanonicalRecord{
		NewsID:        f.String("news_id"),
		Title:         f.String("title"),
		URL:           f.String("url"),
		Content:       f.String("content"),
		Summary:       f.String("summary"),
		Author:        f.String("author"),
		PublishTime:   f.String("publish_time"),
		UpdateTime:    f.String("update_time"),
		CrawlTime:     f.String("crawl_time"),
		Category:      f.String("category"),
		Images:        f.list("images"),
		Tags:          f.list("tags"),
		SourceName:    f.String("source_name"),
		SourceCountry: f.String("source_country"),
		Language:      f.String("language"),
	}
}
