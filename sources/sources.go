// Package sources loads and indexes per-site extraction configurations.
// A source describes one news site declaratively: which URLs carry
// articles, which list pages to walk, and which selectors yield each
// record field. The extraction engine consumes these configs without
// any per-site code.
package sources

import (
	"errors"
	"fmt"
	"regexp"
)

// Custom errors for registry operations
var (
	ErrNoSources      = errors.New("no enabled sources in configuration")
	ErrSourceNotFound = errors.New("source not found")
)

// ListPage is one listing/index page to walk for article links.
type ListPage struct {
	URL      string `json:"url" yaml:"url"`
	Category string `json:"category" yaml:"category"`
}

// URLPatterns decides which discovered URLs are articles. Article is a
// regular expression the URL must match (empty means match all);
// Exclude is a set of substrings that disqualify a URL.
type URLPatterns struct {
	Article string   `json:"article" yaml:"article"`
	Exclude []string `json:"exclude" yaml:"exclude"`
}

// FieldConfig is the extraction recipe for a single record field. CSS
// and XPath are the two selector slots, each an ordered list of
// candidate queries tried until one yields usable data. Priority picks
// which slot goes first.
type FieldConfig struct {
	CSS      []string `json:"css" yaml:"css"`
	XPath    []string `json:"xpath" yaml:"xpath"`
	Priority string   `json:"priority" yaml:"priority"` // "css" (default) or "xpath"
	Filter   string   `json:"filter" yaml:"filter"`
	Parser   string   `json:"parser" yaml:"parser"`
	Join     *string  `json:"join" yaml:"join"`
	Required bool     `json:"required" yaml:"required"`
}

// HasSelectors reports whether at least one slot is non-empty. A field
// with two empty slots can never yield data.
func (f *FieldConfig) HasSelectors() bool {
	return len(f.CSS) > 0 || len(f.XPath) > 0
}

// SourceConfig is the identity and extraction recipe of one site.
// Immutable once loaded; owned by the Registry for the run.
type SourceConfig struct {
	ID          string                 `json:"-" yaml:"-"`
	Name        string                 `json:"name" yaml:"name"`
	Domain      string                 `json:"domain" yaml:"domain"`
	Country     string                 `json:"country" yaml:"country"`
	Language    string                 `json:"language" yaml:"language"`
	Enabled     *bool                  `json:"enabled" yaml:"enabled"`
	ListPages   []ListPage             `json:"listPages" yaml:"listPages"`
	URLPatterns URLPatterns            `json:"urlPatterns" yaml:"urlPatterns"`
	Selectors   map[string]FieldConfig `json:"selectors" yaml:"selectors"`

	articleRe *regexp.Regexp
}

// IsEnabled returns true unless the config explicitly disables the
// source. Absent means enabled.
func (s *SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ArticleRegexp returns the compiled article URL pattern, or nil when
// the source does not constrain article URLs.
func (s *SourceConfig) ArticleRegexp() *regexp.Regexp {
	return s.articleRe
}

// validate checks a loaded config and compiles its URL pattern.
func (s *SourceConfig) validate() error {
	if s.Name == "" {
		return fmt.Errorf("source %q: name is required", s.ID)
	}

	for field, fc := range s.Selectors {
		if !fc.HasSelectors() {
			return fmt.Errorf("source %q: field %q has no selectors configured", s.ID, field)
		}
		if fc.Priority != "" && fc.Priority != "css" && fc.Priority != "xpath" {
			return fmt.Errorf("source %q: field %q: priority must be css or xpath, got %q",
				s.ID, field, fc.Priority)
		}
	}

	if s.URLPatterns.Article != "" {
		re, err := regexp.Compile(s.URLPatterns.Article)
		if err != nil {
			return fmt.Errorf("source %q: invalid article pattern: %w", s.ID, err)
		}
		s.articleRe = re
	}

	return nil
}
