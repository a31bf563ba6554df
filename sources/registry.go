package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a source configuration resource.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Registry holds the enabled source configurations for a run. It is
// immutable after load except for Reload, which atomically replaces
// the whole index.
type Registry struct {
	mu      sync.RWMutex
	path    string
	format  Format
	byID    map[string]*SourceConfig
	ids     []string // insertion order of the config resource
	skipped int
	logger  *zap.Logger
}

// LoadFile loads a source configuration resource from disk. The format
// is chosen by extension: .yaml/.yml parse as YAML, everything else as
// JSON. A missing or malformed resource, or one with zero enabled
// sources, is an error the caller must treat as fatal.
func LoadFile(path string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source config: %w", err)
	}

	format := FormatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = FormatYAML
	}

	r, err := Load(data, format, logger)
	if err != nil {
		return nil, err
	}
	r.path = path
	return r, nil
}

// Load parses a source configuration resource. Sources with
// enabled=false are skipped. Key order of the resource is preserved
// and becomes the order of IDs().
func Load(data []byte, format Format, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		format: format,
		byID:   make(map[string]*SourceConfig),
		logger: logger,
	}

	var err error
	switch format {
	case FormatYAML:
		err = r.loadYAML(data)
	default:
		err = r.loadJSON(data)
	}
	if err != nil {
		return nil, err
	}

	if len(r.ids) == 0 {
		return nil, ErrNoSources
	}

	logger.Info("loaded source configurations",
		zap.Int("enabled", len(r.ids)),
		zap.Int("skipped", r.skipped))

	return r, nil
}

// loadJSON walks the top-level object with a token decoder so that the
// resource's key order survives into ids.
func (r *Registry) loadJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("parse source config: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parse source config: expected top-level object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parse source config: %w", err)
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("parse source config: expected source id, got %v", tok)
		}

		var cfg SourceConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("parse source %q: %w", id, err)
		}

		if err := r.add(id, &cfg); err != nil {
			return err
		}
	}

	return nil
}

// loadYAML accepts the same schema as YAML, using the node API to keep
// mapping order.
func (r *Registry) loadYAML(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("parse source config: %w", err)
	}
	if len(root.Content) == 0 {
		return fmt.Errorf("parse source config: empty document")
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return fmt.Errorf("parse source config: expected top-level mapping")
	}

	for i := 0; i+1 < len(doc.Content); i += 2 {
		id := doc.Content[i].Value

		var cfg SourceConfig
		if err := doc.Content[i+1].Decode(&cfg); err != nil {
			return fmt.Errorf("parse source %q: %w", id, err)
		}

		if err := r.add(id, &cfg); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) add(id string, cfg *SourceConfig) error {
	cfg.ID = id

	if !cfg.IsEnabled() {
		r.skipped++
		r.logger.Debug("skipping disabled source", zap.String("source", id))
		return nil
	}

	if err := cfg.validate(); err != nil {
		return err
	}
	if _, dup := r.byID[id]; dup {
		return fmt.Errorf("duplicate source id %q", id)
	}

	r.byID[id] = cfg
	r.ids = append(r.ids, id)
	r.logger.Debug("loaded source", zap.String("source", id), zap.String("name", cfg.Name))
	return nil
}

// Get returns the configuration for a source id.
func (r *Registry) Get(id string) (*SourceConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	return cfg, nil
}

// IDs returns the enabled source ids in the order they appear in the
// configuration resource.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of enabled sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// Reload re-reads the resource the registry was loaded from and swaps
// the whole index atomically. On error the current index is kept.
func (r *Registry) Reload() error {
	r.mu.RLock()
	path := r.path
	logger := r.logger
	r.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("registry was not loaded from a file")
	}

	fresh, err := LoadFile(path, logger)
	if err != nil {
		return fmt.Errorf("reload source config: %w", err)
	}

	r.mu.Lock()
	r.byID = fresh.byID
	r.ids = fresh.ids
	r.skipped = fresh.skipped
	r.mu.Unlock()

	logger.Info("source configurations reloaded", zap.Int("enabled", len(fresh.ids)))
	return nil
}
