// Package extract applies one source's selector configuration to one
// fetched document. Each field is tried through an ordered list of
// selectors with graceful degradation: a selector that errors, matches
// nothing, or is emptied by filtering simply hands over to the next
// candidate. Extraction never fails a document; a field that no
// selector can produce is absent.
package extract

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pevans/newsharvest/dateparse"
	"github.com/pevans/newsharvest/sources"
)

// Document is the query surface the fetching layer must supply: CSS
// and XPath lookups that return the matched text strings.
type Document interface {
	QueryCSS(selector string) ([]string, error)
	QueryXPath(expr string) ([]string, error)
}

// selector pairs one query string with the slot language it came from.
type selector struct {
	query string
	xpath bool
}

type parserKind int

const (
	parserIdentity parserKind = iota
	parserDate
)

// fieldPlan is a FieldConfig with its filter and parser names resolved
// into variants, done once at extractor construction.
type fieldPlan struct {
	selectors []selector
	filter    Filter
	parser    parserKind
	strategy  dateparse.Strategy
	join      *string
	required  bool
}

// Extractor applies a single source's field configuration. It is
// stateless per call and safe for concurrent use.
type Extractor struct {
	src    *sources.SourceConfig
	plans  map[string]fieldPlan
	fields []string // config iteration order kept stable
	dates  *dateparse.Parser
	logger *zap.Logger
}

// New builds an extractor for one source, resolving every field's
// filter and parser name. Unknown filter names fall back to the
// identity filter with a warning here rather than once per document.
func New(src *sources.SourceConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("source", src.ID))

	e := &Extractor{
		src:    src,
		plans:  make(map[string]fieldPlan, len(src.Selectors)),
		dates:  dateparse.New(),
		logger: logger,
	}

	for name, cfg := range src.Selectors {
		e.fields = append(e.fields, name)
		e.plans[name] = e.resolve(name, cfg)
	}

	return e
}

func (e *Extractor) resolve(field string, cfg sources.FieldConfig) fieldPlan {
	plan := fieldPlan{
		join:     cfg.Join,
		required: cfg.Required,
	}

	// Priority slot first, then the other slot as a fallback.
	if cfg.Priority == "xpath" {
		plan.selectors = appendSelectors(plan.selectors, cfg.XPath, true)
		plan.selectors = appendSelectors(plan.selectors, cfg.CSS, false)
	} else {
		plan.selectors = appendSelectors(plan.selectors, cfg.CSS, false)
		plan.selectors = appendSelectors(plan.selectors, cfg.XPath, true)
	}

	filter, known := filterFor(cfg.Filter)
	if !known {
		e.logger.Warn("unknown filter, passing data through",
			zap.String("field", field), zap.String("filter", cfg.Filter))
	}
	plan.filter = filter

	if cfg.Parser != "" && dateparse.IsDateParser(cfg.Parser) {
		plan.parser = parserDate
		plan.strategy = dateparse.StrategyFor(cfg.Parser)
	}

	return plan
}

func appendSelectors(dst []selector, queries []string, xpath bool) []selector {
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		dst = append(dst, selector{query: q, xpath: xpath})
	}
	return dst
}

// ExtractField extracts one configured field from a document. The
// returned value is a string or a []string; ok is false when no
// selector produced usable data. It never returns an error.
func (e *Extractor) ExtractField(doc Document, field string) (any, bool) {
	plan, configured := e.plans[field]
	if !configured || len(plan.selectors) == 0 {
		e.logger.Debug("no selector configured", zap.String("field", field))
		return nil, false
	}

	for i, sel := range plan.selectors {
		raw, err := e.query(doc, sel)
		if err != nil {
			e.logger.Debug("selector failed",
				zap.String("field", field), zap.Int("selector", i+1),
				zap.String("query", sel.query), zap.Error(err))
			continue
		}
		if len(raw) == 0 {
			continue
		}

		value, ok := e.process(raw, plan)
		if !ok {
			continue
		}

		e.logger.Debug("field extracted",
			zap.String("field", field), zap.Int("selector", i+1))
		return value, true
	}

	if plan.required {
		e.logger.Warn("required field extraction failed", zap.String("field", field))
	} else {
		e.logger.Debug("optional field extraction failed", zap.String("field", field))
	}
	return nil, false
}

func (e *Extractor) query(doc Document, sel selector) ([]string, error) {
	if sel.xpath {
		return doc.QueryXPath(sel.query)
	}
	return doc.QueryCSS(sel.query)
}

// process runs the post-extraction steps on one selector's matches:
// whitespace stripping, the configured filter, the configured parser,
// then the join/single/list combine. ok is false when every element
// was dropped along the way, which the caller treats as a selector
// miss.
func (e *Extractor) process(raw []string, plan fieldPlan) (any, bool) {
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return nil, false
	}

	items = plan.filter.Apply(items)
	if len(items) == 0 {
		return nil, false
	}

	if plan.parser == parserDate {
		parsed := items[:0]
		for _, item := range items {
			if t, ok := e.dates.Parse(item, plan.strategy); ok {
				parsed = append(parsed, t.Format(time.RFC3339))
			}
		}
		items = parsed
		if len(items) == 0 {
			return nil, false
		}
	}

	if plan.join != nil {
		return strings.Join(items, *plan.join), true
	}
	if len(items) == 1 {
		return items[0], true
	}
	return items, true
}

// ExtractAll extracts every configured field, returning only the
// fields that resolved to a value.
func (e *Extractor) ExtractAll(doc Document) map[string]any {
	out := make(map[string]any, len(e.fields))
	for _, field := range e.fields {
		if value, ok := e.ExtractField(doc, field); ok {
			out[field] = value
		}
	}
	return out
}

// IsValidArticleURL checks a discovered URL against the source's URL
// patterns: it must match the article pattern when one is set, and
// must not contain any exclude substring (case-insensitive).
func (e *Extractor) IsValidArticleURL(rawURL string) bool {
	if re := e.src.ArticleRegexp(); re != nil && !re.MatchString(rawURL) {
		e.logger.Debug("url does not match article pattern", zap.String("url", rawURL))
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, pattern := range e.src.URLPatterns.Exclude {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			e.logger.Debug("url matches exclude pattern",
				zap.String("url", rawURL), zap.String("pattern", pattern))
			return false
		}
	}

	return true
}

// Source returns the configuration this extractor was built from.
func (e *Extractor) Source() *sources.SourceConfig {
	return e.src
}
