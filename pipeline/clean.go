package pipeline

import (
	"strings"
	"time"
)

// Site-name suffixes stripped from the end of titles.
var titleSuffixes = []string{" - CNN", " - BBC News", " | Reuters"}

var timeFields = []string{"publish_time", "update_time", "crawl_time"}

// Clean normalizes every field of a record in place and returns it.
// Each transform is deterministic and idempotent: cleaning a cleaned
// record changes nothing.
func Clean(f Fields) Fields {
	if _, ok := f["title"]; ok {
		f["title"] = CleanTitle(f.String("title"))
	}
	if _, ok := f["content"]; ok {
		f["content"] = CleanContent(f["content"])
	}
	if _, ok := f["summary"]; ok {
		f["summary"] = CleanText(f.String("summary"))
	}
	if _, ok := f["author"]; ok {
		f["author"] = CleanText(f.String("author"))
	}
	for _, field := range timeFields {
		if v, ok := f[field]; ok {
			f[field] = CleanTime(v)
		}
	}
	if _, ok := f["url"]; ok {
		f["url"] = CleanURL(f.String("url"))
	}
	if v, ok := f["images"]; ok {
		f["images"] = CleanImages(v)
	}
	if v, ok := f["tags"]; ok {
		f["tags"] = CleanTags(v)
	}
	return f
}

// CleanTitle collapses internal whitespace and strips one trailing
// site-name suffix.
func CleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(title, suffix) {
			title = strings.TrimSpace(strings.TrimSuffix(title, suffix))
			break
		}
	}
	return title
}

// CleanContent joins list content with newlines, then trims every line
// and drops the empty ones, preserving paragraph breaks.
func CleanContent(content any) string {
	var text string
	switch v := content.(type) {
	case []string:
		text = strings.Join(v, "\n")
	case string:
		text = v
	default:
		return ""
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// CleanText collapses all whitespace runs to single spaces and trims.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// CleanTime serializes instants to RFC 3339 and passes strings through
// trimmed. Already-normalized values are never re-parsed.
func CleanTime(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(time.RFC3339)
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

// CleanURL trims and drops the query string.
func CleanURL(url string) string {
	url = strings.TrimSpace(url)
	if idx := strings.Index(url, "?"); idx >= 0 {
		url = url[:idx]
	}
	return url
}

// CleanImages normalizes an image URL list: protocol-relative URLs get
// an https prefix and anything that is not an absolute http(s) URL is
// dropped.
func CleanImages(images any) []string {
	items := coerceList(images)

	cleaned := make([]string, 0, len(items))
	for _, img := range items {
		img = strings.TrimSpace(img)
		if strings.HasPrefix(img, "//") {
			img = "https:" + img
		}
		if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			cleaned = append(cleaned, img)
		}
	}
	return cleaned
}

// CleanTags lowercases, trims, and deduplicates tags, keeping
// first-seen order.
func CleanTags(tags any) []string {
	items := coerceList(tags)

	seen := make(map[string]struct{}, len(items))
	cleaned := make([]string, 0, len(items))
	for _, tag := range items {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}

func coerceList(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case string:
		return []string{v}
	default:
		return nil
	}
}
