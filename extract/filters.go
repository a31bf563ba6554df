package extract

import "strings"

// Filter is one of the fixed post-extraction filters a field config
// can name. Unknown names resolve to FilterNone at config-load time.
type Filter int

const (
	FilterNone Filter = iota
	FilterValidImage
	FilterRemoveEmpty
	FilterUnique
)

// invalidImageMarkers disqualify an image URL regardless of its shape:
// these substrings mark site chrome, not article imagery.
var invalidImageMarkers = []string{
	"icon", "logo", "placeholder", "avatar", "sprite", "blank", "spacer", "pixel",
}

const minImageURLLength = 20

// filterFor resolves a filter name. ok is false for a non-empty name
// that matches nothing, so the caller can warn once at resolution.
func filterFor(name string) (Filter, bool) {
	switch name {
	case "":
		return FilterNone, true
	case "validImage", "valid_image":
		return FilterValidImage, true
	case "removeEmpty", "remove_empty":
		return FilterRemoveEmpty, true
	case "unique":
		return FilterUnique, true
	default:
		return FilterNone, false
	}
}

// Apply runs the filter over the extracted elements, preserving order.
func (f Filter) Apply(items []string) []string {
	switch f {
	case FilterValidImage:
		return filterValidImages(items)
	case FilterRemoveEmpty:
		return filterNonEmpty(items)
	case FilterUnique:
		return filterUnique(items)
	default:
		return items
	}
}

func filterValidImages(items []string) []string {
	var out []string
	for _, item := range items {
		if len(item) <= minImageURLLength {
			continue
		}
		if !strings.HasPrefix(item, "http://") &&
			!strings.HasPrefix(item, "https://") &&
			!strings.HasPrefix(item, "//") {
			continue
		}
		lower := strings.ToLower(item)
		blocked := false
		for _, marker := range invalidImageMarkers {
			if strings.Contains(lower, marker) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, item)
		}
	}
	return out
}

func filterNonEmpty(items []string) []string {
	var out []string
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func filterUnique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
