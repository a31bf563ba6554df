// Package dateparse converts the heterogeneous date and time strings
// found on news pages into absolute instants. Four strategies are
// supported: strict ISO 8601, English relative phrases ("5 minutes
// ago"), two site-specific clock/date forms, and an auto mode that
// tries everything in priority order. Parsing is best effort: any
// input that matches nothing yields ok=false, never an error.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Strategy selects how Parse interprets its input.
type Strategy string

const (
	StrategyAuto     Strategy = "auto"
	StrategyISO8601  Strategy = "iso8601"
	StrategyRelative Strategy = "relative"
	StrategySite     Strategy = "site"
)

// StrategyFor maps a parser name from a field config to a strategy.
// Site-specific aliases collapse onto the site strategy; anything
// unrecognized gets auto, the widest net.
func StrategyFor(name string) Strategy {
	switch strings.ToLower(name) {
	case "iso8601":
		return StrategyISO8601
	case "relative":
		return StrategyRelative
	case "site", "cnn_date", "bbc_date":
		return StrategySite
	default:
		return StrategyAuto
	}
}

// IsDateParser reports whether a field-config parser name should be
// routed through this package. Any name containing "date" counts, as
// do the canonical strategy names.
func IsDateParser(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "date") {
		return true
	}
	switch lower {
	case "auto", "iso8601", "relative", "site":
		return true
	}
	return false
}

// monthsByName resolves English month names, full and abbreviated,
// case-insensitive.
var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "sept": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// Fixed relative phrases and their offsets in minutes.
var relativeFixed = []struct {
	phrase  string
	minutes int
}{
	{"just now", 0},
	{"a moment ago", 0},
	{"seconds ago", 0},
	{"a second ago", 0},
	{"a minute ago", 1},
	{"an hour ago", 60},
	{"a day ago", 24 * 60},
	{"yesterday", 24 * 60},
	{"a week ago", 7 * 24 * 60},
	{"a month ago", 30 * 24 * 60},
	{"a year ago", 365 * 24 * 60},
}

// Numeric relative families. Months and years are approximated as 30
// and 365 days; these phrases are too vague for calendar arithmetic.
var relativeUnits = []struct {
	phrase string
	unit   time.Duration
}{
	{"minutes ago", time.Minute},
	{"hours ago", time.Hour},
	{"days ago", 24 * time.Hour},
	{"weeks ago", 7 * 24 * time.Hour},
	{"months ago", 30 * 24 * time.Hour},
	{"years ago", 365 * 24 * time.Hour},
}

var firstInt = regexp.MustCompile(`\d+`)

// Site form A: "10:30 AM EST, Thu December 21, 2024" with an optional
// weekday. Leading words like "Updated" or "Published" are ignored
// because the pattern is searched, not anchored.
var siteClockRe = regexp.MustCompile(
	`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)\s*\w+,\s*(?:[A-Za-z]+,?\s+)?([A-Za-z]+)\s+(\d{1,2}),\s+(\d{4})`)

// Site form B: "21 December 2024" and "December 21, 2024".
var (
	siteDayFirstRe   = regexp.MustCompile(`(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})`)
	siteMonthFirstRe = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})`)
)

// Explicit layouts tried by the auto strategy after ISO 8601 and
// relative phrases fail. Ambiguous day/month orders resolve in listed
// order; an impossible month value simply fails that layout.
var commonLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05.999999",
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Parser normalizes date strings. The zero value is not usable; call
// New. Now is the clock used to anchor relative phrases.
type Parser struct {
	Now func() time.Time
}

// New returns a parser anchored at the wall clock.
func New() *Parser {
	return &Parser{Now: time.Now}
}

// Parse applies the named strategy to text. ok is false when nothing
// matched; callers decide what absence of a date means.
func (p *Parser) Parse(text string, strategy Strategy) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	switch strategy {
	case StrategyISO8601:
		return p.ParseISO8601(text)
	case StrategyRelative:
		return p.ParseRelative(text)
	case StrategySite:
		return p.ParseSite(text)
	default:
		return p.ParseAuto(text)
	}
}

// ParseISO8601 accepts RFC 3339 style strings, with or without
// fractional seconds or a zone offset. A trailing Z is equivalent to
// +00:00.
func (p *Parser) ParseISO8601(text string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseRelative resolves English relative phrases against the parser's
// clock. Months count as 30 days and years as 365; the input is too
// imprecise for anything better.
func (p *Parser) ParseRelative(text string) (time.Time, bool) {
	lower := strings.ToLower(text)

	for _, fixed := range relativeFixed {
		if strings.Contains(lower, fixed.phrase) {
			return p.Now().Add(-time.Duration(fixed.minutes) * time.Minute), true
		}
	}

	for _, fam := range relativeUnits {
		if !strings.Contains(lower, fam.phrase) {
			continue
		}
		digits := firstInt.FindString(text)
		if digits == "" {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		return p.Now().Add(-time.Duration(n) * fam.unit), true
	}

	return time.Time{}, false
}

// ParseSite handles the two canonical site-specific forms: a 12-hour
// clock with timezone word and full date, and plain day/month/year
// dates in either order. First matching form wins. Sites that use
// these forms also timestamp fresh articles with relative phrases, so
// those are accepted as a last resort.
func (p *Parser) ParseSite(text string) (time.Time, bool) {
	if m := siteClockRe.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		month, ok := monthsByName[strings.ToLower(m[4])]
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[5])
		year, _ := strconv.Atoi(m[6])

		// 12-hour to 24-hour conversion.
		switch strings.ToUpper(m[3]) {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		}

		return p.buildDate(year, month, day, hour, minute)
	}

	if m := siteDayFirstRe.FindStringSubmatch(text); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			return p.buildDate(year, month, day, 0, 0)
		}
	}

	if m := siteMonthFirstRe.FindStringSubmatch(text); m != nil {
		if month, ok := monthsByName[strings.ToLower(m[1])]; ok {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return p.buildDate(year, month, day, 0, 0)
		}
	}

	return p.ParseRelative(text)
}

// buildDate rejects impossible calendar dates instead of letting
// time.Date normalize them (February 30 must not become March 2).
func (p *Parser) buildDate(year int, month time.Month, day, hour, minute int) (time.Time, bool) {
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseAuto tries every strategy in priority order: ISO 8601, relative
// phrases, the explicit layout list, then the site forms.
func (p *Parser) ParseAuto(text string) (time.Time, bool) {
	if t, ok := p.ParseISO8601(text); ok {
		return t, true
	}
	if t, ok := p.ParseRelative(text); ok {
		return t, true
	}
	for _, layout := range commonLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return p.ParseSite(text)
}
