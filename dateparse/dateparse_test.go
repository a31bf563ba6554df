package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedParser returns a parser anchored at a known instant.
func fixedParser(at time.Time) *Parser {
	return &Parser{Now: func() time.Time { return at }}
}

// TestParseISO8601 verifies RFC 3339 variants parse to the same instant
func TestParseISO8601(t *testing.T) {
	p := New()

	zulu, ok := p.Parse("2024-12-21T10:30:00Z", StrategyISO8601)
	require.True(t, ok)

	offset, ok := p.Parse("2024-12-21T10:30:00+00:00", StrategyISO8601)
	require.True(t, ok)
	assert.True(t, zulu.Equal(offset), "Z and +00:00 must be the same instant")

	frac, ok := p.Parse("2024-12-21T10:30:00.123456Z", StrategyISO8601)
	require.True(t, ok)
	assert.Equal(t, 2024, frac.Year())

	naive, ok := p.Parse("2024-12-21T10:30:00", StrategyISO8601)
	require.True(t, ok)
	assert.Equal(t, 10, naive.Hour())

	_, ok = p.Parse("not a date", StrategyISO8601)
	assert.False(t, ok)
}

// TestParseRelative verifies the phrase table and numeric families
func TestParseRelative(t *testing.T) {
	now := time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC)
	p := fixedParser(now)

	tests := []struct {
		input  string
		offset time.Duration
	}{
		{"just now", 0},
		{"a moment ago", 0},
		{"30 seconds ago", 0},
		{"a minute ago", time.Minute},
		{"5 minutes ago", 5 * time.Minute},
		{"an hour ago", time.Hour},
		{"2 hours ago", 2 * time.Hour},
		{"yesterday", 24 * time.Hour},
		{"3 days ago", 3 * 24 * time.Hour},
		{"a week ago", 7 * 24 * time.Hour},
		{"2 weeks ago", 14 * 24 * time.Hour},
		{"a month ago", 30 * 24 * time.Hour},
		{"6 months ago", 180 * 24 * time.Hour},
		{"a year ago", 365 * 24 * time.Hour},
		{"2 years ago", 2 * 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		got, ok := p.Parse(tt.input, StrategyRelative)
		require.True(t, ok, "should parse %q", tt.input)
		assert.Equal(t, now.Add(-tt.offset), got, "offset for %q", tt.input)
	}

	_, ok := p.Parse("21 December 2024", StrategyRelative)
	assert.False(t, ok, "absolute dates are not relative phrases")
}

// TestParseRelative_WallClock verifies results track the real clock
func TestParseRelative_WallClock(t *testing.T) {
	got, ok := New().Parse("5 minutes ago", StrategyRelative)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-5*time.Minute), got, time.Second)
}

// TestParseSite_ClockForm verifies the 12-hour clock form
func TestParseSite_ClockForm(t *testing.T) {
	p := New()

	got, ok := p.Parse("Updated 10:30 AM EST, Thu December 21, 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.December, 21, 10, 30, 0, 0, time.UTC), got)

	// PM adds twelve hours; the optional weekday may be missing.
	got, ok = p.Parse("Published 3:45 PM GMT, December 21, 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, 15, got.Hour())

	// 12 AM is midnight, 12 PM is noon.
	got, ok = p.Parse("12:00 AM GMT, December 21, 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, 0, got.Hour())

	got, ok = p.Parse("12:15 PM GMT, December 21, 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour())
}

// TestParseSite_DateForms verifies the day-first and month-first forms
func TestParseSite_DateForms(t *testing.T) {
	p := New()

	got, ok := p.Parse("21 December 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.December, 21, 0, 0, 0, 0, time.UTC), got)

	got, ok = p.Parse("December 21, 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, 21, got.Day())

	got, ok = p.Parse("3 Sept 2024", StrategySite)
	require.True(t, ok)
	assert.Equal(t, time.September, got.Month())

	_, ok = p.Parse("Notamonth 21, 2024", StrategySite)
	assert.False(t, ok)

	_, ok = p.Parse("30 February 2024", StrategySite)
	assert.False(t, ok, "impossible dates must not normalize")
}

// TestParseSite_RelativeFallback verifies relative phrases parse under
// the site strategy
func TestParseSite_RelativeFallback(t *testing.T) {
	now := time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC)
	p := fixedParser(now)

	got, ok := p.Parse("3 hours ago", StrategySite)
	require.True(t, ok)
	assert.Equal(t, now.Add(-3*time.Hour), got)

	_, ok = p.Parse("complete gibberish", StrategySite)
	assert.False(t, ok)
}

// TestParseAuto verifies strategy priority and the explicit layouts
func TestParseAuto(t *testing.T) {
	now := time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC)
	p := fixedParser(now)

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-12-21T10:30:00Z", time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-12-21 10:30:00", time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC)},
		{"2024-12-21", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"21/12/2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"12/21/2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"21-12-2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"2024/12/21", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"December 21, 2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"Dec 21, 2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"21 December 2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"21 Dec 2024", time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC)},
		{"2 hours ago", now.Add(-2 * time.Hour)},
		{"Updated 10:30 AM EST, Thu December 21, 2024", time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, ok := p.Parse(tt.input, StrategyAuto)
		require.True(t, ok, "should parse %q", tt.input)
		assert.True(t, tt.want.Equal(got), "parsing %q: want %v, got %v", tt.input, tt.want, got)
	}

	_, ok := p.Parse("complete gibberish", StrategyAuto)
	assert.False(t, ok)

	_, ok = p.Parse("", StrategyAuto)
	assert.False(t, ok)
}

// TestStrategyFor verifies parser-name to strategy mapping
func TestStrategyFor(t *testing.T) {
	assert.Equal(t, StrategyISO8601, StrategyFor("iso8601"))
	assert.Equal(t, StrategyRelative, StrategyFor("relative"))
	assert.Equal(t, StrategySite, StrategyFor("cnn_date"))
	assert.Equal(t, StrategySite, StrategyFor("bbc_date"))
	assert.Equal(t, StrategyAuto, StrategyFor("auto"))
	assert.Equal(t, StrategyAuto, StrategyFor("publish_date"))
}

// TestIsDateParser verifies which parser names route to this package
func TestIsDateParser(t *testing.T) {
	assert.True(t, IsDateParser("auto"))
	assert.True(t, IsDateParser("iso8601"))
	assert.True(t, IsDateParser("cnn_date"))
	assert.True(t, IsDateParser("some_date_thing"))
	assert.False(t, IsDateParser("trim"))
	assert.False(t, IsDateParser(""))
}
