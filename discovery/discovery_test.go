package discovery

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pevans/newsharvest/extract"
	"github.com/pevans/newsharvest/sources"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <item>
      <title>First Story</title>
      <link>https://example.com/news/1</link>
      <description>Summary of the first story.</description>
      <pubDate>Sat, 21 Dec 2024 10:30:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Story</title>
      <link>https://example.com/news/2</link>
    </item>
    <item>
      <title>A Video Page</title>
      <link>https://example.com/video/3</link>
    </item>
    <item>
      <title>No Link Here</title>
    </item>
  </channel>
</rss>`

const testAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <title>Atom Story</title>
    <link href="https://example.com/news/7"/>
    <updated>2024-12-21T10:30:00Z</updated>
  </entry>
</feed>`

func testExtractor(t *testing.T) *extract.Extractor {
	t.Helper()

	reg, err := sources.Load([]byte(`{
		"example": {
			"name": "Example",
			"urlPatterns": {"article": "^https://example\\.com/news/\\d+", "exclude": ["video"]},
			"selectors": {"title": {"css": ["h1::text"]}}
		}
	}`), sources.FormatJSON, nil)
	require.NoError(t, err)

	src, err := reg.Get("example")
	require.NoError(t, err)

	return extract.New(src, nil)
}

// TestFromFeed verifies candidate URLs, metadata, and pattern filtering
func TestFromFeed(t *testing.T) {
	candidates, err := FromFeed(strings.NewReader(testRSS), testExtractor(t), "world", nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2, "video and linkless items are skipped")

	first := candidates[0]
	assert.Equal(t, "https://example.com/news/1", first.URL)
	assert.Equal(t, "First Story", first.Title)
	assert.Equal(t, "Summary of the first story.", first.Summary)
	assert.Equal(t, "world", first.Category)
	require.NotNil(t, first.Published)
	assert.Equal(t, time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC), first.Published.UTC())

	second := candidates[1]
	assert.Equal(t, "https://example.com/news/2", second.URL)
	assert.Nil(t, second.Published, "no timestamp in the feed item")
}

// TestFromFeed_NilExtractor verifies all linked items pass without
// URL patterns
func TestFromFeed_NilExtractor(t *testing.T) {
	candidates, err := FromFeed(strings.NewReader(testRSS), nil, "", nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 3, "only the linkless item is skipped")
}

// TestFromFeed_Atom verifies Atom payloads and the updated-time fallback
func TestFromFeed_Atom(t *testing.T) {
	candidates, err := FromFeed(strings.NewReader(testAtom), testExtractor(t), "", nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "https://example.com/news/7", candidates[0].URL)
	require.NotNil(t, candidates[0].Published, "updated time stands in for published")
	assert.Equal(t, time.Date(2024, 12, 21, 10, 30, 0, 0, time.UTC), candidates[0].Published.UTC())
}

// TestFromFeed_Malformed verifies unparseable payloads error
func TestFromFeed_Malformed(t *testing.T) {
	_, err := FromFeed(strings.NewReader("not a feed"), nil, "", nil)
	assert.Error(t, err)
}
