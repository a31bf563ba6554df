package htmldoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body>
	<h1 class="headline">  Big   Story  </h1>
	<div class="content">
		<p>First paragraph.</p>
		<p>Second <em>nested</em> paragraph.</p>
	</div>
	<img src="//cdn.example.com/images/photo-large-12345.jpg">
	<img src="/assets/icon.png">
	<a class="more" href="/news/2024/story">Read more</a>
</body>
</html>`

func parseTestPage(t *testing.T) *Document {
	doc, err := ParseString(testPage, "https://example.com/news/2024/base")
	require.NoError(t, err)
	return doc
}

// TestQueryCSS_Text verifies the ::text suffix returns direct text nodes
func TestQueryCSS_Text(t *testing.T) {
	doc := parseTestPage(t)

	got, err := doc.QueryCSS("h1.headline::text")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "  Big   Story  ", got[0], "text should come back unstripped")

	// Nested elements split the direct text nodes.
	got, err = doc.QueryCSS("div.content p::text")
	require.NoError(t, err)
	assert.Equal(t, []string{"First paragraph.", "Second ", " paragraph."}, got)
}

// TestQueryCSS_Attr verifies the ::attr(name) suffix
func TestQueryCSS_Attr(t *testing.T) {
	doc := parseTestPage(t)

	got, err := doc.QueryCSS("img::attr(src)")
	require.NoError(t, err)
	assert.Equal(t, []string{"//cdn.example.com/images/photo-large-12345.jpg", "/assets/icon.png"}, got)
}

// TestQueryCSS_Element verifies a bare selector returns full text content
func TestQueryCSS_Element(t *testing.T) {
	doc := parseTestPage(t)

	got, err := doc.QueryCSS("div.content p")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Second nested paragraph.", got[1])
}

// TestQueryCSS_NoMatch verifies a valid selector with no matches is empty
func TestQueryCSS_NoMatch(t *testing.T) {
	doc := parseTestPage(t)

	got, err := doc.QueryCSS("h2.missing::text")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestQueryCSS_Invalid verifies a bad selector returns an error
func TestQueryCSS_Invalid(t *testing.T) {
	doc := parseTestPage(t)

	_, err := doc.QueryCSS("h1[::text")
	assert.Error(t, err)
}

// TestQueryXPath verifies element, text, and attribute results
func TestQueryXPath(t *testing.T) {
	doc := parseTestPage(t)

	got, err := doc.QueryXPath("//h1[@class='headline']/text()")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Big   Story")

	got, err = doc.QueryXPath("//img/@src")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "//cdn.example.com/images/photo-large-12345.jpg", got[0])

	got, err = doc.QueryXPath("//div[@class='content']//p")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

// TestQueryXPath_Invalid verifies a bad expression returns an error
func TestQueryXPath_Invalid(t *testing.T) {
	doc := parseTestPage(t)

	_, err := doc.QueryXPath("//h1[")
	assert.Error(t, err)
}

// TestResolve verifies relative URL resolution against the page URL
func TestResolve(t *testing.T) {
	doc := parseTestPage(t)

	abs, err := doc.Resolve("/news/2024/story")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/news/2024/story", abs)

	abs, err = doc.Resolve("https://other.com/x")
	require.NoError(t, err)
	assert.Equal(t, "https://other.com/x", abs)

	abs, err = doc.Resolve("//cdn.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", abs)
}

// TestSplitCSSSuffix verifies suffix detection
func TestSplitCSSSuffix(t *testing.T) {
	sel, mode, attr := splitCSSSuffix("h1.title::text")
	assert.Equal(t, "h1.title", sel)
	assert.Equal(t, cssText, mode)
	assert.Empty(t, attr)

	sel, mode, attr = splitCSSSuffix("img.lead::attr(data-src)")
	assert.Equal(t, "img.lead", sel)
	assert.Equal(t, cssAttr, mode)
	assert.Equal(t, "data-src", attr)

	sel, mode, _ = splitCSSSuffix("div.content p")
	assert.Equal(t, "div.content p", sel)
	assert.Equal(t, cssElement, mode)
}
