package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Pancakes</title><style>body { color: red; }</style></head>
<body>
<header>Site navigation lives here</header>
<nav><a href="/">Home</a></nav>
<div class="ads">Buy things</div>
<article>
  <h1>Fluffy Pancakes</h1>
  <p>The best pancakes you will ever make.</p>
  <h2>Ingredients</h2>
  <ul>
    <li>2 cups flour</li>
    <li>3 eggs</li>
  </ul>
  <h2>Instructions</h2>
  <ol>
    <li>Mix the dry ingredients.</li>
    <li>Add eggs and whisk.</li>
  </ol>
  <script>trackPageView();</script>
</article>
<footer>Copyright notice</footer>
</body>
</html>`

func parsePage(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestCleanContentStripsBoilerplate(t *testing.T) {
	cleaned := CleanContent(parsePage(t, samplePage))

	assert.NotContains(t, cleaned, "Site navigation")
	assert.NotContains(t, cleaned, "Home")
	assert.NotContains(t, cleaned, "Buy things")
	assert.NotContains(t, cleaned, "trackPageView")
	assert.NotContains(t, cleaned, "Copyright")
	assert.NotContains(t, cleaned, "color: red")
}

func TestCleanContentKeepsStructure(t *testing.T) {
	cleaned := CleanContent(parsePage(t, samplePage))

	assert.Contains(t, cleaned, "### Fluffy Pancakes")
	assert.Contains(t, cleaned, "### Ingredients")
	assert.Contains(t, cleaned, "• 2 cups flour")
	assert.Contains(t, cleaned, "• Mix the dry ingredients.")
	assert.NotContains(t, cleaned, "\n\n\n")
}

func TestCleanContentFallsBackToBody(t *testing.T) {
	page := `<html><body><p>Just a paragraph, no article.</p></body></html>`
	cleaned := CleanContent(parsePage(t, page))
	assert.Equal(t, "Just a paragraph, no article.", cleaned)
}

func TestCleanContentPrefersContentContainers(t *testing.T) {
	page := `<html><body>
<div class="sidebar">Unrelated sidebar text</div>
<div class="entry-content"><p>Recipe body</p></div>
</body></html>`
	cleaned := CleanContent(parsePage(t, page))
	assert.Equal(t, "Recipe body", cleaned)
}

func TestFetchCleanContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	scraper := NewRecipeScraper(nil, zap.NewNop())
	content, err := scraper.FetchCleanContent(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, content, "### Fluffy Pancakes")
	assert.Contains(t, content, "• 3 eggs")
}

func TestFetchCleanContentNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	scraper := NewRecipeScraper(nil, zap.NewNop())
	_, err := scraper.FetchCleanContent(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
