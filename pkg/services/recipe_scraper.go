package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/ladle-labs/ladle-engine/pkg/logging"
)

const (
	scrapeCacheTTL = time.Hour
	maxPageBytes   = 5 << 20
)

// RecipeScraper fetches a recipe page and reduces it to clean readable text
// for extraction. Headings become "### " lines and list items become
// bullets so the structure survives into the prompt. Scraped pages are
// cached in Redis when a client is configured.
type RecipeScraper struct {
	httpClient *http.Client
	cache      *redis.Client
	logger     *zap.Logger
}

// NewRecipeScraper creates a new RecipeScraper. cache may be nil.
func NewRecipeScraper(cache *redis.Client, logger *zap.Logger) *RecipeScraper {
	return &RecipeScraper{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
		logger:     logger.Named("recipe_scraper"),
	}
}

// FetchCleanContent fetches the page and returns its cleaned text.
func (s *RecipeScraper) FetchCleanContent(ctx context.Context, pageURL string) (string, error) {
	cacheKey := "scrape:" + pageURL
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			s.logger.Debug("scrape cache hit", zap.String("url", logging.SanitizeURL(pageURL)))
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid recipe url: %w", err)
	}
	req.Header.Set("User-Agent", "ladle-engine/1.0 (+https://github.com/ladle-labs/ladle-engine)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch url: status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	cleaned := CleanContent(doc)
	if cleaned == "" {
		return "", fmt.Errorf("no readable content at %s", pageURL)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, cleaned, scrapeCacheTTL).Err(); err != nil {
			s.logger.Warn("failed to cache scraped content",
				zap.String("url", logging.SanitizeURL(pageURL)),
				zap.Error(err))
		}
	}
	return cleaned, nil
}

var removedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
}

var removedClasses = map[string]bool{
	"advertisement": true,
	"ads":           true,
	"social-share":  true,
}

// CleanContent strips boilerplate from a parsed page and renders the main
// content as readable text.
func CleanContent(doc *html.Node) string {
	removeUnwanted(doc)

	root := findContentRoot(doc)
	if root == nil {
		root = findFirst(doc, elementMatcher("body"))
	}
	if root == nil {
		root = doc
	}

	var sb strings.Builder
	renderText(root, &sb)
	return collapseWhitespace(sb.String())
}

func removeUnwanted(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && (removedElements[c.Data] || hasRemovedClass(c)) {
			n.RemoveChild(c)
		} else {
			removeUnwanted(c)
		}
		c = next
	}
}

func hasRemovedClass(n *html.Node) bool {
	for _, class := range strings.Fields(attrValue(n, "class")) {
		if removedClasses[class] {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func elementMatcher(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == name }
}

func attrMatcher(key, value string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attrValue(n, key) == value }
}

func classMatcher(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, c := range strings.Fields(attrValue(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

// findContentRoot tries common recipe-site content containers in priority
// order and returns the first non-empty one.
func findContentRoot(doc *html.Node) *html.Node {
	matchers := []func(*html.Node) bool{
		elementMatcher("article"),
		elementMatcher("main"),
		attrMatcher("role", "main"),
		classMatcher("recipe"),
		classMatcher("entry-content"),
		classMatcher("post-content"),
		classMatcher("content"),
	}
	for _, match := range matchers {
		if n := findFirst(doc, match); n != nil {
			var sb strings.Builder
			renderText(n, &sb)
			if strings.TrimSpace(sb.String()) != "" {
				return n
			}
		}
	}
	return nil
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func renderText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			sb.WriteString("\n### ")
			renderChildren(n, sb)
			sb.WriteString("\n")
			return
		case "li":
			sb.WriteString("\n• ")
			renderChildren(n, sb)
			return
		case "p":
			sb.WriteString("\n")
			renderChildren(n, sb)
			sb.WriteString("\n")
			return
		case "br":
			sb.WriteString("\n")
			return
		}
	}
	renderChildren(n, sb)
}

func renderChildren(n *html.Node, sb *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(c, sb)
	}
}

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(s string) string {
	s = spaceRun.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "\n ", "\n")
	s = strings.ReplaceAll(s, " \n", "\n")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
