package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxContentLength bounds the excerpt returned for a single page.
const maxContentLength = 4000

// scrapeFailurePrefix marks a sentinel result. Callers use it to tell a
// failed extraction from real page content.
const scrapeFailurePrefix = "Could not retrieve"

// ScraperService fetches web pages and extracts a best-effort excerpt of the
// paragraphs relevant to a query. Every call re-fetches; there is no retry,
// caching, or rate limiting.
type ScraperService struct {
	client *http.Client
}

func NewScraperService() *ScraperService {
	return &ScraperService{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Scrape never returns an error: any transport or parse failure yields a
// fixed sentinel string naming the unreachable URL. On success it returns
// the text of paragraph elements containing the query (case-insensitive),
// blank-line separated and truncated to maxContentLength characters.
func (s *ScraperService) Scrape(ctx context.Context, pageURL, query string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		log.Printf("Error building request for %s: %v", pageURL, err)
		return scrapeFailure(pageURL)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("Error scraping %s: %v", pageURL, err)
		return scrapeFailure(pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Error scraping %s: unexpected status %d", pageURL, resp.StatusCode)
		return scrapeFailure(pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		log.Printf("Error parsing %s: %v", pageURL, err)
		return scrapeFailure(pageURL)
	}

	needle := strings.ToLower(query)
	var content strings.Builder
	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if strings.Contains(strings.ToLower(text), needle) {
			content.WriteString(text)
			content.WriteString("\n\n")
		}
	})

	result := content.String()
	if len(result) > maxContentLength {
		result = result[:maxContentLength]
	}
	return result
}

func scrapeFailure(pageURL string) string {
	return fmt.Sprintf("%s information from %s.", scrapeFailurePrefix, pageURL)
}
