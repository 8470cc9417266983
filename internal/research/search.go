// Package research provides web source discovery and gathering for the
// researcher worker.
package research

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"github.com/jonathan/newsroom-agent/internal/fetch"
)

// MaxSourcesPerQuestion caps how many search hits are fetched per research
// question.
const MaxSourcesPerQuestion = 3

// Searcher discovers and gathers web sources relevant to research questions.
type Searcher struct {
	svc        *customsearch.Service
	cx         string
	useBrowser bool
	verbose    bool
}

// NewSearcher creates a Searcher backed by Google Custom Search.
func NewSearcher(ctx context.Context, apiKey, cx string) (*Searcher, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create customsearch service: %w", err)
	}
	return &Searcher{svc: svc, cx: cx}, nil
}

// WithBrowser enables headless-browser fallback for JS-heavy pages.
func (s *Searcher) WithBrowser(enabled bool) *Searcher {
	s.useBrowser = enabled
	return s
}

// WithVerbose enables debug logging of search and fetch activity.
func (s *Searcher) WithVerbose(enabled bool) *Searcher {
	s.verbose = enabled
	return s
}

// DiscoverSources searches for pages relevant to a question and returns
// their URLs, best first.
func (s *Searcher) DiscoverSources(ctx context.Context, question string) ([]string, error) {
	resp, err := s.svc.Cse.List().Context(ctx).Cx(s.cx).Q(question).Num(MaxSourcesPerQuestion).Do()
	if err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", question, err)
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		urls = append(urls, item.Link)
	}
	return urls, nil
}

// GatherMaterial discovers and fetches sources for each question and
// concatenates their extracted text into a single research corpus. Failed
// queries and fetches are skipped; an empty corpus is not an error.
func (s *Searcher) GatherMaterial(ctx context.Context, questions []string) string {
	var sb strings.Builder
	seen := make(map[string]bool)

	for _, question := range questions {
		urls, err := s.DiscoverSources(ctx, question)
		if err != nil {
			log.Printf("[research] source discovery failed for %q: %v", question, err)
			continue
		}

		for _, u := range urls {
			if seen[u] {
				continue
			}
			seen[u] = true

			text, err := s.fetchText(ctx, u)
			if err != nil {
				if s.verbose {
					log.Printf("[research] skipping source %s: %v", u, err)
				}
				continue
			}
			fmt.Fprintf(&sb, "## Source: %s\n%s\n\n", u, truncate(text, 4000))
		}
	}
	return sb.String()
}

// fetchText retrieves a page and extracts its main text, falling back to a
// headless browser for pages that render client-side.
func (s *Searcher) fetchText(ctx context.Context, url string) (string, error) {
	result, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return "", err
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.ArticleSelectors())
	if err != nil {
		return "", err
	}

	if s.useBrowser && fetch.ShouldUseBrowser(text) {
		html, err := fetch.WithBrowser(ctx, url, fetch.DefaultTimeout, s.verbose)
		if err != nil {
			// Keep whatever the plain fetch produced
			return text, nil
		}
		if rendered, err := fetch.ExtractMainText(html, fetch.ArticleSelectors()); err == nil && len(rendered) > len(text) {
			return rendered, nil
		}
	}
	return text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
