// Package news fetches market headlines from the Google News RSS feed
// and caches them briefly so repeated questions don't refetch.
package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/goffycoder/VOCI-TRADE/internal/logger"
	"github.com/goffycoder/VOCI-TRADE/internal/store"
	"github.com/goffycoder/VOCI-TRADE/internal/types"
)

const defaultQuery = "Indian Stock Market"

// Service fetches headlines with caching.
type Service struct {
	cfg     *store.Config
	cache   *headlineCache
	timeout time.Duration
}

func NewService(cfg *store.Config) *Service {
	return &Service{
		cfg:     cfg,
		cache:   newHeadlineCache(15 * time.Minute),
		timeout: time.Duration(cfg.News.TimeoutSecs) * time.Second,
	}
}

// Headlines returns up to cfg.News.MaxHeadlines for the query, cached
// or fresh. An empty query asks about the market at large.
func (s *Service) Headlines(ctx context.Context, query string) ([]types.Headline, error) {
	if query == "" {
		query = defaultQuery
	}

	if cached, ok := s.cache.get(query); ok {
		logger.Debug(ctx, "Headline cache hit", "query", query)
		return cached, nil
	}

	headlines, err := s.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	s.cache.set(query, headlines)
	return headlines, nil
}

// Titles is Headlines flattened to plain strings for the summarizer.
func (s *Service) Titles(ctx context.Context, query string) ([]string, error) {
	headlines, err := s.Headlines(ctx, query)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(headlines))
	for _, h := range headlines {
		titles = append(titles, h.Title)
	}
	return titles, nil
}

func (s *Service) fetch(ctx context.Context, query string) ([]types.Headline, error) {
	logger.Info(ctx, "Fetching headlines", "query", query)

	limit := s.cfg.News.MaxHeadlines
	headlines := []types.Headline{}

	c := colly.NewCollector(colly.MaxDepth(1))
	c.SetRequestTimeout(s.timeout)

	// Set user agent to avoid being blocked
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	c.OnXML("//rss/channel/item", func(e *colly.XMLElement) {
		if len(headlines) >= limit {
			return
		}
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}
		headlines = append(headlines, types.Headline{
			Title:  cleanTitle(title),
			URL:    strings.TrimSpace(e.ChildText("link")),
			Source: sourceFromItem(e),
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Headline fetch error", err, "url", r.Request.URL.String())
	})

	feedURL := fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en",
		url.QueryEscape(query))
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", feedURL, err)
	}
	c.Wait()

	logger.Info(ctx, "Headlines fetched", "query", query, "count", len(headlines))
	return headlines, nil
}

// sourceFromItem reads the <source> element, falling back to the anchor
// inside the HTML description blob.
func sourceFromItem(e *colly.XMLElement) string {
	if src := strings.TrimSpace(e.ChildText("source")); src != "" {
		return src
	}

	desc := e.ChildText("description")
	if desc == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(desc))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("font").Last().Text())
}

// cleanTitle drops the " - Source" suffix Google News appends.
func cleanTitle(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return title
}
