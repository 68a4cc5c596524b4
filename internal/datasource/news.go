package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/wealthvista/pkg/models"
	"github.com/seenimoa/wealthvista/pkg/utils"
)

// NewsOptions configures the headlines query and its RSS fallback.
type NewsOptions struct {
	URL      string
	APIKey   string
	Country  string
	Category string
	PageSize int
	// RSSFeeds are read when the headlines API fails or returns nothing.
	// Empty disables the fallback.
	RSSFeeds []string
}

// News fetches top business headlines, falling back to RSS feeds.
type News struct {
	client *Client
	opts   NewsOptions
	parser *gofeed.Parser
	log    *slog.Logger
}

// NewNews creates a news source.
func NewNews(client *Client, opts NewsOptions, log *slog.Logger) *News {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	parser := gofeed.NewParser()
	parser.UserAgent = client.userAgent
	return &News{client: client, opts: opts, parser: parser, log: log}
}

func (n *News) Name() string              { return "news" }
func (n *News) Category() models.Category { return models.CategoryFinancialNews }

type headlinesResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch returns up to PageSize headlines with publish times in IST.
func (n *News) Fetch(ctx context.Context, _ time.Time) (models.Snapshot, error) {
	items, err := n.fetchHeadlines(ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}
	if err == nil {
		err = ErrNoData
	}
	if len(n.opts.RSSFeeds) == 0 {
		return nil, fmt.Errorf("financial news: %w", err)
	}

	n.log.Warn("headlines unavailable, reading RSS feeds", "error", err)
	items, rssErr := n.fetchFeeds(ctx)
	if rssErr != nil {
		return nil, fmt.Errorf("financial news: %w", errors.Join(err, rssErr))
	}
	return items, nil
}

func (n *News) fetchHeadlines(ctx context.Context) (models.News, error) {
	q := url.Values{}
	q.Set("country", n.opts.Country)
	q.Set("category", n.opts.Category)
	q.Set("pageSize", strconv.Itoa(n.opts.PageSize))
	q.Set("apiKey", n.opts.APIKey)

	var resp headlinesResponse
	if err := n.client.getJSON(ctx, n.opts.URL+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status == "error" {
		return nil, fmt.Errorf("headlines %s: %s", resp.Code, resp.Message)
	}

	items := make(models.News, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if len(items) == n.opts.PageSize {
			break
		}
		published, err := utils.ParsePublishedIST(a.PublishedAt)
		if err != nil || a.Title == "" || a.URL == "" {
			n.log.Debug("headline skipped", "title", a.Title, "published_at", a.PublishedAt)
			continue
		}
		items = append(items, models.NewsItem{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
		})
	}
	return items, nil
}

// fetchFeeds reads every RSS feed, skipping the ones that fail, and keeps
// the newest PageSize items.
func (n *News) fetchFeeds(ctx context.Context) (models.News, error) {
	var (
		items   models.News
		lastErr error
	)
	for _, feedURL := range n.opts.RSSFeeds {
		got, err := n.fetchRSS(ctx, feedURL)
		if err != nil {
			n.log.Debug("RSS feed failed", "feed", feedURL, "error", err)
			lastErr = err
			continue
		}
		items = append(items, got...)
	}
	if len(items) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoData
	}

	items.SortNewestFirst()
	if len(items) > n.opts.PageSize {
		items = items[:n.opts.PageSize]
	}
	return items, nil
}

// fetchRSS parses one feed into headlines.
func (n *News) fetchRSS(ctx context.Context, feedURL string) (models.News, error) {
	ctx, cancel := context.WithTimeout(ctx, n.client.timeout)
	defer cancel()

	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", feedURL, err)
	}

	source := feed.Title
	items := make(models.News, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" || item.PublishedParsed == nil {
			continue
		}
		items = append(items, models.NewsItem{
			Title:       strings.TrimSpace(item.Title),
			Description: cleanHTML(item.Description),
			URL:         item.Link,
			Source:      source,
			PublishedAt: utils.ToIST(*item.PublishedParsed),
		})
	}
	return items, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
