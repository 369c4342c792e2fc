package news

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"telugu-assistant/internal/common/config"
	commonhttp "telugu-assistant/internal/common/http"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/common/metrics"
)

var (
	ErrFeedUnavailable = errors.New("FEED_UNAVAILABLE")
	ErrFeedParse       = errors.New("FEED_PARSE_FAILED")
)

const maxFeedBytes = 4 << 20

type Feed struct {
	Name string
	URL  string
}

// Fetcher pulls articles from RSS feeds.
type Fetcher struct {
	feeds      []Feed
	maxPerFeed int
	client     *commonhttp.Client
	logger     logger.Logger
	now        func() time.Time
}

func NewFetcher(feeds []Feed, maxPerFeed int, timeout time.Duration, userAgent string, log logger.Logger) *Fetcher {
	if maxPerFeed <= 0 {
		maxPerFeed = 3
	}
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &Fetcher{
		feeds:      feeds,
		maxPerFeed: maxPerFeed,
		client:     commonhttp.NewClient(timeout).WithUserAgent(userAgent),
		logger:     log.With(map[string]interface{}{"component": "news-fetcher"}),
		now:        time.Now,
	}
}

// FetchAll fetches every feed concurrently and returns the articles in feed
// order. A failing feed contributes nothing; it never fails the others.
func (f *Fetcher) FetchAll(ctx context.Context) []Article {
	results := make([][]Article, len(f.feeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range f.feeds {
		g.Go(func() error {
			articles, err := f.FetchFeed(gctx, feed)
			if err != nil {
				metrics.NewsFetches.WithLabelValues(feed.Name, "error").Inc()
				f.logger.Warn("feed fetch failed", map[string]interface{}{
					"feed":  feed.Name,
					"error": err.Error(),
				})
				return nil
			}
			metrics.NewsFetches.WithLabelValues(feed.Name, "ok").Inc()
			results[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	var all []Article
	for _, articles := range results {
		all = append(all, articles...)
	}
	return all
}

// FetchFeed returns at most maxPerFeed articles from one feed.
func (f *Fetcher) FetchFeed(ctx context.Context, feed Feed) ([]Article, error) {
	body, err := f.client.GetBytes(ctx, feed.URL, maxFeedBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedUnavailable, feed.Name, err)
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFeedParse, feed.Name, err)
	}

	now := f.now()
	items := parsed.Items
	if len(items) > f.maxPerFeed {
		items = items[:f.maxPerFeed]
	}

	articles := make([]Article, 0, len(items))
	for _, item := range items {
		articles = append(articles, f.toArticle(item, feed.Name, now))
	}

	f.logger.Debug("feed fetched", map[string]interface{}{
		"feed":     feed.Name,
		"articles": len(articles),
	})
	return articles, nil
}

func (f *Fetcher) toArticle(item *gofeed.Item, source string, now time.Time) Article {
	title := CleanHTML(item.Title)
	if title == "" {
		title = untitled
	}
	link := item.Link
	if link == "" {
		link = noLink
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	return Article{
		ID:        ArticleID(link, title),
		Title:     title,
		Summary:   Summarize(item.Description, item.Title),
		Source:    source,
		Published: formatPublished(published, now),
		Link:      link,
	}
}

// FeedsFromConfig converts configured feeds.
func FeedsFromConfig(cfg []config.FeedConfig) []Feed {
	feeds := make([]Feed, 0, len(cfg))
	for _, fc := range cfg {
		feeds = append(feeds, Feed{Name: fc.Name, URL: fc.URL})
	}
	return feeds
}
