// Package news aggregates Telugu headlines from RSS feeds, with a fixed set
// of backup articles for when no feed answers.
package news

import (
	"context"
	"errors"
	"strings"
	"time"

	"telugu-assistant/internal/common/config"
	"telugu-assistant/internal/common/logger"
)

var ErrArchiveDisabled = errors.New("ARCHIVE_DISABLED")

const DefaultLimit = 10

// Result is a list of articles and whether it came from the backup set.
type Result struct {
	Articles   []Article `json:"articles"`
	FromBackup bool      `json:"fromBackup"`
}

// Source yields articles from upstream feeds.
type Source interface {
	FetchAll(ctx context.Context) []Article
}

type Service struct {
	source  Source
	cache   *Cache
	archive *Archive
	limit   int
	logger  logger.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithCache serves Latest from Redis while the cached list is fresh.
func WithCache(c *Cache) Option { return func(s *Service) { s.cache = c } }

// WithArchive enables Search and archives every fetched list.
func WithArchive(a *Archive) Option { return func(s *Service) { s.archive = a } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(source Source, limit int, log logger.Logger, opts ...Option) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Service{
		source: source,
		limit:  limit,
		logger: log.With(map[string]interface{}{"component": "news"}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFetcherFromConfig builds the RSS fetcher from the news section.
func NewFetcherFromConfig(cfg config.NewsConfig, log logger.Logger) *Fetcher {
	return NewFetcher(FeedsFromConfig(cfg.Feeds), cfg.MaxPerFeed, config.GetDuration(cfg.Timeout), cfg.UserAgent, log)
}

// Latest returns the newest unique articles. When no feed produced anything
// the backup articles are returned instead and FromBackup is set.
func (s *Service) Latest(ctx context.Context) Result {
	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx); err != nil {
			s.logger.Warn("news cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			return Result{Articles: cached}
		}
	}

	fetched := s.source.FetchAll(ctx)
	if len(fetched) == 0 {
		s.logger.Info("no feed articles, serving backup news", nil)
		return Result{Articles: BackupArticles(s.now()), FromBackup: true}
	}

	articles := RemoveDuplicates(fetched)
	SortNewestFirst(articles)
	if len(articles) > s.limit {
		articles = articles[:s.limit]
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, articles); err != nil {
			s.logger.Warn("news cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.archive != nil {
		if err := s.archive.Store(ctx, articles); err != nil {
			s.logger.Warn("news archive write failed", map[string]interface{}{"error": err.Error()})
		}
	}

	s.logger.Info("news fetched", map[string]interface{}{
		"fetched": len(fetched),
		"unique":  len(articles),
	})
	return Result{Articles: articles}
}

// ByCategory returns Latest for every category; feeds carry no categories.
func (s *Service) ByCategory(ctx context.Context, category string) Result {
	return s.Latest(ctx)
}

// Search queries the archive. Without an archive it returns
// ErrArchiveDisabled.
func (s *Service) Search(ctx context.Context, query string, size int) ([]Article, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Article{}, nil
	}
	return s.archive.Search(ctx, query, size)
}
