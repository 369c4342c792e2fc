package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

var ErrSearchFailed = errors.New("SEARCH_QUERY_FAILED")

const DefaultIndex = "telugu-news"

// IndexMapping is the mapping the archive index is created with.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "title":     {"type": "text"},
      "summary":   {"type": "text"},
      "source":    {"type": "keyword"},
      "published": {"type": "date", "format": "yyyy-MM-dd HH:mm"},
      "link":      {"type": "keyword"}
    }
  }
}`

// Archive stores fetched articles in Elasticsearch so older news stays
// searchable after it drops out of the feeds.
type Archive struct {
	client *elasticsearch.Client
	index  string
}

func NewArchive(client *elasticsearch.Client, index string) *Archive {
	if index == "" {
		index = DefaultIndex
	}
	return &Archive{client: client, index: index}
}

// Store upserts articles keyed by their id with one bulk request.
func (a *Archive) Store(ctx context.Context, articles []Article) error {
	if len(articles) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, article := range articles {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": a.index, "_id": article.ID},
		}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(article); err != nil {
			return err
		}
	}

	res, err := a.client.Bulk(bytes.NewReader(body.Bytes()),
		a.client.Bulk.WithContext(ctx),
		a.client.Bulk.WithIndex(a.index),
	)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk index error: %s", res.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("bulk index response: %w", err)
	}
	if result.Errors {
		return errors.New("bulk index reported item errors")
	}
	return nil
}

// Search runs a multi_match query over title and summary.
func (a *Archive) Search(ctx context.Context, query string, size int) ([]Article, error) {
	if size <= 0 {
		size = 10
	}

	q := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"title^2", "summary"},
			},
		},
		"sort": []interface{}{"_score", map[string]interface{}{"published": "desc"}},
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := a.client.Search(
		a.client.Search.WithContext(ctx),
		a.client.Search.WithIndex(a.index),
		a.client.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), msg)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source Article `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	articles := make([]Article, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		articles = append(articles, hit.Source)
	}
	return articles, nil
}
