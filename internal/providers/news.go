package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/insights/types"
)

// News fetches market headlines from NewsAPI.
type News struct {
	httpClient
	apiKey string
}

// NewNews creates a new News client.
func NewNews(apiKey, baseURL string, timeout time.Duration) *News {
	return &News{
		httpClient: newHTTPClient("news", baseURL, timeout),
		apiKey:     apiKey,
	}
}

type newsResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Headlines returns at most limit articles matching query. Untitled articles are dropped.
func (n *News) Headlines(ctx context.Context, query string, limit int) ([]types.NewsArticle, error) {
	if n.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("apiKey", n.apiKey)
	if limit > 0 {
		params.Set("pageSize", strconv.Itoa(limit))
	}

	var resp newsResponse
	if err := n.get(ctx, "/top-headlines", params, nil, &resp); err != nil {
		return nil, err
	}

	var out []types.NewsArticle
	for _, a := range resp.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == "[Removed]" {
			continue
		}
		out = append(out, types.NewsArticle{
			Title:       title,
			Source:      strings.TrimSpace(a.Source.Name),
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			Description: strings.TrimSpace(a.Description),
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
