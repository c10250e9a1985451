package providers

import (
	"context"
	"net/url"
)

// HTTPNews calls GET <base>?location= and expects a JSON array of items.
type HTTPNews struct {
	up *upstream
}

func NewHTTPNews(baseURL string, opts ...Option) *HTTPNews {
	return &HTTPNews{up: newUpstream("news", baseURL, opts...)}
}

// News returns an empty list when the upstream cannot answer.
func (p *HTTPNews) News(ctx context.Context, location string) []NewsItem {
	if !p.up.configured() {
		p.up.fallback(ctx, nil)
		return []NewsItem{}
	}

	var items []NewsItem
	if err := p.up.get(ctx, url.Values{"location": {location}}, &items); err != nil {
		p.up.fallback(ctx, err)
		return []NewsItem{}
	}
	if items == nil {
		items = []NewsItem{}
	}
	return items
}
