package providers

import (
	"context"
	"net/url"
)

// HTTPVideos calls GET <base>?query= and expects a JSON array of videos.
type HTTPVideos struct {
	up *upstream
}

func NewHTTPVideos(baseURL string, opts ...Option) *HTTPVideos {
	return &HTTPVideos{up: newUpstream("videos", baseURL, opts...)}
}

func (p *HTTPVideos) Videos(ctx context.Context, query string) []VideoItem {
	if !p.up.configured() {
		p.up.fallback(ctx, nil)
		return []VideoItem{}
	}

	var items []VideoItem
	if err := p.up.get(ctx, url.Values{"query": {query}}, &items); err != nil {
		p.up.fallback(ctx, err)
		return []VideoItem{}
	}
	if items == nil {
		items = []VideoItem{}
	}
	return items
}
