package providers

import (
	"context"
	"net/url"
	"strconv"
)

// HTTPWeather calls GET <base>?lat=&lng= and expects a WeatherData body.
type HTTPWeather struct {
	up *upstream
}

// NewHTTPWeather returns a provider for baseURL. An empty baseURL serves
// DefaultWeather for every request.
func NewHTTPWeather(baseURL string, opts ...Option) *HTTPWeather {
	return &HTTPWeather{up: newUpstream("weather", baseURL, opts...)}
}

func (p *HTTPWeather) Weather(ctx context.Context, lat, lng float64) WeatherData {
	if !p.up.configured() {
		p.up.fallback(ctx, nil)
		return DefaultWeather()
	}

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))

	var data WeatherData
	if err := p.up.get(ctx, query, &data); err != nil {
		p.up.fallback(ctx, err)
		return DefaultWeather()
	}
	if data.Alerts == nil {
		data.Alerts = []string{}
	}
	return data
}
