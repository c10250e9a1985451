// Package providers fetches weather, news, videos and translations from
// upstream services. Every provider answers: when the upstream fails, it
// serves a fixed fallback value instead of an error.
package providers

import (
	"context"
	"time"
)

// WeatherData uses the field names the tourist client already consumes.
type WeatherData struct {
	Temperature float64  `json:"temperature"`
	Condition   string   `json:"condition"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"windSpeed"`
	Alerts      []string `json:"alerts"`
}

type NewsItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	Source      string    `json:"source"`
}

type VideoItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
}

// DefaultWeather is served whenever weather cannot be fetched.
func DefaultWeather() WeatherData {
	return WeatherData{
		Temperature: 25,
		Condition:   "Unknown",
		Humidity:    50,
		WindSpeed:   10,
		Alerts:      []string{},
	}
}

type WeatherProvider interface {
	Weather(ctx context.Context, lat, lng float64) WeatherData
}

type NewsProvider interface {
	News(ctx context.Context, location string) []NewsItem
}

type VideoProvider interface {
	Videos(ctx context.Context, query string) []VideoItem
}

// TranslationProvider returns text unchanged when it has no translation.
type TranslationProvider interface {
	Translate(ctx context.Context, text, targetLanguage string) string
}
