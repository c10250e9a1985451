package providers

import "context"

// StaticWeather always answers Data.
type StaticWeather struct {
	Data WeatherData
}

func (s StaticWeather) Weather(context.Context, float64, float64) WeatherData {
	return s.Data
}

// StaticNews always answers Items.
type StaticNews struct {
	Items []NewsItem
}

func (s StaticNews) News(context.Context, string) []NewsItem {
	return append([]NewsItem{}, s.Items...)
}

// StaticVideos always answers Items.
type StaticVideos struct {
	Items []VideoItem
}

func (s StaticVideos) Videos(context.Context, string) []VideoItem {
	return append([]VideoItem{}, s.Items...)
}
