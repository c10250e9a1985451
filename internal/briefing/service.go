// Package briefing assembles what a tourist sees about where they are:
// weather, local news and the safety grade, plus videos and translations.
package briefing

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"abhaya/internal/providers"
	"abhaya/internal/safety"
	dErrors "abhaya/pkg/domain-errors"
	"abhaya/pkg/requestcontext"
)

const (
	maxTextLength  = 500
	maxQueryLength = 200
)

// Request locates the tourist. Score is optional.
type Request struct {
	Latitude  float64
	Longitude float64
	Location  string
	Score     *int
}

type Briefing struct {
	Weather     providers.WeatherData `json:"weather"`
	News        []providers.NewsItem  `json:"news"`
	Safety      *safety.Assessment    `json:"safety,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

type Translation struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"target_language"`
	Translated     string `json:"translated"`
}

type Service struct {
	weather    providers.WeatherProvider
	news       providers.NewsProvider
	videos     providers.VideoProvider
	translator providers.TranslationProvider
	logger     *slog.Logger
	tracer     trace.Tracer
}

func New(weather providers.WeatherProvider, news providers.NewsProvider, videos providers.VideoProvider, translator providers.TranslationProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		weather:    weather,
		news:       news,
		videos:     videos,
		translator: translator,
		logger:     logger,
		tracer:     otel.Tracer("abhaya/briefing"),
	}
}

// Get fetches weather and news concurrently. Providers serve fallbacks, so
// only invalid input fails.
func (s *Service) Get(ctx context.Context, req Request) (*Briefing, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "briefing.Get", trace.WithAttributes(
		attribute.String("location", req.Location),
	))
	defer span.End()

	out := &Briefing{GeneratedAt: requestcontext.Now(ctx)}
	if req.Score != nil {
		assessment, err := safety.Assess(*req.Score)
		if err != nil {
			return nil, err
		}
		out.Safety = &assessment
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Weather = s.weather.Weather(gctx, req.Latitude, req.Longitude)
		return nil
	})
	g.Go(func() error {
		out.News = s.news.News(gctx, req.Location)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build briefing")
	}
	return out, nil
}

func (s *Service) Videos(ctx context.Context, query string) ([]providers.VideoItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	if len(query) > maxQueryLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "query is too long")
	}
	return s.videos.Videos(ctx, query), nil
}

func (s *Service) Translate(ctx context.Context, text, targetLanguage string) (*Translation, error) {
	lang := strings.ToLower(strings.TrimSpace(targetLanguage))
	if strings.TrimSpace(text) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "text is required")
	}
	if len(text) > maxTextLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "text is too long")
	}
	if !validLanguage(lang) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "target_language must be a two or three letter code")
	}
	return &Translation{
		Text:           text,
		TargetLanguage: lang,
		Translated:     s.translator.Translate(ctx, text, lang),
	}, nil
}

func validateRequest(req Request) error {
	if math.IsNaN(req.Latitude) || req.Latitude < -90 || req.Latitude > 90 {
		return dErrors.New(dErrors.CodeInvalidInput, "lat must be between -90 and 90")
	}
	if math.IsNaN(req.Longitude) || req.Longitude < -180 || req.Longitude > 180 {
		return dErrors.New(dErrors.CodeInvalidInput, "lng must be between -180 and 180")
	}
	if len(req.Location) > maxQueryLength {
		return dErrors.New(dErrors.CodeInvalidInput, "location is too long")
	}
	return nil
}

func validLanguage(lang string) bool {
	if len(lang) < 2 || len(lang) > 3 {
		return false
	}
	for _, r := range lang {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
