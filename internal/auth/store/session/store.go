// Package session persists the single resident session of a device slot.
//
// Expiry is lazy: nothing sweeps the slot in the background. Every read
// evaluates the sliding window, clears an expired or unreadable record, and
// otherwise bumps the last-activity time.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"abhaya/internal/auth/metrics"
	"abhaya/internal/auth/models"
	id "abhaya/pkg/domain"
	"abhaya/pkg/platform/audit"
	"abhaya/pkg/platform/sentinel"
)

// DefaultKey namespaces session records in the backend.
const DefaultKey = "abhaya_session"

// Clock returns the current time.
type Clock func() time.Time

// Store holds zero or one session under a single key.
type Store struct {
	backend Backend
	key     string
	clock   Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Store)

func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		clock:   time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the backend key of the slot.
func (s *Store) Key() string { return s.key }

// Save overwrites the resident session. Zero timestamps are filled with now.
func (s *Store) Save(ctx context.Context, sess *models.Session) error {
	now := s.clock()
	rec := toRecord(sess, now)
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.backend.Update(ctx, s.key, models.TTL, func([]byte) ([]byte, error) {
		return data, nil
	})
}

// Get returns the resident session after bumping its last activity to now.
// It returns sentinel.ErrNotFound when the slot is empty, expired or holds a
// record that cannot be decoded; the latter two are cleared on the way.
func (s *Store) Get(ctx context.Context) (*models.Session, error) {
	now := s.clock()
	var (
		found  *models.Session
		result string
	)

	err := s.backend.Update(ctx, s.key, models.TTL, func(current []byte) ([]byte, error) {
		found = nil
		if current == nil {
			result = "miss"
			return nil, nil
		}
		sess, err := decode(current)
		if err != nil {
			result = "malformed"
			return nil, nil
		}
		if models.IsExpired(sess, now) {
			result = "expired"
			return nil, nil
		}
		if now.After(sess.LastActiveAt) {
			sess.LastActiveAt = now
		}
		next, err := json.Marshal(toRecord(sess, now))
		if err != nil {
			return nil, fmt.Errorf("encode session: %w", err)
		}
		result = "hit"
		found = sess
		return next, nil
	})
	if err != nil {
		return nil, fmt.Errorf("read session slot: %w", err)
	}

	s.metrics.IncSessionRead(result)
	switch result {
	case "malformed":
		s.logger.WarnContext(ctx, "discarded unreadable session record", "key", s.key)
	case "expired":
		audit.Log(ctx, s.logger, audit.EventSessionExpired, "key", s.key)
	}

	if found == nil {
		return nil, sentinel.ErrNotFound
	}
	return found, nil
}

// Peek returns the resident session without extending it. Unlike Get it
// never writes: an expired or unreadable record is reported as
// sentinel.ErrNotFound and left for the next Get to clear.
func (s *Store) Peek(ctx context.Context) (*models.Session, error) {
	raw, err := s.backend.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("peek session slot: %w", err)
	}
	sess, err := decode(raw)
	if err != nil || models.IsExpired(sess, s.clock()) {
		return nil, sentinel.ErrNotFound
	}
	return sess, nil
}

// Clear removes the resident session. Clearing an empty slot is not an error.
func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

// IsValid reports whether Get would return a session. Like Get, it extends
// the session when it does.
func (s *Store) IsValid(ctx context.Context) (bool, error) {
	_, err := s.Get(ctx)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// record is the persisted form. Timestamps are epoch milliseconds.
type record struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Principal    json.RawMessage `json:"principal,omitempty"`
	Device       string          `json:"device,omitempty"`
	CreatedAt    int64           `json:"createdAt"`
	LastActiveAt int64           `json:"lastActiveAt"`
}

var errMalformed = errors.New("malformed session record")

func toRecord(sess *models.Session, now time.Time) record {
	created := sess.CreatedAt
	if created.IsZero() {
		created = now
	}
	last := sess.LastActiveAt
	if last.IsZero() || last.Before(created) {
		last = created
	}
	return record{
		ID:           sess.ID.String(),
		Kind:         string(sess.Kind),
		Principal:    sess.Principal,
		Device:       sess.Device,
		CreatedAt:    created.UnixMilli(),
		LastActiveAt: last.UnixMilli(),
	}
}

func decode(data []byte) (*models.Session, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errMalformed
	}
	sessionID, err := id.ParseSessionID(rec.ID)
	if err != nil {
		return nil, errMalformed
	}
	kind := models.Kind(rec.Kind)
	if !kind.IsValid() || rec.CreatedAt <= 0 || rec.LastActiveAt < rec.CreatedAt {
		return nil, errMalformed
	}
	return &models.Session{
		ID:           sessionID,
		Kind:         kind,
		Principal:    rec.Principal,
		Device:       rec.Device,
		CreatedAt:    time.UnixMilli(rec.CreatedAt).UTC(),
		LastActiveAt: time.UnixMilli(rec.LastActiveAt).UTC(),
	}, nil
}
