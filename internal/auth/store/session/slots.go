package session

import (
	"context"

	"abhaya/internal/auth/models"
)

// Slots hands out the Store of each device slot. Every slot holds at most one
// session; a newer save in the same slot replaces the older one.
type Slots struct {
	backend Backend
	opts    []Option
}

func NewSlots(backend Backend, opts ...Option) *Slots {
	return &Slots{backend: backend, opts: opts}
}

// For returns the store for slot.
func (s *Slots) For(slot string) *Store {
	opts := append(append([]Option(nil), s.opts...), WithKey(KeyFor(slot)))
	return New(s.backend, opts...)
}

// KeyFor returns the backend key of slot.
func KeyFor(slot string) string {
	return DefaultKey + ":" + slot
}

// Save overwrites the session of slot.
func (s *Slots) Save(ctx context.Context, slot string, sess *models.Session) error {
	return s.For(slot).Save(ctx, sess)
}

// Get returns the live session of slot, or sentinel.ErrNotFound.
func (s *Slots) Get(ctx context.Context, slot string) (*models.Session, error) {
	return s.For(slot).Get(ctx)
}

// Peek returns the live session of slot without extending it.
func (s *Slots) Peek(ctx context.Context, slot string) (*models.Session, error) {
	return s.For(slot).Peek(ctx)
}

func (s *Slots) Clear(ctx context.Context, slot string) error {
	return s.For(slot).Clear(ctx)
}
