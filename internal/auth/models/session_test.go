package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsExpired(t *testing.T) {
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &Session{LastActiveAt: last, CreatedAt: last}

	cases := []struct {
		name    string
		now     time.Time
		expired bool
	}{
		{"just active", last, false},
		{"one minute idle", last.Add(time.Minute), false},
		{"idle exactly the TTL", last.Add(TTL), false},
		{"idle one millisecond past the TTL", last.Add(TTL + time.Millisecond), true},
		{"idle for hours", last.Add(5 * time.Hour), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expired, IsExpired(s, tc.now))
		})
	}
}

func TestViewReportsSlidingExpiry(t *testing.T) {
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := &Session{Kind: KindPolice, CreatedAt: last.Add(-time.Hour), LastActiveAt: last}

	v := s.View()

	assert.Equal(t, KindPolice, v.Kind)
	assert.Equal(t, last.Add(30*time.Minute), v.ExpiresAt)
}
