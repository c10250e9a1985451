package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abhaya/internal/platform/config"
)

func TestNewRequiresURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, client)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "postgres://not-redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}
