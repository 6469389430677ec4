package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willgate/internal/platform/config"
)

func TestNew_RequiresURL(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.ErrorIs(t, err, ErrNoURL)
	assert.Nil(t, client)
}

func TestNew_RejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}
