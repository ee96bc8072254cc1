package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestNewRedisReturnsPingError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, err := NewRedis(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	require.NotNil(t, r)
	assert.NotNil(t, r.Client)
	r.Close()
}

func TestNilRedisPingFails(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))

	ok, err := r.NewLock("jobs:cleanup", time.Minute).TryLock(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}
