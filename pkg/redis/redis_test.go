package redis

import (
	"context"
	"testing"
	"time"

	"skillnet/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
}

func TestPendingCountKey(t *testing.T) {
	assert.Equal(t, "skillnet:friendship:pending:42", PendingCountKey(42))
}

func TestPendingCounter_Uninitialized(t *testing.T) {
	ctx := context.Background()
	var p *PendingCounter

	_, _, err := p.Get(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, p.Set(ctx, 1, 3))
	assert.Error(t, NewPendingCounter(nil).Invalidate(ctx, 1))

	var c *Client
	assert.Error(t, c.HealthCheck(ctx))
	assert.NoError(t, c.Close())
}

func TestPendingCounter_UnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	client := NewClient(rdb)
	defer client.Close()

	p := NewPendingCounter(client)
	_, ok, err := p.Get(ctx, 1)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, client.HealthCheck(ctx))
}
