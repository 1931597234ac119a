package cache

import (
	"context"
	"testing"
	"time"

	"FIN-COACH/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNoop(t *testing.T) {
	var c ConfigCache = Noop{}
	c.Set(context.Background(), &models.FormConfiguration{ID: "cfg-1"})

	_, ok := c.Get(context.Background(), "cfg-1")
	assert.False(t, ok)
}

func TestRedisUnavailableIsAMiss(t *testing.T) {
	// Nothing listens on port 1, every call fails fast.
	c := NewRedisConfigCache("127.0.0.1:1", "", 0, time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	c.Set(ctx, &models.FormConfiguration{ID: "cfg-1"})
	_, ok := c.Get(ctx, "cfg-1")
	assert.False(t, ok)
	c.Invalidate(ctx, "cfg-1")
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "form_config:abc", configKey("abc"))
}
