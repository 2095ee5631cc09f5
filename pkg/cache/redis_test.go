package cache

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// newTestRedis connects to SOURCEPATH_TEST_REDIS_URL and skips when unset.
// Keys written by the test are removed on cleanup.
func newTestRedis(t *testing.T) (*RedisCache, string) {
	t.Helper()
	url := os.Getenv("SOURCEPATH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("SOURCEPATH_TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	prefix := fmt.Sprintf("sourcepath-test:%d:", time.Now().UnixNano())
	t.Cleanup(func() {
		keys, _ := c.client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			c.client.Del(context.Background(), keys...)
		}
		c.Close()
	})
	return c, prefix
}

func TestRedisCache(t *testing.T) {
	c, prefix := newTestRedis(t)
	ctx := context.Background()
	key := NewScopedKeyer(nil, prefix).ArtifactKey("builtin", "com.example.Main", Hash([]byte("class Main {}")))

	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("artifact"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "artifact" {
		t.Fatalf("Get = (%q, %v, %v), want artifact hit", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("key still present after Delete")
	}
}

func TestRedisCacheExpiry(t *testing.T) {
	c, prefix := newTestRedis(t)
	ctx := context.Background()
	key := prefix + "short"

	if err := c.Set(ctx, key, []byte("x"), 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Errorf("Get after ttl = hit %v, err %v", hit, err)
	}
}

func TestNewRedisCacheMalformedURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url"); err == nil {
		t.Error("expected error for malformed url")
	}
}
