package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/config"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/history"
)

// DefaultCacheDir returns the default artifact cache directory,
// $XDG_CACHE_HOME/sourcepath/artifacts or ~/.cache/sourcepath/artifacts.
func DefaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "sourcepath", "artifacts"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "sourcepath", "artifacts"), nil
}

// OpenCache opens the artifact cache described by cfg.
func OpenCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case config.BackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultCacheDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", cfg.Backend)
	}
}

// OpenHistory opens the history store described by cfg.
func OpenHistory(ctx context.Context, cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return history.NopStore{}, nil
	case config.BackendMongo:
		ms, err := history.NewMongoStore(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, err
		}
		return ms, nil
	case config.BackendFile, "":
		fs, err := history.NewFileStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", cfg.Backend)
	}
}

// NewRunnerFromConfig opens the configured backends and returns a runner
// using them. The caller must Close the runner.
func NewRunnerFromConfig(ctx context.Context, cfg config.Config) (*Runner, error) {
	c, err := OpenCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	store, err := OpenHistory(ctx, cfg.History)
	if err != nil {
		c.Close()
		return nil, err
	}
	r := NewRunner(c, nil, store, nil)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}
