package cachestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend   string // file, bolt, sqlite or redis
	Path      string
	RedisAddr string
	RedisKey  string
}

// Open builds a Store for the configured backend.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "file":
		path := opts.Path
		if path == "" {
			path = "movie_cache.json"
		}
		return New(NewFileBackend(afero.NewOsFs(), path)), nil
	case "bolt":
		path := opts.Path
		if path == "" {
			path = "movie_cache.db"
		}
		backend, err := NewBoltBackend(path)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "sqlite":
		path := opts.Path
		if path == "" {
			path = "movie_cache.sqlite"
		}
		backend, err := NewSQLiteBackend(path)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires cache.redis_addr")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", opts.RedisAddr, err)
		}
		return New(NewRedisBackend(client, opts.RedisKey)), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
