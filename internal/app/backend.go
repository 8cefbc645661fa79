package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/addressbook/internal/config"
	"github.com/MrSnakeDoc/addressbook/internal/contacts"
	"github.com/MrSnakeDoc/addressbook/internal/logger"
	"github.com/MrSnakeDoc/addressbook/internal/redis"
	"github.com/MrSnakeDoc/addressbook/internal/store"
	"github.com/MrSnakeDoc/addressbook/internal/store/file"
	"github.com/MrSnakeDoc/addressbook/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/addressbook/internal/store/redis"
	"github.com/MrSnakeDoc/addressbook/internal/store/sqlite"
)

// Backend is an opened key-value store plus whatever must be released with it.
type Backend struct {
	Name  string
	KV    store.KV
	close func() error
}

// Close releases the backend. Safe to call on backends with nothing to release.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the storage backend called name using cfg.
func OpenBackend(ctx context.Context, cfg *config.Config, name string, log logger.Logger) (*Backend, error) {
	switch name {
	case config.StorageFile:
		fs, err := file.New(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("using file storage", logger.String("dir", cfg.DataDir))
		return &Backend{Name: name, KV: fs}, nil

	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("using sqlite storage", logger.String("path", cfg.SQLitePath))
		return &Backend{Name: name, KV: db, close: db.Close}, nil

	case config.StorageRedis:
		// fail fast if unavailable
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rs := redisstore.NewStore(client)
		return &Backend{Name: name, KV: rs, close: rs.Close}, nil

	case config.StorageMemory:
		log.Warn("using memory storage, contacts are lost on exit")
		return &Backend{Name: name, KV: memory.New()}, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", name)
}

// OpenContacts opens the configured backend and loads the contact store from it.
func OpenContacts(ctx context.Context, cfg *config.Config, log logger.Logger) (*contacts.Store, *Backend, error) {
	backend, err := OpenBackend(ctx, cfg, cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}

	st, err := contacts.Open(ctx, backend.KV, log, contacts.Options{Key: cfg.StorageKey})
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return st, backend, nil
}
