package uistore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage drivers.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config selects and configures a Storage.
type Config struct {
	Driver string
	Dir    string
	Redis  *RedisConfig
}

// RedisConfig configures the Redis storage.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewStorage builds the storage named by cfg.Driver. An empty driver picks
// Redis when an address is configured and the file storage otherwise.
func NewStorage(cfg Config) (Storage, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverFile
		if cfg.Redis != nil && cfg.Redis.Addr != "" {
			driver = DriverRedis
		}
	}

	switch driver {
	case DriverFile:
		return NewFileStorage(cfg.Dir)
	case DriverRedis:
		return NewRedisStorage(cfg.Redis)
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("uistore: unsupported storage driver: %s", driver)
	}
}

// FileStorage keeps one JSON file per record.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir when needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "storefront-ui")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("uistore: create %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// path escapes name into a single file name. Escaping is reversible, so
// distinct names never share a file.
func (f *FileStorage) path(name string) string {
	return filepath.Join(f.dir, url.PathEscape(name)+".json")
}

func (f *FileStorage) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(f.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Save writes through a temp file so readers never see a partial record.
func (f *FileStorage) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".uistore-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path(name))
}

// RedisStorage keeps records as Redis strings.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage connects and pings Redis.
func NewRedisStorage(cfg *RedisConfig) (*RedisStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("uistore: redis configuration missing")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("uistore: redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("uistore: redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "storefront:ui:"
	}
	return &RedisStorage{client: client, prefix: prefix, ttl: cfg.TTL}, nil
}

func (r *RedisStorage) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisStorage) Save(ctx context.Context, name string, data []byte) error {
	return r.client.Set(ctx, r.prefix+name, data, r.ttl).Err()
}

// Close releases the Redis connection pool.
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// MemoryStorage keeps records in process.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{records: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) Save(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[name] = append([]byte(nil), data...)
	return nil
}
