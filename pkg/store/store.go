// Package store persists container tokens and script records.
//
// A [Store] keeps one record per container (its persisted identity and last
// saved token) and one placeholder record per provisioned script. Four
// backends implement it:
//
//   - [FileStore]: JSON files under a directory, for the command line tools
//   - [MemoryStore]: process memory, for tests and dry runs
//   - [RedisStore]: one key per record in Redis
//   - [MongoStore]: one document per record in MongoDB
//
// Every backend stores the same JSON encoding of [token.BundleContainer], so
// records can be moved between backends byte for byte.
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: "file", Dir: "./data"})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//	rec, err := s.LoadContainer(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // never saved
//	}
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/token"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New(errors.ErrCodeNotFound, "record not found")

// Store persists container records and script placeholders.
type Store interface {
	// LoadContainer returns the record of a container, or ErrNotFound.
	LoadContainer(ctx context.Context, id string) (*token.BundleContainer, error)
	// SaveContainer creates or replaces a container record.
	SaveContainer(ctx context.Context, rec *token.BundleContainer) error
	// DeleteContainer removes a container record. Missing records are not
	// an error.
	DeleteContainer(ctx context.Context, id string) error
	// ListContainers returns the ids of every stored container, sorted.
	ListContainers(ctx context.Context) ([]string, error)

	// ProvisionScript creates the record behind a script node.
	ProvisionScript(ctx context.Context, shallowID int) error
	// DeleteScript removes a script record. Missing records are not an
	// error.
	DeleteScript(ctx context.Context, shallowID int) error

	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	Hooks observability.StoreHooks `toml:"-"`
}

// Open creates the backend named by cfg.Backend. An empty backend means
// memory.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendFile:
		s, err = NewFileStore(cfg.Dir, cfg.Hooks)
	case BackendMemory, "":
		s = NewMemoryStore(cfg.Hooks)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.RedisAddr, cfg.Hooks)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Hooks)
	default:
		err = errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func encode(rec *token.BundleContainer) ([]byte, error) {
	if rec == nil || rec.ID == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "container record without id")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "encode container %s", rec.ID)
	}
	return data, nil
}

func decode(id string, data []byte) (*token.BundleContainer, error) {
	var rec token.BundleContainer
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode container %s", id)
	}
	return &rec, nil
}

func notFound(id string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "container %s", id)
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}

func hooksOrNoop(h observability.StoreHooks) observability.StoreHooks {
	if h == nil {
		return observability.NoopStoreHooks{}
	}
	return h
}

// timed reports a load or save to hooks after fn returns.
type timed struct {
	hooks   observability.StoreHooks
	backend string
	start   time.Time
}

func startTimer(h observability.StoreHooks, backend string) timed {
	return timed{hooks: h, backend: backend, start: time.Now()}
}

func (t timed) load(ctx context.Context, key string, found bool, err error) {
	t.hooks.OnLoad(ctx, t.backend, key, found, time.Since(t.start), err)
}

func (t timed) save(ctx context.Context, key string, size int, err error) {
	t.hooks.OnSave(ctx, t.backend, key, size, time.Since(t.start), err)
}
