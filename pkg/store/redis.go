package store

import (
	"context"
	stderrors "errors"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/observability"
	"github.com/matzehuels/behave/pkg/token"
)

// Redis key layout. Container ids are also kept in a set so listing does
// not need SCAN.
const (
	redisPrefix       = "behave:"
	redisContainerSet = redisPrefix + "containers"
)

func containerKey(id string) string { return redisPrefix + "container:" + id }
func scriptKey(id int) string       { return redisPrefix + "script:" + strconv.Itoa(id) }

// RedisStore keeps each record under its own key.
type RedisStore struct {
	client *redis.Client
	hooks  observability.StoreHooks
}

// NewRedisStore connects to the server at addr and checks it with a PING.
func NewRedisStore(ctx context.Context, addr string, hooks observability.StoreHooks) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "redis store needs an address")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, storageErr(err, "connect to redis at %s", addr)
	}
	return &RedisStore{client: client, hooks: hooksOrNoop(hooks)}, nil
}

func (s *RedisStore) LoadContainer(ctx context.Context, id string) (rec *token.BundleContainer, err error) {
	t := startTimer(s.hooks, BackendRedis)
	defer func() { t.load(ctx, containerKey(id), rec != nil, err) }()

	data, err := s.client.Get(ctx, containerKey(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, storageErr(err, "load container %s", id)
	}
	return decode(id, data)
}

func (s *RedisStore) SaveContainer(ctx context.Context, rec *token.BundleContainer) (err error) {
	data, err := encode(rec)
	if err != nil {
		return err
	}
	t := startTimer(s.hooks, BackendRedis)
	defer func() { t.save(ctx, containerKey(rec.ID), len(data), err) }()

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, containerKey(rec.ID), data, 0)
		p.SAdd(ctx, redisContainerSet, rec.ID)
		return nil
	})
	if err != nil {
		return storageErr(err, "save container %s", rec.ID)
	}
	return nil
}

func (s *RedisStore) DeleteContainer(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, containerKey(id))
		p.SRem(ctx, redisContainerSet, id)
		return nil
	})
	if err != nil {
		return storageErr(err, "delete container %s", id)
	}
	return nil
}

func (s *RedisStore) ListContainers(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, redisContainerSet).Result()
	if err != nil {
		return nil, storageErr(err, "list containers")
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *RedisStore) ProvisionScript(ctx context.Context, shallowID int) (err error) {
	t := startTimer(s.hooks, BackendRedis)
	defer func() { t.save(ctx, scriptKey(shallowID), 0, err) }()
	if err := s.client.Set(ctx, scriptKey(shallowID), "", 0).Err(); err != nil {
		return storageErr(err, "provision script %d", shallowID)
	}
	return nil
}

func (s *RedisStore) DeleteScript(ctx context.Context, shallowID int) error {
	if err := s.client.Del(ctx, scriptKey(shallowID)).Err(); err != nil {
		return storageErr(err, "delete script %d", shallowID)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
