package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"budget-api/internal/config"
	"budget-api/internal/storage"
)

// Cache keeps templates read-through and serializes budget writes. Calculation
// results are never stored here.
type Cache struct {
	rdb         *redis.Client
	locker      *redislock.Client
	templateTTL time.Duration
	lockTTL     time.Duration
}

func New(ctx context.Context, cfg config.Redis) (*Cache, error) {
	const op = "storage.redis.New"

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("%s: ping %s: %w", op, cfg.Addr, err)
	}

	return NewWithClient(rdb, cfg.TemplateTTL, cfg.LockTTL), nil
}

func NewWithClient(rdb *redis.Client, templateTTL, lockTTL time.Duration) *Cache {
	return &Cache{
		rdb:         rdb,
		locker:      redislock.New(rdb),
		templateTTL: templateTTL,
		lockTTL:     lockTTL,
	}
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}

// generationTTL bounds how long an invalidation counter outlives its last
// write. It only has to outlast a single read-through fill.
const generationTTL = 24 * time.Hour

var errStaleFill = errors.New("template changed since read")

func templateKey(companyID, id string) string {
	return fmt.Sprintf("template:%s:%s", companyID, id)
}

func generationKey(companyID, id string) string {
	return fmt.Sprintf("template:gen:%s:%s", companyID, id)
}

func budgetLockKey(companyID, id string) string {
	return fmt.Sprintf("lock:budget:%s:%s", companyID, id)
}

// Template returns a cached template; ok is false on a miss. On a miss gen is
// the template's current generation and must be handed back to SetTemplate.
func (c *Cache) Template(ctx context.Context, companyID, id string) (*storage.Template, int64, bool, error) {
	const op = "storage.redis.Template"

	vals, err := c.rdb.MGet(ctx, templateKey(companyID, id), generationKey(companyID, id)).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("%s: %w", op, err)
	}

	var gen int64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("%s: generation: %w", op, err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}

	var t storage.Template
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return nil, gen, false, fmt.Errorf("%s: decode: %w", op, err)
	}

	return &t, gen, true, nil
}

// SetTemplate stores t only if no invalidation happened since the read that
// returned gen. A skipped fill is not an error.
func (c *Cache) SetTemplate(ctx context.Context, t *storage.Template, gen int64) error {
	const op = "storage.redis.SetTemplate"

	body, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	key := templateKey(t.CompanyID, t.ID)
	genKey := generationKey(t.CompanyID, t.ID)

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, body, c.templateTTL)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil, errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		return nil
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// InvalidateTemplate drops the cached entry and bumps its generation so fills
// started before the change are discarded.
func (c *Cache) InvalidateTemplate(ctx context.Context, companyID, id string) error {
	const op = "storage.redis.InvalidateTemplate"

	genKey := generationKey(companyID, id)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, templateKey(companyID, id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LockBudget obtains an exclusive lock on one budget. The returned func
// releases it.
func (c *Cache) LockBudget(ctx context.Context, companyID, id string) (func(), error) {
	const op = "storage.redis.LockBudget"

	lock, err := c.locker.Obtain(ctx, budgetLockKey(companyID, id), c.lockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 20),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrBudgetLocked)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
