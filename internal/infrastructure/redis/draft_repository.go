// Package redis implementa DraftRepository sobre Redis: un string JSON por
// clave, con vencimiento opcional.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
	"github.com/jhoicas/invoice-builder/internal/domain/repository"
	"github.com/jhoicas/invoice-builder/pkg/config"
)

// NewClient crea el cliente y valida la conexión al arrancar.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// kv subconjunto de comandos que usa el repositorio (*goredis.Client lo cumple).
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

var _ repository.DraftRepository = (*DraftRepo)(nil)

// DraftRepo DraftRepository sobre Redis.
type DraftRepo struct {
	rdb kv
	ttl time.Duration
}

// NewDraftRepository construye el adaptador; ttl 0 = sin vencimiento.
func NewDraftRepository(rdb kv, ttl time.Duration) *DraftRepo {
	return &DraftRepo{rdb: rdb, ttl: ttl}
}

func (r *DraftRepo) Save(ctx context.Context, key string, draft *entity.Draft) error {
	if draft == nil {
		return fmt.Errorf("redis: borrador nil")
	}
	b, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("redis: serializar borrador: %w", err)
	}
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *DraftRepo) Load(ctx context.Context, key string) (*entity.Draft, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var d entity.Draft
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("redis: deserializar borrador: %w", err)
	}
	return &d, nil
}

func (r *DraftRepo) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
