package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type redisRepo struct {
	client *redis.Client
	prefix string
}

func NewRedis(p Params) (Repository, error) {
	rc := p.Config.Session.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	r := &redisRepo{client: client, prefix: rc.Prefix}

	p.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				return err
			}
			p.Log.Info("session store connected", zap.String("redis", rc.Addr))
			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return r, nil
}

func (r *redisRepo) key(token string) string {
	return r.prefix + token
}

func (r *redisRepo) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *redisRepo) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return r.DeleteCtx(ctx, token)
	}
	return r.client.Set(ctx, r.key(token), b, ttl).Err()
}

func (r *redisRepo) DeleteCtx(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}

func (r *redisRepo) Find(token string) ([]byte, bool, error) {
	return r.FindCtx(context.Background(), token)
}

func (r *redisRepo) Commit(token string, b []byte, expiry time.Time) error {
	return r.CommitCtx(context.Background(), token, b, expiry)
}

func (r *redisRepo) Delete(token string) error {
	return r.DeleteCtx(context.Background(), token)
}
