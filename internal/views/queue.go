// Package views counts blog reads. The API pushes the id of every blog it
// serves onto a Redis list; a worker pops ids and increments a counter in
// the views collection.
package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// QueueKey is the Redis list blog views are pushed to.
const QueueKey = "queue:blog-view"

// ErrEmpty is returned by Pop when nothing arrived before the timeout.
var ErrEmpty = errors.New("queue empty")

type Queue interface {
	Push(ctx context.Context, blogID string) error
	// Pop blocks for up to timeout and returns ErrEmpty if nothing arrived.
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	Close() error
}

type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue parses uri and checks the server is reachable.
func NewRedisQueue(ctx context.Context, uri string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisQueue{rdb: rdb, key: QueueKey}, nil
}

func (q *RedisQueue) Push(ctx context.Context, blogID string) error {
	return q.rdb.RPush(ctx, q.key, blogID).Err()
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmpty
	}
	if err != nil {
		return "", err
	}
	// BLPOP replies with [key, value].
	return result[1], nil
}

func (q *RedisQueue) Close() error {
	return q.rdb.Close()
}

// NopQueue drops every push. It stands in when Redis is not configured.
type NopQueue struct{}

func (NopQueue) Push(context.Context, string) error { return nil }

func (NopQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(timeout):
		return "", ErrEmpty
	}
}

func (NopQueue) Close() error { return nil }
