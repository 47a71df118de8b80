// Tasarini - Travel Recommendation Scoring and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasarini

package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores durable entries in Redis so several server
// instances can share one durable tier.
type RedisPersister struct {
	client *redis.Client
}

// NewRedisClient accepts either a redis:// URL or a bare host:port address.
func NewRedisClient(urlOrAddr string) (*redis.Client, error) {
	if strings.HasPrefix(urlOrAddr, "redis://") || strings.HasPrefix(urlOrAddr, "rediss://") {
		opts, err := redis.ParseURL(urlOrAddr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: urlOrAddr}), nil
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, urlOrAddr string) (*RedisPersister, error) {
	client, err := NewRedisClient(urlOrAddr)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisPersister{client: client}, nil
}

// NewRedisPersister wraps an existing client.
func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func (p *RedisPersister) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := p.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (p *RedisPersister) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := p.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Keys walks the keyspace with SCAN rather than KEYS so large databases are
// not blocked.
func (p *RedisPersister) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := p.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	return keys, nil
}

func (p *RedisPersister) Close() error {
	return p.client.Close()
}
