// Package redis connects the session and document stores to Redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"touristid/internal/platform/config"
)

const clientName = "touristid"

// Client is the shared connection pool. It embeds *redis.Client so stores
// take rc.Client directly.
type Client struct {
	*redis.Client
}

// New dials Redis and pings it once. A blank URL means Redis is off and New
// returns nil, nil.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.ClientName = clientName
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Health(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Health is wired into /healthz.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// RegisterPoolMetrics exports the connection pool counters as gauges read
// at scrape time.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	stat := func(name, help string, read func(*redis.PoolStats) uint32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "touristid_redis_pool_" + name,
			Help: help,
		}, func() float64 {
			return float64(read(c.PoolStats()))
		})
	}
	var errs []error
	for _, col := range []prometheus.Collector{
		stat("hits", "Free connections found in the pool", func(s *redis.PoolStats) uint32 { return s.Hits }),
		stat("misses", "Connections dialled because the pool was empty", func(s *redis.PoolStats) uint32 { return s.Misses }),
		stat("timeouts", "Waits for a pool connection that timed out", func(s *redis.PoolStats) uint32 { return s.Timeouts }),
		stat("total_conns", "Open connections", func(s *redis.PoolStats) uint32 { return s.TotalConns }),
		stat("idle_conns", "Idle connections", func(s *redis.PoolStats) uint32 { return s.IdleConns }),
	} {
		if err := reg.Register(col); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
