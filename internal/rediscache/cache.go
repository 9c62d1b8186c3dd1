package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/GoldPredictor/models"
)

// DefaultKey is where the USD->INR quote is stored
const DefaultKey = "goldpredictor:rate:USDINR"

// Config holds Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int    `default:"0"`
	Key      string `default:"goldpredictor:rate:USDINR"`
}

// Enabled reports whether a Redis address was configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// Cache stores the rate quote in Redis with a TTL, so every replica shares it.
type Cache struct {
	client *redis.Client
	key    string
	logger zerolog.Logger
}

var _ models.RateCache = (*Cache)(nil)

// New connects to Redis and checks it with a ping.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, key string) *Cache {
	if key == "" {
		key = DefaultKey
	}
	return &Cache{
		client: client,
		key:    key,
		logger: log.With().Str("component", "redis_cache").Logger(),
	}
}

// stored drops the Cause, which does not survive serialization anyway
type stored struct {
	Rate      float64   `json:"rate"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Warning   string    `json:"warning,omitempty"`
}

// Get returns the quote while its key is alive.
func (c *Cache) Get(ctx context.Context) (models.RateQuote, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.RateQuote{}, false, nil
		}
		c.logger.Debug().Err(err).Str("key", c.key).Msg("cache get failed")
		return models.RateQuote{}, false, err
	}

	var s stored
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.RateQuote{}, false, fmt.Errorf("cache decode: %w", err)
	}
	return models.RateQuote{
		Rate:      s.Rate,
		Source:    s.Source,
		FetchedAt: s.FetchedAt,
		Warning:   s.Warning,
	}, true, nil
}

// Set stores the quote; Redis expires it after ttl.
func (c *Cache) Set(ctx context.Context, quote models.RateQuote, ttl time.Duration) error {
	raw, err := json.Marshal(stored{
		Rate:      quote.Rate,
		Source:    quote.Source,
		FetchedAt: quote.FetchedAt,
		Warning:   quote.Warning,
	})
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", c.key).Msg("cache set failed")
		return err
	}
	return nil
}

// Ping checks the connection (readiness).
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
