package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airtickets/config"
	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores public flight search results. Keys embed a generation
// number; bumping it orphans every cached search at once.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Password:     cfg.Password,
			DB:           cfg.DB,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
			DialTimeout:  5 * time.Second,
		}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetSearch returns nil, nil on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, gen int64, q domain.FlightSearch) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(gen, q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, gen int64, q domain.FlightSearch, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(gen, q), payload, c.searchTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey()).Err()
}

func generationKey() string {
	return "cache:flights:gen"
}

func searchKey(gen int64, q domain.FlightSearch) string {
	date := ""
	if q.Date != nil {
		date = q.Date.UTC().Format(time.DateOnly)
	}
	return fmt.Sprintf("cache:flights:%d:search:%s|%s|%s", gen,
		strings.ToLower(strings.TrimSpace(q.DepartureCity)),
		strings.ToLower(strings.TrimSpace(q.ArrivalCity)),
		date)
}
