package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/consultinvoice/internal/config"
	"github.com/smallbiznis/consultinvoice/internal/consultation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyPeriod = "consultinvoice:period:"

type Params struct {
	fx.In

	Lc  fx.Lifecycle `optional:"true"`
	Cfg config.Config
	Log *zap.Logger
}

// NewPeriodCache picks redis when REDIS_ADDR is set and an in-process cache
// otherwise. A non-positive TTL disables caching.
func NewPeriodCache(p Params) domain.PeriodCache {
	log := p.Log.Named("period-cache")
	ttl := p.Cfg.PeriodCacheTTL
	if ttl <= 0 {
		log.Info("period cache disabled")
		return nil
	}

	addr := strings.TrimSpace(p.Cfg.Redis.Addr)
	if addr == "" {
		return NewMemoryPeriodCache(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: p.Cfg.Redis.Password,
		DB:       p.Cfg.Redis.DB,
	})
	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
	}
	log.Info("period cache backed by redis", zap.String("addr", addr), zap.Duration("ttl", ttl))
	return NewRedisPeriodCache(client, ttl, log)
}

type MemoryPeriodCache struct {
	items *TTLCache[string, domain.ListResponse]
	ttl   time.Duration
}

func NewMemoryPeriodCache(ttl time.Duration) *MemoryPeriodCache {
	return &MemoryPeriodCache{items: NewTTLCache[string, domain.ListResponse](), ttl: ttl}
}

func (c *MemoryPeriodCache) Get(ctx context.Context, period domain.Period) (domain.ListResponse, bool) {
	resp, ok := c.items.Get(period.Key())
	if !ok {
		return domain.ListResponse{}, false
	}
	return cloneResponse(resp), true
}

func (c *MemoryPeriodCache) Set(ctx context.Context, period domain.Period, resp domain.ListResponse) {
	c.items.Set(period.Key(), cloneResponse(resp), c.ttl)
}

type RedisPeriodCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisPeriodCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisPeriodCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPeriodCache{client: client, ttl: ttl, log: log}
}

// Get treats every redis failure as a miss so the sources are queried.
func (c *RedisPeriodCache) Get(ctx context.Context, period domain.Period) (domain.ListResponse, bool) {
	raw, err := c.client.Get(ctx, keyPeriod+period.Key()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("period cache read failed", zap.String("period", period.Key()), zap.Error(err))
		}
		return domain.ListResponse{}, false
	}
	var resp domain.ListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.Warn("period cache entry unreadable", zap.String("period", period.Key()), zap.Error(err))
		return domain.ListResponse{}, false
	}
	return resp, true
}

func (c *RedisPeriodCache) Set(ctx context.Context, period domain.Period, resp domain.ListResponse) {
	raw, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("period cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, keyPeriod+period.Key(), raw, c.ttl).Err(); err != nil {
		c.log.Warn("period cache write failed", zap.String("period", period.Key()), zap.Error(err))
	}
}

func cloneResponse(resp domain.ListResponse) domain.ListResponse {
	resp.Consultations = append([]domain.Record(nil), resp.Consultations...)
	if resp.Consultations == nil {
		resp.Consultations = []domain.Record{}
	}
	return resp
}
