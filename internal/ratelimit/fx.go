package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/reguahq/regua/internal/config"
	"go.uber.org/fx"
)

// Module provides the optional redis client and run locker. When
// REDIS_ADDR is unset both are nil and callers fall back to running
// unlocked.
var Module = fx.Module("ratelimit",
	fx.Provide(NewClient),
	fx.Provide(NewLocker),
)

func NewClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
}
