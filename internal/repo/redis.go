package repo

import (
	"context"
	"fmt"
	"time"

	"domino-service/internal/config"
	"domino-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RDB *redis.Client

// OpenRedis connects and pings the match store backend.
func OpenRedis(conf config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", conf.Addr, err)
	}
	return rdb, nil
}

func InitRedis() {
	var err error
	RDB, err = OpenRedis(config.GlobalConfig.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
}
