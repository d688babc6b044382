package service

import (
	"time"

	"domino-service/internal/bot"
	"domino-service/internal/config"
	"domino-service/internal/service/arena"
	"domino-service/internal/service/game"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Game     *game.Service
	Arena    *arena.Service
	Registry *bot.Registry
}

// NewContainer wires the services. rdb is only used when the match store
// driver is redis.
func NewContainer(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Container {
	registry := bot.NewDefaultRegistry()

	var store game.Store
	switch cfg.Store.Driver {
	case "redis":
		store = game.NewRedisStore(rdb, time.Duration(cfg.Store.TTLMinutes)*time.Minute)
	default:
		store = game.NewMemoryStore()
	}

	return &Container{
		Game: game.NewService(db, store, registry, game.Options{
			TargetPoints:  cfg.Match.TargetPoints,
			CapicuBonus:   cfg.Match.CapicuBonus,
			ChuchazoBonus: cfg.Match.ChuchazoBonus,
			MaxHands:      cfg.Match.MaxHands,
			Opponent:      cfg.Match.Opponent,
		}),
		Arena:    arena.NewService(db, registry, cfg.Arena),
		Registry: registry,
	}
}
