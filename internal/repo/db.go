package repo

import (
	"fmt"

	"domino-service/internal/config"
	"domino-service/internal/model"
	"domino-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Models lists every table the service migrates.
func Models() []interface{} {
	return []interface{}{
		&model.Match{},
		&model.MatchHandLog{},
		&model.ArenaRun{},
		&model.ArenaMatch{},
	}
}

// OpenDB connects with the configured driver and migrates the schema.
func OpenDB(conf config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "postgres":
		dialector = postgres.Open(conf.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func InitDB() {
	conf := config.GlobalConfig.Database
	var err error
	DB, err = OpenDB(conf)
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.String("driver", conf.Driver),
			zap.Error(err),
		)
	}
}
