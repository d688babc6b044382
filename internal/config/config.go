package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Store    StoreConfig    `mapstructure:"store"`
	Match    MatchConfig    `mapstructure:"match"`
	Arena    ArenaConfig    `mapstructure:"arena"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // postgres, sqlite
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"` // memory, redis
	TTLMinutes int    `mapstructure:"ttlMinutes"`
}

type MatchConfig struct {
	TargetPoints  int    `mapstructure:"targetPoints"`
	CapicuBonus   int    `mapstructure:"capicuBonus"`
	ChuchazoBonus int    `mapstructure:"chuchazoBonus"`
	MaxHands      int    `mapstructure:"maxHands"`
	Opponent      string `mapstructure:"opponent"`
}

type ArenaConfig struct {
	Workers         int `mapstructure:"workers"`
	DefaultMatches  int `mapstructure:"defaultMatches"`
	MaxMatches      int `mapstructure:"maxMatches"`
	MaxTargetPoints int `mapstructure:"maxTargetPoints"`
	RetainRecords   int `mapstructure:"retainRecords"`
	MoveTimeoutMs   int `mapstructure:"moveTimeoutMs"`
}

var GlobalConfig *Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "domino.db")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.expire", 24)
	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.ttlMinutes", 120)
	v.SetDefault("match.targetPoints", 200)
	v.SetDefault("match.capicuBonus", 100)
	v.SetDefault("match.chuchazoBonus", 100)
	v.SetDefault("match.maxHands", 100)
	v.SetDefault("match.opponent", "greedy")
	v.SetDefault("arena.workers", 0)
	v.SetDefault("arena.defaultMatches", 100)
	v.SetDefault("arena.maxMatches", 10000)
	v.SetDefault("arena.maxTargetPoints", 1000)
	v.SetDefault("arena.retainRecords", 20)
	v.SetDefault("arena.moveTimeoutMs", 2000)
}

// Default returns the built-in configuration without reading a file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode defaults, %v", err)
	}
	return &cfg
}

func LoadConfig(path string) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}
