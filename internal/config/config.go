// Package config предоставляет структуры и функции для загрузки конфигурации приложения.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Драйверы хранилища.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	Storage         `yaml:"storage"`
	RedisConnection `yaml:"redis_connection"`
}

// Storage структура для выбора и настройки хранилища ключ-значение.
type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	Namespace      string `yaml:"namespace" env:"STORAGE_NAMESPACE"`
	SQLitePath     string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"salary-tracker.db"`
	PostgresDSN    string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"REDIS_USER"`
	DB          int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH (предварительно читая .env, если он есть)
// и завершает процесс при ошибке.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot read .env: %s", err)
	}

	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из YAML-файла path. Пустой path означает «только переменные окружения».
func Load(path string) (*Config, error) {
	const op = "config.Load"
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек хранилища.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMemory, DriverRedis:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for sqlite driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Driver)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage:\n"+
			"  Driver: %s\n"+
			"  Namespace: %q\n"+
			"  SQLitePath: %s\n"+
			"  MigrationsPath: %s\n"+
			"RedisConnection:\n"+
			"  Address: %s\n"+
			"  User: %s\n"+
			"  DB: %d\n"+
			"  MaxRetries: %d\n"+
			"  DialTimeout: %s\n"+
			"  Timeout: %s\n",
		c.Env,
		c.Driver,
		c.Namespace,
		c.SQLitePath,
		c.MigrationsPath,
		c.Address,
		c.User,
		c.DB,
		c.MaxRetries,
		c.DialTimeout,
		c.Timeout,
	)
}
