package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile    string  `yaml:"log-file" env:"LOG_FILE"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Storage    string  `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis      Redis   `yaml:"redis"`
	History    History `yaml:"history"`
	Gateway    Gateway `yaml:"gateway"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// History - retention of finished match records per room.
type History struct {
	TTL   time.Duration `yaml:"ttl" env:"HISTORY_TTL" env-default:"24h"`
	Limit int           `yaml:"limit" env:"HISTORY_LIMIT" env-default:"50"`
}

type Gateway struct {
	SendBuffer int           `yaml:"send-buffer" env:"GATEWAY_SEND_BUFFER" env-default:"32"`
	PingPeriod time.Duration `yaml:"ping-period" env:"GATEWAY_PING_PERIOD" env-default:"30s"`
}

// Load - reads path if it exists, then applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	case err != nil:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	default:
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Config) Validate() error {
	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("%w: storage must be %q or %q, got %q", ErrInvalidConfig, StorageMemory, StorageRedis, that.Storage)
	}

	if _, err := ParseLevel(that.LogLevel); err != nil {
		return err
	}

	if that.History.Limit <= 0 {
		return fmt.Errorf("%w: history.limit must be positive", ErrInvalidConfig)
	}

	return nil
}

// ParseLevel - maps debug|info|warn|error to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
	}
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
