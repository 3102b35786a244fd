package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Tickets  TicketsConfig  `yaml:"tickets"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address         string `yaml:"address"`
	SwaggerDir      string `yaml:"swagger_dir"`
	GinMode         string `yaml:"gin_mode"`
	ShutdownSeconds int    `yaml:"shutdown_seconds"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	// URL, when set, takes precedence over the individual fields.
	URL string `yaml:"url"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	TicketsTopic string   `yaml:"tickets_topic"`
	FlightsTopic string   `yaml:"flights_topic"`
	GroupID      string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type TicketsConfig struct {
	RefundWindowHours     int `yaml:"refund_window_hours"`
	SearchCacheTTLSeconds int `yaml:"search_cache_ttl_seconds"`
}

func (t TicketsConfig) RefundWindow() time.Duration {
	return time.Duration(t.RefundWindowHours) * time.Hour
}

func (t TicketsConfig) SearchCacheTTL() time.Duration {
	return time.Duration(t.SearchCacheTTLSeconds) * time.Second
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Address: ":8080", GinMode: "release", ShutdownSeconds: 5},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "airtickets", Name: "airtickets", SSLMode: "disable"},
		Storage:  StorageConfig{Driver: StoragePostgres},
		Redis:    RedisConfig{Addr: "localhost:6379"},
		Kafka:    KafkaConfig{Brokers: []string{"localhost:9092"}, TicketsTopic: "tickets", FlightsTopic: "flights", GroupID: "airtickets-worker"},
		Tickets:  TicketsConfig{RefundWindowHours: 24, SearchCacheTTLSeconds: 30},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// ResolvePath picks the config file: the flag value, then $CONFIG_PATH,
// then config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

// LoadConfig reads path over the defaults, then applies environment
// overrides. A .env file in the working directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		c.Database.URL = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Redis.Addr = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		c.Auth.JWTSecret = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("STORAGE_DRIVER"); ok && v != "" {
		c.Storage.Driver = v
	}
}

func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("config: http.address is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("config: auth.jwt_secret is required")
	}
	if c.Tickets.RefundWindowHours <= 0 {
		return errors.New("config: tickets.refund_window_hours must be positive")
	}
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	return nil
}
