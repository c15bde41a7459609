// Package config loads service configuration: defaults, then an optional
// YAML file, then TOURISTID_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	strutil "touristid/pkg/platform/strings"
)

// DevSigningKey is the fallback session signing key. Serve warns when it is in use.
const DevSigningKey = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes"`
}

// Session configures registration sessions and their tokens.
type Session struct {
	TTL        time.Duration `yaml:"ttl"`
	SigningKey string        `yaml:"signing_key"`
	Issuer     string        `yaml:"issuer"`
	Audience   string        `yaml:"audience"`
	// IDHashKey keys the blake2b hash of ID numbers in registry records.
	IDHashKey string `yaml:"id_hash_key"`
}

// RedisConfig enables Redis-backed session and document stores when URL is set.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig enables the Postgres registry and alert stores when URL is set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	Migrate  bool   `yaml:"migrate"`
}

// KafkaConfig enables the Kafka event publisher when Brokers is non-empty.
type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	ClientID          string   `yaml:"client_id"`
	CreateTopic       bool     `yaml:"create_topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

// Safety configures the dashboard simulator.
type Safety struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type Log struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

type Config struct {
	Server   Server         `yaml:"server"`
	Session  Session        `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Safety   Safety         `yaml:"safety"`
	Log      Log            `yaml:"log"`
}

// Default returns a configuration that runs fully in memory.
func Default() Config {
	return Config{
		Server: Server{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			RequestTimeout:    30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			MaxUploadBytes:    5 << 20,
		},
		Session: Session{
			TTL:        30 * time.Minute,
			SigningKey: DevSigningKey,
			Issuer:     "touristid",
			Audience:   "touristid-registration",
			IDHashKey:  "",
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
			Migrate:  true,
		},
		Kafka: KafkaConfig{
			Topic:             "touristid.events",
			ClientID:          "touristid",
			CreateTopic:       true,
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Safety: Safety{TickInterval: 5 * time.Second},
		Log:    Log{Level: "info", Format: "json"},
	}
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		cfg.Kafka.Brokers = strutil.Compact(cfg.Kafka.Brokers)
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("TOURISTID_ADDR", &cfg.Server.Addr)
	str("TOURISTID_REDIS_URL", &cfg.Redis.URL)
	str("TOURISTID_DATABASE_URL", &cfg.Database.URL)
	str("TOURISTID_KAFKA_TOPIC", &cfg.Kafka.Topic)
	str("TOURISTID_SESSION_SIGNING_KEY", &cfg.Session.SigningKey)
	str("TOURISTID_ID_HASH_KEY", &cfg.Session.IDHashKey)
	str("TOURISTID_LOG_LEVEL", &cfg.Log.Level)
	str("TOURISTID_LOG_FORMAT", &cfg.Log.Format)

	if v, ok := lookup("TOURISTID_KAFKA_BROKERS"); ok && v != "" {
		cfg.Kafka.Brokers = strutil.SplitList(v, ",")
	}
	if v, ok := lookup("TOURISTID_DATABASE_MIGRATE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TOURISTID_DATABASE_MIGRATE: %w", err)
		}
		cfg.Database.Migrate = b
	}
	if err := dur("TOURISTID_SESSION_TTL", &cfg.Session.TTL); err != nil {
		return err
	}
	return dur("TOURISTID_SAFETY_TICK_INTERVAL", &cfg.Safety.TickInterval)
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Session.SigningKey == "" {
		errs = append(errs, errors.New("session.signing_key is required"))
	}
	if c.Safety.TickInterval <= 0 {
		errs = append(errs, errors.New("safety.tick_interval must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}
	return errors.Join(errs...)
}
