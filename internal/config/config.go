package config

import (
	"fmt"
	"time"

	"github.com/Dias221467/Beer_Rating/pkg/email"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the application settings, read from the environment and an
// optional .env file.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	JWTSecret       string        `env:"JWT_SECRET" validate:"required_if=AuthProvider local"`
	TokenExpiry     time.Duration `env:"TOKEN_EXPIRY" envDefault:"72h"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// AuthProvider is "local" (accounts in the store) or "firebase".
	AuthProvider string `env:"AUTH_PROVIDER" envDefault:"local" validate:"oneof=local firebase"`

	// StoreDriver selects the record store backend.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"memory" validate:"oneof=memory badger mongo redis postgres firebase"`

	Mongo    MongoConfig    `envPrefix:"MONGO_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Badger   BadgerConfig   `envPrefix:"BADGER_"`
	Firebase FirebaseConfig `envPrefix:"FIREBASE_"`
	SMTP     email.Config   `envPrefix:"SMTP_"`

	GoogleMapsAPIKey string `env:"GOOGLE_MAPS_API_KEY"`

	// SweepSchedule is the cron spec of the stale friend request sweep.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@hourly"`
}

type MongoConfig struct {
	URI        string        `env:"URI" envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	Database   string        `env:"DB" envDefault:"beer_rating"`
	Collection string        `env:"COLLECTION" envDefault:"records"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"localhost:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	Namespace string `env:"NAMESPACE" envDefault:"beer_rating"`
}

type PostgresConfig struct {
	DSN      string `env:"DSN" envDefault:"postgres://localhost:5432/beer_rating"`
	Table    string `env:"TABLE" envDefault:"records"`
	MaxConns int32  `env:"MAX_CONNS" envDefault:"8"`
}

type BadgerConfig struct {
	Path       string `env:"PATH" envDefault:"./data/badger"`
	SyncWrites bool   `env:"SYNC_WRITES" envDefault:"false"`
}

type FirebaseConfig struct {
	CredentialsFile string        `env:"CREDENTIALS_FILE"`
	ProjectID       string        `env:"PROJECT_ID"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`
}

var validate = validator.New()

// Load reads .env (when present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using environment")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.StoreDriver == "firebase" && c.Firebase.DatabaseURL == "" {
		return fmt.Errorf("invalid config: FIREBASE_DATABASE_URL is required for the firebase store")
	}
	return nil
}

// LoadConfig loads the configuration and exits on failure.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}
