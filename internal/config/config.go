package config

import (
	"errors"
	"fmt"
	"time"

	"event-album/internal/utils"

	"github.com/caarlos0/env/v11"
)

const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"

	RecordStorePostgres = "postgres"
	RecordStoreSQLite   = "sqlite"
	RecordStoreMemory   = "memory"

	ObjectStoreFilesystem = "filesystem"
	ObjectStoreMemory     = "memory"
)

type Config struct {
	Env  string `env:"ENV" envDefault:"local"`
	Port string `env:"PORT" envDefault:"3001"`

	DatabaseURL string   `env:"DATABASE_URL"`
	Postgres    Postgres `envPrefix:"POSTGRES_"`
	RecordStore string   `env:"RECORD_STORE" envDefault:"postgres"`
	SQLitePath  string   `env:"SQLITE_PATH" envDefault:"event-album.db"`

	ObjectStore   string `env:"OBJECT_STORE" envDefault:"filesystem"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	Admin Admin

	EventCacheSize    int           `env:"EVENT_CACHE_SIZE" envDefault:"1024"`
	EventCacheTTL     time.Duration `env:"EVENT_CACHE_TTL" envDefault:"10m"`
	ExportConcurrency int           `env:"EXPORT_CONCURRENCY" envDefault:"8"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	MaxPhotoBytes     int           `env:"MAX_PHOTO_BYTES" envDefault:"15728640"`
	MaxBodyBytes      int           `env:"MAX_BODY_BYTES" envDefault:"26214400"`
	PhotoListLimit    int           `env:"PHOTO_LIST_LIMIT" envDefault:"10000"`
}

type Postgres struct {
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	DB       string `env:"DB" envDefault:"eventalbum"`
}

type Admin struct {
	Email      string        `env:"ADMIN_EMAIL"`
	Password   string        `env:"ADMIN_PASSWORD"`
	JWTSecret  string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL time.Duration `env:"ADMIN_SESSION_TTL" envDefault:"72h"`
}

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist (e.g. in production)
	_ = utils.LoadEnv()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.RecordStore {
	case RecordStorePostgres, RecordStoreSQLite, RecordStoreMemory:
	default:
		return fmt.Errorf("unknown RECORD_STORE %q", c.RecordStore)
	}
	switch c.ObjectStore {
	case ObjectStoreFilesystem, ObjectStoreMemory:
	default:
		return fmt.Errorf("unknown OBJECT_STORE %q", c.ObjectStore)
	}
	if c.ExportConcurrency < 1 {
		return errors.New("EXPORT_CONCURRENCY must be at least 1")
	}
	if c.PhotoListLimit < 1 {
		return errors.New("PHOTO_LIST_LIMIT must be at least 1")
	}
	return nil
}

// DatabaseDSN prefers DATABASE_URL and falls back to the individual POSTGRES_* vars
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "postgres://" + c.Postgres.User + ":" + c.Postgres.Password + "@" +
		c.Postgres.Host + ":" + c.Postgres.Port + "/" + c.Postgres.DB + "?sslmode=disable"
}
