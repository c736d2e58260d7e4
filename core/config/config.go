package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App        AppConfig
	Discord    DiscordConfig
	Store      StoreConfig
	Database   DatabaseConfig
	Valkey     ValkeyConfig
	WorkerPool WorkerPoolConfig
	Monitor    MonitorConfig
}

type AppConfig struct {
	Version     string
	Debug       bool
	Environment string
}

type DiscordConfig struct {
	Token         string
	CommandPrefix string
}

// StoreConfig selects the document store backing antiraid settings:
// "database" (gorm) or "valkey".
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type ValkeyConfig struct {
	Address        string
	Password       string
	DB             int
	KeyPrefix      string
	ConnectTimeout time.Duration
}

type WorkerPoolConfig struct {
	Size      int
	QueueSize int
}

// MonitorConfig sizes the in-memory activity monitor.
type MonitorConfig struct {
	BufferSize int
	TTL        time.Duration
}

const (
	StoreDatabase = "database"
	StoreValkey   = "valkey"
)

// Init loads an optional .env file and binds environment variables into
// viper. Flags bound later take precedence over the environment.
func Init(envFile string) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// LoadConfig builds the configuration from viper (flags and environment)
// with defaults for everything that is unset.
func LoadConfig() (*Config, error) {
	storages := getEnv("APP_STORAGES_DIR", "storages")

	cfg := &Config{
		App: AppConfig{
			Version:     "v1.0.0",
			Debug:       getEnvBool("APP_DEBUG", false),
			Environment: getEnv("APP_ENV", "development"),
		},
		Discord: DiscordConfig{
			Token:         getEnv("DISCORD_TOKEN", ""),
			CommandPrefix: getEnv("DISCORD_PREFIX", "!"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDatabase)),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", filepath.Join(storages, "antiraid.db")),
		},
		Valkey: ValkeyConfig{
			Address:        getEnv("VALKEY_ADDRESS", "localhost:6379"),
			Password:       getEnv("VALKEY_PASSWORD", ""),
			DB:             getEnvInt("VALKEY_DB", 0),
			KeyPrefix:      getEnv("VALKEY_KEY_PREFIX", "kirbi:"),
			ConnectTimeout: getEnvDuration("VALKEY_CONNECT_TIMEOUT", 5*time.Second),
		},
		WorkerPool: WorkerPoolConfig{
			Size:      getEnvInt("PERSIST_WORKER_POOL_SIZE", 4),
			QueueSize: getEnvInt("PERSIST_WORKER_QUEUE_SIZE", 256),
		},
		Monitor: MonitorConfig{
			BufferSize: getEnvInt("BOT_MONITOR_BUFFER", 200),
			TTL:        getEnvDuration("BOT_MONITOR_TTL", 0),
		},
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
