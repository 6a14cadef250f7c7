package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	Engine  restock.Config
	Cache   CacheConfig
	Storage StorageConfig
	Drive   DriveConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type CacheConfig struct {
	Enabled       bool
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	TTLSeconds    int
}

type StorageConfig struct {
	Endpoint    string
	AccessKey   string
	SecretKey   string
	Region      string
	UseSSL      bool
	DownloadDir string
}

// Enabled reports whether s3:// locations can be served.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

type DriveConfig struct {
	CredentialsJSON string
}

// Enabled reports whether drive:// locations can be served.
func (d DriveConfig) Enabled() bool {
	return strings.TrimSpace(d.CredentialsJSON) != ""
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
	loadErr  error
)

// Load reads .env, the environment and the optional RESTOCK_CONFIG_FILE once.
func Load() (*Config, error) {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		SetDefaults(v)
		v.AutomaticEnv()

		if file := v.GetString("RESTOCK_CONFIG_FILE"); file != "" {
			v.SetConfigFile(file)
			if err := v.MergeInConfig(); err != nil {
				loadErr = fmt.Errorf("read config file %s: %w", file, err)
				return
			}
		}

		instance = FromViper(v)
	})

	return instance, loadErr
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	engine := restock.DefaultConfig()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("RESTOCK_VALID_STATUSES", engine.ValidStatuses)
	v.SetDefault("RESTOCK_IGNORED_LOCATIONS", engine.IgnoredLocations)
	v.SetDefault("RESTOCK_PICKING_LEVELS", engine.PickingLevels)
	v.SetDefault("RESTOCK_RESERVE_LEVELS", engine.ReserveLevels)
	v.SetDefault("RESTOCK_RESERVE_PREFIXES", engine.ReservePrefixes)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL_SECONDS", 300)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_DOWNLOAD_DIR", "./data/inputs")
	v.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
	v.SetDefault("LOG_LEVEL", "info")
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: getList(v, "SERVER_ALLOWED_ORIGINS"),
		},
		Engine: restock.Config{
			ValidStatuses:    getList(v, "RESTOCK_VALID_STATUSES"),
			IgnoredLocations: getList(v, "RESTOCK_IGNORED_LOCATIONS"),
			PickingLevels:    getList(v, "RESTOCK_PICKING_LEVELS"),
			ReserveLevels:    getList(v, "RESTOCK_RESERVE_LEVELS"),
			ReservePrefixes:  getList(v, "RESTOCK_RESERVE_PREFIXES"),
		},
		Cache: CacheConfig{
			Enabled:       v.GetBool("CACHE_ENABLED"),
			RedisURL:      v.GetString("REDIS_URL"),
			RedisHost:     v.GetString("REDIS_HOST"),
			RedisPort:     v.GetString("REDIS_PORT"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
			TTLSeconds:    v.GetInt("CACHE_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:    v.GetString("S3_ENDPOINT"),
			AccessKey:   v.GetString("S3_ACCESS_KEY"),
			SecretKey:   v.GetString("S3_SECRET_KEY"),
			Region:      v.GetString("S3_REGION"),
			UseSSL:      v.GetBool("S3_USE_SSL"),
			DownloadDir: v.GetString("S3_DOWNLOAD_DIR"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// getList reads a list key that may come from the environment as "a, b,c".
func getList(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
