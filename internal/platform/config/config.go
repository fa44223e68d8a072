// Package config loads the server configuration from the environment.
//
// Values are read in this order, later sources winning:
// built-in defaults, an optional file named by CONFIG_FILE, a .env file,
// and finally the process environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"attendance_backend/internal/platform/db"
)

// StoreMongo selects the MongoDB adapters instead of GORM.
const StoreMongo = "mongodb"

// DevJWTSecret is used only outside release mode when JWT_SECRET is unset.
const DevJWTSecret = "dev_secret_change_me"

// Config holds every setting the server and the seed command need.
type Config struct {
	HTTPAddr    string
	GinMode     string // debug / release / test
	LogLevel    string // debug / info / warn / error
	CORSOrigins []string
	TimeZone    *time.Location

	JWTSecret string
	JWTTTL    time.Duration

	Store string // mysql / postgres / sqlite / mongodb
	DB    db.Config

	MongoURI      string
	MongoDatabase string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	UserCacheTTL  time.Duration

	AuthRateLimit  int // requests per window per client IP; 0 disables
	AuthRateWindow time.Duration
}

// Release reports whether gin runs in release mode.
func (c *Config) Release() bool {
	return c.GinMode == "release"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TZ_NAME", "Local")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "168h")

	v.SetDefault("STORE_DRIVER", db.DriverSQLite)
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "attendance")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("INSTANCE_CONNECTION_NAME", "")
	v.SetDefault("SQLITE_PATH", "attendance.db")
	v.SetDefault("DB_CONNECT_TIMEOUT", "60s")
	v.SetDefault("RUN_MIGRATIONS", true)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "attendance")

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("USER_CACHE_TTL", "5m")

	v.SetDefault("AUTH_RATE_LIMIT", 20)
	v.SetDefault("AUTH_RATE_WINDOW", "1m")
}

// Load reads the configuration. dotenvFiles defaults to ".env"; a missing
// file is not an error.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil {
			slog.Info(".env not found; using system environment variables", "file", f)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	loc, err := time.LoadLocation(v.GetString("TZ_NAME"))
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME: %w", err)
	}

	cfg := &Config{
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		GinMode:     strings.ToLower(v.GetString("GIN_MODE")),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		TimeZone:    loc,

		JWTSecret: v.GetString("JWT_SECRET"),
		JWTTTL:    v.GetDuration("JWT_TTL"),

		Store: strings.ToLower(v.GetString("STORE_DRIVER")),
		DB: db.Config{
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Name:           v.GetString("DB_NAME"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			InstanceName:   v.GetString("INSTANCE_CONNECTION_NAME"),
			SQLitePath:     v.GetString("SQLITE_PATH"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
			RunMigrations:  v.GetBool("RUN_MIGRATIONS"),
		},

		MongoURI:      v.GetString("MONGO_URI"),
		MongoDatabase: v.GetString("MONGO_DATABASE"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		UserCacheTTL:  v.GetDuration("USER_CACHE_TTL"),

		AuthRateLimit:  v.GetInt("AUTH_RATE_LIMIT"),
		AuthRateWindow: v.GetDuration("AUTH_RATE_WINDOW"),
	}
	cfg.DB.Driver = cfg.Store

	switch cfg.Store {
	case db.DriverMySQL, db.DriverPostgres, db.DriverSQLite, StoreMongo:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Store)
	}
	if cfg.JWTTTL <= 0 {
		return nil, errors.New("JWT_TTL must be positive")
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if cfg.JWTSecret == "" {
		if cfg.Release() {
			return nil, errors.New("JWT_SECRET is required in release mode")
		}
		slog.Warn("JWT_SECRET is not set. Using a development secret; set a strong secret in production.")
		cfg.JWTSecret = DevJWTSecret
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
