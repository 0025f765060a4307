package config

import (
	"os"
	"strconv"

	"github.com/samber/lo"

	"jrm-intake-api/internal/logx"
)

var configLogger = logx.GetScope("config")

// Config holds the application configuration
type Config struct {
	AppEnv string
	Server struct {
		Addr      string
		StaticDir string // front-end assets, served at / when set
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // text, json
	}
	DB struct {
		Driver       string // sqlite | postgres
		DSN          string
		MaxOpenConns int
		MaxIdleConns int
		Migrate      bool
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	MQ struct {
		URL      string // RabbitMQ URL
		Exchange string
	}
	ES struct {
		Addrs    string // comma separated
		Username string
		Password string
		Index    string
	}
	JWT struct {
		Algo         string // HS256 | RS256
		HSSecret     string
		RSPrivateKey string
		RSPublicKey  string
		Issuer       string
		Audience     string
		AccessMin    int
	}
	RateLimit struct {
		Max       int // requests per window; 0 disables
		WindowSec int
	}
	Apollo struct {
		Enable    bool
		AppID     string
		Cluster   string
		Namespace string
		Addrs     string
		AccessKey string
	}
}

// AuthEnabled reports whether write routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWT.HSSecret != "" || (c.JWT.RSPrivateKey != "" && c.JWT.RSPublicKey != "")
}

// FromEnv builds a Config from environment variables and defaults only.
func FromEnv() *Config {
	cfg := &Config{}

	cfg.AppEnv = getEnv("APP_ENV", "dev")
	cfg.Server.Addr = getEnv("SERVER_ADDR", ":3000")
	cfg.Server.StaticDir = getEnv("STATIC_DIR", "")
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "text")

	cfg.DB.Driver = getEnv("DB_DRIVER", "sqlite")
	cfg.DB.DSN = getEnv("DB_DSN", lo.Ternary(cfg.DB.Driver == "sqlite", "intakedb.db", ""))
	// a single SQLite connection serializes transactions across requests
	cfg.DB.MaxOpenConns = getInt("DB_MAX_OPEN", lo.Ternary(cfg.DB.Driver == "sqlite", 1, 10))
	cfg.DB.MaxIdleConns = getInt("DB_MAX_IDLE", lo.Ternary(cfg.DB.Driver == "sqlite", 1, 5))
	cfg.DB.Migrate = getBool("DB_MIGRATE", true)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	cfg.MQ.URL = getEnv("RABBITMQ_URL", "")
	cfg.MQ.Exchange = getEnv("RABBITMQ_EXCHANGE", "intake.events")

	cfg.ES.Addrs = getEnv("ES_ADDRS", "")
	cfg.ES.Username = getEnv("ES_USERNAME", "")
	cfg.ES.Password = getEnv("ES_PASSWORD", "")
	cfg.ES.Index = getEnv("ES_INDEX", "intakes")

	cfg.JWT.Algo = getEnv("JWT_ALGO", "HS256")
	cfg.JWT.HSSecret = getEnv("JWT_SECRET", "")
	cfg.JWT.RSPrivateKey = getEnv("JWT_RS_PRIVATE_KEY", "")
	cfg.JWT.RSPublicKey = getEnv("JWT_RS_PUBLIC_KEY", "")
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", "jrm-intake-api")
	cfg.JWT.Audience = getEnv("JWT_AUDIENCE", "jrm")
	cfg.JWT.AccessMin = getInt("JWT_ACCESS_MIN", 60)

	cfg.RateLimit.Max = getInt("RATE_LIMIT_MAX", 0)
	cfg.RateLimit.WindowSec = getInt("RATE_LIMIT_WINDOW_SEC", 60)

	cfg.Apollo.Enable = getBool("APOLLO_ENABLE", false)
	cfg.Apollo.AppID = getEnv("APOLLO_APP_ID", "")
	cfg.Apollo.Cluster = getEnv("APOLLO_CLUSTER", "default")
	cfg.Apollo.Namespace = getEnv("APOLLO_NAMESPACE", "application")
	cfg.Apollo.Addrs = getEnv("APOLLO_ADDRS", "")
	cfg.Apollo.AccessKey = getEnv("APOLLO_ACCESS_KEY", "")

	return cfg
}

// Load loads config from env, and if enabled, overrides with Apollo values.
// Returns config, its watchable store, optional apollo closer, and error.
func Load() (*Config, *Store, func(), error) {
	cfg := FromEnv()
	store := NewStore(cfg)

	if cfg.Apollo.Enable {
		closer, err := overrideFromApollo(cfg, store)
		if err != nil {
			configLogger.Sugar().Errorf("apollo override failed: %v", err)
			return cfg, store, closer, err
		}
		return store.Get(), store, closer, nil
	}

	return cfg, store, nil, nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	return lo.Ternary(v != "", v, def)
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		configLogger.Sugar().Warnf("ignoring non-integer %s=%q", key, v)
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		configLogger.Sugar().Warnf("ignoring non-boolean %s=%q", key, v)
	}
	return def
}
