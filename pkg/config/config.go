package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Events       EventsConfig
	Payments     PaymentsConfig
	Reviews      ReviewsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CETUS_APP_ENV" required:"true"`
	Port         string `envconfig:"CETUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CETUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CETUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CETUS_DB_DSN"`
	Driver string `envconfig:"CETUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CETUS_DB_HOST"`
	LegacyPort     int    `envconfig:"CETUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CETUS_DB_USER"`
	LegacyPassword string `envconfig:"CETUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CETUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CETUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CETUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CETUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CETUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CETUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CETUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CETUS_REDIS_ADDR"`
	Password     string        `envconfig:"CETUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CETUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CETUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CETUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CETUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CETUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CETUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EventsConfig tunes the in-process domain event pipeline.
type EventsConfig struct {
	ChannelCapacity int           `envconfig:"CETUS_EVENTS_CHANNEL_CAPACITY" default:"10000"`
	DrainTimeout    time.Duration `envconfig:"CETUS_EVENTS_DRAIN_TIMEOUT" default:"30s"`
}

type PaymentsConfig struct {
	LinkTTL time.Duration `envconfig:"CETUS_PAYMENTS_LINK_TTL" default:"72h"`
}

type ReviewsConfig struct {
	SendDelay time.Duration `envconfig:"CETUS_REVIEWS_SEND_DELAY" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CETUS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == DBDriverSQLite {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
