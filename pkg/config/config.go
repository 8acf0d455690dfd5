package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix scopes every environment variable the service reads.
	EnvPrefix = "SECONDSERVE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SECONDSERVE_DB_DSN"
	EnvDBHost = "SECONDSERVE_DB_HOST"
	EnvDBUser = "SECONDSERVE_DB_USER"
	EnvDBName = "SECONDSERVE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SECONDSERVE_APP_ENV" required:"true"`
	Port         string `envconfig:"SECONDSERVE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SECONDSERVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SECONDSERVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SECONDSERVE_DB_DSN"`
	Driver string `envconfig:"SECONDSERVE_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"SECONDSERVE_SQLITE_PATH" default:"secondserve.db"`

	LegacyHost     string `envconfig:"SECONDSERVE_DB_HOST"`
	LegacyPort     int    `envconfig:"SECONDSERVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SECONDSERVE_DB_USER"`
	LegacyPassword string `envconfig:"SECONDSERVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SECONDSERVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SECONDSERVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SECONDSERVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SECONDSERVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SECONDSERVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SECONDSERVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SECONDSERVE_REDIS_URL"`
	Address      string        `envconfig:"SECONDSERVE_REDIS_ADDR"`
	Password     string        `envconfig:"SECONDSERVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SECONDSERVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SECONDSERVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SECONDSERVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SECONDSERVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SECONDSERVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SECONDSERVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SECONDSERVE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SECONDSERVE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		db.Driver = "sqlite"
		return nil
	}
	if db.DSN != "" {
		return nil
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
