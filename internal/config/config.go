package config

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the homebound service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port of the HTTP API, health check and metrics.
// - RequestTimeout: The HTTP timeout of a single upstream request.
// - RateLimit: Requests per second allowed against rate-limited upstream APIs.
// - Transit, Taxi, Geocoder: Upstream provider selection and credentials.
// - Store: Where the saved home is kept (file, postgres, redis).
// - Database, Redis: Connection settings of the postgres and redis stores.
// - SentryDSN: Error reporting destination; empty disables reporting.
type Config struct {
	Env            string
	Port           int
	RequestTimeout time.Duration
	RateLimit      int
	Transit        ProviderConfig
	Taxi           ProviderConfig
	Geocoder       ProviderConfig
	Store          StoreConfig
	Database       PostgresConfig
	Redis          RedisConfig
	SentryDSN      string
}

// ProviderConfig selects one upstream provider.
type ProviderConfig struct {
	Provider    string // Provider type, e.g. odsay, kakao, google
	URL         string // Route server base URL or vendor endpoint override
	Key         string // API key
	DefaultFare int    // Transit only: fare used when none is reported
}

// StoreConfig selects the key-value store backend.
type StoreConfig struct {
	Type string // file, postgres or redis
	Path string // directory of the file store
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// RedisConfig holds the connection settings of the redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var defaults = map[string]string{
	"env":                  "production",
	"port":                 "8080",
	"request_timeout":      "10s",
	"rate_limit":           "5",
	"transit.provider":     "routeserver",
	"transit.url":          "",
	"transit.key":          "",
	"transit.default_fare": "1400",
	"taxi.provider":        "kakao",
	"taxi.url":             "",
	"taxi.key":             "",
	"geocoder.provider":    "kakao",
	"geocoder.url":         "",
	"geocoder.key":         "",
	"store.type":           "file",
	"store.path":           "./data",
	"db.host":              "localhost",
	"db.port":              "5432",
	"db.user":              "",
	"db.password":          "",
	"db.name":              "homebound",
	"redis.addr":           "localhost:6379",
	"redis.password":       "",
	"redis.db":             "0",
	"sentry.dsn":           "",
}

// MustLoad reads .env, the optional homebound.yaml and HOMEBOUND_* environment
// variables, in increasing order of precedence. It panics on invalid values.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("HOMEBOUND")
	vpr.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vpr.AutomaticEnv()
	for key, value := range defaults {
		vpr.SetDefault(key, value)
	}

	vpr.SetConfigName("homebound")
	vpr.SetConfigType("yaml")
	vpr.AddConfigPath(".")
	vpr.AddConfigPath("/etc/homebound")
	if err := vpr.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("failed to read configuration file")
		}
	}

	requestTimeout, err := time.ParseDuration(vpr.GetString("request_timeout"))
	if err != nil {
		panic("failed to parse request timeout from configuration")
	}

	port, err := strconv.Atoi(vpr.GetString("port"))
	if err != nil {
		panic("failed to parse port from configuration")
	}

	rateLimit, err := strconv.Atoi(vpr.GetString("rate_limit"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer types")
	}

	defaultFare, err := strconv.Atoi(vpr.GetString("transit.default_fare"))
	if err != nil {
		panic("failed to parse default transit fare from configuration, must be an integer types")
	}

	redisDB, err := strconv.Atoi(vpr.GetString("redis.db"))
	if err != nil {
		panic("failed to parse redis db from configuration, must be an integer types")
	}

	return &Config{
		Env:            vpr.GetString("env"),
		Port:           port,
		RequestTimeout: requestTimeout,
		RateLimit:      rateLimit,
		Transit: ProviderConfig{
			Provider:    vpr.GetString("transit.provider"),
			URL:         vpr.GetString("transit.url"),
			Key:         vpr.GetString("transit.key"),
			DefaultFare: defaultFare,
		},
		Taxi: ProviderConfig{
			Provider: vpr.GetString("taxi.provider"),
			URL:      vpr.GetString("taxi.url"),
			Key:      vpr.GetString("taxi.key"),
		},
		Geocoder: ProviderConfig{
			Provider: vpr.GetString("geocoder.provider"),
			URL:      vpr.GetString("geocoder.url"),
			Key:      vpr.GetString("geocoder.key"),
		},
		Store: StoreConfig{
			Type: vpr.GetString("store.type"),
			Path: vpr.GetString("store.path"),
		},
		Database: PostgresConfig{
			Host:     vpr.GetString("db.host"),
			Port:     vpr.GetString("db.port"),
			User:     vpr.GetString("db.user"),
			Password: vpr.GetString("db.password"),
			Name:     vpr.GetString("db.name"),
		},
		Redis: RedisConfig{
			Addr:     vpr.GetString("redis.addr"),
			Password: vpr.GetString("redis.password"),
			DB:       redisDB,
		},
		SentryDSN: vpr.GetString("sentry.dsn"),
	}
}
