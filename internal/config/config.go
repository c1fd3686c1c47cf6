package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig
	DB         DatabaseConfig
	AWS        AWSConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Pagination PaginationConfig
	Logger     LoggerConfig
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	Environment            string
	HTTPPort               string
	ShutdownTimeoutSeconds int
	MetricsEnabled         bool
	SwaggerEnabled         bool
}

// DatabaseConfig holds the raw database settings. Which of them are used is
// decided by connection.Resolver: explicit credentials first, then the secret.
type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	Username        string
	Password        string
	SSLMode         string
	SecretARN       string
	ClusterEndpoint string
	ProxyEndpoint   string

	ConnectTimeoutSeconds int
	MaxOpenConns          int
	MaxIdleConns          int
	ConnMaxLifetime       int // seconds
	ConnMaxIdleTime       int // seconds
	AutoMigrate           bool
}

// HasExplicitCredentials reports whether host, name, username and password are all set.
func (c DatabaseConfig) HasExplicitCredentials() bool {
	return c.Host != "" && c.Name != "" && c.Username != "" && c.Password != ""
}

// AWSConfig holds configuration for AWS service clients
type AWSConfig struct {
	Region                string
	SecretsTimeoutSeconds int
}

// RedisConfig holds configuration for the optional user cache and rate limiter backend
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	CacheTTL    int // seconds
}

// RateLimitConfig holds configuration for the token bucket rate limiter
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstCapacity     int
}

// PaginationConfig holds listing limits
type PaginationConfig struct {
	DefaultLimit       int64
	SearchDefaultLimit int64
	MaxLimit           int64
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// LoadConfig reads configuration from an app.env file in path (optional) and
// from environment variables, which take precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	// Logger defaults depend on the environment, which may come from the file
	env := environment(v)
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}

	var config Config

	config.App.Environment = env
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.MetricsEnabled = v.GetBool("METRICS_ENABLED")
	config.App.SwaggerEnabled = v.GetBool("SWAGGER_ENABLED")

	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.Username = v.GetString("DB_USERNAME")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.SecretARN = v.GetString("DB_SECRET_ARN")
	config.DB.ClusterEndpoint = v.GetString("DB_CLUSTER_ENDPOINT")
	config.DB.ProxyEndpoint = v.GetString("DB_PROXY_ENDPOINT")
	config.DB.ConnectTimeoutSeconds = v.GetInt("DB_CONNECT_TIMEOUT_SECONDS")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	config.AWS.Region = v.GetString("AWS_REGION")
	config.AWS.SecretsTimeoutSeconds = v.GetInt("SECRETS_TIMEOUT_SECONDS")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheTTL = v.GetInt("CACHE_TTL_SECONDS")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Pagination.DefaultLimit = v.GetInt64("PAGINATION_DEFAULT_LIMIT")
	config.Pagination.SearchDefaultLimit = v.GetInt64("PAGINATION_SEARCH_DEFAULT_LIMIT")
	config.Pagination.MaxLimit = v.GetInt64("PAGINATION_MAX_LIMIT")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

// environment prefers APP_ENV and falls back to ENVIRONMENT (the name the
// Lambda stack sets).
func environment(v *viper.Viper) string {
	if env := v.GetString("APP_ENV"); env != "" {
		return env
	}
	if env := v.GetString("ENVIRONMENT"); env != "" {
		return env
	}
	return "development"
}

func setDefaults(v *viper.Viper) {
	// DB_HOST, DB_NAME, DB_USERNAME and DB_PASSWORD have no defaults on
	// purpose: their joint presence selects explicit credentials.
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "prefer")
	v.SetDefault("DB_CONNECT_TIMEOUT_SECONDS", 5)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("SECRETS_TIMEOUT_SECONDS", 3)

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("SWAGGER_ENABLED", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", -1)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 1)
	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10.0)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	v.SetDefault("PAGINATION_DEFAULT_LIMIT", 10)
	v.SetDefault("PAGINATION_SEARCH_DEFAULT_LIMIT", 20)
	v.SetDefault("PAGINATION_MAX_LIMIT", 100)

	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "fitspace-backend")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for missing or contradictory values.
func (c *Config) Validate() error {
	var problems []string

	if !isPort(c.App.HTTPPort) {
		problems = append(problems, fmt.Sprintf("HTTP_PORT %q is not a valid port", c.App.HTTPPort))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		problems = append(problems, "SHUTDOWN_TIMEOUT_SECONDS must be positive")
	}

	if !c.DB.HasExplicitCredentials() && c.DB.SecretARN == "" {
		problems = append(problems, "database credentials missing: set DB_HOST, DB_NAME, DB_USERNAME, DB_PASSWORD or DB_SECRET_ARN")
	}
	if !isPort(c.DB.Port) {
		problems = append(problems, fmt.Sprintf("DB_PORT %q is not a valid port", c.DB.Port))
	}
	if c.DB.MaxOpenConns <= 0 {
		problems = append(problems, "DB_MAX_OPEN_CONNS must be positive")
	}
	if c.DB.MaxIdleConns < 0 || c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		problems = append(problems, "DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" || !isPort(c.Redis.Port) {
			problems = append(problems, "REDIS_HOST and REDIS_PORT are required when REDIS_ENABLED is set")
		}
		if c.Redis.CacheTTL <= 0 {
			problems = append(problems, "CACHE_TTL_SECONDS must be positive")
		}
	}
	if c.RateLimit.Enabled {
		if !c.Redis.Enabled {
			problems = append(problems, "RATE_LIMIT_ENABLED requires REDIS_ENABLED")
		}
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0 {
			problems = append(problems, "rate limit rate and burst must be positive")
		}
	}

	if c.Pagination.MaxLimit <= 0 {
		problems = append(problems, "PAGINATION_MAX_LIMIT must be positive")
	}
	if c.Pagination.DefaultLimit <= 0 || c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		problems = append(problems, "PAGINATION_DEFAULT_LIMIT must be between 1 and PAGINATION_MAX_LIMIT")
	}
	if c.Pagination.SearchDefaultLimit <= 0 || c.Pagination.SearchDefaultLimit > c.Pagination.MaxLimit {
		problems = append(problems, "PAGINATION_SEARCH_DEFAULT_LIMIT must be between 1 and PAGINATION_MAX_LIMIT")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func isPort(s string) bool {
	p, err := strconv.Atoi(s)
	return err == nil && p > 0 && p < 65536
}
