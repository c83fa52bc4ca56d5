package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Sequence backends for transaction numbering
const (
	SequenceBackendDatabase = "database"
	SequenceBackendRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Telemetry TelemetryConfig
	Engine    EngineConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	MigrationsPath  string
	AutoMigrate     bool
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds settings for verifying bearer tokens
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
	RateLimit        int // requests per window per client, 0 disables
	RateLimitWindow  time.Duration
}

// SchedulerConfig holds background job configuration
type SchedulerConfig struct {
	ReorderScanEnabled  bool
	ReorderScanSchedule string
	JobTimeout          time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	LogsEnabled       bool // Tee zap records to the collector
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
}

// EngineConfig holds the limits and lookup tables of the consistency engine
type EngineConfig struct {
	MaxReceiptQuantity    int64
	AdjustmentCeiling     int64
	BulkAdjustmentCeiling int64
	MaxBatchSize          int
	ApprovalLimits        map[string]decimal.Decimal // keyed by upper-case role
	MaxLocationDepth      int
	HierarchyHopLimit     int
	ReorderWindowDays     int
	ReorderSafetyFactor   decimal.Decimal
	SequenceBackend       string
	IdempotencyTTL        time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with INV_ prefix (e.g., INV_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("INV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			MigrationsPath:  v.GetString("database.migrations_path"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RateLimit:        v.GetInt("http.rate_limit"),
			RateLimitWindow:  v.GetDuration("http.rate_limit_window"),
		},
		Scheduler: SchedulerConfig{
			ReorderScanEnabled:  v.GetBool("scheduler.reorder_scan_enabled"),
			ReorderScanSchedule: v.GetString("scheduler.reorder_scan_schedule"),
			JobTimeout:          v.GetDuration("scheduler.job_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Engine: EngineConfig{
			MaxReceiptQuantity:    v.GetInt64("engine.max_receipt_quantity"),
			AdjustmentCeiling:     v.GetInt64("engine.adjustment_ceiling"),
			BulkAdjustmentCeiling: v.GetInt64("engine.bulk_adjustment_ceiling"),
			MaxBatchSize:          v.GetInt("engine.max_batch_size"),
			MaxLocationDepth:      v.GetInt("engine.max_location_depth"),
			HierarchyHopLimit:     v.GetInt("engine.hierarchy_hop_limit"),
			ReorderWindowDays:     v.GetInt("engine.reorder_window_days"),
			SequenceBackend:       v.GetString("engine.sequence_backend"),
			IdempotencyTTL:        v.GetDuration("engine.idempotency_ttl"),
		},
	}

	limits, err := approvalLimits(v)
	if err != nil {
		return nil, err
	}
	cfg.Engine.ApprovalLimits = limits

	if raw := v.GetString("engine.reorder_safety_factor"); raw != "" {
		factor, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("engine.reorder_safety_factor: %w", err)
		}
		cfg.Engine.ReorderSafetyFactor = factor
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// approvalLimits reads engine.approval_limits.<role>. Each known role can also be
// set alone through the environment, e.g. INV_ENGINE_APPROVAL_LIMITS_CLERK.
func approvalLimits(v *viper.Viper) (map[string]decimal.Decimal, error) {
	roles := map[string]struct{}{"clerk": {}, "manager": {}, "admin": {}}
	for role := range v.GetStringMapString("engine.approval_limits") {
		roles[strings.ToLower(role)] = struct{}{}
	}

	limits := make(map[string]decimal.Decimal)
	for role := range roles {
		raw := v.GetString("engine.approval_limits." + role)
		if raw == "" {
			continue
		}
		limit, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("engine.approval_limits.%s: %w", role, err)
		}
		limits[strings.ToUpper(role)] = limit
	}
	return limits, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "inventory-engine"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "dev"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "inventory"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "inventory-engine"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	// An empty origin list allows no cross-origin requests until configured.
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "If-Match", "Idempotency-Key"}
	}
	if cfg.Scheduler.ReorderScanSchedule == "" {
		cfg.Scheduler.ReorderScanSchedule = "0 6 * * *"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 30 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}

	applyEngineDefaults(&cfg.Engine)
}

func applyEngineDefaults(e *EngineConfig) {
	if e.MaxReceiptQuantity == 0 {
		e.MaxReceiptQuantity = 1_000_000
	}
	if e.AdjustmentCeiling == 0 {
		e.AdjustmentCeiling = 10_000
	}
	if e.BulkAdjustmentCeiling == 0 {
		e.BulkAdjustmentCeiling = 1_000_000
	}
	if e.MaxBatchSize == 0 {
		e.MaxBatchSize = 100
	}
	if e.ApprovalLimits == nil {
		e.ApprovalLimits = make(map[string]decimal.Decimal)
	}
	for role, limit := range map[string]int64{"CLERK": 1_000, "MANAGER": 10_000, "ADMIN": 100_000} {
		if _, ok := e.ApprovalLimits[role]; !ok {
			e.ApprovalLimits[role] = decimal.NewFromInt(limit)
		}
	}
	if e.MaxLocationDepth == 0 {
		e.MaxLocationDepth = 5
	}
	if e.HierarchyHopLimit == 0 {
		e.HierarchyHopLimit = 10
	}
	if e.ReorderWindowDays == 0 {
		e.ReorderWindowDays = 90
	}
	if e.ReorderSafetyFactor.IsZero() {
		e.ReorderSafetyFactor = decimal.RequireFromString("1.2")
	}
	if e.SequenceBackend == "" {
		e.SequenceBackend = SequenceBackendDatabase
	}
	if e.IdempotencyTTL == 0 {
		e.IdempotencyTTL = 24 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return c.Engine.validate(c.Redis)
}

func (e *EngineConfig) validate(redis RedisConfig) error {
	if e.MaxReceiptQuantity < 0 || e.AdjustmentCeiling < 0 || e.BulkAdjustmentCeiling < 0 {
		return fmt.Errorf("engine quantity limits cannot be negative")
	}
	if e.BulkAdjustmentCeiling < e.AdjustmentCeiling {
		return fmt.Errorf("engine.bulk_adjustment_ceiling (%d) cannot be below engine.adjustment_ceiling (%d)",
			e.BulkAdjustmentCeiling, e.AdjustmentCeiling)
	}
	if e.MaxBatchSize < 0 {
		return fmt.Errorf("engine.max_batch_size cannot be negative")
	}
	for role, limit := range e.ApprovalLimits {
		if limit.IsNegative() {
			return fmt.Errorf("engine.approval_limits.%s cannot be negative", strings.ToLower(role))
		}
	}
	if e.MaxLocationDepth < 0 || e.HierarchyHopLimit < 0 {
		return fmt.Errorf("engine hierarchy limits cannot be negative")
	}
	if e.HierarchyHopLimit < e.MaxLocationDepth {
		return fmt.Errorf("engine.hierarchy_hop_limit (%d) must be at least engine.max_location_depth (%d)",
			e.HierarchyHopLimit, e.MaxLocationDepth)
	}
	if e.ReorderWindowDays < 0 {
		return fmt.Errorf("engine.reorder_window_days cannot be negative")
	}
	if e.ReorderSafetyFactor.IsNegative() {
		return fmt.Errorf("engine.reorder_safety_factor cannot be negative")
	}
	switch e.SequenceBackend {
	case SequenceBackendDatabase:
	case SequenceBackendRedis:
		if !redis.Enabled {
			return fmt.Errorf("engine.sequence_backend=redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("engine.sequence_backend must be %q or %q, got %q",
			SequenceBackendDatabase, SequenceBackendRedis, e.SequenceBackend)
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
