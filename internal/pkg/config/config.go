package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// -----------------------------------------------------------------------------

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
	CacheDriverNone   = "none"
)

type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	Hold    HoldConfig
	Sweep   SweepConfig
	Worker  WorkerConfig
	Cache   CacheConfig
	Kafka   KafkaConfig
	Tracing TracingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type StoreConfig struct {
	Driver        string `envconfig:"STORE_DRIVER" default:"postgres"`
	RunMigrations bool   `envconfig:"STORE_RUN_MIGRATIONS" default:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"DB_NAME" default:"stock_hold"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type HoldConfig struct {
	TTL time.Duration `envconfig:"HOLD_TTL" default:"2m"`
}

type SweepConfig struct {
	Enabled   bool          `envconfig:"SWEEP_ENABLED" default:"true"`
	Interval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
	BatchSize int           `envconfig:"SWEEP_BATCH_SIZE" default:"500"`
}

type WorkerConfig struct {
	Enabled      bool          `envconfig:"WORKER_ENABLED" default:"true"`
	Count        int           `envconfig:"WORKER_COUNT" default:"4"`
	PollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"1s"`
	BatchSize    int           `envconfig:"WORKER_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"WORKER_MAX_ATTEMPTS" default:"5"`
	RetryBase    time.Duration `envconfig:"WORKER_RETRY_BASE" default:"2s"`
	Lease        time.Duration `envconfig:"WORKER_LEASE" default:"30s"`
}

type CacheConfig struct {
	Driver        string        `envconfig:"CACHE_DRIVER" default:"memory"`
	TTL           time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"inventory.events"`
}

type TracingConfig struct {
	Endpoint    string        `envconfig:"OTEL_EXPORTER_ENDPOINT"`
	URLPath     string        `envconfig:"OTEL_EXPORTER_URL_PATH" default:"/v1/traces"`
	Insecure    bool          `envconfig:"OTEL_EXPORTER_INSECURE" default:"true"`
	ServiceName string        `envconfig:"OTEL_SERVICE_NAME" default:"stock-hold-service"`
	Timeout     time.Duration `envconfig:"OTEL_EXPORT_TIMEOUT" default:"5s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

// LoadConfig reads an optional .env file (ENV_FILE overrides the path) and
// then processes the environment.
func LoadConfig() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case CacheDriverRedis, CacheDriverMemory, CacheDriverNone:
	default:
		return fmt.Errorf("unsupported CACHE_DRIVER %q", c.Cache.Driver)
	}
	if c.Hold.TTL <= 0 {
		return fmt.Errorf("HOLD_TTL must be positive")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		Store: StoreConfig{
			Driver:        StoreDriverMemory,
			RunMigrations: true,
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
			MaxConns: 10,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
			MaxAge:       time.Hour,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "UTC",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 0,
		},
		Hold:  HoldConfig{TTL: 2 * time.Minute},
		Sweep: SweepConfig{Enabled: false, Interval: 5 * time.Minute, BatchSize: 500},
		Worker: WorkerConfig{
			Enabled:      false,
			Count:        2,
			PollInterval: 50 * time.Millisecond,
			BatchSize:    50,
			MaxAttempts:  3,
			RetryBase:    10 * time.Millisecond,
			Lease:        time.Second,
		},
		Cache: CacheConfig{Driver: CacheDriverMemory, TTL: time.Minute},
		Kafka: KafkaConfig{Topic: "inventory.events"},
		Tracing: TracingConfig{
			ServiceName: "stock-hold-service-test",
			URLPath:     "/v1/traces",
			Timeout:     time.Second,
		},
	}
}
