package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, secrets)
// - default: Values common across all environments (timezone, timeouts, TTLs)
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Cookie  CookieConfig
	Gateway GatewayConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	Booking BookingConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Kolkata"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

type JWTConfig struct {
	Secret               string `envconfig:"JWT_SECRET" required:"true"`
	AccessTokenDuration  string `envconfig:"JWT_ACCESS_TOKEN_DURATION" default:"15m"`
	RefreshTokenDuration string `envconfig:"JWT_REFRESH_TOKEN_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"Lax"`
}

// GatewayConfig holds the payment gateway credentials. KeySecret doubles as the
// HMAC key for callback signatures.
type GatewayConfig struct {
	KeyID     string        `envconfig:"GATEWAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
	Currency  string        `envconfig:"GATEWAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_TOPIC" default:"booking-events"`
}

type BookingConfig struct {
	HoldTTL           time.Duration `envconfig:"HOLD_TTL" default:"15m"`
	SweepInterval     time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	SweepBatchSize    int           `envconfig:"SWEEP_BATCH_SIZE" default:"50"`
	RelayInterval     time.Duration `envconfig:"RELAY_INTERVAL" default:"5s"`
	RelayBatchSize    int           `envconfig:"RELAY_BATCH_SIZE" default:"100"`
	PaymentLockTTL    time.Duration `envconfig:"PAYMENT_LOCK_TTL" default:"30s"`
	InventoryCacheTTL time.Duration `envconfig:"INVENTORY_CACHE_TTL" default:"5s"`
	WorkersEnabled    bool          `envconfig:"WORKERS_ENABLED" default:"true"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Kolkata",
			MaxConns: 10,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
		JWT: JWTConfig{
			Secret:               "test-jwt-secret",
			AccessTokenDuration:  "15m",
			RefreshTokenDuration: "168h",
		},
		Cookie: CookieConfig{
			Secure:   false,
			SameSite: "Lax",
		},
		Gateway: GatewayConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "test-gateway-secret",
			Currency:  "INR",
			Timeout:   2 * time.Second,
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:19092"},
			Topic:   "booking-events-test",
		},
		Booking: BookingConfig{
			HoldTTL:           15 * time.Minute,
			SweepInterval:     time.Minute,
			SweepBatchSize:    50,
			RelayInterval:     5 * time.Second,
			RelayBatchSize:    100,
			PaymentLockTTL:    30 * time.Second,
			InventoryCacheTTL: 0,
			WorkersEnabled:    false,
		},
	}
}

// ToolConfig is the subset needed by offline tools that only touch the database.
type ToolConfig struct {
	DB  DBConfig
	Log LogConfig
}

func LoadToolConfig() (ToolConfig, error) {
	var cfg ToolConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return ToolConfig{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}
