package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// - gateway credentials are optional: an unconfigured gateway is simply not registered
// -----------------------------------------------------------------------------

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	CORS    CORSConfig
	Log     LogConfig
	JWT     JWTConfig
	Booking BookingConfig
	Payment PaymentConfig
	Omise   OmiseConfig
	PayPal  PayPalConfig
	AMQP    AMQPConfig
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
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Tokyo"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"20"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Tokyo"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"32400"` // 9*60*60
}

type JWTConfig struct {
	Secret        string        `envconfig:"JWT_SECRET" required:"true"`
	TokenDuration time.Duration `envconfig:"JWT_TOKEN_DURATION" default:"1h"`
}

type BookingConfig struct {
	PlatformFeePercent      float64       `envconfig:"BOOKING_PLATFORM_FEE_PERCENT" default:"5"`
	DefaultCommissionRate   float64       `envconfig:"BOOKING_DEFAULT_COMMISSION_RATE" default:"10"`
	CancellationWindowHours int           `envconfig:"BOOKING_CANCELLATION_WINDOW_HOURS" default:"24"`
	AutoConfirmHours        int           `envconfig:"BOOKING_AUTO_CONFIRM_HOURS" default:"48"`
	MaxDurationHours        int           `envconfig:"BOOKING_MAX_DURATION_HOURS" default:"12"`
	MinNumberOfPeople       int           `envconfig:"BOOKING_MIN_PEOPLE" default:"1"`
	MaxNumberOfPeople       int           `envconfig:"BOOKING_MAX_PEOPLE" default:"20"`
	SweepEnabled            bool          `envconfig:"BOOKING_SWEEP_ENABLED" default:"true"`
	SweepInterval           time.Duration `envconfig:"BOOKING_SWEEP_INTERVAL" default:"10m"`
	SweepBatchSize          int32         `envconfig:"BOOKING_SWEEP_BATCH_SIZE" default:"100"`
	TimeZone                string        `envconfig:"BOOKING_TIMEZONE" default:"Asia/Tokyo"`
}

type PaymentConfig struct {
	Currency       string        `envconfig:"PAYMENT_CURRENCY" default:"USD"`
	ReturnURL      string        `envconfig:"PAYMENT_RETURN_URL" default:"http://localhost:3000/payments/return"`
	CancelURL      string        `envconfig:"PAYMENT_CANCEL_URL" default:"http://localhost:3000/payments/cancel"`
	GatewayTimeout time.Duration `envconfig:"PAYMENT_GATEWAY_TIMEOUT" default:"15s"`
}

type OmiseConfig struct {
	PublicKey string `envconfig:"OMISE_PUBLIC_KEY"`
	SecretKey string `envconfig:"OMISE_SECRET_KEY"`
}

func (c OmiseConfig) Enabled() bool {
	return c.PublicKey != "" && c.SecretKey != ""
}

type PayPalConfig struct {
	ClientID         string        `envconfig:"PAYPAL_CLIENT_ID"`
	ClientSecret     string        `envconfig:"PAYPAL_CLIENT_SECRET"`
	BaseURL          string        `envconfig:"PAYPAL_BASE_URL" default:"https://api-m.sandbox.paypal.com"`
	WebhookID        string        `envconfig:"PAYPAL_WEBHOOK_ID"`
	TokenRefreshSkew time.Duration `envconfig:"PAYPAL_TOKEN_REFRESH_SKEW" default:"100s"`
}

func (c PayPalConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type AMQPConfig struct {
	URL              string        `envconfig:"AMQP_URL"`
	Exchange         string        `envconfig:"AMQP_EXCHANGE" default:"tourbook.events"`
	DispatchInterval time.Duration `envconfig:"AMQP_DISPATCH_INTERVAL" default:"5s"`
	DispatchBatch    int32         `envconfig:"AMQP_DISPATCH_BATCH" default:"50"`
	MaxAttempts      int32         `envconfig:"AMQP_MAX_ATTEMPTS" default:"10"`
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
			TimeZone: "Asia/Tokyo",
			MaxConns: 20,
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Tokyo",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 32400,
		},
		JWT: JWTConfig{
			Secret:        "test-secret",
			TokenDuration: time.Hour,
		},
		Booking: BookingConfig{
			PlatformFeePercent:      5,
			DefaultCommissionRate:   10,
			CancellationWindowHours: 24,
			AutoConfirmHours:        48,
			MaxDurationHours:        12,
			MinNumberOfPeople:       1,
			MaxNumberOfPeople:       20,
			SweepEnabled:            false,
			SweepInterval:           time.Minute,
			SweepBatchSize:          100,
			TimeZone:                "Asia/Tokyo",
		},
		Payment: PaymentConfig{
			Currency:       "USD",
			ReturnURL:      "http://localhost:3000/payments/return",
			CancelURL:      "http://localhost:3000/payments/cancel",
			GatewayTimeout: 5 * time.Second,
		},
		AMQP: AMQPConfig{
			Exchange:         "tourbook.events",
			DispatchInterval: time.Second,
			DispatchBatch:    50,
			MaxAttempts:      10,
		},
	}
}
