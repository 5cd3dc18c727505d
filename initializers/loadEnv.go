package initializers

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every setting the storefront reads from the environment.
// It is loaded and validated once in main and passed to the components that
// need it.
type Config struct {
	AppName     string `validate:"required"`
	Port        string `validate:"required,numeric"`
	FrontendURL string `validate:"required,url"`
	LogLevel    string `validate:"oneof=debug info warn error"`
	CORSOrigins []string

	DBDriver string `validate:"oneof=mysql postgres sqlite"`
	DBURL    string `validate:"required"`

	JWTSecret string        `validate:"required,min=16"`
	JWTTTL    time.Duration `validate:"gt=0"`

	PayPalAPIURL   string        `validate:"required,url"`
	PayPalClientID string        `validate:"required"`
	PayPalSecret   string        `validate:"required"`
	PayPalCurrency string        `validate:"required,len=3"`
	PayPalTimeout  time.Duration `validate:"gt=0"`

	MailTransport         string `validate:"oneof=smtp resend log"`
	SenderEmail           string `validate:"required,email"`
	SMTPAddress           string `validate:"required_if=MailTransport smtp"`
	SMTPHost              string `validate:"required_if=MailTransport smtp"`
	SMTPPassword          string
	ResendAPIKey          string   `validate:"required_if=MailTransport resend"`
	ResendAPIURL          string   `validate:"omitempty,url"`
	OrderNotifyRecipients []string `validate:"dive,email"`
	NotificationTimeout   time.Duration

	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
	StockPolicy           string `validate:"oneof=allow reject"`

	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
	EventTimeout time.Duration

	S3Bucket string
}

// LoadEnv reads a .env file when one is present. A missing file is not an
// error; the process environment is used as is.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// LoadConfig builds a Config from the environment and validates it.
func LoadConfig() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		AppName:     getEnv("APP_NAME", "Amexan"),
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:4200"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:4200", "https://www.amexan.store"}),

		DBDriver: getEnv("DB_DRIVER", "mysql"),
		DBURL:    os.Getenv("DB_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 30*24*time.Hour),

		PayPalAPIURL:   getEnv("PAYPAL_API_URL", "https://api-m.sandbox.paypal.com"),
		PayPalClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalSecret:   os.Getenv("PAYPAL_APP_SECRET"),
		PayPalCurrency: getEnv("PAYPAL_CURRENCY", "USD"),
		PayPalTimeout:  getEnvDuration("PAYPAL_TIMEOUT", 30*time.Second),

		MailTransport:         getEnv("MAIL_TRANSPORT", "smtp"),
		SenderEmail:           getEnv("FROM_EMAIL", "onboarding@amexan.store"),
		SMTPAddress:           os.Getenv("SMTP_ADDRESS"),
		SMTPHost:              os.Getenv("FROM_EMAIL_SMTP"),
		SMTPPassword:          os.Getenv("FROM_EMAIL_PASSWORD"),
		ResendAPIKey:          os.Getenv("RESEND_API_KEY"),
		ResendAPIURL:          getEnv("RESEND_API_URL", "https://api.resend.com"),
		OrderNotifyRecipients: getEnvList("ORDER_NOTIFY_RECIPIENTS", nil),
		NotificationTimeout:   getEnvDuration("NOTIFICATION_TIMEOUT", 15*time.Second),

		StockPolicy: getEnv("STOCK_POLICY", "allow"),

		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "orders"),
		EventTimeout: getEnvDuration("EVENT_TIMEOUT", 5*time.Second),

		S3Bucket: getEnv("S3_BUCKET", "amexan"),
	}

	var err error
	if cfg.FreeShippingThreshold, err = getEnvDecimal("FREE_SHIPPING_THRESHOLD", "100"); err != nil {
		return nil, err
	}
	if cfg.ShippingFee, err = getEnvDecimal("SHIPPING_FEE", "10"); err != nil {
		return nil, err
	}
	if cfg.TaxRate, err = getEnvDecimal("TAX_RATE", "0.15"); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the cross-field money rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.TaxRate.IsNegative() || c.ShippingFee.IsNegative() || c.FreeShippingThreshold.IsNegative() {
		return errors.New("invalid configuration: pricing values must not be negative")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvDecimal(key, def string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, def))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
