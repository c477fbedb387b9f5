package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "SOUQLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUQLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SOUQLY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SOUQLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUQLY_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"SOUQLY_APP_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN             string        `envconfig:"SOUQLY_DB_DSN" required:"true"`
	MaxOpenConns    int           `envconfig:"SOUQLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUQLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUQLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUQLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUQLY_REDIS_URL"`
	Address      string        `envconfig:"SOUQLY_REDIS_ADDR"`
	Password     string        `envconfig:"SOUQLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUQLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUQLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUQLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUQLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUQLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUQLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// GatewayConfig holds the marketplace payment processor credentials.
type GatewayConfig struct {
	Environment  string        `envconfig:"SOUQLY_GATEWAY_ENV" default:"sandbox"`
	ClientID     string        `envconfig:"SOUQLY_GATEWAY_CLIENT_ID" required:"true"`
	ClientSecret string        `envconfig:"SOUQLY_GATEWAY_CLIENT_SECRET" required:"true"`
	BaseURL      string        `envconfig:"SOUQLY_GATEWAY_BASE_URL"`
	Timeout      time.Duration `envconfig:"SOUQLY_GATEWAY_TIMEOUT" default:"15s"`
	// TokenExpirySkew is subtracted from the advertised token TTL so a token
	// is refreshed before it can expire mid-call.
	TokenExpirySkew time.Duration `envconfig:"SOUQLY_GATEWAY_TOKEN_EXPIRY_SKEW" default:"60s"`
}

// CheckoutConfig carries the money constants used by the checkout core.
// PlatformFeeRate and CurrencyRate are configuration rather than code, but
// their governance (who changes them, effect on in-flight orders) is out of
// scope here.
type CheckoutConfig struct {
	ShippingFeeCents int64  `envconfig:"SOUQLY_CHECKOUT_SHIPPING_FEE_CENTS" default:"600"`
	PlatformFeeRate  string `envconfig:"SOUQLY_CHECKOUT_PLATFORM_FEE_RATE" default:"0.10"`
	// CurrencyRate converts cart-denominated amounts into the settlement
	// currency before gateway calls. A fixed rate is a known simplification,
	// not an exchange-rate engine.
	CurrencyRate   string        `envconfig:"SOUQLY_CHECKOUT_CURRENCY_RATE" default:"1.0"`
	SettlementCCY  string        `envconfig:"SOUQLY_CHECKOUT_SETTLEMENT_CURRENCY" default:"USD"`
	AttemptLockTTL time.Duration `envconfig:"SOUQLY_CHECKOUT_ATTEMPT_LOCK_TTL" default:"2m"`
	// ApprovalPollInterval and ApprovalWindow bound how long a submit waits
	// for the buyer to approve the gateway payment.
	ApprovalPollInterval time.Duration `envconfig:"SOUQLY_CHECKOUT_APPROVAL_POLL_INTERVAL" default:"2s"`
	ApprovalWindow       time.Duration `envconfig:"SOUQLY_CHECKOUT_APPROVAL_WINDOW" default:"3m"`
}

func (c CheckoutConfig) validate() error {
	rate, err := c.FeeRate()
	if err != nil {
		return err
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("platform fee rate %s must be within [0, 1]", rate)
	}
	if _, err := c.ConversionRate(); err != nil {
		return err
	}
	if c.ShippingFeeCents < 0 {
		return fmt.Errorf("shipping fee must not be negative")
	}
	return nil
}

// FeeRate parses the configured platform fee rate.
func (c CheckoutConfig) FeeRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.PlatformFeeRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing platform fee rate: %w", err)
	}
	return rate, nil
}

// ConversionRate parses the configured settlement-currency conversion rate.
func (c CheckoutConfig) ConversionRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.CurrencyRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing currency rate: %w", err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("currency rate must be positive")
	}
	return rate, nil
}
