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
	Storefront   StorefrontConfig
	Payments     PaymentsConfig
	Square       SquareConfig
	Stripe       StripeConfig
	JWT          JWTConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.DB.SlowQuery < 0 {
		return nil, fmt.Errorf("%s must not be negative", EnvDBSlowQuery)
	}
	if err := cfg.Storefront.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Payments.validate(cfg.Square, cfg.Stripe); err != nil {
		return nil, err
	}
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cron.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"THREADLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"THREADLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"THREADLINE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"THREADLINE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"THREADLINE_LOG_WARN_STACK" default:"false"`
	// CORSOrigins lists the storefront origins allowed to call the public API.
	CORSOrigins []string `envconfig:"THREADLINE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"THREADLINE_DB_DSN"`
	SQLitePath string `envconfig:"THREADLINE_DB_SQLITE_PATH" default:"threadline.db"`

	LegacyHost     string `envconfig:"THREADLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"THREADLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"THREADLINE_DB_USER"`
	LegacyPassword string `envconfig:"THREADLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"THREADLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"THREADLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"THREADLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"THREADLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"THREADLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"THREADLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// SlowQuery is the latency above which a statement is logged at warn.
	// Zero disables slow-query logging.
	SlowQuery time.Duration `envconfig:"THREADLINE_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL            string        `envconfig:"THREADLINE_REDIS_URL"`
	Address        string        `envconfig:"THREADLINE_REDIS_ADDR" default:"localhost:6379"`
	Password       string        `envconfig:"THREADLINE_REDIS_PASSWORD"`
	DB             int           `envconfig:"THREADLINE_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"THREADLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"THREADLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"THREADLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"THREADLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"THREADLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"THREADLINE_IDEMPOTENCY_TTL" default:"24h"`
	// CheckoutRateLimit caps checkout and order placement calls per client IP
	// within CheckoutRateWindow. Zero disables the limiter.
	CheckoutRateLimit  int           `envconfig:"THREADLINE_CHECKOUT_RATE_LIMIT" default:"60"`
	CheckoutRateWindow time.Duration `envconfig:"THREADLINE_CHECKOUT_RATE_WINDOW" default:"1m"`
}

// StorefrontConfig holds the values the pricing engine stamps onto quotes.
type StorefrontConfig struct {
	SiteOrigin      string `envconfig:"THREADLINE_SITE_ORIGIN" required:"true"`
	DefaultCurrency string `envconfig:"THREADLINE_DEFAULT_CURRENCY" default:"SEK"`
	DefaultLocale   string `envconfig:"THREADLINE_DEFAULT_LOCALE" default:"sv-SE"`
	TaxRateBP       int64  `envconfig:"THREADLINE_TAX_RATE_BP" default:"2500"`
	ProductPath     string `envconfig:"THREADLINE_PRODUCT_PATH" default:"/products"`
}

func (s StorefrontConfig) validate() error {
	origin, err := url.Parse(strings.TrimSpace(s.SiteOrigin))
	if err != nil || origin.Host == "" || (origin.Scheme != "http" && origin.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) origin", EnvSiteOrigin)
	}
	if s.TaxRateBP < 0 || s.TaxRateBP > 10000 {
		return fmt.Errorf("%s must be between 0 and 10000", EnvTaxRateBP)
	}
	return nil
}

const (
	ProviderSquare = "square"
	ProviderStripe = "stripe"
	ProviderMock   = "mock"
)

type PaymentsConfig struct {
	Provider       string        `envconfig:"THREADLINE_PAYMENT_PROVIDER" default:"mock"`
	GatewayTimeout time.Duration `envconfig:"THREADLINE_PAYMENT_GATEWAY_TIMEOUT" default:"15s"`
}

// NormalizedProvider lowercases the configured provider and defaults to mock.
func (p PaymentsConfig) NormalizedProvider() string {
	provider := strings.TrimSpace(strings.ToLower(p.Provider))
	if provider == "" {
		return ProviderMock
	}
	return provider
}

func (p PaymentsConfig) validate(sq SquareConfig, st StripeConfig) error {
	if p.GatewayTimeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvGatewayTO)
	}
	switch p.NormalizedProvider() {
	case ProviderMock:
		return nil
	case ProviderSquare:
		if strings.TrimSpace(sq.AccessToken) == "" || strings.TrimSpace(sq.LocationID) == "" {
			return fmt.Errorf("%s and %s are required for the square provider", EnvSquareToken, EnvSquareLoc)
		}
		return nil
	case ProviderStripe:
		if strings.TrimSpace(st.APIKey) == "" {
			return fmt.Errorf("%s is required for the stripe provider", EnvStripeKey)
		}
		return nil
	default:
		return fmt.Errorf("%s must be one of %s, %s, %s", EnvProvider, ProviderSquare, ProviderStripe, ProviderMock)
	}
}

type SquareConfig struct {
	AccessToken string `envconfig:"THREADLINE_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"THREADLINE_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"THREADLINE_SQUARE_LOCATION_ID"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

type StripeConfig struct {
	APIKey string `envconfig:"THREADLINE_STRIPE_API_KEY"`
	Env    string `envconfig:"THREADLINE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// JWTConfig signs and verifies the staff tokens that guard the admin API.
type JWTConfig struct {
	Secret            string `envconfig:"THREADLINE_JWT_SECRET"`
	Issuer            string `envconfig:"THREADLINE_JWT_ISSUER" default:"threadline"`
	ExpirationMinutes int    `envconfig:"THREADLINE_JWT_EXPIRATION_MINUTES" default:"480"`
}

func (j JWTConfig) validate() error {
	if strings.TrimSpace(j.Secret) == "" {
		return fmt.Errorf("%s is required", EnvJWTSecret)
	}
	if j.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpiry)
	}
	return nil
}

// CronConfig drives the maintenance worker. LockTTL must outlast one cycle.
type CronConfig struct {
	Interval time.Duration `envconfig:"THREADLINE_CRON_INTERVAL" default:"1m"`
	LockTTL  time.Duration `envconfig:"THREADLINE_CRON_LOCK_TTL" default:"5m"`
}

func (c CronConfig) validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%s must be positive", EnvCronInterval)
	}
	if c.LockTTL < c.Interval {
		return fmt.Errorf("%s must be at least %s", EnvCronLockTTL, EnvCronInterval)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"THREADLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"THREADLINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
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
