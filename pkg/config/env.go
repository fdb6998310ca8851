package config

const EnvPrefix = "THREADLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "THREADLINE_APP_ENV"
	EnvPort      = "THREADLINE_APP_PORT"
	EnvLogLevel  = "THREADLINE_LOG_LEVEL"
	EnvLogFormat = "THREADLINE_LOG_FORMAT"

	EnvDBDSN       = "THREADLINE_DB_DSN"
	EnvDBSlowQuery = "THREADLINE_DB_SLOW_QUERY"
	EnvDBHost      = "THREADLINE_DB_HOST"
	EnvDBUser      = "THREADLINE_DB_USER"
	EnvDBName      = "THREADLINE_DB_NAME"

	EnvRedisURL = "THREADLINE_REDIS_URL"

	EnvSiteOrigin  = "THREADLINE_SITE_ORIGIN"
	EnvTaxRateBP   = "THREADLINE_TAX_RATE_BP"
	EnvCurrency    = "THREADLINE_DEFAULT_CURRENCY"
	EnvLocale      = "THREADLINE_DEFAULT_LOCALE"
	EnvProvider    = "THREADLINE_PAYMENT_PROVIDER"
	EnvGatewayTO   = "THREADLINE_PAYMENT_GATEWAY_TIMEOUT"
	EnvSquareToken = "THREADLINE_SQUARE_ACCESS_TOKEN"
	EnvSquareLoc   = "THREADLINE_SQUARE_LOCATION_ID"
	EnvStripeKey   = "THREADLINE_STRIPE_API_KEY"
	EnvUseSQLite   = "THREADLINE_USE_SQLITE"
	EnvJWTSecret   = "THREADLINE_JWT_SECRET"
	EnvJWTExpiry   = "THREADLINE_JWT_EXPIRATION_MINUTES"

	EnvCronInterval = "THREADLINE_CRON_INTERVAL"
	EnvCronLockTTL  = "THREADLINE_CRON_LOCK_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
