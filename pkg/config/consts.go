package config

// EnvPrefix is passed to envconfig; explicit tags on every field keep the
// variable names readable, so the prefix itself stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "EC_APP_ENV"
	EnvAppPort  = "EC_APP_PORT"
	EnvLogLevel = "EC_LOG_LEVEL"

	EnvDBDSN      = "EC_DB_DSN"
	EnvDBHost     = "EC_DB_HOST"
	EnvDBPort     = "EC_DB_PORT"
	EnvDBUser     = "EC_DB_USER"
	EnvDBPassword = "EC_DB_PASSWORD"
	EnvDBName     = "EC_DB_NAME"

	EnvRedisURL = "EC_REDIS_URL"

	EnvJWTSecret            = "EC_JWT_SECRET"
	EnvJWTIssuer            = "EC_JWT_ISSUER"
	EnvJWTExpirationMinutes = "EC_JWT_EXPIRATION_MINUTES"

	EnvBillingTVARate        = "EC_BILLING_DEFAULT_TVA_RATE"
	EnvBillingCommissionRate = "EC_BILLING_COMMISSION_RATE"
	EnvAffiliateEarningRate  = "EC_AFFILIATE_EARNING_RATE"
)

// legacyDBEnvVars are the discrete connection variables accepted when
// EC_DB_DSN is not set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
