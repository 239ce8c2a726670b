package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Checkout      CheckoutConfig
	Billing       BillingConfig
	Stripe        StripeConfig
	Affiliate     AffiliateConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EC_APP_ENV" required:"true"`
	Port         string `envconfig:"EC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"EC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"EC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"EC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"EC_DB_DSN"`
	Driver string `envconfig:"EC_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EC_DB_HOST"`
	LegacyPort     int    `envconfig:"EC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EC_DB_USER"`
	LegacyPassword string `envconfig:"EC_DB_PASSWORD"`
	LegacyName     string `envconfig:"EC_DB_NAME"`
	LegacySSLMode  string `envconfig:"EC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EC_REDIS_ADDR"`
	Password     string        `envconfig:"EC_REDIS_PASSWORD"`
	DB           int           `envconfig:"EC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"EC_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"EC_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"EC_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"EC_JWT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EC_ARGON_KEY_LEN" default:"32"`
}

type CheckoutConfig struct {
	ShippingFee string `envconfig:"EC_CHECKOUT_SHIPPING_FEE" default:"4.90"`
}

// ShippingFeeAmount parses the configured flat shipping fee (TTC euros).
func (c CheckoutConfig) ShippingFeeAmount() (decimal.Decimal, error) {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFee))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid shipping fee %q: %w", c.ShippingFee, err)
	}
	if fee.IsNegative() {
		return decimal.Zero, fmt.Errorf("shipping fee cannot be negative")
	}
	return fee, nil
}

type BillingConfig struct {
	DefaultTVARatePercent string `envconfig:"EC_BILLING_DEFAULT_TVA_RATE" default:"20"`
	CommissionRatePercent string `envconfig:"EC_BILLING_COMMISSION_RATE" default:"10"`
}

// DefaultTVARate returns the platform-wide TVA rate as a percentage (20 means 20%).
func (b BillingConfig) DefaultTVARate() (decimal.Decimal, error) {
	return parsePercent(EnvBillingTVARate, b.DefaultTVARatePercent)
}

// DefaultCommissionRate returns the bootstrap commission rate percentage used
// to seed platform settings on first run.
func (b BillingConfig) DefaultCommissionRate() (decimal.Decimal, error) {
	return parsePercent(EnvBillingCommissionRate, b.CommissionRatePercent)
}

type StripeConfig struct {
	WebhookSecret           string `envconfig:"EC_STRIPE_WEBHOOK_SECRET"`
	WebhookToleranceSeconds int    `envconfig:"EC_STRIPE_WEBHOOK_TOLERANCE_SECONDS" default:"300"`
}

// WebhookTolerance bounds the accepted clock skew on signed webhook timestamps.
func (s StripeConfig) WebhookTolerance() time.Duration {
	if s.WebhookToleranceSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.WebhookToleranceSeconds) * time.Second
}

type AffiliateConfig struct {
	EarningRatePercent string `envconfig:"EC_AFFILIATE_EARNING_RATE" default:"5"`
}

// EarningRate returns the affiliate point rate as a percentage (5 means 5%).
func (a AffiliateConfig) EarningRate() (decimal.Decimal, error) {
	return parsePercent(EnvAffiliateEarningRate, a.EarningRatePercent)
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"EC_AUTH_RL_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"EC_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"EC_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"EC_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"EC_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"EC_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EC_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"EC_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"EC_PUBSUB_DOMAIN_TOPIC" default:"ec-domain-events"`
	DomainSubscription string `envconfig:"EC_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"EC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"EC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"EC_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func parsePercent(name, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, fmt.Errorf("%s must be between 0 and 100", name)
	}
	return value, nil
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
