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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	RateLimit    RateLimitConfig
	Pricing      PricingConfig
	Moneroo      MonerooConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"TREFLE_APP_ENV" required:"true"`
	Port         string `envconfig:"TREFLE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TREFLE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TREFLE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"TREFLE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"TREFLE_DB_DSN"`
	Driver string `envconfig:"TREFLE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TREFLE_DB_HOST"`
	LegacyPort     int    `envconfig:"TREFLE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TREFLE_DB_USER"`
	LegacyPassword string `envconfig:"TREFLE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TREFLE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TREFLE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TREFLE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TREFLE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TREFLE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TREFLE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TREFLE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TREFLE_REDIS_ADDR"`
	Password     string        `envconfig:"TREFLE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TREFLE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TREFLE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TREFLE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TREFLE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TREFLE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TREFLE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"TREFLE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"TREFLE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"TREFLE_JWT_EXPIRATION_MINUTES" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TREFLE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TREFLE_AUTO_MIGRATE" default:"false"`
}

// RateLimitConfig throttles unauthenticated surfaces. A zero limit or
// window disables the throttle.
type RateLimitConfig struct {
	WebhookPerWindow int           `envconfig:"TREFLE_RATE_LIMIT_WEBHOOK" default:"300"`
	WebhookWindow    time.Duration `envconfig:"TREFLE_RATE_LIMIT_WEBHOOK_WINDOW" default:"1m"`
}

// PricingConfig drives tax and shipping policy at order creation.
// Rates are expressed in basis points; amounts in currency minor units.
type PricingConfig struct {
	TaxRateBps            int    `envconfig:"TREFLE_PRICING_TAX_RATE_BPS" default:"1925"`
	HomeCountry           string `envconfig:"TREFLE_PRICING_HOME_COUNTRY" default:"CM"`
	IntlShippingMultiple  int    `envconfig:"TREFLE_PRICING_INTL_SHIPPING_MULTIPLE" default:"2"`
	DefaultCurrency       string `envconfig:"TREFLE_PRICING_DEFAULT_CURRENCY" default:"XAF"`
	OrderNumberPrefix     string `envconfig:"TREFLE_PRICING_ORDER_NUMBER_PREFIX" default:"TRF"`
	ReviewTitleMaxLen     int    `envconfig:"TREFLE_REVIEW_TITLE_MAX_LEN" default:"120"`
	ReviewContentMaxLen   int    `envconfig:"TREFLE_REVIEW_CONTENT_MAX_LEN" default:"4000"`
	CancellationReasonMax int    `envconfig:"TREFLE_CANCELLATION_REASON_MAX_LEN" default:"500"`
}

type MonerooConfig struct {
	BaseURL       string        `envconfig:"TREFLE_MONEROO_BASE_URL" default:"https://api.moneroo.io/v1"`
	APIKey        string        `envconfig:"TREFLE_MONEROO_API_KEY" required:"true"`
	WebhookSecret string        `envconfig:"TREFLE_MONEROO_WEBHOOK_SECRET" required:"true"`
	Timeout       time.Duration `envconfig:"TREFLE_MONEROO_TIMEOUT" default:"30s"`
	RedirectURL   string        `envconfig:"TREFLE_MONEROO_REDIRECT_URL"`
	CancelURL     string        `envconfig:"TREFLE_MONEROO_CANCEL_URL"`
	WebhookURL    string        `envconfig:"TREFLE_MONEROO_WEBHOOK_URL"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL  time.Duration `envconfig:"TREFLE_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
	WebhookIdempotencyTTL time.Duration `envconfig:"TREFLE_WEBHOOK_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"TREFLE_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"TREFLE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"TREFLE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic           string `envconfig:"TREFLE_PUBSUB_DOMAIN_TOPIC" required:"true"`
	AnalyticsSubscription string `envconfig:"TREFLE_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset                string `envconfig:"TREFLE_BIGQUERY_DATASET" default:"trefle"`
	MarketplaceEventsTable string `envconfig:"TREFLE_BIGQUERY_MARKETPLACE_TABLE" default:"marketplace_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TREFLE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TREFLE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TREFLE_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
