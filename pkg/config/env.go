package config

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "TREFLE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Canonical environment variable names, kept in one place so tests and
// deployment manifests never drift from the envconfig tags.
const (
	EnvAppEnv   = "TREFLE_APP_ENV"
	EnvPort     = "TREFLE_APP_PORT"
	EnvLogLevel = "TREFLE_LOG_LEVEL"

	EnvDBDSN  = "TREFLE_DB_DSN"
	EnvDBHost = "TREFLE_DB_HOST"
	EnvDBUser = "TREFLE_DB_USER"
	EnvDBName = "TREFLE_DB_NAME"

	EnvRedisURL = "TREFLE_REDIS_URL"

	EnvJWTSecret  = "TREFLE_JWT_SECRET"
	EnvJWTIssuer  = "TREFLE_JWT_ISSUER"
	EnvJWTExpMins = "TREFLE_JWT_EXPIRATION_MINUTES"

	EnvMonerooAPIKey        = "TREFLE_MONEROO_API_KEY"
	EnvMonerooWebhookSecret = "TREFLE_MONEROO_WEBHOOK_SECRET"

	EnvGCPProjectID       = "TREFLE_GCP_PROJECT_ID"
	EnvPubSubDomainTopic  = "TREFLE_PUBSUB_DOMAIN_TOPIC"
	EnvPubSubAnalyticsSub = "TREFLE_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
