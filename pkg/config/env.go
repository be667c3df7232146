package config

const EnvPrefix = "GROCERY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "GROCERY_APP_ENV"
	EnvPort     = "GROCERY_APP_PORT"
	EnvLogLevel = "GROCERY_LOG_LEVEL"

	EnvDBDSN  = "GROCERY_DB_DSN"
	EnvDBHost = "GROCERY_DB_HOST"
	EnvDBPort = "GROCERY_DB_PORT"
	EnvDBUser = "GROCERY_DB_USER"
	EnvDBPass = "GROCERY_DB_PASSWORD"
	EnvDBName = "GROCERY_DB_NAME"

	EnvRedisURL = "GROCERY_REDIS_URL"

	EnvJWTSecret  = "GROCERY_JWT_SECRET"
	EnvJWTIssuer  = "GROCERY_JWT_ISSUER"
	EnvJWTExpMins = "GROCERY_JWT_EXPIRATION_MINUTES"

	EnvCheckoutDeliveryThresholds = "GROCERY_CHECKOUT_DELIVERY_THRESHOLDS"
	EnvCheckoutDeliveryFees       = "GROCERY_CHECKOUT_DELIVERY_FEES"
	EnvCheckoutRateLimitPerUser   = "GROCERY_CHECKOUT_RATE_LIMIT_PER_USER"

	EnvUseSQLite   = "GROCERY_USE_SQLITE"
	EnvAutoMigrate = "GROCERY_AUTO_MIGRATE"

	EnvGCPProjectID       = "GROCERY_GCP_PROJECT_ID"
	EnvPubSubOrdersTopic  = "GROCERY_PUBSUB_ORDERS_TOPIC"
	EnvPubSubAnalyticsSub = "GROCERY_PUBSUB_ANALYTICS_SUBSCRIPTION"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
