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
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
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
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROCERY_APP_ENV" required:"true"`
	Port         string `envconfig:"GROCERY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROCERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCERY_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"GROCERY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GROCERY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GROCERY_DB_DSN"`
	Driver string `envconfig:"GROCERY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GROCERY_DB_HOST"`
	LegacyPort     int    `envconfig:"GROCERY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GROCERY_DB_USER"`
	LegacyPassword string `envconfig:"GROCERY_DB_PASSWORD"`
	LegacyName     string `envconfig:"GROCERY_DB_NAME"`
	LegacySSLMode  string `envconfig:"GROCERY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROCERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROCERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCERY_REDIS_URL"`
	Address      string        `envconfig:"GROCERY_REDIS_ADDR"`
	Password     string        `envconfig:"GROCERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string        `envconfig:"GROCERY_JWT_SECRET" required:"true"`
	Issuer            string        `envconfig:"GROCERY_JWT_ISSUER" default:"grocery-be"`
	ExpirationMinutes int           `envconfig:"GROCERY_JWT_EXPIRATION_MINUTES" default:"1440"`
	SessionCacheTTL   time.Duration `envconfig:"GROCERY_SESSION_CACHE_TTL" default:"5m"`
}

// CheckoutConfig holds the tunables of the quote/payment/order flow.
type CheckoutConfig struct {
	DeliveryFeeThresholds []string      `envconfig:"GROCERY_CHECKOUT_DELIVERY_THRESHOLDS" default:"0,100,500"`
	DeliveryFees          []string      `envconfig:"GROCERY_CHECKOUT_DELIVERY_FEES" default:"30,15,0"`
	SurgeRate             string        `envconfig:"GROCERY_CHECKOUT_SURGE_RATE" default:"0.01"`
	Currency              string        `envconfig:"GROCERY_CHECKOUT_CURRENCY" default:"INR"`
	RateLimitWindow       time.Duration `envconfig:"GROCERY_CHECKOUT_RATE_LIMIT_WINDOW" default:"1m"`
	RateLimitPerUser      int           `envconfig:"GROCERY_CHECKOUT_RATE_LIMIT_PER_USER" default:"30"`
	IdempotencyTTL        time.Duration `envconfig:"GROCERY_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

func (c CheckoutConfig) validate() error {
	if len(c.DeliveryFeeThresholds) != len(c.DeliveryFees) {
		return fmt.Errorf("%s and %s must have the same length", EnvCheckoutDeliveryThresholds, EnvCheckoutDeliveryFees)
	}
	return nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GROCERY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GROCERY_AUTO_MIGRATE" default:"false"`
	// ExposeErrors adds the internal error text to failure envelopes. Ignored in prod.
	ExposeErrors bool `envconfig:"GROCERY_EXPOSE_ERRORS" default:"true"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"GROCERY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GROCERY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GROCERY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GROCERY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic           string `envconfig:"GROCERY_PUBSUB_ORDERS_TOPIC" default:"grocery-order-events"`
	AnalyticsSubscription string `envconfig:"GROCERY_PUBSUB_ANALYTICS_SUBSCRIPTION" default:"grocery-order-analytics"`
}

type BigQueryConfig struct {
	Dataset           string `envconfig:"GROCERY_BIGQUERY_DATASET" default:"grocery"`
	OrderEventsTable  string `envconfig:"GROCERY_BIGQUERY_ORDER_EVENTS_TABLE" default:"order_events"`
	InsertBatchSize   int    `envconfig:"GROCERY_BIGQUERY_BATCH_SIZE" default:"1"`
	InsertMaxAttempts int    `envconfig:"GROCERY_BIGQUERY_MAX_ATTEMPTS" default:"3"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GROCERY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GROCERY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GROCERY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval converts the configured milliseconds into a duration.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 0
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" {
		return nil
	}
	if useSQLite {
		db.DSN = "file:grocery.db?cache=shared"
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
