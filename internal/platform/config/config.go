package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultEnvironment     = "local"
	defaultStoreDriver     = StoreDriverFirestore
	defaultChangeDriver    = ChangeFeedMemory
	defaultChangeChannel   = "laundry:changes"
	defaultAuthMode        = AuthModeFirebase
	defaultPaymentTimeout  = 30 * time.Second
	defaultPaymentRate     = 0.95
	defaultBusinessTZ      = "UTC"
	defaultIdempotencyHdr  = "Idempotency-Key"
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultPostgresConns   = 10
	defaultRedisDB         = 0
	defaultReceiptsPrefix  = "receipts"
	maxPaymentSuccessRatio = 1.0
)

// Store drivers understood by the repository wiring.
const (
	StoreDriverFirestore = "firestore"
	StoreDriverPostgres  = "postgres"
	StoreDriverMemory    = "memory"
)

// Change feed backends.
const (
	ChangeFeedMemory = "memory"
	ChangeFeedRedis  = "redis"
)

// Authentication modes.
const (
	AuthModeFirebase = "firebase"
	AuthModeLocal    = "local"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Store       StoreConfig
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Postgres    PostgresConfig
	ChangeFeed  ChangeFeedConfig
	Redis       RedisConfig
	PubSub      PubSubConfig
	Storage     StorageConfig
	Auth        AuthConfig
	Payments    PaymentConfig
	Orders      OrderConfig
	Idempotency IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Driver string
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PostgresConfig configures the keyed JSON store backed by Postgres.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
}

// ChangeFeedConfig selects how change notifications are fanned out.
type ChangeFeedConfig struct {
	Driver  string
	Channel string
}

// RedisConfig holds connection settings for the Redis change feed.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PubSubConfig names the topic receiving order and offer events. Empty disables publishing.
type PubSubConfig struct {
	ProjectID  string
	OrderTopic string
}

// StorageConfig lists bucket names used by the application.
type StorageConfig struct {
	ReceiptsBucket string
	ReceiptsPrefix string
}

// AuthConfig controls how bearer tokens are verified.
type AuthConfig struct {
	Mode      string
	JWTSecret string
	JWKSURL   string
	Issuer    string
	Audience  string
}

// PaymentConfig tunes the payment simulator.
type PaymentConfig struct {
	Timeout     time.Duration
	SuccessRate float64
}

// OrderConfig holds order numbering settings.
type OrderConfig struct {
	BusinessTimezone string
}

// IdempotencyConfig controls idempotency middleware behaviour.
type IdempotencyConfig struct {
	Header string
	TTL    time.Duration
}

// Location resolves the configured business time zone, falling back to UTC.
func (c OrderConfig) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.BusinessTimezone))
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

// SecretResolver resolves references to external secrets (e.g. Secret Manager URIs).
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts ordinary functions to SecretResolver.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret resolves the secret using the wrapped function.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// SecretError describes failures while resolving a secret reference.
type SecretError struct {
	Ref string
	Err error
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("secret resolution failed for ref %q: %v", e.Ref, e.Err)
}

func (e *SecretError) Unwrap() error { return e.Err }

var errSecretResolverNotConfigured = errors.New("secret resolver not configured")

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
	secret       SecretResolver
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// WithSecretResolver sets the resolver used for secret:// and sm:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.secret = resolver
	}
}

func newLoaderOptions(opts []Option) loaderOptions {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return options
}

// EnvironmentValues returns the effective environment after applying the same precedence
// as Load (dotenv < OS env < explicit env map). main uses it to configure the secret
// fetcher before the full load.
func EnvironmentValues(opts ...Option) (map[string]string, error) {
	options := newLoaderOptions(opts)

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(dotEnv))
	for key, value := range dotEnv {
		values[key] = value
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			key, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			values[strings.TrimSpace(key)] = value
		}
	}
	for key, value := range options.envMap {
		values[key] = value
	}
	return values, nil
}

// Load assembles the application configuration by combining defaults, .env overrides,
// environment variables and Secret Manager lookups.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := newLoaderOptions(opts)

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := newLookup(options, dotEnv)

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "API_ENV", defaultEnvironment)),
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "API_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "API_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "API_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "API_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(stringWithDefault(lookup, "API_STORE_DRIVER", defaultStoreDriver)),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "API_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "API_FIREBASE_CREDENTIALS_FILE", ""),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "API_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "API_FIRESTORE_EMULATOR_HOST", ""),
		},
		Postgres: PostgresConfig{
			DSN:          stringWithDefault(lookup, "API_POSTGRES_DSN", ""),
			MaxOpenConns: intWithDefault(lookup, "API_POSTGRES_MAX_OPEN_CONNS", defaultPostgresConns),
		},
		ChangeFeed: ChangeFeedConfig{
			Driver:  strings.ToLower(stringWithDefault(lookup, "API_CHANGEFEED_DRIVER", defaultChangeDriver)),
			Channel: stringWithDefault(lookup, "API_CHANGEFEED_CHANNEL", defaultChangeChannel),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, "API_REDIS_ADDR", ""),
			Password: stringWithDefault(lookup, "API_REDIS_PASSWORD", ""),
			DB:       intWithDefault(lookup, "API_REDIS_DB", defaultRedisDB),
		},
		PubSub: PubSubConfig{
			ProjectID:  stringWithDefault(lookup, "API_PUBSUB_PROJECT_ID", ""),
			OrderTopic: stringWithDefault(lookup, "API_PUBSUB_ORDER_TOPIC", ""),
		},
		Storage: StorageConfig{
			ReceiptsBucket: stringWithDefault(lookup, "API_STORAGE_RECEIPTS_BUCKET", ""),
			ReceiptsPrefix: stringWithDefault(lookup, "API_STORAGE_RECEIPTS_PREFIX", defaultReceiptsPrefix),
		},
		Auth: AuthConfig{
			Mode:      strings.ToLower(stringWithDefault(lookup, "API_AUTH_MODE", defaultAuthMode)),
			JWTSecret: stringWithDefault(lookup, "API_AUTH_JWT_SECRET", ""),
			JWKSURL:   stringWithDefault(lookup, "API_AUTH_JWKS_URL", ""),
			Issuer:    stringWithDefault(lookup, "API_AUTH_ISSUER", ""),
			Audience:  stringWithDefault(lookup, "API_AUTH_AUDIENCE", ""),
		},
		Payments: PaymentConfig{
			Timeout:     durationWithDefault(lookup, "API_PAYMENT_TIMEOUT", defaultPaymentTimeout),
			SuccessRate: floatWithDefault(lookup, "API_PAYMENT_SUCCESS_RATE", defaultPaymentRate),
		},
		Orders: OrderConfig{
			BusinessTimezone: stringWithDefault(lookup, "API_BUSINESS_TIMEZONE", defaultBusinessTZ),
		},
		Idempotency: IdempotencyConfig{
			Header: stringWithDefault(lookup, "API_IDEMPOTENCY_HEADER", defaultIdempotencyHdr),
			TTL:    durationWithDefault(lookup, "API_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
		},
	}

	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}
	if cfg.PubSub.ProjectID == "" {
		cfg.PubSub.ProjectID = cfg.Firestore.ProjectID
	}

	secretFields := []*string{
		&cfg.Postgres.DSN,
		&cfg.Redis.Password,
		&cfg.Auth.JWTSecret,
	}
	for _, field := range secretFields {
		resolved, err := resolveSecret(ctx, *field, options.secret)
		if err != nil {
			return Config{}, err
		}
		*field = resolved
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveSecret(ctx context.Context, value string, resolver SecretResolver) (string, error) {
	if !isSecretReference(value) {
		return value, nil
	}
	normalized := normalizeSecretReference(value)
	if resolver == nil {
		return "", &SecretError{Ref: normalized, Err: errSecretResolverNotConfigured}
	}
	secret, err := resolver.ResolveSecret(ctx, normalized)
	if err != nil {
		return "", &SecretError{Ref: normalized, Err: err}
	}
	return secret, nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if cfg.Server.Port == "" {
		invalid = append(invalid, "Server.Port")
	}

	switch cfg.Store.Driver {
	case StoreDriverFirestore:
		if cfg.Firestore.ProjectID == "" {
			invalid = append(invalid, "Firestore.ProjectID")
		}
	case StoreDriverPostgres:
		if cfg.Postgres.DSN == "" {
			invalid = append(invalid, "Postgres.DSN")
		}
	case StoreDriverMemory:
	default:
		invalid = append(invalid, "Store.Driver")
	}

	switch cfg.ChangeFeed.Driver {
	case ChangeFeedMemory:
	case ChangeFeedRedis:
		if cfg.Redis.Addr == "" {
			invalid = append(invalid, "Redis.Addr")
		}
	default:
		invalid = append(invalid, "ChangeFeed.Driver")
	}

	switch cfg.Auth.Mode {
	case AuthModeFirebase:
		if cfg.Firebase.ProjectID == "" {
			invalid = append(invalid, "Firebase.ProjectID")
		}
	case AuthModeLocal:
		if cfg.Auth.JWTSecret == "" && cfg.Auth.JWKSURL == "" {
			invalid = append(invalid, "Auth.JWTSecret")
		}
	default:
		invalid = append(invalid, "Auth.Mode")
	}

	if cfg.Payments.Timeout <= 0 {
		invalid = append(invalid, "Payments.Timeout")
	}
	if cfg.Payments.SuccessRate < 0 || cfg.Payments.SuccessRate > maxPaymentSuccessRatio {
		invalid = append(invalid, "Payments.SuccessRate")
	}
	if _, err := time.LoadLocation(cfg.Orders.BusinessTimezone); err != nil {
		invalid = append(invalid, "Orders.BusinessTimezone")
	}
	if strings.TrimSpace(cfg.Idempotency.Header) == "" {
		invalid = append(invalid, "Idempotency.Header")
	}
	if cfg.Idempotency.TTL <= 0 {
		invalid = append(invalid, "Idempotency.TTL")
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return &ValidationError{fields: invalid}
	}
	return nil
}
