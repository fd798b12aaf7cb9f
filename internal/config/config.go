package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage drivers supported by the storage module.
const (
	StoragePostgres  = "postgres"
	StorageFirestore = "firestore"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	StorageDriver      string
	DatabaseURI        string
	FirestoreProjectID string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIURL        string
	Currency            string

	ExpoPushURL     string
	ExpoAccessToken string

	RedisAddress     string
	RedisPassword    string
	WebhookDedupeTTL time.Duration

	NotifyWorkers   int
	NotifyQueueSize int
	NotifyTimeout   time.Duration

	JWTSecret       string
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress       = ":8080"
	defaultStorageDriver    = StoragePostgres
	defaultCurrency         = "eur"
	defaultExpoPushURL      = "https://exp.host/--/api/v2/push/send"
	defaultWebhookDedupeTTL = 24 * time.Hour
	defaultNotifyWorkers    = 2
	defaultNotifyQueueSize  = 64
	defaultNotifyTimeout    = 5 * time.Second
	defaultJWTSecret        = "change-me-in-production"
	defaultTokenTTL         = 24 * time.Hour
	defaultShutdownTimeout  = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		StorageDriver:       getString(lookup, "STORAGE_DRIVER", defaultStorageDriver),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		FirestoreProjectID:  getString(lookup, "FIRESTORE_PROJECT_ID", ""),
		StripeSecretKey:     getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getString(lookup, "STRIPE_WEBHOOK_SECRET", ""),
		StripeAPIURL:        getString(lookup, "STRIPE_API_URL", ""),
		Currency:            getString(lookup, "PAYMENT_CURRENCY", defaultCurrency),
		ExpoPushURL:         getString(lookup, "EXPO_PUSH_URL", defaultExpoPushURL),
		ExpoAccessToken:     getString(lookup, "EXPO_ACCESS_TOKEN", ""),
		RedisAddress:        getString(lookup, "REDIS_ADDRESS", ""),
		RedisPassword:       getString(lookup, "REDIS_PASSWORD", ""),
		WebhookDedupeTTL:    getDuration(lookup, "WEBHOOK_DEDUPE_TTL", defaultWebhookDedupeTTL),
		NotifyWorkers:       getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:     getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		NotifyTimeout:       getDuration(lookup, "NOTIFY_TIMEOUT", defaultNotifyTimeout),
		JWTSecret:           getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:            getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("yemma", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		dedupeTTLStr       = cfg.WebhookDedupeTTL.String()
		notifyTimeoutStr   = cfg.NotifyTimeout.String()
		tokenTTLStr        = cfg.TokenTTL.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: postgres or firestore")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.FirestoreProjectID, "firestore-project", cfg.FirestoreProjectID, "Google Cloud project hosting Firestore")
	fs.StringVar(&cfg.StripeSecretKey, "stripe-key", cfg.StripeSecretKey, "Stripe secret API key")
	fs.StringVar(&cfg.StripeWebhookSecret, "stripe-webhook-secret", cfg.StripeWebhookSecret, "Stripe webhook signing secret")
	fs.StringVar(&cfg.StripeAPIURL, "stripe-api-url", cfg.StripeAPIURL, "Override for the Stripe API base URL")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Default payment currency")
	fs.StringVar(&cfg.ExpoPushURL, "expo-url", cfg.ExpoPushURL, "Expo push send endpoint")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for webhook event dedupe")
	fs.StringVar(&dedupeTTLStr, "dedupe-ttl", dedupeTTLStr, "How long processed webhook event ids are remembered")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of concurrent push notification workers")
	fs.IntVar(&cfg.NotifyQueueSize, "notify-queue", cfg.NotifyQueueSize, "Pending push notification queue size")
	fs.StringVar(&notifyTimeoutStr, "notify-timeout", notifyTimeoutStr, "Timeout for a single push send")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Auth token lifetime")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.WebhookDedupeTTL, err = time.ParseDuration(dedupeTTLStr); err != nil {
		return nil, fmt.Errorf("invalid dedupe ttl: %w", err)
	}

	if cfg.NotifyTimeout, err = time.ParseDuration(notifyTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid notify timeout: %w", err)
	}

	if cfg.TokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	secrets := []struct {
		key    string
		target *string
	}{
		{"JWT_SECRET_FILE", &cfg.JWTSecret},
		{"STRIPE_SECRET_KEY_FILE", &cfg.StripeSecretKey},
		{"STRIPE_WEBHOOK_SECRET_FILE", &cfg.StripeWebhookSecret},
	}
	for _, s := range secrets {
		if err := readSecretFile(lookup, s.key, s.target); err != nil {
			return nil, err
		}
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.Currency = strings.ToLower(strings.TrimSpace(cfg.Currency))

	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}

	if cfg.WebhookDedupeTTL <= 0 {
		cfg.WebhookDedupeTTL = defaultWebhookDedupeTTL
	}

	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}

	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURI == "" {
			return nil, fmt.Errorf("database URI must be provided")
		}
	case StorageFirestore:
		if cfg.FirestoreProjectID == "" {
			return nil, fmt.Errorf("firestore project id must be provided")
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key must be provided")
	}

	if cfg.StripeWebhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret must be provided")
	}

	return cfg, nil
}

func readSecretFile(lookup envLookup, key string, target *string) error {
	path, ok := lookup(key)
	if !ok || path == "" {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", strings.ToLower(strings.TrimSuffix(key, "_FILE")), err)
	}
	*target = strings.TrimSpace(string(content))
	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
