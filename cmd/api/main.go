package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/laundryhub/api/internal/di"
	"github.com/laundryhub/api/internal/handlers"
	"github.com/laundryhub/api/internal/payments"
	"github.com/laundryhub/api/internal/platform/auth"
	"github.com/laundryhub/api/internal/platform/changefeed"
	"github.com/laundryhub/api/internal/platform/config"
	pfirestore "github.com/laundryhub/api/internal/platform/firestore"
	"github.com/laundryhub/api/internal/platform/idempotency"
	"github.com/laundryhub/api/internal/platform/jobs"
	"github.com/laundryhub/api/internal/platform/keyvalue"
	"github.com/laundryhub/api/internal/platform/observability"
	"github.com/laundryhub/api/internal/platform/secrets"
	platformstorage "github.com/laundryhub/api/internal/platform/storage"
	"github.com/laundryhub/api/internal/repositories"
	firestoreRepo "github.com/laundryhub/api/internal/repositories/firestore"
	"github.com/laundryhub/api/internal/repositories/keyed"
	"github.com/laundryhub/api/internal/services"
)

const (
	shutdownTimeout = 10 * time.Second
	jwksCacheTTL    = 10 * time.Minute
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	resolver, err := newSecretResolver(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret resolver", zap.Error(err))
	}
	defer func() {
		if err := resolver.Close(); err != nil {
			logger.Warn("secret resolver close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(resolver))
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	buildInfo := buildInfoFromEnv(envValues, cfg, startedAt)
	serviceLogger := observability.ServiceLogger(logger.Named("services"))

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	checks := []repositories.DependencyCheck{{Name: cfg.Store.Driver, Check: store.ping}}

	broker, err := newChangeBroker(cfg, serviceLogger)
	if err != nil {
		logger.Fatal("failed to initialise change feed", zap.Error(err))
	}
	defer func() {
		if err := broker.Close(); err != nil {
			logger.Warn("change feed close error", zap.Error(err))
		}
	}()
	if redisBroker, ok := broker.(*changefeed.RedisBroker); ok {
		checks = append(checks, repositories.DependencyCheck{Name: "redis", Check: redisBroker.Ping})
	}

	infra := di.Infrastructure{
		Changes: broker,
		Build:   buildInfo,
		Clock:   time.Now,
		Logger:  serviceLogger,
	}

	if topicID := strings.TrimSpace(cfg.PubSub.OrderTopic); topicID != "" {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			logger.Fatal("failed to initialise pubsub client", zap.Error(err))
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		publisher, err := jobs.NewPubSubEventPublisher(pubsubClient.Topic(topicID))
		if err != nil {
			logger.Fatal("failed to initialise event publisher", zap.Error(err))
		}
		defer publisher.Close()
		infra.Events = publisher
	}

	if bucket := strings.TrimSpace(cfg.Storage.ReceiptsBucket); bucket != "" {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		archiver, err := platformstorage.NewReceiptArchiver(storageClient, bucket, cfg.Storage.ReceiptsPrefix)
		if err != nil {
			logger.Fatal("failed to initialise receipt archiver", zap.Error(err))
		}
		infra.Receipts = archiver
	}

	simulator := payments.NewSimulator(payments.SimulatorOptions{SuccessRate: cfg.Payments.SuccessRate})
	gateway, err := payments.NewManager(map[string]payments.Provider{payments.SimulatorProviderKey: simulator})
	if err != nil {
		logger.Fatal("failed to initialise payment gateway", zap.Error(err))
	}
	infra.Gateway = gateway

	health, err := repositories.NewDependencyHealthRepository(checks)
	if err != nil {
		logger.Fatal("failed to initialise health checks", zap.Error(err))
	}
	infra.Health = health

	container, err := di.NewContainer(ctx, cfg, store.registry, infra)
	if err != nil {
		logger.Fatal("failed to initialise services", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("store close error", zap.Error(err))
		}
	}()
	svc := container.Services

	authenticator, err := newAuthenticator(ctx, cfg, svc.Users)
	if err != nil {
		logger.Fatal("failed to initialise authenticator", zap.Error(err))
	}

	idempotencyMiddleware := idempotency.Middleware(
		store.idempotency,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
	)

	publicHandlers := handlers.NewPublicHandlers(svc.Catalog, svc.Offers)
	meHandlers := handlers.NewMeHandlers(authenticator, svc.Users, svc.Notifications)
	cartHandlers := handlers.NewCartHandlers(authenticator, svc.Carts)
	checkoutHandlers := handlers.NewCheckoutHandlers(authenticator, svc.Checkout, handlers.WithCheckoutIdempotency(idempotencyMiddleware))
	orderHandlers := handlers.NewOrderHandlers(authenticator, svc.Orders)
	paymentHandlers := handlers.NewPaymentHandlers(authenticator, svc.Payments)
	changeHandlers := handlers.NewChangeHandlers(authenticator, broker, 0)
	adminHandlers := handlers.NewAdminHandlers(authenticator, handlers.AdminDeps{
		Orders:        svc.Orders,
		Catalog:       svc.Catalog,
		Offers:        svc.Offers,
		Users:         svc.Users,
		Notifications: svc.Notifications,
	})
	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(svc.System),
	)

	projectID := traceProjectID(cfg)
	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.TraceMiddleware(projectID),
			observability.RecoveryMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(projectID),
		),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithPublicRoutes(publicHandlers.Routes),
		handlers.WithMeRoutes(meHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithPaymentRoutes(paymentHandlers.Routes),
		handlers.WithChangeRoutes(changeHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(
		zap.String("addr", server.Addr),
		zap.String("store", cfg.Store.Driver),
		zap.String("changefeed", cfg.ChangeFeed.Driver),
		zap.String("auth", cfg.Auth.Mode),
	)
	go func() {
		serverLogger.Info("laundry api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// storeBundle groups the registry with the idempotency store and probe backed by the same driver.
type storeBundle struct {
	registry    repositories.Registry
	idempotency idempotency.Store
	ping        func(context.Context) error
}

func openStore(ctx context.Context, cfg config.Config) (storeBundle, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverFirestore:
		var opts []pfirestore.ProviderOption
		if file := strings.TrimSpace(cfg.Firebase.CredentialsFile); file != "" {
			opts = append(opts, pfirestore.WithClientOptions(option.WithCredentialsFile(file)))
		}
		provider := pfirestore.NewProvider(cfg.Firestore, opts...)
		client, err := provider.Client(ctx)
		if err != nil {
			return storeBundle{}, err
		}
		reg, err := firestoreRepo.NewRegistry(provider)
		if err != nil {
			return storeBundle{}, err
		}
		return storeBundle{registry: reg, idempotency: idempotency.NewFirestoreStore(client), ping: reg.Ping}, nil
	case config.StoreDriverPostgres:
		pg, err := keyvalue.OpenPostgres(ctx, keyvalue.PostgresOptions{DSN: cfg.Postgres.DSN, MaxOpenConns: cfg.Postgres.MaxOpenConns})
		if err != nil {
			return storeBundle{}, err
		}
		return keyedBundle(pg)
	case config.StoreDriverMemory:
		return keyedBundle(keyvalue.NewMemoryStore())
	default:
		return storeBundle{}, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}

func keyedBundle(store keyvalue.Store) (storeBundle, error) {
	reg, err := keyed.NewRegistry(store, time.Now)
	if err != nil {
		return storeBundle{}, err
	}
	return storeBundle{registry: reg, idempotency: idempotency.NewKeyedStore(store), ping: store.Ping}, nil
}

func newChangeBroker(cfg config.Config, logger func(context.Context, string, map[string]any)) (changefeed.Broker, error) {
	if cfg.ChangeFeed.Driver == config.ChangeFeedRedis {
		broker, err := changefeed.NewRedisBroker(changefeed.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.ChangeFeed.Channel,
		}, logger)
		if err != nil {
			return nil, err
		}
		return broker, nil
	}
	return changefeed.NewMemoryBroker(0), nil
}

// newAuthenticator verifies Firebase ID tokens or locally issued session tokens and creates
// the caller's profile on first sight.
func newAuthenticator(ctx context.Context, cfg config.Config, users services.UserService) (*auth.Authenticator, error) {
	var verifier auth.Verifier
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		localCfg := auth.LocalVerifierConfig{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			Audience: cfg.Auth.Audience,
		}
		if url := strings.TrimSpace(cfg.Auth.JWKSURL); url != "" {
			localCfg.JWKS = auth.NewJWKSCache(url, &http.Client{Timeout: 5 * time.Second}, jwksCacheTTL)
		}
		local, err := auth.NewLocalVerifier(localCfg)
		if err != nil {
			return nil, err
		}
		verifier = local
	default:
		firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		verifier = firebaseVerifier
	}

	hook := func(ctx context.Context, identity *auth.Identity) error {
		_, err := users.EnsureProfile(ctx, services.EnsureProfileCommand{
			UserID: identity.UID,
			Email:  identity.Email,
			Name:   identity.Name,
			Role:   identity.Role,
		})
		return err
	}
	return auth.NewAuthenticator(verifier, auth.WithIdentityHook(hook)), nil
}

func newSecretResolver(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Resolver, error) {
	lookup := func(key string) string {
		return strings.TrimSpace(env[key])
	}
	projectID := lookup("API_SECRETS_PROJECT_ID")
	if projectID == "" {
		projectID = lookup("API_FIREBASE_PROJECT_ID")
	}
	opts := []secrets.Option{secrets.WithLogger(logger.Named("secrets"))}
	if path := lookup("API_SECRETS_FALLBACK_FILE"); path != "" {
		opts = append(opts, secrets.WithFallbackFile(path))
	}
	if file := lookup("API_FIREBASE_CREDENTIALS_FILE"); file != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(file)))
	}
	return secrets.NewResolver(ctx, projectID, opts...)
}

func buildInfoFromEnv(env map[string]string, cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(env["API_BUILD_VERSION"])
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(env["API_BUILD_COMMIT_SHA"])
	if commit == "" {
		commit = "unknown"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: cfg.Environment,
		StartedAt:   started,
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
