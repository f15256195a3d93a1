package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"schooladmin/backend/libs/metrics"
	libredis "schooladmin/backend/libs/redis"
	"schooladmin/backend/services/admin-gateway/internal/clients"
	"schooladmin/backend/services/admin-gateway/internal/config"
	httpserver "schooladmin/backend/services/admin-gateway/internal/http"
	"schooladmin/backend/services/admin-gateway/internal/http/handlers"
	"schooladmin/backend/services/admin-gateway/internal/http/middleware"
	redisstore "schooladmin/backend/services/admin-gateway/internal/redis"
	"schooladmin/backend/services/admin-gateway/internal/registry"
	"schooladmin/backend/services/admin-gateway/internal/service"
	"schooladmin/backend/services/admin-gateway/internal/ws"
)

// App wires admin gateway dependencies.
type App struct {
	server      *httpserver.Server
	redis       *goredis.Client
	unsubscribe func()
	logger      *zap.Logger
}

// New constructs application graph and loads the session list once.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	m := metrics.New("admin_gateway")

	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())
	backend := clients.NewBaseClient("school-backend", cfg.Backend.URL, httpClient, m)
	sessionsClient := clients.NewSessionsClient(backend)
	studentsClient := clients.NewStudentsClient(backend)
	feesClient := clients.NewFeesClient(backend)

	var (
		store       registry.SelectionStore
		redisClient *goredis.Client
	)
	if cfg.RedisEnabled() {
		client, err := libredis.NewRedisClient(ctx, libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// selection still works, it just is not remembered across restarts
			logger.Warn("redis unavailable, session selection will not persist", zap.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewSelectionStore(client, cfg.Redis.Key)
		}
	}

	reg := registry.New(sessionsClient, store, logger.Named("registry"))
	hub := ws.NewHub(logger.Named("ws"))
	unsubscribe := reg.Subscribe(hub.SessionSelected)
	reg.Load(ctx)

	feesService := service.NewFeesService(
		reg,
		feesClient,
		studentsClient,
		service.NewValidator(),
		logger.Named("fees"),
		service.Options{
			DefaultFeeAmount: cfg.Fees.DefaultAmount,
			Recorder:         service.NewPaymentMetrics(m.Registerer()),
		},
	)

	events := ws.NewServer(ctx, hub, reg, cfg.HTTP.AllowedOrigins, logger.Named("ws"))

	router := httpserver.NewRouter(httpserver.RouterDeps{
		SessionsHandlers: handlers.NewSessionsHandlers(reg, logger),
		FeesHandlers:     handlers.NewFeesHandlers(feesService, logger),
		HealthHandler:    handlers.NewHealthHandler(),
		Metrics:          m.Handler(),
		SessionEvents:    events.HandleWS,
	}, middleware.AuthMiddleware(cfg.JWT.Secret))

	server := httpserver.NewServer(
		cfg.HTTPAddress(),
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, m),
	)

	return &App{
		server:      server,
		redis:       redisClient,
		unsubscribe: unsubscribe,
		logger:      logger,
	}, nil
}

// Run starts serving HTTP traffic.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
