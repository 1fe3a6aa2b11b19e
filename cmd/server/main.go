package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcMiddleware "github.com/crmkit/authcore/internal/adapter/grpc/middleware"
	httpAdapter "github.com/crmkit/authcore/internal/adapter/http"
	"github.com/crmkit/authcore/internal/adapter/http/handler"
	postgresRepo "github.com/crmkit/authcore/internal/adapter/repository/postgres"
	redisRepo "github.com/crmkit/authcore/internal/adapter/repository/redis"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
	"github.com/crmkit/authcore/internal/infrastructure/config"
	"github.com/crmkit/authcore/internal/infrastructure/crypto"
	"github.com/crmkit/authcore/internal/infrastructure/eventpublisher"
	"github.com/crmkit/authcore/internal/infrastructure/logger"
	"github.com/crmkit/authcore/internal/infrastructure/metrics"
	"github.com/crmkit/authcore/internal/infrastructure/postgres"
	"github.com/crmkit/authcore/internal/infrastructure/redis"
	"github.com/crmkit/authcore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		// Dev-mode fallback. Tokens will not survive a restart.
		key, err := crypto.GenerateKey()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate fallback jwt secret")
		}
		jwtSecret = key
		appLogger.Warn().Msg("JWT_SECRET not set, using an ephemeral signing key")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	m := metrics.New()

	encryptor, err := crypto.NewEncryptor(cfg.EncryptionKey, appLogger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryptor")
	}
	secureCfg := config.NewSecureConfig(map[string]string{
		"database.url":  cfg.DatabaseURL,
		"redis.url":     cfg.RedisURL,
		"http.port":     cfg.HTTPPort,
		"jwt.secret":    jwtSecret,
		"log.level":     cfg.LogLevel,
		"log.format":    cfg.LogFormat,
		"token.access":  cfg.AccessTokenTTL.String(),
		"token.refresh": cfg.RefreshTokenTTL.String(),
	}, encryptor)

	tokenProvider := auth.NewTokenProvider(jwtSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	retrier := postgresRepo.NewRetrier(appLogger)
	userRepo := postgresRepo.NewUserRepository(pool, retrier)
	tenantRepo := postgresRepo.NewTenantRepository(pool, retrier)
	tokenStore := redisRepo.NewTokenStore(redisClient)

	authUC := usecase.NewAuthUseCase(userRepo, tenantRepo, tokenStore, tokenProvider)

	events := eventpublisher.NewEventPublisher(eventpublisher.Config{
		Publisher: eventpublisher.NewRedisPublisher(redisClient, ""),
		Logger:    appLogger,
	})
	eventsCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()
	go func() {
		if err := events.Start(eventsCtx); err != nil && err != context.Canceled {
			appLogger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:     handler.NewAuthHandler(authUC, m, appLogger, events),
		TenantHandler:   handler.NewTenantHandler(),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		ConfigHandler:   handler.NewConfigHandler(secureCfg),
		TokenProvider:   tokenProvider,
		TenantDirectory: tenantRepo,
		Metrics:         m,
		Logger:          appLogger,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateBurst:  cfg.LoginRateBurst,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	grpcServer := newGRPCServer(tokenProvider)
	go func() {
		port := resolveGRPCPort()
		lis, err := net.Listen("tcp", ":"+port)
		if err != nil {
			log.Fatal().Err(err).Msg("grpc listen failed")
		}
		appLogger.Info().Str("port", port).Msg("starting grpc server")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("grpc server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	grpcServer.GracefulStop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("stopped")
}

// newGRPCServer builds the internal gRPC endpoint. Every call except the
// standard health service must carry a service or access token.
func newGRPCServer(tokens *auth.TokenProvider) *grpc.Server {
	authInterceptor := grpcMiddleware.AuthInterceptor(tokens)
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, h grpc.UnaryHandler) (any, error) {
		if strings.HasPrefix(info.FullMethod, "/grpc.health.") {
			return h(ctx, req)
		}
		return authInterceptor(ctx, req, info, h)
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(interceptor))
	healthpb.RegisterHealthServer(srv, health.NewServer())
	return srv
}

// resolveGRPCPort resolves the gRPC listen port from the environment.
func resolveGRPCPort() string {
	if port := os.Getenv("GRPC_PORT"); port != "" {
		return port
	}
	return "50051"
}
