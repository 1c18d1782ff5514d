package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/ekdbss/onairmate-sync/internal/auth"
	"github.com/ekdbss/onairmate-sync/internal/config"
	"github.com/ekdbss/onairmate-sync/internal/domain"
	"github.com/ekdbss/onairmate-sync/internal/handler"
	"github.com/ekdbss/onairmate-sync/internal/hub"
	internalpubsub "github.com/ekdbss/onairmate-sync/internal/pubsub"
	"github.com/ekdbss/onairmate-sync/internal/repository"
	"github.com/ekdbss/onairmate-sync/internal/service"
	"github.com/ekdbss/onairmate-sync/internal/store"
	"github.com/ekdbss/onairmate-sync/internal/stream"
	"github.com/ekdbss/onairmate-sync/pkg/database"
	"github.com/ekdbss/onairmate-sync/pkg/jwt"
	pkglog "github.com/ekdbss/onairmate-sync/pkg/log"
	"github.com/ekdbss/onairmate-sync/pkg/pubsub"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, ServiceName: cfg.Log.ServiceName})
	logger := pkglog.L()

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting sync server")

	// Relational store: room records and message history
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.RoomModel{}, &domain.RoomMessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis presence store
	presenceStore, err := store.NewRedisStore(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create redis presence store")
	}
	defer presenceStore.Close()

	// Second Redis client for pub/sub (a subscribed connection cannot run
	// other commands)
	bus, err := pubsub.NewRedisPubSub(cfg.PubSub)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create redis pub/sub")
	}
	defer bus.Close()

	// Access-token verifier. With a configured public key, tokens issued by
	// the login service validate here; without one, a per-process key pair is
	// generated for self-contained deployments.
	var jwtManager *jwt.Manager
	if cfg.Auth.PublicKeyPath != "" {
		pemBytes, err := os.ReadFile(cfg.Auth.PublicKeyPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Auth.PublicKeyPath).Msg("failed to read auth public key")
		}
		jwtManager, err = jwt.NewValidatorFromPEM(pemBytes, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create jwt validator")
		}
	} else {
		jwtManager, err = jwt.NewManager(cfg.Auth.AccessDuration, cfg.Auth.Issuer)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create jwt manager")
		}
	}
	verifier := auth.NewJWTVerifier(jwtManager)

	// Hub
	h := hub.NewHub(cfg.WebSocket)
	go h.Run()

	// Message export stream
	var producer stream.MessageProducer = stream.NopProducer{}
	if cfg.Kafka.Enabled {
		kp, err := stream.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka producer, message export disabled")
		} else {
			producer = kp
			defer kp.Close()
			logger.Info().Str("topic", cfg.Kafka.Topic).Msg("kafka producer started")
		}
	}

	// Coordinator
	broadcaster := internalpubsub.NewRedisBroadcaster(bus)
	roomRepo := repository.NewGormRoomRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)
	svc := service.NewSyncService(h, presenceStore, roomRepo, messageRepo, broadcaster, producer)

	// Cross-instance event subscriber
	ctx, cancel := context.WithCancel(context.Background())
	subscriber := internalpubsub.NewSubscriber(bus, h)
	go subscriber.Run(ctx)

	// Handlers
	wsHandler := handler.NewWSHandler(h, svc, verifier, cfg.WebSocket)
	httpHandler := handler.NewHTTPHandler(svc)

	// Routes
	router := mux.NewRouter()
	router.HandleFunc("/ws", wsHandler.HandleWebSocket)
	httpHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      pkglog.HTTPMiddleware(logger)(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("sync server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down sync server")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		cancel()            // stop the pub/sub subscriber
		<-subscriber.Done() // wait for its goroutine to exit

		h.Stop() // close all WS connections, stop the hub loop

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg("sync server stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}
