package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Chou1102/QuickChatWeb/internal/api"
	"github.com/Chou1102/QuickChatWeb/internal/auth"
	"github.com/Chou1102/QuickChatWeb/internal/config"
	"github.com/Chou1102/QuickChatWeb/internal/events"
	"github.com/Chou1102/QuickChatWeb/internal/logger"
	"github.com/Chou1102/QuickChatWeb/internal/presence"
	"github.com/Chou1102/QuickChatWeb/internal/relay"
	"github.com/Chou1102/QuickChatWeb/internal/repository"
	"github.com/Chou1102/QuickChatWeb/internal/service"
	"github.com/Chou1102/QuickChatWeb/internal/storage"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(logger.Config{Development: cfg.App.Env == "development"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	mc, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		zl.Fatalw("mongo connect", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	userRepo := repository.NewMongoUserRepository(db.Collection("users"))
	chatRepo := repository.NewMongoChatRepository(db.Collection("chats"))
	msgRepo := repository.NewMongoMessageRepository(db.Collection("messages"))

	var pres *presence.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pres = presence.NewStore(rdb, cfg.Redis.Prefix)
	}

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() { _ = producer.Close() }()

	var media storage.Store
	uploadDir := ""
	switch cfg.Storage.Backend {
	case "s3":
		media, err = storage.NewS3Store(ctx, cfg.Storage.S3Region, cfg.Storage.S3Bucket)
		if err != nil {
			zl.Fatalw("s3 init", "err", err)
		}
	default:
		disk, derr := storage.NewDiskStore(cfg.Storage.UploadDir)
		if derr != nil {
			zl.Fatalw("disk store init", "err", derr)
		}
		media = disk
		uploadDir = cfg.Storage.UploadDir
	}

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.TokenTTL)

	hub := relay.NewHub()
	var relayPresence relay.Presence
	if pres != nil {
		relayPresence = pres
	}
	relaySrv := relay.NewServer(hub, relayPresence, zl, relay.Options{
		SendBuffer:      cfg.Relay.SendBuffer,
		EventsPerSec:    cfg.Relay.EventsPerSec,
		MaxMessageBytes: cfg.Relay.MaxMessageBytes,
		PingInterval:    cfg.PingInterval,
	})

	app := api.NewServer(api.Deps{
		Auth:      service.NewAuthService(userRepo, tokens),
		Chats:     service.NewChatService(chatRepo, userRepo, msgRepo, zl),
		Messages:  service.NewMessageService(msgRepo, chatRepo, userRepo, media, producer, zl),
		Tokens:    tokens,
		Relay:     relaySrv,
		Presence:  pres,
		Log:       zl,
		UploadDir: uploadDir,
	})

	errs := make(chan error, 1)
	go func() {
		zl.Infow("server starting", "port", cfg.App.Port)
		errs <- app.Listen(":" + cfg.App.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		zl.Fatalw("server error", "err", err)
	case sig := <-quit:
		zl.Infow("signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zl.Warnw("shutdown", "err", err)
	}
	zl.Infow("server stopped")
}
