package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autoparts-mx/commerce-engine/internal/config"
	"github.com/autoparts-mx/commerce-engine/internal/httpx"
	kafkax "github.com/autoparts-mx/commerce-engine/internal/kafka"
	"github.com/autoparts-mx/commerce-engine/internal/postgres"
	"github.com/autoparts-mx/commerce-engine/internal/redisx"
	"github.com/autoparts-mx/commerce-engine/internal/workflow"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prod := kafkax.NewProducer(cfg.KafkaBrokers, 1024, logger)
	prod.Start(ctx)

	store := &postgres.Store{DB: db}
	engine := workflow.New(store, prod, logger, cfg.ServiceName)

	router := httpx.NewRouter()
	h := &httpx.AdminHandler{Engine: engine, Store: store, Redis: rdb, Log: logger}
	h.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // stop intake -> flush & close writer
	prod.WaitClosed()
}
