package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"foxgate/internal/catalog"
	"foxgate/internal/config"
	"foxgate/internal/foxpays"
	"foxgate/internal/gateway"
	internalhttp "foxgate/internal/http"
	"foxgate/internal/logger"
	"foxgate/internal/notify"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	zaplog, err := logger.New(cfg.Logger.Level)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zaplog.Sync()

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, zaplog)
	}

	svc := gateway.NewService(zaplog, notifier)
	caches := catalog.NewRegistry(time.Duration(cfg.Catalog.TTLMinutes)*time.Minute, zaplog)
	fallback := foxpays.Credentials{
		BaseURL:     cfg.Provider.BaseURL,
		AccessToken: cfg.Provider.AccessToken,
	}
	timeout := time.Duration(cfg.Provider.TimeoutSeconds) * time.Second

	h := internalhttp.NewHandler(svc, caches, fallback, timeout, zaplog)
	srv := internalhttp.NewServer(h, zaplog)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		zaplog.Info("api listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zaplog.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
