package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"

	httpadapter "github.com/WinLike-dev/Worker-Server/internal/adapters/http"
	"github.com/WinLike-dev/Worker-Server/internal/bootstrap"
	"github.com/WinLike-dev/Worker-Server/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(httpadapter.Options{
		Runner:            app.Runner,
		Notifier:          app.Notifier,
		WorkerName:        cfg.WorkerName,
		Async:             cfg.AsyncRebuild,
		RateLimitRPS:      cfg.RebuildRateLimitRPS,
		RateLimitBurst:    cfg.RebuildRateLimitBurst,
		MetricsHandler:    app.WorkerMetrics.Handler(),
		MetricsMiddleware: app.HTTPMetrics.Middleware,
		Logger:            app.Logger,
	})

	server := &http.Server{
		Handler:     router.Handler(),
		ReadTimeout: 30 * time.Second,
		// Synchronous rebuilds hold the response open for the whole run.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", ":"+cfg.HTTPPort)
	if err != nil {
		log.Fatalf("listen error: %v", err)
	}
	limited := netutil.LimitListener(listener, cfg.MaxConcurrentConns)

	go func() {
		app.Logger.Info("worker listening", "port", cfg.HTTPPort, "worker", cfg.WorkerName)
		if err := server.Serve(limited); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("shutdown error", "error", err)
	}
}
