package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alex-user-go/sheltersignal/internal/mockupstream"
)

func main() {
	port := getEnv("PORT", "9001")
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	opts := mockupstream.Options{
		MinLatency:  getDuration(logger, "MIN_LATENCY", 50*time.Millisecond),
		MaxLatency:  getDuration(logger, "MAX_LATENCY", 300*time.Millisecond),
		FailureRate: getFloat(logger, "FAILURE_RATE", 0.1),
	}

	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      mockupstream.New(opts, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("mock upstreams listening", "addr", addr,
			"failure_rate", opts.FailureRate, "min_latency", opts.MinLatency, "max_latency", opts.MaxLatency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(logger *slog.Logger, key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		logger.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func getFloat(logger *slog.Logger, key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("invalid number, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return f
}
