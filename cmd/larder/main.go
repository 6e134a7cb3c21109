package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/larder/internal/database"
	"github.com/dukerupert/larder/internal/email"
	"github.com/dukerupert/larder/internal/logging"
	"github.com/dukerupert/larder/internal/push"
	"github.com/dukerupert/larder/internal/recipegen"
	"github.com/dukerupert/larder/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("LARDER_LOG_LEVEL"), os.Getenv("LARDER_LOG_FORMAT"))

	port := os.Getenv("LARDER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("LARDER_DB_PATH")
	if dbPath == "" {
		dbPath = "larder.db"
	}

	baseURL := os.Getenv("LARDER_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("LARDER_POSTMARK_TOKEN"),
		os.Getenv("LARDER_FROM_EMAIL"),
		baseURL,
	)
	if !emailClient.Configured() {
		slog.Warn("postmark token not set, emails will not be delivered")
	}

	generator := recipegen.NewClient(recipegen.Config{
		APIKey:  os.Getenv("LARDER_AI_API_KEY"),
		BaseURL: os.Getenv("LARDER_AI_BASE_URL"),
		Model:   os.Getenv("LARDER_AI_MODEL"),
	})
	if !generator.Configured() {
		slog.Warn("AI API key not set, recipe generation disabled")
	}

	cfg := server.Config{
		SecureCookie: os.Getenv("LARDER_SECURE_COOKIES") == "true",
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("LARDER_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("LARDER_VAPID_PRIVATE_KEY"),
			Subscriber:      os.Getenv("LARDER_VAPID_SUBSCRIBER"),
		},
	}

	srv := server.New(db, emailClient, generator, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				if n, err := srv.LoginCodeStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired login codes", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired login codes", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("larder starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
