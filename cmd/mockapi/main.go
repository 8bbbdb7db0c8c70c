// mockapi is a self-contained Ferretex backend for local development and
// demos. It serves the same REST surface the real backend does, including its
// legacy field spellings, from seeded in-memory data.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/ferretex/storefront-client/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "mockapi"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	addr := ":" + port

	server := NewServer(logg)
	ctx := logg.WithField(context.Background(), "addr", addr)
	logg.Info(ctx, "starting mock backend")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "mock backend stopped unexpectedly", err)
		os.Exit(1)
	}
}
