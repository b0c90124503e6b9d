package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/socialfeed/backend/internal/config"
	"github.com/socialfeed/backend/internal/database"
	"github.com/socialfeed/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	srv, err := server.New(cfg, db)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize server")
	}

	httpServer := srv.HTTPServer()

	go func() {
		log.WithField("port", cfg.Port).Info("server starting")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("forced shutdown")
	}

	log.Info("server stopped")
}
