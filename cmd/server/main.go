package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/internal/config"
	"github.com/newsdesk/internal/db"
	"github.com/newsdesk/internal/logger"
	"github.com/newsdesk/internal/router"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return
		}
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("starting newsdesk server")

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// 初始化数据库
	gdb, err := db.Open(db.Options{
		URL:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	if err := db.EnsureAdmin(gdb, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}

	r := router.SetupRouter(router.Options{
		DB:            gdb,
		SessionSecret: cfg.SessionSecret,
		UploadDir:     cfg.UploadDir,
		UploadURLPath: cfg.UploadURLPath,
		MaxUploadSize: cfg.MaxUploadSize,
		SiteName:      cfg.SiteName,
		SiteBaseURL:   cfg.SiteBaseURL,
		Logger:        log,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	log.Info().Msg("server exited gracefully")
}
