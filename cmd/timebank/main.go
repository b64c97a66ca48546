package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timebank/internal/app"
	"timebank/internal/config"
	"timebank/internal/pkg/auth"
	"timebank/internal/pkg/logger"
	"timebank/internal/service"
	"timebank/internal/storage"
	"timebank/internal/sweep"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		log.Fatal("Failed to parse config:", err)
	}

	var l *logger.Logger
	if l, err = logger.CreateLogger(cfg.LogLevel); err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	auth.SetSecret(cfg.JWTSecret)

	storage, err := storage.NewPostgreSQL(cfg.DatabaseURI, l)
	if err != nil {
		log.Fatal(err)
	}
	defer storage.Close()

	app := app.NewApp(storage, l)
	service := service.NewService(app, cfg.ServerRunAddress, l)

	sweeper := sweep.NewSweeper(app, l)
	if err = sweeper.Start(cfg.SweepSchedule); err != nil {
		log.Fatal("Failed to start expiry sweep:", err)
	}
	defer sweeper.Stop()

	const readHeaderTimeout = 5 * time.Second
	server := &http.Server{Addr: cfg.ServerRunAddress, Handler: service.NewRouter(), ReadHeaderTimeout: readHeaderTimeout}

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		const shutdownTimeout = 30 * time.Second
		shutdownCtx, cancel := context.WithTimeout(serverCtx, shutdownTimeout)
		defer cancel()

		go func() {
			<-shutdownCtx.Done()
			if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	l.Sugar().Infof("Starting server at %s", cfg.ServerRunAddress)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		defer storage.Close()
		log.Fatal(err)
	}

	<-serverCtx.Done()
}
