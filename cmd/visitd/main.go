// Command visitd runs the property visit scheduling server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fvnks/konecte.cl-sub001/internal/api"
	"github.com/fvnks/konecte.cl-sub001/internal/config"
	"github.com/fvnks/konecte.cl-sub001/internal/db"
	"github.com/fvnks/konecte.cl-sub001/internal/db/migrations"
	"github.com/fvnks/konecte.cl-sub001/internal/dbpool"
	"github.com/fvnks/konecte.cl-sub001/internal/service"
	"github.com/fvnks/konecte.cl-sub001/internal/store"
	"github.com/fvnks/konecte.cl-sub001/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func run(log *logrus.Logger) error {
	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	visits := store.NewVisitStore(base)
	slots := store.NewSlotStore(base)
	directory := store.NewDirectoryStore(base)

	hub := ws.NewHub(log)

	worker := service.NewNotifyWorker(log, cfg.NotifyQueueSize, hub, service.NewLogNotifier(log))

	validate := validator.New()
	requests := service.NewRequestService(visits, directory, validate, worker, log, cfg.StrictSlotCheck)
	actions := service.NewActionService(visits, directory, validate, worker, log)
	queries := service.NewQueryService(visits, slots)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Pool:        pool,
		Hub:         hub,
		Requests:    requests,
		Actions:     actions,
		Queries:     queries,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "version": config.Version}).Info("server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		hub.Shutdown()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped")

	return nil
}
