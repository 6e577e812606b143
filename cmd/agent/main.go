package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avelis/probed/internal/config"
	"github.com/avelis/probed/internal/httpapi"
	"github.com/avelis/probed/internal/logging"
	"github.com/avelis/probed/internal/probe"
	"github.com/avelis/probed/internal/registry"
	"github.com/avelis/probed/internal/repo"
	"github.com/avelis/probed/internal/repo/memory"
	"github.com/avelis/probed/internal/repo/postgres"
	"github.com/avelis/probed/internal/scheduler"
)

func main() {
	configPath := flag.String("config", "probed.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal(err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	reg, err := registry.Load(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repo.ResultStore
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		store = pg
	} else {
		logger.Warn("no database_url configured, observations are kept in memory")
		store = memory.New()
	}

	sched := scheduler.New(logger, reg.Checks(), probe.NewProbers(), store)
	api := httpapi.NewServer(logger, reg, store)
	srv := &http.Server{Addr: cfg.Addr, Handler: api.Router(600, 120)}

	logger.Info("agent_start",
		zap.String("addr", cfg.Addr),
		zap.Int("checks", reg.Len()),
	)

	grp, groupCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		sched.Run(groupCtx)
		return nil
	})
	grp.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	grp.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("agent_stopped")
	return nil
}
