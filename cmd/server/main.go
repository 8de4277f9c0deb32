package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/config"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/router"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	configurarLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
	log.Info().Msg("server detenido")
}

// configurarLogger: console output outside production, JSON in production.
func configurarLogger(cfg *config.Config) {
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migraciones: %w", err)
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ext := router.Infra{
		ISBN:   infra.NewISBNClient(cfg.ISBNLookupURL),
		Mailer: infra.NewMailer(cfg),
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())
	pool := worker.NewPool(rdb, worker.QueueReportes)
	if ext.Mailer.Configurado() && cfg.ReporteCierreEmail != "" {
		reportes := service.NewReporteService(repository.NewCajaRepository(db), cfg.Location(), cfg.PDFStoragePath)
		cierre := worker.NewReporteCierreWorker(rdb, reportes, ext.Mailer, cfg.ReporteCierreEmail)
		pool.Handle(worker.JobReporteCierre, cierre.Process)
	} else {
		log.Warn().Msg("SMTP_HOST o REPORTE_CIERRE_EMAIL vacíos: los reportes de cierre quedan en la DLQ")
	}
	pool.Start(workersCtx, cfg.WorkerPoolSize)
	defer func() {
		stopWorkers()
		pool.Wait()
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router.New(workersCtx, cfg, db, rdb, ext),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("escuchando")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("apagando: esperando requests en curso")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
