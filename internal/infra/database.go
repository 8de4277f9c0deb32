package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const consultaLenta = 200 * time.Millisecond

// NewDatabase opens the GORM pool (pgx underneath). The schema belongs to the
// SQL migrations, so nothing is auto-migrated here. With debug set every
// statement is logged; otherwise only slow statements and errors are.
func NewDatabase(dsn string, debug bool) (*gorm.DB, error) {
	nivel := logger.Warn
	if debug {
		nivel = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger{nivel: nivel},
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// gormLogger sends GORM's output to zerolog so SQL lines share the request
// log format. Record-not-found is a normal outcome and is never logged.
type gormLogger struct{ nivel logger.LogLevel }

func (l gormLogger) LogMode(n logger.LogLevel) logger.Interface { return gormLogger{nivel: n} }

func (l gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.nivel >= logger.Info {
		log.Info().Str("component", "gorm").Msgf(msg, args...)
	}
}

func (l gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.nivel >= logger.Warn {
		log.Warn().Str("component", "gorm").Msgf(msg, args...)
	}
}

func (l gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.nivel >= logger.Error {
		log.Error().Str("component", "gorm").Msgf(msg, args...)
	}
}

func (l gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.nivel <= logger.Silent {
		return
	}
	dur := time.Since(begin)

	var ev *zerolog.Event
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.nivel >= logger.Error:
		ev = log.Error().Err(err)
	case dur > consultaLenta && l.nivel >= logger.Warn:
		ev = log.Warn().Bool("lenta", true)
	case l.nivel >= logger.Info:
		ev = log.Debug()
	default:
		return
	}
	sql, rows := fc()
	ev.Str("component", "gorm").Dur("dur", dur).Int64("rows", rows).Str("sql", sql).Msg("sql")
}
