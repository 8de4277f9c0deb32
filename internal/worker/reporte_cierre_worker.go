package worker

// reporte_cierre_worker.go
// Mails the closing report PDF of a turno. Two guards keep it single-send
// when the job is duplicated or retried: a redislock on the turno while the
// report is built and a Redis marker once the mail went out.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

const (
	reporteLockTTL    = 2 * time.Minute
	reporteEnviadoTTL = 30 * 24 * time.Hour
)

// ReporteCierrePayload is the job body pushed by Dispatcher.EncolarReporteCierre.
type ReporteCierrePayload struct {
	TurnoID string `json:"turno_id"`
}

// Mailer is the subset of infra.Mailer the worker needs.
type Mailer interface {
	EnviarConAdjunto(to, subject, body, pdfPath string) error
}

type ReporteCierreWorker struct {
	rdb      *redis.Client
	locker   *redislock.Client
	reportes service.ReporteService
	mailer   Mailer
	destino  string
}

func NewReporteCierreWorker(rdb *redis.Client, reportes service.ReporteService, mailer Mailer, destino string) *ReporteCierreWorker {
	return &ReporteCierreWorker{
		rdb:      rdb,
		locker:   redislock.New(rdb),
		reportes: reportes,
		mailer:   mailer,
		destino:  destino,
	}
}

func lockKey(turnoID string) string    { return "lock:reporte_cierre:" + turnoID }
func enviadoKey(turnoID string) string { return "reporte_cierre:enviado:" + turnoID }

// Process renders and mails the report. It returns nil when another worker
// holds the turno or the report was already sent.
func (w *ReporteCierreWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteCierrePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("reporte_cierre: invalid payload: %w", err)
	}
	turnoID, err := uuid.Parse(payload.TurnoID)
	if err != nil {
		return fmt.Errorf("reporte_cierre: invalid turno_id %q", payload.TurnoID)
	}
	if w.destino == "" {
		log.Warn().Str("turno_id", payload.TurnoID).Msg("reporte_cierre: REPORTE_CIERRE_EMAIL empty, skipping")
		return nil
	}

	lock, err := w.locker.Obtain(ctx, lockKey(payload.TurnoID), reporteLockTTL, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Info().Str("turno_id", payload.TurnoID).Msg("reporte_cierre: another worker holds the turno")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reporte_cierre: obtain lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("turno_id", payload.TurnoID).Msg("reporte_cierre: release lock")
		}
	}()

	enviado, err := w.rdb.Exists(ctx, enviadoKey(payload.TurnoID)).Result()
	if err != nil {
		return fmt.Errorf("reporte_cierre: check marker: %w", err)
	}
	if enviado > 0 {
		log.Info().Str("turno_id", payload.TurnoID).Msg("reporte_cierre: already sent")
		return nil
	}

	path, turno, err := w.reportes.PDFCierre(ctx, turnoID)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Cierre de caja %s", turno.Codigo)
	body := fmt.Sprintf("Cierre del turno %s (%s, %s).\n", turno.Codigo, turno.FechaNegocio.Format("02/01/2006"), turno.Sesion)
	if turno.Diferencia != nil {
		body += fmt.Sprintf("Diferencia de efectivo: $%s\n", turno.Diferencia.StringFixed(2))
	}
	if err := w.mailer.EnviarConAdjunto(w.destino, subject, body, path); err != nil {
		return fmt.Errorf("reporte_cierre: send mail: %w", err)
	}

	if err := w.rdb.Set(ctx, enviadoKey(payload.TurnoID), time.Now().UTC().Format(time.RFC3339), reporteEnviadoTTL).Err(); err != nil {
		log.Warn().Err(err).Str("turno_id", payload.TurnoID).Msg("reporte_cierre: could not store sent marker")
	}
	log.Info().Str("turno", turno.Codigo).Str("to", w.destino).Msg("reporte_cierre: sent")
	return nil
}
