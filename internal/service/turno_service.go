package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

// EncoladorReportes schedules the closing report of a turno once the close
// has been committed.
type EncoladorReportes interface {
	EncolarReporteCierre(ctx context.Context, turnoID uuid.UUID) error
}

type TurnoService interface {
	Abrir(ctx context.Context, actor Actor, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.CierreTurnoResponse, error)
	EditarDenominacion(ctx context.Context, actor Actor, turnoID, denominacionID uuid.UUID, req dto.EditarDenominacionRequest) (*dto.TurnoResponse, error)
	Obtener(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error)
	Activo(ctx context.Context) (*dto.TurnoResponse, error)
	Listar(ctx context.Context, filter dto.TurnoFilter) (*dto.TurnoListResponse, error)
}

type turnoService struct {
	repo     repository.CajaRepository
	loc      *time.Location
	reportes EncoladorReportes
}

// NewTurnoService builds the shift manager. loc is the business timezone used
// to derive the business date; reportes may be nil.
func NewTurnoService(repo repository.CajaRepository, loc *time.Location, reportes EncoladorReportes) TurnoService {
	if loc == nil {
		loc = time.UTC
	}
	return &turnoService{repo: repo, loc: loc, reportes: reportes}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *turnoService) Abrir(ctx context.Context, actor Actor, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	if len(req.Denominaciones) == 0 {
		return nil, validationf("se requiere al menos una denominación")
	}
	if req.Sesion != model.SesionManana && req.Sesion != model.SesionTarde {
		return nil, validationf("sesión inválida %q", req.Sesion)
	}
	fecha, err := s.fechaNegocio(req.FechaNegocio)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	turno := &model.Turno{
		ID:                  uuid.New(),
		Estado:              model.TurnoAbierto,
		FechaNegocio:        fecha,
		Sesion:              req.Sesion,
		AbiertoPorID:        actor.ID,
		AbiertoEn:           now,
		ObservacionApertura: strings.TrimSpace(req.Observacion),
	}
	total := decimal.Zero
	for i, d := range req.Denominaciones {
		etiqueta := strings.TrimSpace(d.Etiqueta)
		if etiqueta == "" {
			return nil, validationf("denominación %d sin etiqueta", i+1)
		}
		if d.Monto.IsNegative() {
			return nil, validationf("el monto de %q no puede ser negativo", etiqueta)
		}
		monto := d.Monto.Round(2)
		total = total.Add(monto)
		turno.Denominaciones = append(turno.Denominaciones, model.DenominacionApertura{
			ID:       uuid.New(),
			TurnoID:  turno.ID,
			Etiqueta: etiqueta,
			Monto:    monto,
		})
	}
	turno.MontoInicial = total

	err = s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		if abierto, err := tx.FindTurnoAbierto(ctx); err == nil {
			return conflictf("ya existe un turno abierto (%s)", abierto.Codigo)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		n, err := tx.CountTurnos(ctx, fecha, req.Sesion)
		if err != nil {
			return err
		}
		turno.Codigo = codigoTurno(fecha, req.Sesion, n+1)

		if err := tx.CreateTurno(ctx, turno); err != nil {
			if isDuplicate(err) {
				// uq_turnos_un_abierto lost the race against a concurrent open.
				return conflictf("ya existe un turno abierto")
			}
			return err
		}

		_, err = registrarEvento(ctx, tx, actor, "turno.abrir", model.EntidadTurno, turno.ID.String(), map[string]any{
			"codigo":         turno.Codigo,
			"fecha_negocio":  fecha.Format(formatoFecha),
			"sesion":         turno.Sesion,
			"monto_inicial":  turno.MontoInicial,
			"denominaciones": len(turno.Denominaciones),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := toTurnoResponse(turno)
	return &resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Totals, closing arqueo and state change commit together; the turno row is
// held FOR UPDATE so no movement can land between the sum and the close.

func (s *turnoService) Cerrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.CerrarTurnoRequest) (*dto.CierreTurnoResponse, error) {
	if req.EfectivoContado.IsNegative() {
		return nil, validationf("el efectivo contado no puede ser negativo")
	}

	var resp *dto.CierreTurnoResponse
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		turno, err := tx.FindTurnoByID(ctx, turnoID, repository.LockExclusivo)
		if err != nil {
			return storeErr(err, "turno")
		}
		if !turno.Abierto() {
			return notFoundf("el turno %s no está abierto", turno.Codigo)
		}

		movs, err := tx.ListMovimientos(ctx, turnoID)
		if err != nil {
			return err
		}
		totales := CalcularTotales(movs)
		teorico := EfectivoTeorico(totales, turno.MontoInicial)
		contado := req.EfectivoContado.Round(2)
		diferencia := contado.Sub(teorico).Round(2)
		now := time.Now().UTC()

		arqueo := &model.Arqueo{
			ID:              uuid.New(),
			TurnoID:         turnoID,
			UsuarioID:       actor.ID,
			EfectivoContado: contado,
			EfectivoTeorico: teorico,
			Diferencia:      diferencia,
			Totales:         totales,
			Observacion:     strings.TrimSpace(req.Observacion),
			EsCierre:        true,
			CreadoEn:        now,
		}
		if err := tx.CreateArqueo(ctx, arqueo); err != nil {
			if isDuplicate(err) {
				return conflictf("el turno %s ya tiene un arqueo de cierre", turno.Codigo)
			}
			return err
		}

		cerradoPor := actor.ID
		turno.Estado = model.TurnoCerrado
		turno.CerradoPorID = &cerradoPor
		turno.CerradoEn = &now
		turno.ObservacionCierre = arqueo.Observacion
		turno.EfectivoContado = &contado
		turno.EfectivoTeorico = &teorico
		turno.Diferencia = &diferencia
		if err := tx.UpdateTurno(ctx, turno); err != nil {
			return err
		}

		pct, clasificacion := clasificarDiferencia(diferencia, teorico)
		if _, err := registrarEvento(ctx, tx, actor, "turno.cerrar", model.EntidadTurno, turnoID.String(), map[string]any{
			"codigo":           turno.Codigo,
			"efectivo_contado": contado,
			"efectivo_teorico": teorico,
			"diferencia":       diferencia,
			"clasificacion":    clasificacion,
			"totales":          totales,
			"arqueo_id":        arqueo.ID,
		}); err != nil {
			return err
		}

		resp = &dto.CierreTurnoResponse{
			Turno:           toTurnoResponse(turno),
			Totales:         totales,
			EfectivoTeorico: teorico,
			EfectivoContado: contado,
			Diferencia: dto.DiferenciaResponse{
				Monto:         diferencia,
				Porcentaje:    pct,
				Clasificacion: clasificacion,
			},
			ArqueoID: arqueo.ID.String(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.reportes != nil {
		if err := s.reportes.EncolarReporteCierre(ctx, turnoID); err != nil {
			log.Warn().Err(err).Str("turno_id", turnoID.String()).Msg("turno: no se pudo encolar el reporte de cierre")
		}
	}
	return resp, nil
}

// ── EditarDenominacion ────────────────────────────────────────────────────────

func (s *turnoService) EditarDenominacion(ctx context.Context, actor Actor, turnoID, denominacionID uuid.UUID, req dto.EditarDenominacionRequest) (*dto.TurnoResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, validationf("se requiere un motivo")
	}
	if req.Etiqueta == nil && req.Monto == nil {
		return nil, validationf("no hay cambios para aplicar")
	}
	if req.Etiqueta != nil && strings.TrimSpace(*req.Etiqueta) == "" {
		return nil, validationf("la etiqueta no puede quedar vacía")
	}
	if req.Monto != nil && req.Monto.IsNegative() {
		return nil, validationf("el monto no puede ser negativo")
	}

	var turno *model.Turno
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		var err error
		turno, err = tx.FindTurnoByID(ctx, turnoID, repository.LockExclusivo)
		if err != nil {
			return storeErr(err, "turno")
		}
		if !turno.Abierto() {
			return conflictf("el turno %s está cerrado", turno.Codigo)
		}
		if !actor.PuedeModificar(turno.AbiertoPorID) {
			return permissionf("solo quien abrió el turno o el dueño pueden editar la apertura")
		}

		d, err := tx.FindDenominacion(ctx, turnoID, denominacionID)
		if err != nil {
			return storeErr(err, "denominación")
		}
		snap, err := snapshotDenominacion(d)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.CreateLogEdicion(ctx, &model.LogEdicion{
			ID:          uuid.New(),
			EntidadTipo: model.EntidadDenominacion,
			EntidadID:   d.ID,
			TurnoID:     turnoID,
			Snapshot:    snap,
			Motivo:      motivo,
			UsuarioID:   actor.ID,
			CreadoEn:    now,
		}); err != nil {
			return err
		}

		if req.Etiqueta != nil {
			d.Etiqueta = strings.TrimSpace(*req.Etiqueta)
		}
		if req.Monto != nil {
			d.Monto = req.Monto.Round(2)
		}
		editor := actor.ID
		d.Editado = true
		d.EditadoPorID = &editor
		d.EditadoEn = &now
		d.MotivoEdicion = motivo
		if err := tx.UpdateDenominacion(ctx, d); err != nil {
			return err
		}

		anterior := turno.MontoInicial
		total := decimal.Zero
		for i := range turno.Denominaciones {
			if turno.Denominaciones[i].ID == d.ID {
				turno.Denominaciones[i] = *d
			}
			total = total.Add(turno.Denominaciones[i].Monto)
		}
		turno.MontoInicial = total
		if err := tx.UpdateTurno(ctx, turno); err != nil {
			return err
		}

		_, err = registrarEvento(ctx, tx, actor, "denominacion.editar", model.EntidadDenominacion, d.ID.String(), map[string]any{
			"turno_id":               turnoID,
			"motivo":                 motivo,
			"anterior":               snap,
			"monto_inicial_anterior": anterior,
			"monto_inicial":          total,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toTurnoResponse(turno)
	return &resp, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *turnoService) Obtener(ctx context.Context, turnoID uuid.UUID) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindTurnoByID(ctx, turnoID, repository.SinLock)
	if err != nil {
		return nil, storeErr(err, "turno")
	}
	resp := toTurnoResponse(turno)
	return &resp, nil
}

func (s *turnoService) Activo(ctx context.Context) (*dto.TurnoResponse, error) {
	turno, err := s.repo.FindTurnoAbierto(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("no hay turno abierto")
		}
		return nil, err
	}
	resp := toTurnoResponse(turno)
	return &resp, nil
}

func (s *turnoService) Listar(ctx context.Context, filter dto.TurnoFilter) (*dto.TurnoListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, 20, 100)
	turnos, total, err := s.repo.ListTurnos(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.TurnoResponse, len(turnos))
	for i := range turnos {
		data[i] = toTurnoResponse(&turnos[i])
	}
	return &dto.TurnoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// fechaNegocio parses YYYY-MM-DD or, when empty, takes today's date in the
// business timezone. The result is midnight UTC of that calendar day.
func (s *turnoService) fechaNegocio(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := time.Now().In(s.loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	f, err := time.Parse(formatoFecha, raw)
	if err != nil {
		return time.Time{}, validationf("fecha de negocio inválida %q", raw)
	}
	return f, nil
}

// codigoTurno builds "T20250301-M-1": business date, session initial and the
// ordinal of that session on that date.
func codigoTurno(fecha time.Time, sesion string, n int64) string {
	inicial := "M"
	if sesion == model.SesionTarde {
		inicial = "T"
	}
	return fmt.Sprintf("T%s-%s-%d", fecha.Format("20060102"), inicial, n)
}
