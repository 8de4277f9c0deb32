package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

// ResumenTurno is the full picture of a turno used by the totals endpoint and
// the closing reports.
type ResumenTurno struct {
	Turno           *model.Turno
	Movimientos     []model.MovimientoCaja
	Totales         model.TotalesPorMetodo
	EfectivoTeorico decimal.Decimal
}

type ArqueoService interface {
	Totales(ctx context.Context, turnoID uuid.UUID) (*dto.TotalesResponse, error)
	EfectivoTeorico(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error)
	Resumen(ctx context.Context, turnoID uuid.UUID) (*ResumenTurno, error)
	// Registrar stores a count against the current totals. It never changes
	// the turno; closing belongs to TurnoService.Cerrar, so a closing count
	// is refused while the turno is still open.
	Registrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.ArqueoRequest, esCierre bool) (*dto.ArqueoResponse, error)
	Listar(ctx context.Context, turnoID uuid.UUID) ([]dto.ArqueoResponse, error)
}

type arqueoService struct {
	repo repository.CajaRepository
}

func NewArqueoService(repo repository.CajaRepository) ArqueoService {
	return &arqueoService{repo: repo}
}

func (s *arqueoService) Resumen(ctx context.Context, turnoID uuid.UUID) (*ResumenTurno, error) {
	return resumir(ctx, s.repo, turnoID, repository.SinLock)
}

func resumir(ctx context.Context, repo repository.CajaRepository, turnoID uuid.UUID, lock repository.Lock) (*ResumenTurno, error) {
	turno, err := repo.FindTurnoByID(ctx, turnoID, lock)
	if err != nil {
		return nil, storeErr(err, "turno")
	}
	movs, err := repo.ListMovimientos(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	totales := CalcularTotales(movs)
	return &ResumenTurno{
		Turno:           turno,
		Movimientos:     movs,
		Totales:         totales,
		EfectivoTeorico: EfectivoTeorico(totales, turno.MontoInicial),
	}, nil
}

func (s *arqueoService) Totales(ctx context.Context, turnoID uuid.UUID) (*dto.TotalesResponse, error) {
	r, err := s.Resumen(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	resp := &dto.TotalesResponse{
		TurnoID:         turnoID.String(),
		Totales:         r.Totales,
		MontoInicial:    r.Turno.MontoInicial,
		EfectivoTeorico: r.EfectivoTeorico,
	}
	for i := range r.Movimientos {
		switch m := &r.Movimientos[i]; {
		case m.Eliminado:
			resp.Eliminados++
		case m.Anulado:
			resp.Anulados++
			resp.Movimientos++
		default:
			resp.Movimientos++
		}
	}
	return resp, nil
}

func (s *arqueoService) EfectivoTeorico(ctx context.Context, turnoID uuid.UUID) (decimal.Decimal, error) {
	r, err := s.Resumen(ctx, turnoID)
	if err != nil {
		return decimal.Zero, err
	}
	return r.EfectivoTeorico, nil
}

func (s *arqueoService) Registrar(ctx context.Context, actor Actor, turnoID uuid.UUID, req dto.ArqueoRequest, esCierre bool) (*dto.ArqueoResponse, error) {
	if req.EfectivoContado.IsNegative() {
		return nil, validationf("el efectivo contado no puede ser negativo")
	}

	var arqueo *model.Arqueo
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		r, err := resumir(ctx, tx, turnoID, repository.LockCompartido)
		if err != nil {
			return err
		}
		if esCierre {
			// The closing count of an open shift is written by Cerrar.
			if r.Turno.Abierto() {
				return conflictf("el arqueo de cierre del turno %s se registra al cerrarlo", r.Turno.Codigo)
			}
			existe, err := tx.ExisteArqueoCierre(ctx, turnoID)
			if err != nil {
				return err
			}
			if existe {
				return conflictf("el turno %s ya tiene un arqueo de cierre", r.Turno.Codigo)
			}
		}

		contado := req.EfectivoContado.Round(2)
		arqueo = &model.Arqueo{
			ID:              uuid.New(),
			TurnoID:         turnoID,
			UsuarioID:       actor.ID,
			EfectivoContado: contado,
			EfectivoTeorico: r.EfectivoTeorico,
			Diferencia:      contado.Sub(r.EfectivoTeorico).Round(2),
			Totales:         r.Totales,
			Observacion:     strings.TrimSpace(req.Observacion),
			EsCierre:        esCierre,
			CreadoEn:        time.Now().UTC(),
		}
		if err := tx.CreateArqueo(ctx, arqueo); err != nil {
			if isDuplicate(err) {
				return conflictf("el turno %s ya tiene un arqueo de cierre", r.Turno.Codigo)
			}
			return err
		}

		_, err = registrarEvento(ctx, tx, actor, "arqueo.registrar", model.EntidadArqueo, arqueo.ID.String(), map[string]any{
			"turno_id":         turnoID,
			"efectivo_contado": arqueo.EfectivoContado,
			"efectivo_teorico": arqueo.EfectivoTeorico,
			"diferencia":       arqueo.Diferencia,
			"es_cierre":        esCierre,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toArqueoResponse(arqueo)
	return &resp, nil
}

func (s *arqueoService) Listar(ctx context.Context, turnoID uuid.UUID) ([]dto.ArqueoResponse, error) {
	if _, err := s.repo.FindTurnoByID(ctx, turnoID, repository.SinLock); err != nil {
		return nil, storeErr(err, "turno")
	}
	arqueos, err := s.repo.ListArqueos(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ArqueoResponse, len(arqueos))
	for i := range arqueos {
		out[i] = toArqueoResponse(&arqueos[i])
	}
	return out, nil
}
