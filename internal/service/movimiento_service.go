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

type MovimientoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error)
	Editar(ctx context.Context, actor Actor, id uuid.UUID, req dto.EditarMovimientoRequest) (*dto.MovimientoResponse, error)
	Anular(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.AnulacionResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.MovimientoResponse, error)
	Listar(ctx context.Context, turnoID uuid.UUID, incluirEliminados bool) ([]dto.MovimientoResponse, error)
	ListarEditados(ctx context.Context, turnoID uuid.UUID) ([]dto.LogResponse, error)
	ListarEliminados(ctx context.Context, turnoID uuid.UUID) ([]dto.LogResponse, error)
}

type movimientoService struct {
	repo repository.CajaRepository
}

func NewMovimientoService(repo repository.CajaRepository) MovimientoService {
	return &movimientoService{repo: repo}
}

// ── Crear ─────────────────────────────────────────────────────────────────────

func (s *movimientoService) Crear(ctx context.Context, actor Actor, req dto.CrearMovimientoRequest) (*dto.MovimientoResponse, error) {
	turnoID, err := uuid.Parse(req.TurnoID)
	if err != nil {
		return nil, validationf("turno_id inválido")
	}
	switch req.Tipo {
	case model.MovimientoVenta, model.MovimientoSalida, model.MovimientoAjuste:
	case model.MovimientoReverso:
		return nil, validationf("los reversos se generan al anular un movimiento")
	default:
		return nil, validationf("tipo de movimiento inválido %q", req.Tipo)
	}
	if !metodoValido(req.MetodoPago) {
		return nil, validationf("método de pago inválido %q", req.MetodoPago)
	}
	if req.Monto.IsNegative() {
		return nil, validationf("el monto no puede ser negativo")
	}
	monto := req.Monto.Round(2)

	pagaCon, vuelto, err := calcularVuelto(req.MetodoPago, monto, req.PagaCon, req.Vuelto)
	if err != nil {
		return nil, err
	}

	mov := &model.MovimientoCaja{
		ID:          uuid.New(),
		TurnoID:     turnoID,
		Tipo:        req.Tipo,
		MetodoPago:  req.MetodoPago,
		Monto:       monto,
		Descripcion: strings.TrimSpace(req.Descripcion),
		PagaCon:     pagaCon,
		Vuelto:      vuelto,
		CreadoPorID: actor.ID,
		CreadoEn:    time.Now().UTC(),
	}

	err = s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		turno, err := tx.FindTurnoByID(ctx, turnoID, repository.LockCompartido)
		if err != nil {
			return storeErr(err, "turno")
		}
		if !turno.Abierto() {
			return conflictf("el turno %s está cerrado", turno.Codigo)
		}
		if err := tx.CreateMovimiento(ctx, mov); err != nil {
			return err
		}
		_, err = registrarEvento(ctx, tx, actor, "movimiento.crear", model.EntidadMovimiento, mov.ID.String(), map[string]any{
			"turno_id":    turnoID,
			"tipo":        mov.Tipo,
			"metodo_pago": mov.MetodoPago,
			"monto":       mov.Monto,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toMovimientoResponse(mov)
	return &resp, nil
}

// calcularVuelto validates tendered/change. Both only make sense for cash; a
// tendered amount without change derives it.
func calcularVuelto(metodo string, monto decimal.Decimal, pagaCon, vuelto *decimal.Decimal) (*decimal.Decimal, *decimal.Decimal, error) {
	if pagaCon == nil && vuelto == nil {
		return nil, nil, nil
	}
	if metodo != model.MetodoEfectivo {
		return nil, nil, validationf("paga_con y vuelto solo aplican a pagos en efectivo")
	}
	if pagaCon != nil && pagaCon.IsNegative() {
		return nil, nil, validationf("paga_con no puede ser negativo")
	}
	if vuelto != nil && vuelto.IsNegative() {
		return nil, nil, validationf("el vuelto no puede ser negativo")
	}

	var pc, v *decimal.Decimal
	if pagaCon != nil {
		r := pagaCon.Round(2)
		pc = &r
	}
	if vuelto != nil {
		r := vuelto.Round(2)
		v = &r
	} else {
		r := pc.Sub(monto).Round(2)
		if r.IsNegative() {
			return nil, nil, validationf("paga_con (%s) es menor que el monto (%s)", pc.StringFixed(2), monto.StringFixed(2))
		}
		v = &r
	}
	return pc, v, nil
}

func metodoValido(metodo string) bool {
	for _, m := range model.MetodosPago {
		if m == metodo {
			return true
		}
	}
	return false
}

// ── Editar ────────────────────────────────────────────────────────────────────

func (s *movimientoService) Editar(ctx context.Context, actor Actor, id uuid.UUID, req dto.EditarMovimientoRequest) (*dto.MovimientoResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, validationf("se requiere un motivo")
	}
	if req.Descripcion == nil && req.Monto == nil && req.MetodoPago == nil {
		return nil, validationf("no hay cambios para aplicar")
	}
	if req.Monto != nil && req.Monto.IsNegative() {
		return nil, validationf("el monto no puede ser negativo")
	}
	if req.MetodoPago != nil && !metodoValido(*req.MetodoPago) {
		return nil, validationf("método de pago inválido %q", *req.MetodoPago)
	}

	var mov *model.MovimientoCaja
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		var err error
		mov, err = s.cargarMutable(ctx, tx, actor, id, "editar")
		if err != nil {
			return err
		}
		if (req.Monto != nil || req.MetodoPago != nil) && (mov.Anulado || mov.EsReverso()) {
			return conflictf("no se puede cambiar monto ni método de un movimiento anulado o de un reverso")
		}
		snap, err := snapshotMovimiento(mov)
		if err != nil {
			return err
		}

		metodo := mov.MetodoPago
		if req.MetodoPago != nil {
			metodo = *req.MetodoPago
		}
		monto := mov.Monto
		if req.Monto != nil {
			monto = req.Monto.Round(2)
		}
		switch {
		case metodo != model.MetodoEfectivo:
			// paga_con/vuelto lose meaning once the payment is not cash.
			mov.PagaCon, mov.Vuelto = nil, nil
		case mov.PagaCon != nil && (req.Monto != nil || req.MetodoPago != nil):
			pc, v, err := calcularVuelto(metodo, monto, mov.PagaCon, nil)
			if err != nil {
				return err
			}
			mov.PagaCon, mov.Vuelto = pc, v
		}
		now := time.Now().UTC()
		if err := tx.CreateLogEdicion(ctx, &model.LogEdicion{
			ID:          uuid.New(),
			EntidadTipo: model.EntidadMovimiento,
			EntidadID:   mov.ID,
			TurnoID:     mov.TurnoID,
			Snapshot:    snap,
			Motivo:      motivo,
			UsuarioID:   actor.ID,
			CreadoEn:    now,
		}); err != nil {
			return err
		}

		if req.Descripcion != nil {
			mov.Descripcion = strings.TrimSpace(*req.Descripcion)
		}
		mov.Monto = monto
		mov.MetodoPago = metodo
		editor := actor.ID
		mov.Editado = true
		mov.EditadoPorID = &editor
		mov.EditadoEn = &now
		mov.MotivoEdicion = motivo
		if err := tx.UpdateMovimiento(ctx, mov); err != nil {
			return err
		}

		_, err = registrarEvento(ctx, tx, actor, "movimiento.editar", model.EntidadMovimiento, mov.ID.String(), map[string]any{
			"turno_id": mov.TurnoID,
			"motivo":   motivo,
			"anterior": snap,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toMovimientoResponse(mov)
	return &resp, nil
}

// ── Anular ────────────────────────────────────────────────────────────────────
// The original keeps its amount, method and description; only void metadata
// is stamped. The offsetting reverso is a new row pointing back at it.

func (s *movimientoService) Anular(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.AnulacionResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, validationf("se requiere un motivo")
	}

	var original, reverso *model.MovimientoCaja
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		var err error
		original, err = s.cargarMutable(ctx, tx, actor, id, "anular")
		if err != nil {
			return err
		}
		if original.EsReverso() {
			return conflictf("un reverso no se puede anular")
		}
		if original.Anulado {
			return conflictf("el movimiento ya fue anulado")
		}

		now := time.Now().UTC()
		anulador := actor.ID
		original.Anulado = true
		original.AnuladoPorID = &anulador
		original.AnuladoEn = &now
		original.MotivoAnulacion = motivo
		if err := tx.UpdateMovimiento(ctx, original); err != nil {
			return err
		}

		origID := original.ID
		reverso = &model.MovimientoCaja{
			ID:          uuid.New(),
			TurnoID:     original.TurnoID,
			Tipo:        model.MovimientoReverso,
			MetodoPago:  original.MetodoPago,
			Monto:       original.Monto,
			Descripcion: "Anulación: " + motivo,
			CreadoPorID: actor.ID,
			CreadoEn:    now,
			ReversoDeID: &origID,
		}
		if err := tx.CreateMovimiento(ctx, reverso); err != nil {
			if isDuplicate(err) {
				return conflictf("el movimiento ya fue anulado")
			}
			return err
		}

		_, err = registrarEvento(ctx, tx, actor, "movimiento.anular", model.EntidadMovimiento, original.ID.String(), map[string]any{
			"turno_id":    original.TurnoID,
			"reverso_id":  reverso.ID,
			"monto":       original.Monto,
			"metodo_pago": original.MetodoPago,
			"motivo":      motivo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.AnulacionResponse{
		Original: toMovimientoResponse(original),
		Reverso:  toMovimientoResponse(reverso),
	}, nil
}

// ── Eliminar ──────────────────────────────────────────────────────────────────

func (s *movimientoService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID, motivo string) (*dto.MovimientoResponse, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, validationf("se requiere un motivo")
	}

	var mov *model.MovimientoCaja
	err := s.repo.Transaction(ctx, func(tx repository.CajaRepository) error {
		m, err := tx.FindMovimientoByID(ctx, id, repository.LockExclusivo)
		if err != nil {
			return storeErr(err, "movimiento")
		}
		if m.Eliminado {
			return conflictf("el movimiento ya fue eliminado")
		}
		if err := s.verificarMutable(ctx, tx, actor, m, "eliminar"); err != nil {
			return err
		}
		if m.Anulado || m.EsReverso() {
			return conflictf("un movimiento anulado o un reverso no se puede eliminar")
		}

		snap, err := snapshotMovimiento(m)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := tx.CreateLogEliminacion(ctx, &model.LogEliminacion{
			ID:          uuid.New(),
			EntidadTipo: model.EntidadMovimiento,
			EntidadID:   m.ID,
			TurnoID:     m.TurnoID,
			Snapshot:    snap,
			Motivo:      motivo,
			UsuarioID:   actor.ID,
			CreadoEn:    now,
		}); err != nil {
			return err
		}

		eliminador := actor.ID
		m.Eliminado = true
		m.EliminadoPorID = &eliminador
		m.EliminadoEn = &now
		m.MotivoEliminacion = motivo
		if err := tx.UpdateMovimiento(ctx, m); err != nil {
			return err
		}
		mov = m

		_, err = registrarEvento(ctx, tx, actor, "movimiento.eliminar", model.EntidadMovimiento, m.ID.String(), map[string]any{
			"turno_id": m.TurnoID,
			"motivo":   motivo,
			"anterior": snap,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := toMovimientoResponse(mov)
	return &resp, nil
}

// cargarMutable locks a live movement and checks that the actor may change it.
func (s *movimientoService) cargarMutable(ctx context.Context, tx repository.CajaRepository, actor Actor, id uuid.UUID, accion string) (*model.MovimientoCaja, error) {
	m, err := tx.FindMovimientoByID(ctx, id, repository.LockExclusivo)
	if err != nil {
		return nil, storeErr(err, "movimiento")
	}
	if m.Eliminado {
		return nil, notFoundf("movimiento no encontrado")
	}
	if err := s.verificarMutable(ctx, tx, actor, m, accion); err != nil {
		return nil, err
	}
	return m, nil
}

// verificarMutable applies the creator-or-override rule and requires the
// turno to still be open.
func (s *movimientoService) verificarMutable(ctx context.Context, tx repository.CajaRepository, actor Actor, m *model.MovimientoCaja, accion string) error {
	if !actor.PuedeModificar(m.CreadoPorID) {
		return permissionf("solo quien registró el movimiento o el dueño pueden %s", accion)
	}
	turno, err := tx.FindTurnoByID(ctx, m.TurnoID, repository.LockCompartido)
	if err != nil {
		return storeErr(err, "turno")
	}
	if !turno.Abierto() {
		return conflictf("el turno %s está cerrado", turno.Codigo)
	}
	return nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *movimientoService) Listar(ctx context.Context, turnoID uuid.UUID, incluirEliminados bool) ([]dto.MovimientoResponse, error) {
	if _, err := s.repo.FindTurnoByID(ctx, turnoID, repository.SinLock); err != nil {
		return nil, storeErr(err, "turno")
	}
	movs, err := s.repo.ListMovimientos(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		if movs[i].Eliminado && !incluirEliminados {
			continue
		}
		out = append(out, toMovimientoResponse(&movs[i]))
	}
	return out, nil
}

func (s *movimientoService) ListarEditados(ctx context.Context, turnoID uuid.UUID) ([]dto.LogResponse, error) {
	logs, err := s.repo.ListLogsEdicion(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LogResponse, len(logs))
	for i, l := range logs {
		out[i] = toLogResponse(l.ID, l.EntidadTipo, l.EntidadID, l.TurnoID, l.Snapshot, l.Motivo, l.UsuarioID, l.CreadoEn)
	}
	return out, nil
}

func (s *movimientoService) ListarEliminados(ctx context.Context, turnoID uuid.UUID) ([]dto.LogResponse, error) {
	logs, err := s.repo.ListLogsEliminacion(ctx, turnoID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LogResponse, len(logs))
	for i, l := range logs {
		out[i] = toLogResponse(l.ID, l.EntidadTipo, l.EntidadID, l.TurnoID, l.Snapshot, l.Motivo, l.UsuarioID, l.CreadoEn)
	}
	return out, nil
}
