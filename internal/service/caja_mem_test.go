package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

// ── In-memory CajaRepository ─────────────────────────────────────────────────
// Transactions run serialized on a copy of the state that is only published
// when fn succeeds, which mirrors rollback. The unique indexes of the schema
// (one open turno, one reverso per movement, one closing arqueo, unique
// codigo) are emulated and answer repository.ErrDuplicate.

type memCajaState struct {
	turnos  map[uuid.UUID]model.Turno
	denoms  map[uuid.UUID][]model.DenominacionApertura
	movs    []model.MovimientoCaja
	arqueos []model.Arqueo
	logsEd  []model.LogEdicion
	logsEl  []model.LogEliminacion
	eventos []model.EventoAuditoria
}

func (s *memCajaState) clone() *memCajaState {
	c := &memCajaState{
		turnos:  make(map[uuid.UUID]model.Turno, len(s.turnos)),
		denoms:  make(map[uuid.UUID][]model.DenominacionApertura, len(s.denoms)),
		movs:    append([]model.MovimientoCaja(nil), s.movs...),
		arqueos: append([]model.Arqueo(nil), s.arqueos...),
		logsEd:  append([]model.LogEdicion(nil), s.logsEd...),
		logsEl:  append([]model.LogEliminacion(nil), s.logsEl...),
		eventos: append([]model.EventoAuditoria(nil), s.eventos...),
	}
	for k, v := range s.turnos {
		c.turnos[k] = v
	}
	for k, v := range s.denoms {
		c.denoms[k] = append([]model.DenominacionApertura(nil), v...)
	}
	return c
}

type memCaja struct {
	mu   sync.Mutex
	st   *memCajaState
	inTx bool

	// failEvento makes CreateEvento fail, to exercise rollback.
	failEvento error
}

func newMemCaja() *memCaja {
	return &memCaja{st: &memCajaState{
		turnos: map[uuid.UUID]model.Turno{},
		denoms: map[uuid.UUID][]model.DenominacionApertura{},
	}}
}

func (r *memCaja) lock() func() {
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *memCaja) Transaction(ctx context.Context, fn func(tx repository.CajaRepository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memCaja{st: r.st.clone(), inTx: true, failEvento: r.failEvento}
	if err := fn(tx); err != nil {
		return err
	}
	r.st = tx.st
	return nil
}

func (r *memCaja) withTurno(t model.Turno) *model.Turno {
	t.Denominaciones = append([]model.DenominacionApertura(nil), r.st.denoms[t.ID]...)
	return &t
}

func (r *memCaja) CreateTurno(_ context.Context, t *model.Turno) error {
	defer r.lock()()
	for _, o := range r.st.turnos {
		if o.Codigo == t.Codigo || (o.Abierto() && t.Abierto()) {
			return repository.ErrDuplicate
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	now := time.Now()
	row := *t
	row.Denominaciones = nil
	row.CreatedAt, row.UpdatedAt = now, now
	r.st.turnos[t.ID] = row
	for i := range t.Denominaciones {
		d := t.Denominaciones[i]
		d.TurnoID = t.ID
		d.CreatedAt = now.Add(time.Duration(i))
		r.st.denoms[t.ID] = append(r.st.denoms[t.ID], d)
	}
	return nil
}

func (r *memCaja) FindTurnoByID(_ context.Context, id uuid.UUID, _ repository.Lock) (*model.Turno, error) {
	defer r.lock()()
	t, ok := r.st.turnos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withTurno(t), nil
}

func (r *memCaja) FindTurnoAbierto(_ context.Context) (*model.Turno, error) {
	defer r.lock()()
	for _, t := range r.st.turnos {
		if t.Abierto() {
			return r.withTurno(t), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCaja) CountTurnos(_ context.Context, fecha time.Time, sesion string) (int64, error) {
	defer r.lock()()
	var n int64
	for _, t := range r.st.turnos {
		if t.FechaNegocio.Equal(fecha) && t.Sesion == sesion {
			n++
		}
	}
	return n, nil
}

func (r *memCaja) UpdateTurno(_ context.Context, t *model.Turno) error {
	defer r.lock()()
	if _, ok := r.st.turnos[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	row := *t
	row.Denominaciones = nil
	row.UpdatedAt = time.Now()
	r.st.turnos[t.ID] = row
	return nil
}

func (r *memCaja) ListTurnos(_ context.Context, filter dto.TurnoFilter) ([]model.Turno, int64, error) {
	defer r.lock()()
	var out []model.Turno
	for _, t := range r.st.turnos {
		if filter.Fecha != "" && t.FechaNegocio.Format("2006-01-02") != filter.Fecha {
			continue
		}
		if filter.Sesion != "" && t.Sesion != filter.Sesion {
			continue
		}
		if filter.Estado != "" && t.Estado != filter.Estado {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AbiertoEn.After(out[j].AbiertoEn) })
	total := int64(len(out))
	from := (filter.Page - 1) * filter.Limit
	if from > len(out) {
		from = len(out)
	}
	to := from + filter.Limit
	if to > len(out) {
		to = len(out)
	}
	return out[from:to], total, nil
}

func (r *memCaja) FindDenominacion(_ context.Context, turnoID, id uuid.UUID) (*model.DenominacionApertura, error) {
	defer r.lock()()
	for _, d := range r.st.denoms[turnoID] {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCaja) UpdateDenominacion(_ context.Context, d *model.DenominacionApertura) error {
	defer r.lock()()
	ds := r.st.denoms[d.TurnoID]
	for i := range ds {
		if ds[i].ID == d.ID {
			ds[i] = *d
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCaja) CreateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	defer r.lock()()
	if m.ReversoDeID != nil {
		for _, o := range r.st.movs {
			if o.ReversoDeID != nil && *o.ReversoDeID == *m.ReversoDeID {
				return repository.ErrDuplicate
			}
		}
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.st.movs = append(r.st.movs, *m)
	return nil
}

func (r *memCaja) FindMovimientoByID(_ context.Context, id uuid.UUID, _ repository.Lock) (*model.MovimientoCaja, error) {
	defer r.lock()()
	for _, m := range r.st.movs {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memCaja) UpdateMovimiento(_ context.Context, m *model.MovimientoCaja) error {
	defer r.lock()()
	for i := range r.st.movs {
		if r.st.movs[i].ID == m.ID {
			r.st.movs[i] = *m
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *memCaja) ListMovimientos(_ context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	defer r.lock()()
	var out []model.MovimientoCaja
	for _, m := range r.st.movs {
		if m.TurnoID == turnoID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memCaja) CreateArqueo(_ context.Context, a *model.Arqueo) error {
	defer r.lock()()
	if a.EsCierre {
		for _, o := range r.st.arqueos {
			if o.TurnoID == a.TurnoID && o.EsCierre {
				return repository.ErrDuplicate
			}
		}
	}
	r.st.arqueos = append(r.st.arqueos, *a)
	return nil
}

func (r *memCaja) ExisteArqueoCierre(_ context.Context, turnoID uuid.UUID) (bool, error) {
	defer r.lock()()
	for _, a := range r.st.arqueos {
		if a.TurnoID == turnoID && a.EsCierre {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCaja) ListArqueos(_ context.Context, turnoID uuid.UUID) ([]model.Arqueo, error) {
	defer r.lock()()
	var out []model.Arqueo
	for i := len(r.st.arqueos) - 1; i >= 0; i-- {
		if r.st.arqueos[i].TurnoID == turnoID {
			out = append(out, r.st.arqueos[i])
		}
	}
	return out, nil
}

func (r *memCaja) CreateLogEdicion(_ context.Context, l *model.LogEdicion) error {
	defer r.lock()()
	r.st.logsEd = append(r.st.logsEd, *l)
	return nil
}

func (r *memCaja) ListLogsEdicion(_ context.Context, turnoID uuid.UUID) ([]model.LogEdicion, error) {
	defer r.lock()()
	var out []model.LogEdicion
	for _, l := range r.st.logsEd {
		if l.TurnoID == turnoID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memCaja) CreateLogEliminacion(_ context.Context, l *model.LogEliminacion) error {
	defer r.lock()()
	r.st.logsEl = append(r.st.logsEl, *l)
	return nil
}

func (r *memCaja) ListLogsEliminacion(_ context.Context, turnoID uuid.UUID) ([]model.LogEliminacion, error) {
	defer r.lock()()
	var out []model.LogEliminacion
	for _, l := range r.st.logsEl {
		if l.TurnoID == turnoID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memCaja) CreateEvento(_ context.Context, e *model.EventoAuditoria) error {
	defer r.lock()()
	if r.failEvento != nil {
		return r.failEvento
	}
	r.st.eventos = append(r.st.eventos, *e)
	return nil
}

// ── Inspection helpers ───────────────────────────────────────────────────────

func (r *memCaja) eventos(accion string) []model.EventoAuditoria {
	defer r.lock()()
	var out []model.EventoAuditoria
	for _, e := range r.st.eventos {
		if e.Accion == accion {
			out = append(out, e)
		}
	}
	return out
}

func (r *memCaja) turnoCount() int {
	defer r.lock()()
	return len(r.st.turnos)
}

func (r *memCaja) movCount() int {
	defer r.lock()()
	return len(r.st.movs)
}

var errFallaAuditoria = errors.New("auditoria caida")
