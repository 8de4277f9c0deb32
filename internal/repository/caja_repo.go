package repository

import (
	"context"
	"time"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CajaRepository is the ledger store: turnos, denominaciones, movimientos,
// arqueos, edit/delete logs and the audit events written alongside them.
type CajaRepository interface {
	// Transaction runs fn with a repository bound to one database transaction.
	// Any error returned by fn rolls the whole unit back.
	Transaction(ctx context.Context, fn func(tx CajaRepository) error) error

	CreateTurno(ctx context.Context, t *model.Turno) error
	FindTurnoByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.Turno, error)
	FindTurnoAbierto(ctx context.Context) (*model.Turno, error)
	CountTurnos(ctx context.Context, fecha time.Time, sesion string) (int64, error)
	UpdateTurno(ctx context.Context, t *model.Turno) error
	ListTurnos(ctx context.Context, filter dto.TurnoFilter) ([]model.Turno, int64, error)

	FindDenominacion(ctx context.Context, turnoID, id uuid.UUID) (*model.DenominacionApertura, error)
	UpdateDenominacion(ctx context.Context, d *model.DenominacionApertura) error

	CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	FindMovimientoByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.MovimientoCaja, error)
	UpdateMovimiento(ctx context.Context, m *model.MovimientoCaja) error
	// ListMovimientos returns every movement of the turno, soft-deleted ones
	// included, oldest first.
	ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error)

	CreateArqueo(ctx context.Context, a *model.Arqueo) error
	ExisteArqueoCierre(ctx context.Context, turnoID uuid.UUID) (bool, error)
	ListArqueos(ctx context.Context, turnoID uuid.UUID) ([]model.Arqueo, error)

	CreateLogEdicion(ctx context.Context, l *model.LogEdicion) error
	ListLogsEdicion(ctx context.Context, turnoID uuid.UUID) ([]model.LogEdicion, error)
	CreateLogEliminacion(ctx context.Context, l *model.LogEliminacion) error
	ListLogsEliminacion(ctx context.Context, turnoID uuid.UUID) ([]model.LogEliminacion, error)

	CreateEvento(ctx context.Context, e *model.EventoAuditoria) error
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Transaction(ctx context.Context, fn func(tx CajaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&cajaRepo{db: tx})
	})
}

// ── Turnos ────────────────────────────────────────────────────────────────────

func (r *cajaRepo) CreateTurno(ctx context.Context, t *model.Turno) error {
	return translateError(r.db.WithContext(ctx).Create(t).Error)
}

func (r *cajaRepo) FindTurnoByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.Turno, error) {
	var t model.Turno
	err := lock.apply(r.db.WithContext(ctx)).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	// Preload is issued separately: FOR UPDATE cannot be combined with the
	// association query.
	if err := r.db.WithContext(ctx).
		Where("turno_id = ?", id).
		Order("created_at ASC").
		Find(&t.Denominaciones).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *cajaRepo) FindTurnoAbierto(ctx context.Context) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).
		Preload("Denominaciones", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("estado = ?", model.TurnoAbierto).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *cajaRepo) CountTurnos(ctx context.Context, fecha time.Time, sesion string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Turno{}).
		Where("fecha_negocio = ? AND sesion = ?", fecha.Format("2006-01-02"), sesion).
		Count(&n).Error
	return n, err
}

func (r *cajaRepo) UpdateTurno(ctx context.Context, t *model.Turno) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error)
}

func (r *cajaRepo) ListTurnos(ctx context.Context, filter dto.TurnoFilter) ([]model.Turno, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Turno{})
	if filter.Fecha != "" {
		q = q.Where("fecha_negocio = ?", filter.Fecha)
	}
	if filter.Sesion != "" {
		q = q.Where("sesion = ?", filter.Sesion)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var turnos []model.Turno
	err := q.Order("abierto_en DESC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&turnos).Error
	return turnos, total, err
}

// ── Denominaciones ────────────────────────────────────────────────────────────

func (r *cajaRepo) FindDenominacion(ctx context.Context, turnoID, id uuid.UUID) (*model.DenominacionApertura, error) {
	var d model.DenominacionApertura
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND turno_id = ?", id, turnoID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *cajaRepo) UpdateDenominacion(ctx context.Context, d *model.DenominacionApertura) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func (r *cajaRepo) CreateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return translateError(r.db.WithContext(ctx).Create(m).Error)
}

func (r *cajaRepo) FindMovimientoByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	if err := lock.apply(r.db.WithContext(ctx)).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *cajaRepo) UpdateMovimiento(ctx context.Context, m *model.MovimientoCaja) error {
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, turnoID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("creado_en ASC, id ASC").
		Find(&movs).Error
	return movs, err
}

// ── Arqueos ───────────────────────────────────────────────────────────────────

func (r *cajaRepo) CreateArqueo(ctx context.Context, a *model.Arqueo) error {
	return translateError(r.db.WithContext(ctx).Create(a).Error)
}

func (r *cajaRepo) ExisteArqueoCierre(ctx context.Context, turnoID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Arqueo{}).
		Where("turno_id = ? AND es_cierre = true", turnoID).
		Count(&n).Error
	return n > 0, err
}

func (r *cajaRepo) ListArqueos(ctx context.Context, turnoID uuid.UUID) ([]model.Arqueo, error) {
	var arqueos []model.Arqueo
	err := r.db.WithContext(ctx).
		Where("turno_id = ?", turnoID).
		Order("creado_en DESC").
		Find(&arqueos).Error
	return arqueos, err
}

// ── Logs ──────────────────────────────────────────────────────────────────────

func (r *cajaRepo) CreateLogEdicion(ctx context.Context, l *model.LogEdicion) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *cajaRepo) ListLogsEdicion(ctx context.Context, turnoID uuid.UUID) ([]model.LogEdicion, error) {
	var logs []model.LogEdicion
	err := r.db.WithContext(ctx).Where("turno_id = ?", turnoID).Order("creado_en DESC").Find(&logs).Error
	return logs, err
}

func (r *cajaRepo) CreateLogEliminacion(ctx context.Context, l *model.LogEliminacion) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *cajaRepo) ListLogsEliminacion(ctx context.Context, turnoID uuid.UUID) ([]model.LogEliminacion, error) {
	var logs []model.LogEliminacion
	err := r.db.WithContext(ctx).Where("turno_id = ?", turnoID).Order("creado_en DESC").Find(&logs).Error
	return logs, err
}

func (r *cajaRepo) CreateEvento(ctx context.Context, e *model.EventoAuditoria) error {
	return r.db.WithContext(ctx).Create(e).Error
}
