package repository

import (
	"context"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"

	"gorm.io/gorm"
)

// AuditoriaRepository is the read side of the audit trail plus the
// out-of-transaction writer used by inventory and orders.
type AuditoriaRepository interface {
	CreateEvento(ctx context.Context, e *model.EventoAuditoria) error
	ListEventos(ctx context.Context, filter dto.AuditoriaFilter) ([]model.EventoAuditoria, int64, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) CreateEvento(ctx context.Context, e *model.EventoAuditoria) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditoriaRepo) ListEventos(ctx context.Context, filter dto.AuditoriaFilter) ([]model.EventoAuditoria, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.EventoAuditoria{})
	if filter.EntidadTipo != "" {
		q = q.Where("entidad_tipo = ?", filter.EntidadTipo)
	}
	if filter.EntidadID != "" {
		q = q.Where("entidad_id = ?", filter.EntidadID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var eventos []model.EventoAuditoria
	err := q.Order("creado_en DESC, id DESC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&eventos).Error
	return eventos, total, err
}
