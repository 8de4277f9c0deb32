package repository

import (
	"context"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FaltanteRepository interface {
	Create(ctx context.Context, f *model.Faltante) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Faltante, error)
	ListActivos(ctx context.Context) ([]model.Faltante, error)
	Update(ctx context.Context, f *model.Faltante) error
	// MarcarTodosEliminados soft-deletes every pending faltante.
	MarcarTodosEliminados(ctx context.Context) (int64, error)
}

type faltanteRepo struct{ db *gorm.DB }

func NewFaltanteRepository(db *gorm.DB) FaltanteRepository { return &faltanteRepo{db: db} }

func (r *faltanteRepo) Create(ctx context.Context, f *model.Faltante) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *faltanteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Faltante, error) {
	var f model.Faltante
	if err := r.db.WithContext(ctx).Where("id = ? AND eliminado = false", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *faltanteRepo) ListActivos(ctx context.Context) ([]model.Faltante, error) {
	var out []model.Faltante
	err := r.db.WithContext(ctx).Where("eliminado = false").Order("fecha_creacion ASC").Find(&out).Error
	return out, err
}

func (r *faltanteRepo) Update(ctx context.Context, f *model.Faltante) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *faltanteRepo) MarcarTodosEliminados(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Faltante{}).
		Where("eliminado = false").
		Update("eliminado", true)
	return res.RowsAffected, res.Error
}
