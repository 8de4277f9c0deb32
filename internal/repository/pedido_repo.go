package repository

import (
	"context"
	"fmt"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	Create(ctx context.Context, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, error)
	Update(ctx context.Context, p *model.Pedido) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) Create(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) List(ctx context.Context, filter dto.PedidoFilter) ([]model.Pedido, error) {
	q := r.db.WithContext(ctx).Model(&model.Pedido{})
	if !filter.IncluirOcultos {
		q = q.Where("oculto = false")
	}
	switch filter.Estado {
	case "":
	case "pendiente":
		q = q.Where("estado = ''")
	default:
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Q != "" {
		like := fmt.Sprintf("%%%s%%", escapeLike(filter.Q))
		q = q.Where("cliente_nombre ILIKE ? OR titulo ILIKE ? OR autor ILIKE ?", like, like, like)
	}
	var out []model.Pedido
	err := q.Order("fecha DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *pedidoRepo) Update(ctx context.Context, p *model.Pedido) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pedidoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Pedido{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
