package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	// FindByUsername matches case-insensitively and skips inactive accounts.
	FindByUsername(ctx context.Context, username string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	List(ctx context.Context) ([]model.Usuario, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ActualizarPassword(ctx context.Context, id uuid.UUID, hash string) error
	RegistrarLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return translateError(r.db.WithContext(ctx).Create(u).Error)
}

func (r *usuarioRepo) FindByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?) AND activo", username).
		Take(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).Take(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns active accounts, owners first.
func (r *usuarioRepo) List(ctx context.Context) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).
		Where("activo").
		Order("CASE WHEN rol = 'dueno' THEN 0 ELSE 1 END, LOWER(username)").
		Find(&users).Error
	return users, err
}

func (r *usuarioRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.actualizar(ctx, id, map[string]any{"activo": false})
}

func (r *usuarioRepo) ActualizarPassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.actualizar(ctx, id, map[string]any{"password_hash": hash})
}

func (r *usuarioRepo) RegistrarLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.actualizar(ctx, id, map[string]any{"ultimo_login_en": at})
}

// actualizar only touches active rows, so a deactivated account reads as
// not found.
func (r *usuarioRepo) actualizar(ctx context.Context, id uuid.UUID, cols map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ? AND activo", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
