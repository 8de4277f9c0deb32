package repository

import (
	"context"
	"fmt"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/texto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LibroRepository defines the data access contract for the book catalogue.
type LibroRepository interface {
	Transaction(ctx context.Context, fn func(tx LibroRepository) error) error

	Create(ctx context.Context, l *model.Libro) error
	FindByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.Libro, error)
	FindByISBN(ctx context.Context, isbn string) (*model.Libro, error)
	ExisteISBN(ctx context.Context, isbn string) (bool, error)
	List(ctx context.Context, filter dto.LibroFilter) ([]model.Libro, int64, error)
	Update(ctx context.Context, l *model.Libro) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateBaja(ctx context.Context, b *model.LibroBaja) error
	ListBajas(ctx context.Context, page, limit int) ([]model.LibroBaja, int64, error)

	// NextISBNSeq returns the next value of the internal ISBN sequence.
	NextISBNSeq(ctx context.Context) (int64, error)
}

type libroRepo struct{ db *gorm.DB }

func NewLibroRepository(db *gorm.DB) LibroRepository { return &libroRepo{db: db} }

func (r *libroRepo) Transaction(ctx context.Context, fn func(tx LibroRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&libroRepo{db: tx})
	})
}

func (r *libroRepo) Create(ctx context.Context, l *model.Libro) error {
	return translateError(r.db.WithContext(ctx).Create(l).Error)
}

func (r *libroRepo) FindByID(ctx context.Context, id uuid.UUID, lock Lock) (*model.Libro, error) {
	var l model.Libro
	if err := lock.apply(r.db.WithContext(ctx)).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *libroRepo) FindByISBN(ctx context.Context, isbn string) (*model.Libro, error) {
	var l model.Libro
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *libroRepo) ExisteISBN(ctx context.Context, isbn string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Libro{}).Where("isbn = ?", isbn).Count(&n).Error
	return n > 0, err
}

// List matches every term of filter.Q against the folded titulo+autor column.
// Terms arrive unfolded; folding here keeps callers and the column in sync.
func (r *libroRepo) List(ctx context.Context, filter dto.LibroFilter) ([]model.Libro, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Libro{})
	if filter.ISBN != "" {
		q = q.Where("isbn = ?", filter.ISBN)
	}
	for _, term := range texto.Terminos(filter.Q) {
		q = q.Where("busqueda LIKE ?", fmt.Sprintf("%%%s%%", escapeLike(term)))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var libros []model.Libro
	err := q.Order("titulo ASC, id ASC").
		Offset(offset(filter.Page, filter.Limit)).
		Limit(filter.Limit).
		Find(&libros).Error
	return libros, total, err
}

func (r *libroRepo) Update(ctx context.Context, l *model.Libro) error {
	return translateError(r.db.WithContext(ctx).Save(l).Error)
}

func (r *libroRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Libro{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *libroRepo) CreateBaja(ctx context.Context, b *model.LibroBaja) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *libroRepo) ListBajas(ctx context.Context, page, limit int) ([]model.LibroBaja, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.LibroBaja{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bajas []model.LibroBaja
	err := q.Order("fecha_baja DESC").Offset(offset(page, limit)).Limit(limit).Find(&bajas).Error
	return bajas, total, err
}

func (r *libroRepo) NextISBNSeq(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Raw("SELECT nextval('isbn_interno_seq')").Scan(&n).Error
	return n, err
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '%' || c == '_' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
