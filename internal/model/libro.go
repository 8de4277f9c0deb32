package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/texto"
)

// Libro is a title in stock. ISBN is unique; titles without a publisher ISBN
// get an internal one (see service.GenerarISBN).
type Libro struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Titulo    string    `gorm:"not null"`
	Autor     string    `gorm:"not null"`
	Editorial string
	ISBN      string          `gorm:"column:isbn;type:varchar(20);uniqueIndex;not null"`
	Stock     int             `gorm:"not null;default:0"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ubicacion string          `gorm:"not null"`
	// Busqueda holds titulo + autor lowercased and without accents.
	Busqueda  string    `gorm:"not null;default:''"`
	FechaAlta time.Time `gorm:"not null"`
	FechaBaja *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Libro) TableName() string { return "libros" }

// BeforeSave keeps the search column in sync with titulo and autor.
func (l *Libro) BeforeSave(_ *gorm.DB) error {
	l.Busqueda = texto.Plegar(l.Titulo + " " + l.Autor)
	return nil
}

// LibroBaja registra cada baja de stock con una copia del libro en ese momento.
type LibroBaja struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LibroID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Titulo          string          `gorm:"not null"`
	Autor           string          `gorm:"not null"`
	Editorial       string
	ISBN            string          `gorm:"column:isbn;type:varchar(20);not null"`
	Precio          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ubicacion       string
	CantidadBajada  int    `gorm:"not null"`
	StockResultante int    `gorm:"not null"`
	Motivo          string
	UsuarioID       uuid.UUID `gorm:"type:uuid;not null"`
	FechaBaja       time.Time `gorm:"not null;index"`
}

func (LibroBaja) TableName() string { return "libros_bajas" }
