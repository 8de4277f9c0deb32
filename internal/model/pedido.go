package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PedidoViene   = "viene"
	PedidoNoViene = "no_viene"
)

// Pedido is a customer order for a title not in stock.
// Estado: "" (sin respuesta) | "viene" | "no_viene".
type Pedido struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteNombre string          `gorm:"not null"`
	Sena          decimal.Decimal `gorm:"column:sena;type:decimal(12,2);not null;default:0"`
	Fecha         time.Time       `gorm:"not null;index"`
	Titulo        string          `gorm:"not null"`
	Telefono      string
	Autor         string
	Editorial     string
	Comentario    string
	Cantidad      int    `gorm:"not null;default:1"`
	ISBN          string `gorm:"column:isbn;type:varchar(20)"`
	Estado        string `gorm:"type:varchar(20);not null;default:''"`
	Motivo        string
	Oculto        bool `gorm:"not null;default:false"`
	// FechaViene is a calendar date; nil means "no date".
	FechaViene  *time.Time `gorm:"type:date"`
	CreadoPorID uuid.UUID  `gorm:"type:uuid;not null"`
	UpdatedAt   time.Time
}

func (Pedido) TableName() string { return "pedidos" }
