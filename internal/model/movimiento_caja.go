package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovimientoVenta   = "venta"
	MovimientoSalida  = "salida"
	MovimientoAjuste  = "ajuste"
	MovimientoReverso = "reverso"
)

// Métodos de pago.
const (
	MetodoEfectivo               = "efectivo"
	MetodoTransferenciaBancaria  = "transferencia_bancaria"
	MetodoTransferenciaBilletera = "transferencia_billetera"
	MetodoDebito                 = "debito"
	MetodoCredito                = "credito"
	MetodoOtro                   = "otro"
)

// MetodosPago lists every payment method in display order.
var MetodosPago = []string{
	MetodoEfectivo,
	MetodoTransferenciaBancaria,
	MetodoTransferenciaBilletera,
	MetodoDebito,
	MetodoCredito,
	MetodoOtro,
}

// MovimientoCaja is a single cash-affecting event in a Turno.
// Monto is always a non-negative magnitude; the sign comes from Tipo.
// Voiding never zeroes the row: it sets Anulado and a "reverso" row pointing
// back through ReversoDeID offsets it.
type MovimientoCaja struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID     uuid.UUID        `gorm:"type:uuid;index;not null"`
	Tipo        string           `gorm:"type:varchar(20);not null"`
	MetodoPago  string           `gorm:"type:varchar(30);not null"`
	Monto       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Descripcion string           `gorm:"not null;default:''"`
	PagaCon     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Vuelto      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreadoPorID uuid.UUID        `gorm:"type:uuid;not null"`
	CreadoEn    time.Time        `gorm:"not null"`

	Editado       bool       `gorm:"not null;default:false"`
	EditadoPorID  *uuid.UUID `gorm:"type:uuid"`
	EditadoEn     *time.Time
	MotivoEdicion string

	Anulado         bool       `gorm:"not null;default:false"`
	AnuladoPorID    *uuid.UUID `gorm:"type:uuid"`
	AnuladoEn       *time.Time
	MotivoAnulacion string
	ReversoDeID     *uuid.UUID `gorm:"type:uuid"`

	Eliminado         bool       `gorm:"not null;default:false"`
	EliminadoPorID    *uuid.UUID `gorm:"type:uuid"`
	EliminadoEn       *time.Time
	MotivoEliminacion string
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

// EsReverso reports whether the row was generated by voiding another movement.
func (m *MovimientoCaja) EsReverso() bool { return m.Tipo == MovimientoReverso }
