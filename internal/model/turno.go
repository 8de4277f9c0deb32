package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TurnoAbierto = "abierto"
	TurnoCerrado = "cerrado"

	SesionManana = "manana"
	SesionTarde  = "tarde"
)

// Turno represents one open-to-close cash register session.
// Estado: "abierto" | "cerrado". At most one row may be "abierto"
// (partial unique index uq_turnos_un_abierto).
type Turno struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo              string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	Estado              string    `gorm:"type:varchar(20);not null;default:'abierto'"`
	FechaNegocio        time.Time `gorm:"type:date;not null"`
	Sesion              string    `gorm:"type:varchar(10);not null"`
	AbiertoPorID        uuid.UUID `gorm:"type:uuid;not null"`
	AbiertoEn           time.Time `gorm:"not null"`
	ObservacionApertura string
	CerradoPorID        *uuid.UUID `gorm:"type:uuid"`
	CerradoEn           *time.Time
	ObservacionCierre   string
	// MontoInicial is always the sum of Denominaciones.
	MontoInicial    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	EfectivoContado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	EfectivoTeorico *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Diferencia      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Denominaciones []DenominacionApertura `gorm:"foreignKey:TurnoID"`
}

func (Turno) TableName() string { return "turnos" }

// Abierto reports whether movements can still be recorded on the shift.
func (t *Turno) Abierto() bool { return t.Estado == TurnoAbierto }

// DenominacionApertura is one cash bucket declared when the shift was opened
// (e.g. "100 + 200", "Otros").
type DenominacionApertura struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	Etiqueta      string          `gorm:"type:varchar(50);not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Editado       bool            `gorm:"not null;default:false"`
	EditadoPorID  *uuid.UUID      `gorm:"type:uuid"`
	EditadoEn     *time.Time
	MotivoEdicion string
	CreatedAt     time.Time
}

func (DenominacionApertura) TableName() string { return "turno_denominaciones" }
