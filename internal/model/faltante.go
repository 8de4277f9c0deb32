package model

import (
	"time"

	"github.com/google/uuid"
)

// Faltante is a free-text note about a title the shop needs to restock.
type Faltante struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion   string    `gorm:"not null"`
	Eliminado     bool      `gorm:"not null;default:false"`
	FechaCreacion time.Time `gorm:"not null"`
}

func (Faltante) TableName() string { return "faltantes" }
