package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles de usuario. The dueño runs the shop; empleados work the counter.
const (
	RolDueno    = "dueno"
	RolEmpleado = "empleado"
)

// Usuario is a login account. Accounts are never deleted: deactivating one
// keeps every turno, movimiento and audit row that references it valid.
type Usuario struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username      string    `gorm:"not null"` // unique on LOWER(username)
	Nombre        string    `gorm:"not null"`
	PasswordHash  string    `gorm:"not null"`
	Rol           string    `gorm:"type:varchar(20);not null"`
	Activo        bool      `gorm:"not null;default:true"`
	UltimoLoginEn *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Usuario) TableName() string { return "usuarios" }
