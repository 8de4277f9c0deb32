package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entity types referenced by audit rows and edit/delete logs.
const (
	EntidadTurno        = "turno"
	EntidadDenominacion = "denominacion"
	EntidadMovimiento   = "movimiento"
	EntidadArqueo       = "arqueo"
	EntidadLibro        = "libro"
	EntidadPedido       = "pedido"
	EntidadFaltante     = "faltante"
	EntidadUsuario      = "usuario"
)

// EventoAuditoria is an append-only record of an administrative action.
// Rows are never updated or deleted.
type EventoAuditoria struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID   *uuid.UUID      `gorm:"type:uuid"`
	Username    string          `gorm:"type:varchar(100);not null;default:''"`
	Accion      string          `gorm:"type:varchar(60);not null"`
	EntidadTipo string          `gorm:"type:varchar(30);not null;index:idx_auditoria_entidad"`
	EntidadID   string          `gorm:"type:varchar(64);not null;index:idx_auditoria_entidad"`
	Detalle     json.RawMessage `gorm:"type:jsonb"`
	CreadoEn    time.Time       `gorm:"not null;index"`
}

func (EventoAuditoria) TableName() string { return "eventos_auditoria" }

// LogEdicion stores the state of a movement or denomination right before an edit.
type LogEdicion struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntidadTipo string          `gorm:"type:varchar(30);not null"`
	EntidadID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TurnoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Snapshot    json.RawMessage `gorm:"type:jsonb;not null"`
	Motivo      string          `gorm:"not null"`
	UsuarioID   uuid.UUID       `gorm:"type:uuid;not null"`
	CreadoEn    time.Time       `gorm:"not null"`
}

func (LogEdicion) TableName() string { return "logs_edicion" }

// LogEliminacion stores the full state of a movement at soft-delete time.
type LogEliminacion struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EntidadTipo string          `gorm:"type:varchar(30);not null"`
	EntidadID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	TurnoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Snapshot    json.RawMessage `gorm:"type:jsonb;not null"`
	Motivo      string          `gorm:"not null"`
	UsuarioID   uuid.UUID       `gorm:"type:uuid;not null"`
	CreadoEn    time.Time       `gorm:"not null"`
}

func (LogEliminacion) TableName() string { return "logs_eliminacion" }
