package service

import (
	"github.com/google/uuid"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

// Actor is the authenticated user on whose behalf an operation runs.
// The identity comes from the JWT and is trusted verbatim.
type Actor struct {
	ID       uuid.UUID
	Username string
	Rol      string
}

// Capacidades are the permissions granted by a role.
type Capacidades struct {
	// ForzarCaja lets the holder edit, void or delete movements and opening
	// denominations created by someone else.
	ForzarCaja          bool
	VerAuditoria        bool
	AdministrarUsuarios bool
}

var capacidadesPorRol = map[string]Capacidades{
	model.RolDueno: {
		ForzarCaja:          true,
		VerAuditoria:        true,
		AdministrarUsuarios: true,
	},
	model.RolEmpleado: {},
}

// CapacidadesDe resolves the capabilities of a role. Unknown roles get none.
func CapacidadesDe(rol string) Capacidades {
	return capacidadesPorRol[rol]
}

func (a Actor) Capacidades() Capacidades { return CapacidadesDe(a.Rol) }

// PuedeModificar reports whether the actor may mutate a ledger row created by
// creadorID.
func (a Actor) PuedeModificar(creadorID uuid.UUID) bool {
	return a.ID == creadorID || a.Capacidades().ForzarCaja
}
