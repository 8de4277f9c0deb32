package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TotalesPorMetodo maps a payment method to its signed net total.
// Persisted as jsonb.
type TotalesPorMetodo map[string]decimal.Decimal

// Value implements driver.Valuer.
func (t TotalesPorMetodo) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *TotalesPorMetodo) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TotalesPorMetodo{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("totales_por_metodo: unsupported type %T", src)
	}
	out := TotalesPorMetodo{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*t = out
	return nil
}

// Get returns the total for a method, zero when absent.
func (t TotalesPorMetodo) Get(metodo string) decimal.Decimal {
	if v, ok := t[metodo]; ok {
		return v
	}
	return decimal.Zero
}

// Arqueo is a point-in-time cash count against the theoretical figures.
// EsCierre marks the closing count of the shift (one per shift, enforced by
// uq_arqueos_cierre).
type Arqueo struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TurnoID         uuid.UUID        `gorm:"type:uuid;index;not null"`
	UsuarioID       uuid.UUID        `gorm:"type:uuid;not null"`
	EfectivoContado decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	EfectivoTeorico decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Diferencia      decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Totales         TotalesPorMetodo `gorm:"type:jsonb;not null"`
	Observacion     string
	EsCierre        bool      `gorm:"not null;default:false"`
	CreadoEn        time.Time `gorm:"not null"`
}

func (Arqueo) TableName() string { return "arqueos" }
