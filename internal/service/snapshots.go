package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

// movimientoSnapshot is the JSON shape stored in edit and delete logs.
type movimientoSnapshot struct {
	ID                uuid.UUID        `json:"id"`
	TurnoID           uuid.UUID        `json:"turno_id"`
	Tipo              string           `json:"tipo"`
	MetodoPago        string           `json:"metodo_pago"`
	Monto             decimal.Decimal  `json:"monto"`
	Descripcion       string           `json:"descripcion"`
	PagaCon           *decimal.Decimal `json:"paga_con,omitempty"`
	Vuelto            *decimal.Decimal `json:"vuelto,omitempty"`
	CreadoPorID       uuid.UUID        `json:"creado_por_id"`
	CreadoEn          time.Time        `json:"creado_en"`
	Editado           bool             `json:"editado"`
	EditadoPorID      *uuid.UUID       `json:"editado_por_id,omitempty"`
	EditadoEn         *time.Time       `json:"editado_en,omitempty"`
	MotivoEdicion     string           `json:"motivo_edicion,omitempty"`
	Anulado           bool             `json:"anulado"`
	AnuladoPorID      *uuid.UUID       `json:"anulado_por_id,omitempty"`
	AnuladoEn         *time.Time       `json:"anulado_en,omitempty"`
	MotivoAnulacion   string           `json:"motivo_anulacion,omitempty"`
	ReversoDeID       *uuid.UUID       `json:"reverso_de_id,omitempty"`
	Eliminado         bool             `json:"eliminado"`
	EliminadoPorID    *uuid.UUID       `json:"eliminado_por_id,omitempty"`
	EliminadoEn       *time.Time       `json:"eliminado_en,omitempty"`
	MotivoEliminacion string           `json:"motivo_eliminacion,omitempty"`
}

func snapshotMovimiento(m *model.MovimientoCaja) (json.RawMessage, error) {
	return json.Marshal(movimientoSnapshot{
		ID:                m.ID,
		TurnoID:           m.TurnoID,
		Tipo:              m.Tipo,
		MetodoPago:        m.MetodoPago,
		Monto:             m.Monto,
		Descripcion:       m.Descripcion,
		PagaCon:           m.PagaCon,
		Vuelto:            m.Vuelto,
		CreadoPorID:       m.CreadoPorID,
		CreadoEn:          m.CreadoEn,
		Editado:           m.Editado,
		EditadoPorID:      m.EditadoPorID,
		EditadoEn:         m.EditadoEn,
		MotivoEdicion:     m.MotivoEdicion,
		Anulado:           m.Anulado,
		AnuladoPorID:      m.AnuladoPorID,
		AnuladoEn:         m.AnuladoEn,
		MotivoAnulacion:   m.MotivoAnulacion,
		ReversoDeID:       m.ReversoDeID,
		Eliminado:         m.Eliminado,
		EliminadoPorID:    m.EliminadoPorID,
		EliminadoEn:       m.EliminadoEn,
		MotivoEliminacion: m.MotivoEliminacion,
	})
}

type denominacionSnapshot struct {
	ID            uuid.UUID       `json:"id"`
	TurnoID       uuid.UUID       `json:"turno_id"`
	Etiqueta      string          `json:"etiqueta"`
	Monto         decimal.Decimal `json:"monto"`
	Editado       bool            `json:"editado"`
	EditadoPorID  *uuid.UUID      `json:"editado_por_id,omitempty"`
	EditadoEn     *time.Time      `json:"editado_en,omitempty"`
	MotivoEdicion string          `json:"motivo_edicion,omitempty"`
}

func snapshotDenominacion(d *model.DenominacionApertura) (json.RawMessage, error) {
	return json.Marshal(denominacionSnapshot{
		ID:            d.ID,
		TurnoID:       d.TurnoID,
		Etiqueta:      d.Etiqueta,
		Monto:         d.Monto,
		Editado:       d.Editado,
		EditadoPorID:  d.EditadoPorID,
		EditadoEn:     d.EditadoEn,
		MotivoEdicion: d.MotivoEdicion,
	})
}
