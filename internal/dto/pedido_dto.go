package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// Fechas opcionales: "YYYY-MM-DD"; "", "null", "undefined" y "0000-00-00" equivalen a sin fecha.

type CrearPedidoRequest struct {
	ClienteNombre string          `json:"cliente_nombre" validate:"required,max=255"`
	Sena          decimal.Decimal `json:"sena"`
	Fecha         string          `json:"fecha"`
	Titulo        string          `json:"titulo"         validate:"required,max=255"`
	Telefono      string          `json:"telefono"       validate:"max=50"`
	Autor         string          `json:"autor"          validate:"max=255"`
	Editorial     string          `json:"editorial"      validate:"max=255"`
	Comentario    string          `json:"comentario"     validate:"max=1000"`
	Cantidad      int             `json:"cantidad"       validate:"min=0"`
	ISBN          string          `json:"isbn"           validate:"max=20"`
}

type ActualizarPedidoRequest struct {
	ClienteNombre *string          `json:"cliente_nombre" validate:"omitempty,min=1,max=255"`
	Sena          *decimal.Decimal `json:"sena"`
	Titulo        *string          `json:"titulo"         validate:"omitempty,min=1,max=255"`
	Telefono      *string          `json:"telefono"       validate:"omitempty,max=50"`
	Autor         *string          `json:"autor"          validate:"omitempty,max=255"`
	Editorial     *string          `json:"editorial"      validate:"omitempty,max=255"`
	Comentario    *string          `json:"comentario"     validate:"omitempty,max=1000"`
	Cantidad      *int             `json:"cantidad"       validate:"omitempty,min=1"`
	ISBN          *string          `json:"isbn"           validate:"omitempty,max=20"`
}

type EstadoPedidoRequest struct {
	Estado     string `json:"estado"      validate:"omitempty,oneof=viene no_viene"`
	Motivo     string `json:"motivo"      validate:"max=500"`
	FechaViene string `json:"fecha_viene"`
}

type OcultarPedidoRequest struct {
	Oculto bool `json:"oculto"`
}

type PedidoFilter struct {
	IncluirOcultos bool   `form:"incluir_ocultos"`
	Estado         string `form:"estado" validate:"omitempty,oneof=viene no_viene pendiente"`
	Q              string `form:"q"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoResponse struct {
	ID            string          `json:"id"`
	ClienteNombre string          `json:"cliente_nombre"`
	Sena          decimal.Decimal `json:"sena"`
	Fecha         string          `json:"fecha"`
	Titulo        string          `json:"titulo"`
	Telefono      string          `json:"telefono"`
	Autor         string          `json:"autor"`
	Editorial     string          `json:"editorial"`
	Comentario    string          `json:"comentario"`
	Cantidad      int             `json:"cantidad"`
	ISBN          string          `json:"isbn"`
	Estado        string          `json:"estado"`
	Motivo        string          `json:"motivo"`
	Oculto        bool            `json:"oculto"`
	FechaViene    *string         `json:"fecha_viene"`
}
