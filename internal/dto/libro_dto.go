package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearLibroRequest struct {
	Titulo    string          `json:"titulo"    validate:"required,max=255"`
	Autor     string          `json:"autor"     validate:"required,max=255"`
	Editorial string          `json:"editorial" validate:"max=255"`
	ISBN      string          `json:"isbn"      validate:"required,max=20"`
	Stock     int             `json:"stock"     validate:"min=0"`
	Precio    decimal.Decimal `json:"precio"`
	Ubicacion string          `json:"ubicacion" validate:"required,max=100"`
}

type ActualizarLibroRequest struct {
	Titulo    *string          `json:"titulo"    validate:"omitempty,min=1,max=255"`
	Autor     *string          `json:"autor"     validate:"omitempty,min=1,max=255"`
	Editorial *string          `json:"editorial" validate:"omitempty,max=255"`
	ISBN      *string          `json:"isbn"      validate:"omitempty,min=1,max=20"`
	Stock     *int             `json:"stock"     validate:"omitempty,min=0"`
	Precio    *decimal.Decimal `json:"precio"`
	Ubicacion *string          `json:"ubicacion" validate:"omitempty,min=1,max=100"`
}

type BajarLibroRequest struct {
	Cantidad int    `json:"cantidad" validate:"required,min=1"`
	Motivo   string `json:"motivo"   validate:"max=300"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type LibroFilter struct {
	Q     string `form:"q"`
	ISBN  string `form:"isbn"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LibroResponse struct {
	ID        string          `json:"id"`
	Titulo    string          `json:"titulo"`
	Autor     string          `json:"autor"`
	Editorial string          `json:"editorial"`
	ISBN      string          `json:"isbn"`
	Stock     int             `json:"stock"`
	Precio    decimal.Decimal `json:"precio"`
	Ubicacion string          `json:"ubicacion"`
	FechaAlta string          `json:"fecha_alta"`
	FechaBaja *string         `json:"fecha_baja"`
}

type LibroListResponse struct {
	Data       []LibroResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type LibroBajaResponse struct {
	ID              string          `json:"id"`
	LibroID         string          `json:"libro_id"`
	Titulo          string          `json:"titulo"`
	Autor           string          `json:"autor"`
	Editorial       string          `json:"editorial"`
	ISBN            string          `json:"isbn"`
	Precio          decimal.Decimal `json:"precio"`
	Ubicacion       string          `json:"ubicacion"`
	CantidadBajada  int             `json:"cantidad_bajada"`
	StockResultante int             `json:"stock_resultante"`
	Motivo          string          `json:"motivo"`
	UsuarioID       string          `json:"usuario_id"`
	FechaBaja       string          `json:"fecha_baja"`
}

type LibroBajaListResponse struct {
	Data  []LibroBajaResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

type ISBNGeneradoResponse struct {
	ISBN string `json:"isbn"`
}

// LibroExternoResponse is the metadata found for an ISBN outside our catalogue.
type LibroExternoResponse struct {
	ISBN      string `json:"isbn"`
	Titulo    string `json:"titulo"`
	Autor     string `json:"autor"`
	Editorial string `json:"editorial"`
	Fuente    string `json:"fuente"`
}
