package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type DenominacionRequest struct {
	Etiqueta string          `json:"etiqueta" validate:"required,max=50"`
	Monto    decimal.Decimal `json:"monto"`
}

type AbrirTurnoRequest struct {
	Denominaciones []DenominacionRequest `json:"denominaciones" validate:"required,min=1,dive"`
	// FechaNegocio is YYYY-MM-DD; empty means today in the business timezone.
	FechaNegocio string `json:"fecha_negocio" validate:"omitempty,datetime=2006-01-02"`
	Sesion       string `json:"sesion"        validate:"required,oneof=manana tarde"`
	Observacion  string `json:"observacion"   validate:"max=500"`
}

type CerrarTurnoRequest struct {
	EfectivoContado decimal.Decimal `json:"efectivo_contado"`
	Observacion     string          `json:"observacion" validate:"max=500"`
}

type EditarDenominacionRequest struct {
	Etiqueta *string          `json:"etiqueta" validate:"omitempty,min=1,max=50"`
	Monto    *decimal.Decimal `json:"monto"`
	Motivo   string           `json:"motivo"   validate:"required,min=3"`
}

type CrearMovimientoRequest struct {
	TurnoID     string          `json:"turno_id"    validate:"required,uuid"`
	Tipo        string          `json:"tipo"        validate:"required,oneof=venta salida ajuste"`
	MetodoPago  string          `json:"metodo_pago" validate:"required,oneof=efectivo transferencia_bancaria transferencia_billetera debito credito otro"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion" validate:"max=300"`
	// PagaCon / Vuelto only apply to cash payments.
	PagaCon *decimal.Decimal `json:"paga_con"`
	Vuelto  *decimal.Decimal `json:"vuelto"`
}

type EditarMovimientoRequest struct {
	Descripcion *string          `json:"descripcion" validate:"omitempty,max=300"`
	Monto       *decimal.Decimal `json:"monto"`
	MetodoPago  *string          `json:"metodo_pago" validate:"omitempty,oneof=efectivo transferencia_bancaria transferencia_billetera debito credito otro"`
	Motivo      string           `json:"motivo"      validate:"required,min=3"`
}

// MotivoRequest is the body of void and delete calls.
type MotivoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ArqueoRequest struct {
	EfectivoContado decimal.Decimal `json:"efectivo_contado"`
	Observacion     string          `json:"observacion" validate:"max=500"`
}

type TurnoFilter struct {
	Fecha  string `form:"fecha"  validate:"omitempty,datetime=2006-01-02"`
	Sesion string `form:"sesion" validate:"omitempty,oneof=manana tarde"`
	Estado string `form:"estado" validate:"omitempty,oneof=abierto cerrado"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DenominacionResponse struct {
	ID            string          `json:"id"`
	Etiqueta      string          `json:"etiqueta"`
	Monto         decimal.Decimal `json:"monto"`
	Editado       bool            `json:"editado"`
	EditadoPorID  *string         `json:"editado_por_id,omitempty"`
	EditadoEn     *string         `json:"editado_en,omitempty"`
	MotivoEdicion string          `json:"motivo_edicion,omitempty"`
}

type TurnoResponse struct {
	ID                  string                 `json:"id"`
	Codigo              string                 `json:"codigo"`
	Estado              string                 `json:"estado"`
	FechaNegocio        string                 `json:"fecha_negocio"`
	Sesion              string                 `json:"sesion"`
	AbiertoPorID        string                 `json:"abierto_por_id"`
	AbiertoEn           string                 `json:"abierto_en"`
	ObservacionApertura string                 `json:"observacion_apertura"`
	CerradoPorID        *string                `json:"cerrado_por_id"`
	CerradoEn           *string                `json:"cerrado_en"`
	ObservacionCierre   string                 `json:"observacion_cierre"`
	MontoInicial        decimal.Decimal        `json:"monto_inicial"`
	EfectivoContado     *decimal.Decimal       `json:"efectivo_contado"`
	EfectivoTeorico     *decimal.Decimal       `json:"efectivo_teorico"`
	Diferencia          *decimal.Decimal       `json:"diferencia"`
	Denominaciones      []DenominacionResponse `json:"denominaciones,omitempty"`
}

type TurnoListResponse struct {
	Data  []TurnoResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type DiferenciaResponse struct {
	Monto         decimal.Decimal `json:"monto"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	Clasificacion string          `json:"clasificacion"` // normal | advertencia | critico
}

type CierreTurnoResponse struct {
	Turno           TurnoResponse              `json:"turno"`
	Totales         map[string]decimal.Decimal `json:"totales"`
	EfectivoTeorico decimal.Decimal            `json:"efectivo_teorico"`
	EfectivoContado decimal.Decimal            `json:"efectivo_contado"`
	Diferencia      DiferenciaResponse         `json:"diferencia"`
	ArqueoID        string                     `json:"arqueo_id"`
}

type MovimientoResponse struct {
	ID                string           `json:"id"`
	TurnoID           string           `json:"turno_id"`
	Tipo              string           `json:"tipo"`
	MetodoPago        string           `json:"metodo_pago"`
	Monto             decimal.Decimal  `json:"monto"`
	Descripcion       string           `json:"descripcion"`
	PagaCon           *decimal.Decimal `json:"paga_con,omitempty"`
	Vuelto            *decimal.Decimal `json:"vuelto,omitempty"`
	CreadoPorID       string           `json:"creado_por_id"`
	CreadoEn          string           `json:"creado_en"`
	Editado           bool             `json:"editado"`
	EditadoPorID      *string          `json:"editado_por_id,omitempty"`
	EditadoEn         *string          `json:"editado_en,omitempty"`
	MotivoEdicion     string           `json:"motivo_edicion,omitempty"`
	Anulado           bool             `json:"anulado"`
	AnuladoPorID      *string          `json:"anulado_por_id,omitempty"`
	AnuladoEn         *string          `json:"anulado_en,omitempty"`
	MotivoAnulacion   string           `json:"motivo_anulacion,omitempty"`
	ReversoDeID       *string          `json:"reverso_de_id,omitempty"`
	Eliminado         bool             `json:"eliminado"`
	EliminadoPorID    *string          `json:"eliminado_por_id,omitempty"`
	EliminadoEn       *string          `json:"eliminado_en,omitempty"`
	MotivoEliminacion string           `json:"motivo_eliminacion,omitempty"`
}

// AnulacionResponse returns the voided original together with its reversal.
type AnulacionResponse struct {
	Original MovimientoResponse `json:"original"`
	Reverso  MovimientoResponse `json:"reverso"`
}

// LogResponse is one edit or delete log row.
type LogResponse struct {
	ID          string         `json:"id"`
	EntidadTipo string         `json:"entidad_tipo"`
	EntidadID   string         `json:"entidad_id"`
	TurnoID     string         `json:"turno_id"`
	Snapshot    map[string]any `json:"snapshot"`
	Motivo      string         `json:"motivo"`
	UsuarioID   string         `json:"usuario_id"`
	CreadoEn    string         `json:"creado_en"`
}

type TotalesResponse struct {
	TurnoID         string                     `json:"turno_id"`
	Totales         map[string]decimal.Decimal `json:"totales"`
	MontoInicial    decimal.Decimal            `json:"monto_inicial"`
	EfectivoTeorico decimal.Decimal            `json:"efectivo_teorico"`
	Movimientos     int                        `json:"movimientos"`
	Anulados        int                        `json:"anulados"`
	Eliminados      int                        `json:"eliminados"`
}

type ArqueoResponse struct {
	ID              string                     `json:"id"`
	TurnoID         string                     `json:"turno_id"`
	UsuarioID       string                     `json:"usuario_id"`
	EfectivoContado decimal.Decimal            `json:"efectivo_contado"`
	EfectivoTeorico decimal.Decimal            `json:"efectivo_teorico"`
	Diferencia      decimal.Decimal            `json:"diferencia"`
	Totales         map[string]decimal.Decimal `json:"totales"`
	Observacion     string                     `json:"observacion"`
	EsCierre        bool                       `json:"es_cierre"`
	CreadoEn        string                     `json:"creado_en"`
}
