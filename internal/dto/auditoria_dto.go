package dto

// AuditoriaFilter selects audit events. Both fields are optional.
type AuditoriaFilter struct {
	EntidadTipo string `form:"entidad_tipo"`
	EntidadID   string `form:"entidad_id"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

type EventoAuditoriaResponse struct {
	ID          string         `json:"id"`
	UsuarioID   *string        `json:"usuario_id"`
	Username    string         `json:"username"`
	Accion      string         `json:"accion"`
	EntidadTipo string         `json:"entidad_tipo"`
	EntidadID   string         `json:"entidad_id"`
	Detalle     map[string]any `json:"detalle"`
	CreadoEn    string         `json:"creado_en"`
}

type AuditoriaListResponse struct {
	Data  []EventoAuditoriaResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
