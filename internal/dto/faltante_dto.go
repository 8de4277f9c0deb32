package dto

type FaltanteRequest struct {
	Descripcion string `json:"descripcion" validate:"required,max=500"`
}

type FaltanteResponse struct {
	ID            string `json:"id"`
	Descripcion   string `json:"descripcion"`
	Eliminado     bool   `json:"eliminado"`
	FechaCreacion string `json:"fecha_creacion"`
}

type LimpiarFaltantesResponse struct {
	Eliminados int64 `json:"eliminados"`
}
