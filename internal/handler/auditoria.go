package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

type AuditoriaHandler struct{ svc service.AuditoriaService }

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// Listar godoc
// @Summary Lista eventos de auditoría, más recientes primero
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param entidad_tipo query string false "Tipo de entidad"
// @Param entidad_id query string false "ID de entidad"
// @Success 200 {object} dto.AuditoriaListResponse
// @Router /v1/auditoria [get]
func (h *AuditoriaHandler) Listar(c *gin.Context) {
	var filter dto.AuditoriaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
