package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/middleware"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

type FaltantesHandler struct{ svc service.FaltanteService }

func NewFaltantesHandler(svc service.FaltanteService) *FaltantesHandler {
	return &FaltantesHandler{svc: svc}
}

func (h *FaltantesHandler) Crear(c *gin.Context) {
	var req dto.FaltanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FaltantesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FaltantesHandler) Editar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.FaltanteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Editar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FaltantesHandler) Eliminar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Limpiar soft-deletes every pending entry.
func (h *FaltantesHandler) Limpiar(c *gin.Context) {
	resp, err := h.svc.Limpiar(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
