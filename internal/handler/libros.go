package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/middleware"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

type LibrosHandler struct{ svc service.LibroService }

func NewLibrosHandler(svc service.LibroService) *LibrosHandler { return &LibrosHandler{svc: svc} }

// Crear godoc
// @Summary Da de alta un libro
// @Tags libros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearLibroRequest true "Libro"
// @Success 201 {object} dto.LibroResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/libros [post]
func (h *LibrosHandler) Crear(c *gin.Context) {
	var req dto.CrearLibroRequest
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

// Buscar godoc
// @Summary Busca libros por texto o ISBN
// @Tags libros
// @Produce json
// @Security BearerAuth
// @Param q query string false "Título, autor o editorial"
// @Param isbn query string false "ISBN exacto"
// @Param page query int false "Página"
// @Param limit query int false "Tamaño de página"
// @Success 200 {object} dto.LibroListResponse
// @Router /v1/libros [get]
func (h *LibrosHandler) Buscar(c *gin.Context) {
	var filter dto.LibroFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Buscar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) Obtener(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) PorISBN(c *gin.Context) {
	resp, err := h.svc.BuscarPorISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Externo looks the ISBN up in the external catalogue. Used to prefill the
// alta form when the book is not in stock yet.
func (h *LibrosHandler) Externo(c *gin.Context) {
	resp, err := h.svc.BuscarExterno(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) Actualizar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarLibroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) Eliminar(c *gin.Context) {
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

// Bajar godoc
// @Summary Descuenta stock de un libro y registra la baja
// @Tags libros
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del libro"
// @Param body body dto.BajarLibroRequest true "Cantidad y motivo"
// @Success 200 {object} dto.LibroBajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/libros/{id}/bajar [post]
func (h *LibrosHandler) Bajar(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.BajarLibroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Bajar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) ListarBajas(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.ListarBajas(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *LibrosHandler) GenerarISBN(c *gin.Context) {
	resp, err := h.svc.GenerarISBN(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
