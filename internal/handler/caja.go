package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/middleware"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/service"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CajaHandler struct {
	turnos      service.TurnoService
	movimientos service.MovimientoService
	arqueos     service.ArqueoService
	reportes    service.ReporteService
}

func NewCajaHandler(turnos service.TurnoService, movimientos service.MovimientoService, arqueos service.ArqueoService, reportes service.ReporteService) *CajaHandler {
	return &CajaHandler{turnos: turnos, movimientos: movimientos, arqueos: arqueos, reportes: reportes}
}

// ── Turnos ────────────────────────────────────────────────────────────────────

// AbrirTurno godoc
// @Summary Abre un turno de caja con el detalle del fondo inicial
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirTurnoRequest true "Denominaciones y sesión"
// @Success 201 {object} dto.TurnoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/turnos [post]
func (h *CajaHandler) AbrirTurno(c *gin.Context) {
	var req dto.AbrirTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.turnos.Abrir(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarTurnos godoc
// @Summary Lista turnos, más recientes primero
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param fecha query string false "Fecha de negocio (AAAA-MM-DD)"
// @Param sesion query string false "manana | tarde"
// @Param estado query string false "abierto | cerrado"
// @Success 200 {object} dto.TurnoListResponse
// @Router /v1/caja/turnos [get]
func (h *CajaHandler) ListarTurnos(c *gin.Context) {
	var filter dto.TurnoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.turnos.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) TurnoActivo(c *gin.Context) {
	resp, err := h.turnos.Activo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ObtenerTurno(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.turnos.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CerrarTurno godoc
// @Summary Cierra el turno con el efectivo contado y devuelve la diferencia
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del turno"
// @Param body body dto.CerrarTurnoRequest true "Efectivo contado"
// @Success 200 {object} dto.CierreTurnoResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/turnos/{id}/cerrar [post]
func (h *CajaHandler) CerrarTurno(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.CerrarTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.turnos.Cerrar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) EditarDenominacion(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	denomID, ok := uuidParam(c, "denomId")
	if !ok {
		return
	}
	var req dto.EditarDenominacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.turnos.EditarDenominacion(c.Request.Context(), middleware.GetActor(c), id, denomID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Arqueo ────────────────────────────────────────────────────────────────────

// Totales godoc
// @Summary Totales netos por método de pago y efectivo teórico
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del turno"
// @Success 200 {object} dto.TotalesResponse
// @Router /v1/caja/turnos/{id}/totales [get]
func (h *CajaHandler) Totales(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.arqueos.Totales(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ListarArqueos(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.arqueos.Listar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarArqueo records a partial count; closing counts come from CerrarTurno.
func (h *CajaHandler) RegistrarArqueo(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.ArqueoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.arqueos.Registrar(c.Request.Context(), middleware.GetActor(c), id, req, false)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) ExportarXLSX(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	data, nombre, err := h.reportes.ExcelMovimientos(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(nombre))
	c.Data(http.StatusOK, mimeXLSX, data)
}

// DescargarCierrePDF godoc
// @Summary Reporte de cierre en PDF (solo turnos cerrados)
// @Tags caja
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "ID del turno"
// @Success 200 {file} file
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/turnos/{id}/cierre.pdf [get]
func (h *CajaHandler) DescargarCierrePDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	path, turno, err := h.reportes.PDFCierre(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "cierre_"+turno.Codigo+".pdf")
}

// ── Movimientos ───────────────────────────────────────────────────────────────

func (h *CajaHandler) ListarMovimientos(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	incluir, _ := strconv.ParseBool(c.Query("incluir_eliminados"))
	resp, err := h.movimientos.Listar(c.Request.Context(), id, incluir)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ListarEditados(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.movimientos.ListarEditados(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) ListarEliminados(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.movimientos.ListarEliminados(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CrearMovimiento godoc
// @Summary Registra un movimiento de caja (venta, salida o ajuste)
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearMovimientoRequest true "Movimiento"
// @Success 201 {object} dto.MovimientoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimientos [post]
func (h *CajaHandler) CrearMovimiento(c *gin.Context) {
	var req dto.CrearMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.movimientos.Crear(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) EditarMovimiento(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.EditarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.movimientos.Editar(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnularMovimiento godoc
// @Summary Anula un movimiento generando su reverso
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID del movimiento"
// @Param body body dto.MotivoRequest true "Motivo"
// @Success 200 {object} dto.AnulacionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/movimientos/{id}/anular [post]
func (h *CajaHandler) AnularMovimiento(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MotivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.movimientos.Anular(c.Request.Context(), middleware.GetActor(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CajaHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req dto.MotivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.movimientos.Eliminar(c.Request.Context(), middleware.GetActor(c), id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
