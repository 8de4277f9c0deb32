package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

type cajaFixture struct {
	repo     *memCaja
	turnos   TurnoService
	movs     MovimientoService
	arqueos  ArqueoService
	turnoID  uuid.UUID
	turnoStr string
}

func nuevaCaja(t *testing.T) *cajaFixture {
	t.Helper()
	repo := newMemCaja()
	f := &cajaFixture{
		repo:    repo,
		turnos:  NewTurnoService(repo, time.UTC, nil),
		movs:    NewMovimientoService(repo),
		arqueos: NewArqueoService(repo),
	}
	turno := abrirTurno(t, f.turnos, empleado)
	f.turnoStr = turno.ID
	f.turnoID = uuid.MustParse(turno.ID)
	return f
}

func (f *cajaFixture) crear(t *testing.T, actor Actor, tipo, metodo, monto string) *dto.MovimientoResponse {
	t.Helper()
	resp, err := f.movs.Crear(context.Background(), actor, dto.CrearMovimientoRequest{
		TurnoID:    f.turnoStr,
		Tipo:       tipo,
		MetodoPago: metodo,
		Monto:      dec(monto),
	})
	require.NoError(t, err)
	return resp
}

func (f *cajaFixture) teorico(t *testing.T) string {
	t.Helper()
	v, err := f.arqueos.EfectivoTeorico(context.Background(), f.turnoID)
	require.NoError(t, err)
	return v.StringFixed(2)
}

func (f *cajaFixture) cerrar(t *testing.T) {
	t.Helper()
	_, err := f.turnos.Cerrar(context.Background(), empleado, f.turnoID, dto.CerrarTurnoRequest{EfectivoContado: dec("0")})
	require.NoError(t, err)
}

// ── Crear ────────────────────────────────────────────────────────────────────

func TestCrearMovimiento_AfectaTotales(t *testing.T) {
	f := nuevaCaja(t)
	f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "150")
	f.crear(t, empleado, model.MovimientoSalida, model.MetodoEfectivo, "50")
	assert.Equal(t, "800.00", f.teorico(t))
	assert.Len(t, f.repo.eventos("movimiento.crear"), 2)
}

func TestCrearMovimiento_TurnoCerrado_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	f.cerrar(t)

	_, err := f.movs.Crear(context.Background(), empleado, dto.CrearMovimientoRequest{
		TurnoID: f.turnoStr, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo, Monto: dec("10"),
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCrearMovimiento_TurnoInexistente_NotFound(t *testing.T) {
	f := nuevaCaja(t)
	_, err := f.movs.Crear(context.Background(), empleado, dto.CrearMovimientoRequest{
		TurnoID: uuid.NewString(), Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo, Monto: dec("10"),
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCrearMovimiento_Validaciones(t *testing.T) {
	f := nuevaCaja(t)
	base := func() dto.CrearMovimientoRequest {
		return dto.CrearMovimientoRequest{TurnoID: f.turnoStr, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo, Monto: dec("10")}
	}
	cases := map[string]func(r *dto.CrearMovimientoRequest){
		"turno_id invalido":    func(r *dto.CrearMovimientoRequest) { r.TurnoID = "x" },
		"reverso manual":       func(r *dto.CrearMovimientoRequest) { r.Tipo = model.MovimientoReverso },
		"tipo desconocido":     func(r *dto.CrearMovimientoRequest) { r.Tipo = "regalo" },
		"metodo desconocido":   func(r *dto.CrearMovimientoRequest) { r.MetodoPago = "cheque" },
		"monto negativo":       func(r *dto.CrearMovimientoRequest) { r.Monto = dec("-0.01") },
		"vuelto con debito":    func(r *dto.CrearMovimientoRequest) { r.MetodoPago = model.MetodoDebito; r.PagaCon = decPtr("20") },
		"paga con menos monto": func(r *dto.CrearMovimientoRequest) { r.PagaCon = decPtr("5") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := base()
			mutate(&req)
			_, err := f.movs.Crear(context.Background(), empleado, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Equal(t, 0, f.repo.movCount())
}

func TestCrearMovimiento_DerivaVuelto(t *testing.T) {
	f := nuevaCaja(t)
	resp, err := f.movs.Crear(context.Background(), empleado, dto.CrearMovimientoRequest{
		TurnoID: f.turnoStr, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo,
		Monto: dec("7350"), PagaCon: decPtr("10000"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Vuelto)
	assert.Equal(t, "2650.00", resp.Vuelto.StringFixed(2))
	// Change does not touch the drawer total: only the sale amount counts.
	assert.Equal(t, "8050.00", f.teorico(t))
}

// ── Anular ───────────────────────────────────────────────────────────────────

func TestAnular_ReversoNetoCero(t *testing.T) {
	f := nuevaCaja(t)
	antes := f.teorico(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "150")

	resp, err := f.movs.Anular(context.Background(), empleado, uuid.MustParse(venta.ID), "cliente se arrepintió")
	require.NoError(t, err)

	assert.True(t, resp.Original.Anulado)
	assert.True(t, resp.Original.Monto.Equal(dec("150")), "original keeps its amount")
	assert.Equal(t, model.MetodoEfectivo, resp.Original.MetodoPago)
	assert.Equal(t, model.MovimientoReverso, resp.Reverso.Tipo)
	assert.True(t, resp.Reverso.Monto.Equal(dec("150")))
	assert.Equal(t, model.MetodoEfectivo, resp.Reverso.MetodoPago)
	require.NotNil(t, resp.Reverso.ReversoDeID)
	assert.Equal(t, venta.ID, *resp.Reverso.ReversoDeID)

	assert.Equal(t, antes, f.teorico(t))
	assert.Len(t, f.repo.eventos("movimiento.anular"), 1)
}

func TestAnular_SalidaDevuelveEfectivo(t *testing.T) {
	f := nuevaCaja(t)
	salida := f.crear(t, empleado, model.MovimientoSalida, model.MetodoEfectivo, "50")
	assert.Equal(t, "650.00", f.teorico(t))

	_, err := f.movs.Anular(context.Background(), empleado, uuid.MustParse(salida.ID), "error de carga")
	require.NoError(t, err)
	assert.Equal(t, "700.00", f.teorico(t))
}

func TestAnular_DosVeces_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoDebito, "80")
	id := uuid.MustParse(venta.ID)

	_, err := f.movs.Anular(context.Background(), empleado, id, "primero")
	require.NoError(t, err)
	_, err = f.movs.Anular(context.Background(), empleado, id, "segundo")
	assert.ErrorIs(t, err, ErrConflict)

	movs, err := f.movs.Listar(context.Background(), f.turnoID, false)
	require.NoError(t, err)
	assert.Len(t, movs, 2, "exactly one reverso")
}

func TestAnular_Reverso_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "10")
	resp, err := f.movs.Anular(context.Background(), empleado, uuid.MustParse(venta.ID), "x-x")
	require.NoError(t, err)

	_, err = f.movs.Anular(context.Background(), dueno, uuid.MustParse(resp.Reverso.ID), "deshacer")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAnular_Permisos(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "10")
	id := uuid.MustParse(venta.ID)

	_, err := f.movs.Anular(context.Background(), empleado2, id, "ajeno")
	assert.ErrorIs(t, err, ErrPermission)

	_, err = f.movs.Anular(context.Background(), dueno, id, "override")
	assert.NoError(t, err)
}

func TestAnular_TurnoCerrado_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "10")
	f.cerrar(t)

	_, err := f.movs.Anular(context.Background(), dueno, uuid.MustParse(venta.ID), "tarde")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAnular_FallaAuditoria_Rollback(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "10")
	f.repo.failEvento = errFallaAuditoria

	_, err := f.movs.Anular(context.Background(), empleado, uuid.MustParse(venta.ID), "motivo")
	require.ErrorIs(t, err, errFallaAuditoria)

	f.repo.failEvento = nil
	movs, err := f.movs.Listar(context.Background(), f.turnoID, true)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.False(t, movs[0].Anulado)
}

// ── Editar ───────────────────────────────────────────────────────────────────

func TestEditar_GuardaSnapshotYRecalcula(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "150")
	id := uuid.MustParse(venta.ID)

	resp, err := f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{
		Monto:  decPtr("120"),
		Motivo: "precio mal cargado",
	})
	require.NoError(t, err)
	assert.True(t, resp.Editado)
	require.NotNil(t, resp.EditadoPorID)
	assert.Equal(t, empleado.ID.String(), *resp.EditadoPorID)
	assert.Equal(t, "820.00", f.teorico(t))

	logs, err := f.movs.ListarEditados(context.Background(), f.turnoID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "150", logs[0].Snapshot["monto"])
	assert.Equal(t, "precio mal cargado", logs[0].Motivo)
}

func (f *cajaFixture) ventaConVuelto(t *testing.T, monto, pagaCon string) uuid.UUID {
	t.Helper()
	resp, err := f.movs.Crear(context.Background(), empleado, dto.CrearMovimientoRequest{
		TurnoID: f.turnoStr, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo,
		Monto: dec(monto), PagaCon: decPtr(pagaCon),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestEditar_SnapshotConservaPagoEnEfectivo(t *testing.T) {
	f := nuevaCaja(t)
	id := f.ventaConVuelto(t, "80", "100")

	resp, err := f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{
		MetodoPago: strPtr(model.MetodoDebito),
		Motivo:     "pagó con débito",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.PagaCon)
	assert.Nil(t, resp.Vuelto)

	logs, err := f.movs.ListarEditados(context.Background(), f.turnoID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.MetodoEfectivo, logs[0].Snapshot["metodo_pago"])
	assert.Equal(t, "100", logs[0].Snapshot["paga_con"])
	assert.Equal(t, "20", logs[0].Snapshot["vuelto"])
}

func TestEditar_MontoRecalculaVuelto(t *testing.T) {
	f := nuevaCaja(t)
	id := f.ventaConVuelto(t, "80", "100")

	resp, err := f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{
		Monto:  decPtr("90"),
		Motivo: "faltó un señalador",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Vuelto)
	assert.Equal(t, "10.00", resp.Vuelto.StringFixed(2))
	require.NotNil(t, resp.PagaCon)
	assert.Equal(t, "100.00", resp.PagaCon.StringFixed(2))
}

func TestEditar_MontoMayorQuePagaCon_Validation(t *testing.T) {
	f := nuevaCaja(t)
	id := f.ventaConVuelto(t, "80", "100")

	_, err := f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{
		Monto:  decPtr("150"),
		Motivo: "precio mal cargado",
	})
	assert.ErrorIs(t, err, ErrValidation)

	logs, err := f.movs.ListarEditados(context.Background(), f.turnoID)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, "780.00", f.teorico(t))
}

func TestEditar_CambioDeMetodoMueveTotales(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")

	_, err := f.movs.Editar(context.Background(), empleado, uuid.MustParse(venta.ID), dto.EditarMovimientoRequest{
		MetodoPago: strPtr(model.MetodoCredito),
		Motivo:     "pagó con tarjeta",
	})
	require.NoError(t, err)

	tot, err := f.arqueos.Totales(context.Background(), f.turnoID)
	require.NoError(t, err)
	assert.True(t, tot.Totales[model.MetodoEfectivo].IsZero())
	assert.True(t, tot.Totales[model.MetodoCredito].Equal(dec("100")))
}

func TestEditar_MontoDeAnulado_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	id := uuid.MustParse(venta.ID)
	anul, err := f.movs.Anular(context.Background(), empleado, id, "anulada")
	require.NoError(t, err)

	_, err = f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{Monto: decPtr("1"), Motivo: "cambio"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.movs.Editar(context.Background(), empleado, uuid.MustParse(anul.Reverso.ID), dto.EditarMovimientoRequest{MetodoPago: strPtr(model.MetodoOtro), Motivo: "cambio"})
	assert.ErrorIs(t, err, ErrConflict)

	// Description stays editable.
	_, err = f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{Descripcion: strPtr("nota"), Motivo: "aclaración"})
	assert.NoError(t, err)
}

func TestEditar_SinMotivo_Validation(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	_, err := f.movs.Editar(context.Background(), empleado, uuid.MustParse(venta.ID), dto.EditarMovimientoRequest{Monto: decPtr("1")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEditar_TurnoCerrado_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	f.cerrar(t)
	_, err := f.movs.Editar(context.Background(), dueno, uuid.MustParse(venta.ID), dto.EditarMovimientoRequest{Monto: decPtr("1"), Motivo: "tarde"})
	assert.ErrorIs(t, err, ErrConflict)
}

// ── Eliminar ─────────────────────────────────────────────────────────────────

func TestEliminar_ExcluyeDeTotales(t *testing.T) {
	f := nuevaCaja(t)
	f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	duplicada := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	assert.Equal(t, "900.00", f.teorico(t))

	resp, err := f.movs.Eliminar(context.Background(), empleado, uuid.MustParse(duplicada.ID), "cargada dos veces")
	require.NoError(t, err)
	assert.True(t, resp.Eliminado)
	assert.Equal(t, "800.00", f.teorico(t))

	visibles, err := f.movs.Listar(context.Background(), f.turnoID, false)
	require.NoError(t, err)
	assert.Len(t, visibles, 1)
	todos, err := f.movs.Listar(context.Background(), f.turnoID, true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)

	logs, err := f.movs.ListarEliminados(context.Background(), f.turnoID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, duplicada.ID, logs[0].EntidadID)
	assert.Equal(t, false, logs[0].Snapshot["eliminado"])

	tot, err := f.arqueos.Totales(context.Background(), f.turnoID)
	require.NoError(t, err)
	assert.Equal(t, 1, tot.Eliminados)
	assert.Equal(t, 1, tot.Movimientos)
}

func TestEliminar_DosVeces_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	id := uuid.MustParse(venta.ID)
	_, err := f.movs.Eliminar(context.Background(), empleado, id, "error")
	require.NoError(t, err)

	_, err = f.movs.Eliminar(context.Background(), empleado, id, "error")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.movs.Editar(context.Background(), empleado, id, dto.EditarMovimientoRequest{Monto: decPtr("1"), Motivo: "zombie"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEliminar_AnuladoOReverso_Conflict(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	anul, err := f.movs.Anular(context.Background(), empleado, uuid.MustParse(venta.ID), "anulada")
	require.NoError(t, err)

	_, err = f.movs.Eliminar(context.Background(), dueno, uuid.MustParse(venta.ID), "limpiar")
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.movs.Eliminar(context.Background(), dueno, uuid.MustParse(anul.Reverso.ID), "limpiar")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestEliminar_Permisos(t *testing.T) {
	f := nuevaCaja(t)
	venta := f.crear(t, empleado, model.MovimientoVenta, model.MetodoEfectivo, "100")
	_, err := f.movs.Eliminar(context.Background(), empleado2, uuid.MustParse(venta.ID), "ajeno")
	assert.ErrorIs(t, err, ErrPermission)
}
