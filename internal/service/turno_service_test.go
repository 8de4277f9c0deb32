package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

// ── Fixtures ─────────────────────────────────────────────────────────────────

var (
	dueno     = Actor{ID: uuid.New(), Username: "charles", Rol: model.RolDueno}
	empleado  = Actor{ID: uuid.New(), Username: "ana", Rol: model.RolEmpleado}
	empleado2 = Actor{ID: uuid.New(), Username: "beto", Rol: model.RolEmpleado}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

type fakeEncolador struct {
	mu    sync.Mutex
	ids   []uuid.UUID
	falla error
}

func (f *fakeEncolador) EncolarReporteCierre(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return f.falla
}

func aperturaBasica() dto.AbrirTurnoRequest {
	return dto.AbrirTurnoRequest{
		Denominaciones: []dto.DenominacionRequest{
			{Etiqueta: "100", Monto: dec("500.00")},
			{Etiqueta: "50", Monto: dec("200.00")},
		},
		FechaNegocio: "2025-03-01",
		Sesion:       model.SesionManana,
	}
}

func abrirTurno(t *testing.T, svc TurnoService, actor Actor) *dto.TurnoResponse {
	t.Helper()
	resp, err := svc.Abrir(context.Background(), actor, aperturaBasica())
	require.NoError(t, err)
	return resp
}

// ── Abrir ────────────────────────────────────────────────────────────────────

func TestAbrir_SumaDenominaciones(t *testing.T) {
	repo := newMemCaja()
	svc := NewTurnoService(repo, time.UTC, nil)

	resp := abrirTurno(t, svc, empleado)

	assert.Equal(t, model.TurnoAbierto, resp.Estado)
	assert.True(t, resp.MontoInicial.Equal(dec("700")), "got %s", resp.MontoInicial)
	assert.Equal(t, "T20250301-M-1", resp.Codigo)
	assert.Equal(t, "2025-03-01", resp.FechaNegocio)
	assert.Len(t, resp.Denominaciones, 2)
	assert.Len(t, repo.eventos("turno.abrir"), 1)
}

func TestAbrir_ConTurnoAbierto_Conflict(t *testing.T) {
	repo := newMemCaja()
	svc := NewTurnoService(repo, time.UTC, nil)
	abrirTurno(t, svc, empleado)

	_, err := svc.Abrir(context.Background(), empleado2, aperturaBasica())
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, repo.turnoCount())
}

func TestAbrir_Concurrente_SoloUnoGana(t *testing.T) {
	repo := newMemCaja()
	svc := NewTurnoService(repo, time.UTC, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, conflictos := 0, 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Abrir(context.Background(), empleado, aperturaBasica())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, ErrConflict) {
				conflictos++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, conflictos)
	assert.Equal(t, 1, repo.turnoCount())
}

func TestAbrir_Validaciones(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)

	cases := map[string]func(r *dto.AbrirTurnoRequest){
		"sin denominaciones": func(r *dto.AbrirTurnoRequest) { r.Denominaciones = nil },
		"monto negativo":     func(r *dto.AbrirTurnoRequest) { r.Denominaciones[0].Monto = dec("-1") },
		"etiqueta vacia":     func(r *dto.AbrirTurnoRequest) { r.Denominaciones[1].Etiqueta = "  " },
		"sesion invalida":    func(r *dto.AbrirTurnoRequest) { r.Sesion = "noche" },
		"fecha invalida":     func(r *dto.AbrirTurnoRequest) { r.FechaNegocio = "01/03/2025" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := aperturaBasica()
			mutate(&req)
			_, err := svc.Abrir(context.Background(), empleado, req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAbrir_FallaAuditoria_Rollback(t *testing.T) {
	repo := newMemCaja()
	repo.failEvento = errFallaAuditoria
	svc := NewTurnoService(repo, time.UTC, nil)

	_, err := svc.Abrir(context.Background(), empleado, aperturaBasica())
	assert.ErrorIs(t, err, errFallaAuditoria)
	assert.Equal(t, 0, repo.turnoCount())
}

func TestAbrir_SegundoTurnoMismaSesion_IncrementaCodigo(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	primero := abrirTurno(t, svc, empleado)
	_, err := svc.Cerrar(context.Background(), empleado, uuid.MustParse(primero.ID), dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.NoError(t, err)

	segundo := abrirTurno(t, svc, empleado)
	assert.Equal(t, "T20250301-M-2", segundo.Codigo)
}

func TestAbrir_FechaPorDefecto_EnZonaDelNegocio(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	svc := NewTurnoService(newMemCaja(), loc, nil)
	req := aperturaBasica()
	req.FechaNegocio = ""

	resp, err := svc.Abrir(context.Background(), empleado, req)
	require.NoError(t, err)
	assert.Equal(t, time.Now().In(loc).Format("2006-01-02"), resp.FechaNegocio)
}

// ── Cerrar ───────────────────────────────────────────────────────────────────

func TestCerrar_EscenarioCompleto(t *testing.T) {
	repo := newMemCaja()
	enc := &fakeEncolador{}
	turnos := NewTurnoService(repo, time.UTC, enc)
	movs := NewMovimientoService(repo)
	ctx := context.Background()

	turno := abrirTurno(t, turnos, empleado)
	_, err := movs.Crear(ctx, empleado, dto.CrearMovimientoRequest{TurnoID: turno.ID, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoEfectivo, Monto: dec("150.00")})
	require.NoError(t, err)
	_, err = movs.Crear(ctx, empleado, dto.CrearMovimientoRequest{TurnoID: turno.ID, Tipo: model.MovimientoSalida, MetodoPago: model.MetodoEfectivo, Monto: dec("50.00")})
	require.NoError(t, err)
	_, err = movs.Crear(ctx, empleado, dto.CrearMovimientoRequest{TurnoID: turno.ID, Tipo: model.MovimientoVenta, MetodoPago: model.MetodoDebito, Monto: dec("300.00")})
	require.NoError(t, err)

	id := uuid.MustParse(turno.ID)
	resp, err := turnos.Cerrar(ctx, empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("795.00")})
	require.NoError(t, err)

	assert.True(t, resp.EfectivoTeorico.Equal(dec("800")), "teorico %s", resp.EfectivoTeorico)
	assert.True(t, resp.Diferencia.Monto.Equal(dec("-5")), "diferencia %s", resp.Diferencia.Monto)
	assert.True(t, resp.Totales[model.MetodoDebito].Equal(dec("300")))
	assert.Equal(t, model.TurnoCerrado, resp.Turno.Estado)
	require.NotNil(t, resp.Turno.CerradoPorID)
	assert.Equal(t, empleado.ID.String(), *resp.Turno.CerradoPorID)

	existe, err := repo.ExisteArqueoCierre(ctx, id)
	require.NoError(t, err)
	assert.True(t, existe)
	assert.Equal(t, []uuid.UUID{id}, enc.ids)
	assert.Len(t, repo.eventos("turno.cerrar"), 1)
}

func TestCerrar_TurnoYaCerrado_NotFound(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)

	_, err := svc.Cerrar(context.Background(), empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.NoError(t, err)

	_, err = svc.Cerrar(context.Background(), empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCerrar_TurnoInexistente_NotFound(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	_, err := svc.Cerrar(context.Background(), empleado, uuid.New(), dto.CerrarTurnoRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCerrar_FallaEncolado_NoRevierteCierre(t *testing.T) {
	enc := &fakeEncolador{falla: errors.New("redis caido")}
	svc := NewTurnoService(newMemCaja(), time.UTC, enc)
	turno := abrirTurno(t, svc, empleado)

	resp, err := svc.Cerrar(context.Background(), empleado, uuid.MustParse(turno.ID), dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.NoError(t, err)
	assert.Equal(t, model.TurnoCerrado, resp.Turno.Estado)
	assert.Equal(t, "normal", resp.Diferencia.Clasificacion)
}

func TestCerrar_FallaAuditoria_TurnoSigueAbierto(t *testing.T) {
	repo := newMemCaja()
	svc := NewTurnoService(repo, time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)

	repo.failEvento = errFallaAuditoria
	_, err := svc.Cerrar(context.Background(), empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.ErrorIs(t, err, errFallaAuditoria)

	got, err := svc.Obtener(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TurnoAbierto, got.Estado)
	existe, _ := repo.ExisteArqueoCierre(context.Background(), id)
	assert.False(t, existe)
}

func TestCerrar_MontoNegativo_Validation(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	_, err := svc.Cerrar(context.Background(), empleado, uuid.MustParse(turno.ID), dto.CerrarTurnoRequest{EfectivoContado: dec("-1")})
	assert.ErrorIs(t, err, ErrValidation)
}

// ── EditarDenominacion ───────────────────────────────────────────────────────

func TestEditarDenominacion_RecalculaMontoInicial(t *testing.T) {
	repo := newMemCaja()
	svc := NewTurnoService(repo, time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)
	denomID := uuid.MustParse(turno.Denominaciones[1].ID)

	resp, err := svc.EditarDenominacion(context.Background(), empleado, id, denomID, dto.EditarDenominacionRequest{
		Monto:  decPtr("250.00"),
		Motivo: "mal contado",
	})
	require.NoError(t, err)

	assert.True(t, resp.MontoInicial.Equal(dec("750")), "got %s", resp.MontoInicial)
	var editada dto.DenominacionResponse
	for _, d := range resp.Denominaciones {
		if d.ID == denomID.String() {
			editada = d
		}
	}
	assert.True(t, editada.Editado)
	assert.Equal(t, "mal contado", editada.MotivoEdicion)

	logs, err := repo.ListLogsEdicion(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.EntidadDenominacion, logs[0].EntidadTipo)
	assert.Contains(t, string(logs[0].Snapshot), `"monto":"200`)

	// The closing figures use the edited float.
	cierre, err := svc.Cerrar(context.Background(), empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("750")})
	require.NoError(t, err)
	assert.True(t, cierre.EfectivoTeorico.Equal(dec("750")))
}

func TestEditarDenominacion_Permisos(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)
	denomID := uuid.MustParse(turno.Denominaciones[0].ID)
	req := dto.EditarDenominacionRequest{Etiqueta: strPtr("100 + 200"), Motivo: "renombre"}

	_, err := svc.EditarDenominacion(context.Background(), empleado2, id, denomID, req)
	assert.ErrorIs(t, err, ErrPermission)

	_, err = svc.EditarDenominacion(context.Background(), dueno, id, denomID, req)
	assert.NoError(t, err)
}

func TestEditarDenominacion_TurnoCerrado_Conflict(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)
	_, err := svc.Cerrar(context.Background(), empleado, id, dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.NoError(t, err)

	_, err = svc.EditarDenominacion(context.Background(), dueno, id, uuid.MustParse(turno.Denominaciones[0].ID),
		dto.EditarDenominacionRequest{Monto: decPtr("1"), Motivo: "tarde"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestEditarDenominacion_SinMotivoOCambios_Validation(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	turno := abrirTurno(t, svc, empleado)
	id := uuid.MustParse(turno.ID)
	denomID := uuid.MustParse(turno.Denominaciones[0].ID)

	_, err := svc.EditarDenominacion(context.Background(), empleado, id, denomID, dto.EditarDenominacionRequest{Monto: decPtr("1")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.EditarDenominacion(context.Background(), empleado, id, denomID, dto.EditarDenominacionRequest{Motivo: "nada"})
	assert.ErrorIs(t, err, ErrValidation)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestActivo_SinTurno_NotFound(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	_, err := svc.Activo(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	abierto := abrirTurno(t, svc, empleado)
	got, err := svc.Activo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, abierto.ID, got.ID)
}

func TestListar_FiltraPorEstado(t *testing.T) {
	svc := NewTurnoService(newMemCaja(), time.UTC, nil)
	primero := abrirTurno(t, svc, empleado)
	_, err := svc.Cerrar(context.Background(), empleado, uuid.MustParse(primero.ID), dto.CerrarTurnoRequest{EfectivoContado: dec("700")})
	require.NoError(t, err)
	abrirTurno(t, svc, empleado)

	all, err := svc.Listar(context.Background(), dto.TurnoFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
	assert.Equal(t, 20, all.Limit)

	cerrados, err := svc.Listar(context.Background(), dto.TurnoFilter{Estado: model.TurnoCerrado})
	require.NoError(t, err)
	require.Len(t, cerrados.Data, 1)
	assert.Equal(t, primero.ID, cerrados.Data[0].ID)
}
