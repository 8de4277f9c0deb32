package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

type memPedidos struct {
	mu      sync.Mutex
	pedidos map[uuid.UUID]model.Pedido
}

func newMemPedidos() *memPedidos { return &memPedidos{pedidos: map[uuid.UUID]model.Pedido{}} }

func (r *memPedidos) Create(_ context.Context, p *model.Pedido) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pedidos[p.ID] = *p
	return nil
}

func (r *memPedidos) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memPedidos) List(_ context.Context, filter dto.PedidoFilter) ([]model.Pedido, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Pedido
	for _, p := range r.pedidos {
		if p.Oculto && !filter.IncluirOcultos {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memPedidos) Update(_ context.Context, p *model.Pedido) error {
	return r.Create(context.Background(), p)
}

func (r *memPedidos) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pedidos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.pedidos, id)
	return nil
}

func TestParseFechaOpcional(t *testing.T) {
	for _, raw := range []string{"", "null", "undefined", "0000-00-00", " NULL "} {
		f, err := ParseFechaOpcional(raw)
		require.NoError(t, err, raw)
		assert.Nil(t, f, raw)
	}

	f, err := ParseFechaOpcional("2025-04-30")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "2025-04-30", f.Format("2006-01-02"))

	_, err = ParseFechaOpcional("30/04/2025")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNormalizarTelefono(t *testing.T) {
	assert.Equal(t, "+541123456789", NormalizarTelefono("011 2345-6789"))
	assert.Equal(t, "llamar a la tarde", NormalizarTelefono(" llamar a la tarde "))
	assert.Equal(t, "", NormalizarTelefono("  "))
}

func TestCrearPedido_CantidadPorDefectoYFecha(t *testing.T) {
	svc := NewPedidoService(newMemPedidos(), nil)

	resp, err := svc.Crear(context.Background(), empleado, dto.CrearPedidoRequest{
		ClienteNombre: "Ana",
		Titulo:        "El Aleph",
		Fecha:         "2025-05-02",
		Sena:          dec("1000.555"),
		ISBN:          "978-84-206-3313-4",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Cantidad)
	assert.Equal(t, "1000.56", resp.Sena.StringFixed(2))
	assert.Equal(t, "9788420633134", resp.ISBN)
	assert.Contains(t, resp.Fecha, "2025-05-02")
	assert.Empty(t, resp.Estado)

	_, err = svc.Crear(context.Background(), empleado, dto.CrearPedidoRequest{Titulo: "sin cliente"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Crear(context.Background(), empleado, dto.CrearPedidoRequest{ClienteNombre: "Ana", Titulo: "x", Fecha: "ayer"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCambiarEstadoPedido(t *testing.T) {
	svc := NewPedidoService(newMemPedidos(), nil)
	p, err := svc.Crear(context.Background(), empleado, dto.CrearPedidoRequest{ClienteNombre: "Ana", Titulo: "Ficciones"})
	require.NoError(t, err)
	id := uuid.MustParse(p.ID)

	_, err = svc.CambiarEstado(context.Background(), empleado, id, dto.EstadoPedidoRequest{Estado: model.PedidoNoViene})
	assert.ErrorIs(t, err, ErrValidation, "no_viene requires a motivo")

	resp, err := svc.CambiarEstado(context.Background(), empleado, id, dto.EstadoPedidoRequest{Estado: model.PedidoNoViene, Motivo: "agotado", FechaViene: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, "agotado", resp.Motivo)
	assert.Nil(t, resp.FechaViene)

	resp, err = svc.CambiarEstado(context.Background(), empleado, id, dto.EstadoPedidoRequest{Estado: model.PedidoViene, Motivo: "ignorado", FechaViene: "2025-06-01"})
	require.NoError(t, err)
	assert.Empty(t, resp.Motivo)
	require.NotNil(t, resp.FechaViene)
	assert.Equal(t, "2025-06-01", *resp.FechaViene)

	resp, err = svc.CambiarEstado(context.Background(), empleado, id, dto.EstadoPedidoRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Estado)
	assert.Nil(t, resp.FechaViene)

	_, err = svc.CambiarEstado(context.Background(), empleado, id, dto.EstadoPedidoRequest{Estado: "quizas"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CambiarEstado(context.Background(), empleado, uuid.New(), dto.EstadoPedidoRequest{Estado: model.PedidoViene})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOcultarYEliminarPedido(t *testing.T) {
	svc := NewPedidoService(newMemPedidos(), nil)
	p, err := svc.Crear(context.Background(), empleado, dto.CrearPedidoRequest{ClienteNombre: "Ana", Titulo: "Ficciones"})
	require.NoError(t, err)
	id := uuid.MustParse(p.ID)

	_, err = svc.Ocultar(context.Background(), empleado, id, true)
	require.NoError(t, err)

	visibles, err := svc.Listar(context.Background(), dto.PedidoFilter{})
	require.NoError(t, err)
	assert.Empty(t, visibles)

	todos, err := svc.Listar(context.Background(), dto.PedidoFilter{IncluirOcultos: true})
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	require.NoError(t, svc.Eliminar(context.Background(), empleado, id))
	assert.ErrorIs(t, svc.Eliminar(context.Background(), empleado, id), ErrNotFound)
}
