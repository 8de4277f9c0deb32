package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

const regionTelefono = "AR"

type PedidoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) ([]dto.PedidoResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarPedidoRequest) (*dto.PedidoResponse, error)
	CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, req dto.EstadoPedidoRequest) (*dto.PedidoResponse, error)
	Ocultar(ctx context.Context, actor Actor, id uuid.UUID, oculto bool) (*dto.PedidoResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
}

type pedidoService struct {
	repo  repository.PedidoRepository
	audit AuditoriaService
}

func NewPedidoService(repo repository.PedidoRepository, audit AuditoriaService) PedidoService {
	return &pedidoService{repo: repo, audit: audit}
}

func (s *pedidoService) Crear(ctx context.Context, actor Actor, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	fecha, err := ParseFechaOpcional(req.Fecha)
	if err != nil {
		return nil, err
	}
	p := &model.Pedido{
		ID:            uuid.New(),
		ClienteNombre: strings.TrimSpace(req.ClienteNombre),
		Sena:          req.Sena.Round(2),
		Fecha:         time.Now().UTC(),
		Titulo:        strings.TrimSpace(req.Titulo),
		Telefono:      NormalizarTelefono(req.Telefono),
		Autor:         strings.TrimSpace(req.Autor),
		Editorial:     strings.TrimSpace(req.Editorial),
		Comentario:    strings.TrimSpace(req.Comentario),
		Cantidad:      req.Cantidad,
		ISBN:          NormalizarISBN(req.ISBN),
		CreadoPorID:   actor.ID,
	}
	if fecha != nil {
		p.Fecha = *fecha
	}
	if p.Cantidad == 0 {
		p.Cantidad = 1
	}
	if err := validarPedido(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "pedido.crear", model.EntidadPedido, p.ID.String(), map[string]any{
		"cliente": p.ClienteNombre,
		"titulo":  p.Titulo,
	})
	resp := toPedidoResponse(p)
	return &resp, nil
}

func validarPedido(p *model.Pedido) error {
	switch {
	case p.ClienteNombre == "":
		return validationf("el nombre del cliente es obligatorio")
	case p.Titulo == "":
		return validationf("el título es obligatorio")
	case p.Cantidad < 1:
		return validationf("la cantidad debe ser al menos 1")
	case p.Sena.IsNegative():
		return validationf("la seña no puede ser negativa")
	}
	return nil
}

func (s *pedidoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "pedido")
	}
	resp := toPedidoResponse(p)
	return &resp, nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) ([]dto.PedidoResponse, error) {
	filter.Q = strings.TrimSpace(filter.Q)
	ps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PedidoResponse, len(ps))
	for i := range ps {
		out[i] = toPedidoResponse(&ps[i])
	}
	return out, nil
}

func (s *pedidoService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarPedidoRequest) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "pedido")
	}
	if req.ClienteNombre != nil {
		p.ClienteNombre = strings.TrimSpace(*req.ClienteNombre)
	}
	if req.Sena != nil {
		p.Sena = req.Sena.Round(2)
	}
	if req.Titulo != nil {
		p.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.Telefono != nil {
		p.Telefono = NormalizarTelefono(*req.Telefono)
	}
	if req.Autor != nil {
		p.Autor = strings.TrimSpace(*req.Autor)
	}
	if req.Editorial != nil {
		p.Editorial = strings.TrimSpace(*req.Editorial)
	}
	if req.Comentario != nil {
		p.Comentario = strings.TrimSpace(*req.Comentario)
	}
	if req.Cantidad != nil {
		p.Cantidad = *req.Cantidad
	}
	if req.ISBN != nil {
		p.ISBN = NormalizarISBN(*req.ISBN)
	}
	if err := validarPedido(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "pedido.actualizar", model.EntidadPedido, id.String(), req)
	resp := toPedidoResponse(p)
	return &resp, nil
}

// CambiarEstado records the supplier answer. An empty estado puts the order
// back to pending.
func (s *pedidoService) CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, req dto.EstadoPedidoRequest) (*dto.PedidoResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	fechaViene, err := ParseFechaOpcional(req.FechaViene)
	if err != nil {
		return nil, err
	}
	switch req.Estado {
	case model.PedidoViene:
		motivo = ""
	case model.PedidoNoViene:
		if motivo == "" {
			return nil, validationf("indicá el motivo por el que no viene")
		}
		fechaViene = nil
	case "":
		motivo, fechaViene = "", nil
	default:
		return nil, validationf("estado inválido %q", req.Estado)
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "pedido")
	}
	anterior := p.Estado
	p.Estado = req.Estado
	p.Motivo = motivo
	p.FechaViene = fechaViene
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "pedido.estado", model.EntidadPedido, id.String(), map[string]any{
		"anterior": anterior,
		"estado":   p.Estado,
		"motivo":   motivo,
	})
	resp := toPedidoResponse(p)
	return &resp, nil
}

func (s *pedidoService) Ocultar(ctx context.Context, actor Actor, id uuid.UUID, oculto bool) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "pedido")
	}
	p.Oculto = oculto
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "pedido.ocultar", model.EntidadPedido, id.String(), map[string]any{"oculto": oculto})
	resp := toPedidoResponse(p)
	return &resp, nil
}

func (s *pedidoService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "pedido")
	}
	registrarBestEffort(ctx, s.audit, actor, "pedido.eliminar", model.EntidadPedido, id.String(), nil)
	return nil
}

// ── Normalización ─────────────────────────────────────────────────────────────

// ParseFechaOpcional reads a YYYY-MM-DD date. "", "null", "undefined" and
// "0000-00-00" mean no date and return nil.
func ParseFechaOpcional(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", "null", "undefined", "0000-00-00":
		return nil, nil
	}
	f, err := time.Parse(formatoFecha, raw)
	if err != nil {
		return nil, validationf("fecha inválida %q: se espera AAAA-MM-DD", raw)
	}
	return &f, nil
}

// NormalizarTelefono formats Argentine numbers as E.164. Anything the parser
// rejects is stored as typed.
func NormalizarTelefono(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, regionTelefono)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
