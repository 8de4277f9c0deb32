package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

type FaltanteService interface {
	Crear(ctx context.Context, actor Actor, req dto.FaltanteRequest) (*dto.FaltanteResponse, error)
	Listar(ctx context.Context) ([]dto.FaltanteResponse, error)
	Editar(ctx context.Context, actor Actor, id uuid.UUID, req dto.FaltanteRequest) (*dto.FaltanteResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	Limpiar(ctx context.Context, actor Actor) (*dto.LimpiarFaltantesResponse, error)
}

type faltanteService struct {
	repo  repository.FaltanteRepository
	audit AuditoriaService
}

func NewFaltanteService(repo repository.FaltanteRepository, audit AuditoriaService) FaltanteService {
	return &faltanteService{repo: repo, audit: audit}
}

func (s *faltanteService) Crear(ctx context.Context, actor Actor, req dto.FaltanteRequest) (*dto.FaltanteResponse, error) {
	desc := strings.TrimSpace(req.Descripcion)
	if desc == "" {
		return nil, validationf("la descripción es obligatoria")
	}
	f := &model.Faltante{ID: uuid.New(), Descripcion: desc, FechaCreacion: time.Now().UTC()}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "faltante.crear", model.EntidadFaltante, f.ID.String(), map[string]any{"descripcion": desc})
	resp := toFaltanteResponse(f)
	return &resp, nil
}

func (s *faltanteService) Listar(ctx context.Context) ([]dto.FaltanteResponse, error) {
	fs, err := s.repo.ListActivos(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.FaltanteResponse, len(fs))
	for i := range fs {
		out[i] = toFaltanteResponse(&fs[i])
	}
	return out, nil
}

func (s *faltanteService) Editar(ctx context.Context, actor Actor, id uuid.UUID, req dto.FaltanteRequest) (*dto.FaltanteResponse, error) {
	desc := strings.TrimSpace(req.Descripcion)
	if desc == "" {
		return nil, validationf("la descripción es obligatoria")
	}
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "faltante")
	}
	anterior := f.Descripcion
	f.Descripcion = desc
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "faltante.editar", model.EntidadFaltante, id.String(), map[string]any{
		"anterior":    anterior,
		"descripcion": desc,
	})
	resp := toFaltanteResponse(f)
	return &resp, nil
}

func (s *faltanteService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr(err, "faltante")
	}
	f.Eliminado = true
	if err := s.repo.Update(ctx, f); err != nil {
		return err
	}
	registrarBestEffort(ctx, s.audit, actor, "faltante.eliminar", model.EntidadFaltante, id.String(), nil)
	return nil
}

func (s *faltanteService) Limpiar(ctx context.Context, actor Actor) (*dto.LimpiarFaltantesResponse, error) {
	n, err := s.repo.MarcarTodosEliminados(ctx)
	if err != nil {
		return nil, err
	}
	registrarBestEffort(ctx, s.audit, actor, "faltante.limpiar", model.EntidadFaltante, "*", map[string]any{"eliminados": n})
	return &dto.LimpiarFaltantesResponse{Eliminados: n}, nil
}
