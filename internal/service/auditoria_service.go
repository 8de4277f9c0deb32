package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	auditoriaLimitDefault = 500
	auditoriaLimitMax     = 500
)

// auditWriter is satisfied by both CajaRepository (inside a ledger
// transaction) and AuditoriaRepository (standalone).
type auditWriter interface {
	CreateEvento(ctx context.Context, e *model.EventoAuditoria) error
}

type AuditoriaService interface {
	// Registrar appends an audit event. Callers outside the cash ledger use it
	// after their own commit and only log a failure.
	Registrar(ctx context.Context, actor Actor, accion, entidadTipo, entidadID string, detalle any) (*model.EventoAuditoria, error)
	Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error)
}

type auditoriaService struct {
	repo repository.AuditoriaRepository
}

func NewAuditoriaService(repo repository.AuditoriaRepository) AuditoriaService {
	return &auditoriaService{repo: repo}
}

func (s *auditoriaService) Registrar(ctx context.Context, actor Actor, accion, entidadTipo, entidadID string, detalle any) (*model.EventoAuditoria, error) {
	return registrarEvento(ctx, s.repo, actor, accion, entidadTipo, entidadID, detalle)
}

func (s *auditoriaService) Listar(ctx context.Context, filter dto.AuditoriaFilter) (*dto.AuditoriaListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, auditoriaLimitDefault, auditoriaLimitMax)
	eventos, total, err := s.repo.ListEventos(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EventoAuditoriaResponse, len(eventos))
	for i := range eventos {
		data[i] = toEventoResponse(&eventos[i])
	}
	return &dto.AuditoriaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func registrarEvento(ctx context.Context, w auditWriter, actor Actor, accion, entidadTipo, entidadID string, detalle any) (*model.EventoAuditoria, error) {
	raw, err := json.Marshal(detalle)
	if err != nil {
		return nil, err
	}
	e := &model.EventoAuditoria{
		ID:          uuid.New(),
		Username:    actor.Username,
		Accion:      accion,
		EntidadTipo: entidadTipo,
		EntidadID:   entidadID,
		Detalle:     raw,
		CreadoEn:    time.Now().UTC(),
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		e.UsuarioID = &id
	}
	if err := w.CreateEvento(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// registrarBestEffort is the fail-open variant used once the primary write
// is already committed.
func registrarBestEffort(ctx context.Context, audit AuditoriaService, actor Actor, accion, entidadTipo, entidadID string, detalle any) {
	if audit == nil {
		return
	}
	if _, err := audit.Registrar(ctx, actor, accion, entidadTipo, entidadID, detalle); err != nil {
		log.Warn().Err(err).
			Str("accion", accion).
			Str("entidad", entidadTipo).
			Str("entidad_id", entidadID).
			Msg("auditoria: no se pudo registrar el evento")
	}
}

func paginar(page, limit, def, maxLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
