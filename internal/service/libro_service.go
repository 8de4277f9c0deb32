package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

const (
	libroISBNCacheTTL   = 4 * time.Hour
	libroExternoTTL     = 24 * time.Hour
	maxIntentosISBN     = 20
	librosLimitDefault  = 20
	librosLimitMax      = 100
	cacheKeyLibroISBN   = "libro:isbn:"
	cacheKeyISBNExterno = "isbn:externo:"
)

// Cache is the byte cache behind ISBN lookups. Implemented over Redis by
// infra.RedisCache; every error from Get is treated as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// BuscadorExterno resolves bibliographic data for an ISBN outside the store.
type BuscadorExterno interface {
	Buscar(ctx context.Context, isbn string) (*infra.LibroExterno, error)
}

type LibroService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearLibroRequest) (*dto.LibroResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.LibroResponse, error)
	BuscarPorISBN(ctx context.Context, isbn string) (*dto.LibroResponse, error)
	Buscar(ctx context.Context, filter dto.LibroFilter) (*dto.LibroListResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarLibroRequest) (*dto.LibroResponse, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
	Bajar(ctx context.Context, actor Actor, id uuid.UUID, req dto.BajarLibroRequest) (*dto.LibroBajaResponse, error)
	ListarBajas(ctx context.Context, page, limit int) (*dto.LibroBajaListResponse, error)
	GenerarISBN(ctx context.Context) (*dto.ISBNGeneradoResponse, error)
	BuscarExterno(ctx context.Context, isbn string) (*dto.LibroExternoResponse, error)
}

type libroService struct {
	repo    repository.LibroRepository
	cache   Cache
	externo BuscadorExterno
	audit   AuditoriaService
	prefijo string
}

// NewLibroService wires the inventory. cache and externo may be nil; without
// externo BuscarExterno always reports not found.
func NewLibroService(repo repository.LibroRepository, cache Cache, externo BuscadorExterno, audit AuditoriaService, prefijoISBN string) LibroService {
	return &libroService{repo: repo, cache: cache, externo: externo, audit: audit, prefijo: prefijoISBN}
}

// ── Alta / modificación ───────────────────────────────────────────────────────

func (s *libroService) Crear(ctx context.Context, actor Actor, req dto.CrearLibroRequest) (*dto.LibroResponse, error) {
	libro := &model.Libro{
		ID:        uuid.New(),
		Titulo:    strings.TrimSpace(req.Titulo),
		Autor:     strings.TrimSpace(req.Autor),
		Editorial: strings.TrimSpace(req.Editorial),
		ISBN:      NormalizarISBN(req.ISBN),
		Stock:     req.Stock,
		Precio:    req.Precio.Round(2),
		Ubicacion: strings.TrimSpace(req.Ubicacion),
		FechaAlta: time.Now().UTC(),
	}
	if err := validarLibro(libro); err != nil {
		return nil, err
	}
	existe, err := s.repo.ExisteISBN(ctx, libro.ISBN)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, conflictf("ya existe un libro con ISBN %s", libro.ISBN)
	}
	if err := s.repo.Create(ctx, libro); err != nil {
		if isDuplicate(err) {
			return nil, conflictf("ya existe un libro con ISBN %s", libro.ISBN)
		}
		return nil, err
	}

	registrarBestEffort(ctx, s.audit, actor, "libro.crear", model.EntidadLibro, libro.ID.String(), map[string]any{
		"isbn":   libro.ISBN,
		"titulo": libro.Titulo,
		"stock":  libro.Stock,
	})
	resp := toLibroResponse(libro)
	return &resp, nil
}

func validarLibro(l *model.Libro) error {
	switch {
	case l.Titulo == "":
		return validationf("el título es obligatorio")
	case l.Autor == "":
		return validationf("el autor es obligatorio")
	case l.ISBN == "":
		return validationf("el ISBN es obligatorio")
	case l.Ubicacion == "":
		return validationf("la ubicación es obligatoria")
	case l.Stock < 0:
		return validationf("el stock no puede ser negativo")
	case l.Precio.IsNegative():
		return validationf("el precio no puede ser negativo")
	}
	return nil
}

func (s *libroService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarLibroRequest) (*dto.LibroResponse, error) {
	libro, err := s.repo.FindByID(ctx, id, repository.SinLock)
	if err != nil {
		return nil, storeErr(err, "libro")
	}
	isbnAnterior := libro.ISBN

	if req.Titulo != nil {
		libro.Titulo = strings.TrimSpace(*req.Titulo)
	}
	if req.Autor != nil {
		libro.Autor = strings.TrimSpace(*req.Autor)
	}
	if req.Editorial != nil {
		libro.Editorial = strings.TrimSpace(*req.Editorial)
	}
	if req.ISBN != nil {
		libro.ISBN = NormalizarISBN(*req.ISBN)
	}
	if req.Stock != nil {
		libro.Stock = *req.Stock
	}
	if req.Precio != nil {
		libro.Precio = req.Precio.Round(2)
	}
	if req.Ubicacion != nil {
		libro.Ubicacion = strings.TrimSpace(*req.Ubicacion)
	}
	if err := validarLibro(libro); err != nil {
		return nil, err
	}
	if libro.ISBN != isbnAnterior {
		existe, err := s.repo.ExisteISBN(ctx, libro.ISBN)
		if err != nil {
			return nil, err
		}
		if existe {
			return nil, conflictf("ya existe un libro con ISBN %s", libro.ISBN)
		}
	}
	if err := s.repo.Update(ctx, libro); err != nil {
		if isDuplicate(err) {
			return nil, conflictf("ya existe un libro con ISBN %s", libro.ISBN)
		}
		return nil, err
	}

	s.invalidar(ctx, isbnAnterior, libro.ISBN)
	registrarBestEffort(ctx, s.audit, actor, "libro.actualizar", model.EntidadLibro, libro.ID.String(), req)
	resp := toLibroResponse(libro)
	return &resp, nil
}

func (s *libroService) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	libro, err := s.repo.FindByID(ctx, id, repository.SinLock)
	if err != nil {
		return storeErr(err, "libro")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, "libro")
	}
	s.invalidar(ctx, libro.ISBN)
	registrarBestEffort(ctx, s.audit, actor, "libro.eliminar", model.EntidadLibro, id.String(), map[string]any{
		"isbn":   libro.ISBN,
		"titulo": libro.Titulo,
	})
	return nil
}

// ── Bajas de stock ────────────────────────────────────────────────────────────

func (s *libroService) Bajar(ctx context.Context, actor Actor, id uuid.UUID, req dto.BajarLibroRequest) (*dto.LibroBajaResponse, error) {
	if req.Cantidad < 1 {
		return nil, validationf("la cantidad debe ser al menos 1")
	}

	var baja *model.LibroBaja
	var isbn string
	err := s.repo.Transaction(ctx, func(tx repository.LibroRepository) error {
		libro, err := tx.FindByID(ctx, id, repository.LockExclusivo)
		if err != nil {
			return storeErr(err, "libro")
		}
		if libro.Stock < req.Cantidad {
			return conflictf("stock insuficiente: hay %d, se pidió bajar %d", libro.Stock, req.Cantidad)
		}
		now := time.Now().UTC()
		libro.Stock -= req.Cantidad
		libro.FechaBaja = &now
		if err := tx.Update(ctx, libro); err != nil {
			return err
		}
		isbn = libro.ISBN

		baja = &model.LibroBaja{
			ID:              uuid.New(),
			LibroID:         libro.ID,
			Titulo:          libro.Titulo,
			Autor:           libro.Autor,
			Editorial:       libro.Editorial,
			ISBN:            libro.ISBN,
			Precio:          libro.Precio,
			Ubicacion:       libro.Ubicacion,
			CantidadBajada:  req.Cantidad,
			StockResultante: libro.Stock,
			Motivo:          strings.TrimSpace(req.Motivo),
			UsuarioID:       actor.ID,
			FechaBaja:       now,
		}
		return tx.CreateBaja(ctx, baja)
	})
	if err != nil {
		return nil, err
	}

	s.invalidar(ctx, isbn)
	registrarBestEffort(ctx, s.audit, actor, "libro.bajar", model.EntidadLibro, id.String(), map[string]any{
		"cantidad":         baja.CantidadBajada,
		"stock_resultante": baja.StockResultante,
		"motivo":           baja.Motivo,
	})
	resp := toLibroBajaResponse(baja)
	return &resp, nil
}

func (s *libroService) ListarBajas(ctx context.Context, page, limit int) (*dto.LibroBajaListResponse, error) {
	page, limit = paginar(page, limit, librosLimitDefault, librosLimitMax)
	bajas, total, err := s.repo.ListBajas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LibroBajaResponse, len(bajas))
	for i := range bajas {
		data[i] = toLibroBajaResponse(&bajas[i])
	}
	return &dto.LibroBajaListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *libroService) Obtener(ctx context.Context, id uuid.UUID) (*dto.LibroResponse, error) {
	libro, err := s.repo.FindByID(ctx, id, repository.SinLock)
	if err != nil {
		return nil, storeErr(err, "libro")
	}
	resp := toLibroResponse(libro)
	return &resp, nil
}

// BuscarPorISBN serves the counter scanner: cache first, then the database.
func (s *libroService) BuscarPorISBN(ctx context.Context, isbn string) (*dto.LibroResponse, error) {
	isbn = NormalizarISBN(isbn)
	if isbn == "" {
		return nil, validationf("ISBN vacío")
	}
	key := cacheKeyLibroISBN + isbn

	var resp dto.LibroResponse
	if s.leerCache(ctx, key, &resp) {
		return &resp, nil
	}

	libro, err := s.repo.FindByISBN(ctx, isbn)
	if err != nil {
		return nil, storeErr(err, "libro")
	}
	resp = toLibroResponse(libro)
	s.escribirCache(ctx, key, resp, libroISBNCacheTTL)
	return &resp, nil
}

func (s *libroService) Buscar(ctx context.Context, filter dto.LibroFilter) (*dto.LibroListResponse, error) {
	filter.Page, filter.Limit = paginar(filter.Page, filter.Limit, librosLimitDefault, librosLimitMax)
	filter.ISBN = NormalizarISBN(filter.ISBN)
	libros, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.LibroResponse, len(libros))
	for i := range libros {
		data[i] = toLibroResponse(&libros[i])
	}
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.LibroListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit, TotalPages: pages}, nil
}

// ── ISBN ──────────────────────────────────────────────────────────────────────

// GenerarISBN draws from the internal sequence, skipping numbers already taken
// by a manually loaded book.
func (s *libroService) GenerarISBN(ctx context.Context) (*dto.ISBNGeneradoResponse, error) {
	for i := 0; i < maxIntentosISBN; i++ {
		seq, err := s.repo.NextISBNSeq(ctx)
		if err != nil {
			return nil, err
		}
		isbn := ISBNInterno(s.prefijo, seq)
		existe, err := s.repo.ExisteISBN(ctx, isbn)
		if err != nil {
			return nil, err
		}
		if !existe {
			return &dto.ISBNGeneradoResponse{ISBN: isbn}, nil
		}
	}
	return nil, conflictf("no se encontró un ISBN interno libre tras %d intentos", maxIntentosISBN)
}

func (s *libroService) BuscarExterno(ctx context.Context, isbn string) (*dto.LibroExternoResponse, error) {
	isbn = NormalizarISBN(isbn)
	if !ISBNConsultable(isbn) {
		return nil, validationf("ISBN inválido: debe tener 10 o 13 dígitos")
	}
	key := cacheKeyISBNExterno + isbn

	var resp dto.LibroExternoResponse
	if s.leerCache(ctx, key, &resp) {
		return &resp, nil
	}
	if s.externo == nil {
		return nil, notFoundf("no se encontraron datos para el ISBN %s", isbn)
	}

	ext, err := s.externo.Buscar(ctx, isbn)
	if err != nil {
		if errors.Is(err, infra.ErrLibroExternoNoEncontrado) {
			return nil, notFoundf("no se encontraron datos para el ISBN %s", isbn)
		}
		return nil, err
	}
	resp = dto.LibroExternoResponse{
		ISBN:      ext.ISBN,
		Titulo:    ext.Titulo,
		Autor:     ext.Autor,
		Editorial: ext.Editorial,
		Fuente:    ext.Fuente,
	}
	s.escribirCache(ctx, key, resp, libroExternoTTL)
	return &resp, nil
}

// ── Cache ─────────────────────────────────────────────────────────────────────

func (s *libroService) leerCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// escribirCache is best effort: a failed write only costs a future miss.
func (s *libroService) escribirCache(ctx context.Context, key string, val any, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, ttl); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("libros: cache set failed")
	}
}

func (s *libroService) invalidar(ctx context.Context, isbns ...string) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, len(isbns))
	for _, isbn := range isbns {
		if isbn != "" {
			keys = append(keys, cacheKeyLibroISBN+isbn)
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("libros: cache invalidation failed")
	}
}
