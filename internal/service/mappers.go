package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/dto"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

const (
	formatoFecha    = "2006-01-02"
	formatoInstante = time.RFC3339
)

func fmtInstante(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(formatoInstante)
	return &s
}

func fmtUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toTurnoResponse(t *model.Turno) dto.TurnoResponse {
	resp := dto.TurnoResponse{
		ID:                  t.ID.String(),
		Codigo:              t.Codigo,
		Estado:              t.Estado,
		FechaNegocio:        t.FechaNegocio.Format(formatoFecha),
		Sesion:              t.Sesion,
		AbiertoPorID:        t.AbiertoPorID.String(),
		AbiertoEn:           t.AbiertoEn.UTC().Format(formatoInstante),
		ObservacionApertura: t.ObservacionApertura,
		CerradoPorID:        fmtUUID(t.CerradoPorID),
		CerradoEn:           fmtInstante(t.CerradoEn),
		ObservacionCierre:   t.ObservacionCierre,
		MontoInicial:        t.MontoInicial,
		EfectivoContado:     t.EfectivoContado,
		EfectivoTeorico:     t.EfectivoTeorico,
		Diferencia:          t.Diferencia,
	}
	for i := range t.Denominaciones {
		resp.Denominaciones = append(resp.Denominaciones, toDenominacionResponse(&t.Denominaciones[i]))
	}
	return resp
}

func toDenominacionResponse(d *model.DenominacionApertura) dto.DenominacionResponse {
	return dto.DenominacionResponse{
		ID:            d.ID.String(),
		Etiqueta:      d.Etiqueta,
		Monto:         d.Monto,
		Editado:       d.Editado,
		EditadoPorID:  fmtUUID(d.EditadoPorID),
		EditadoEn:     fmtInstante(d.EditadoEn),
		MotivoEdicion: d.MotivoEdicion,
	}
}

func toMovimientoResponse(m *model.MovimientoCaja) dto.MovimientoResponse {
	return dto.MovimientoResponse{
		ID:                m.ID.String(),
		TurnoID:           m.TurnoID.String(),
		Tipo:              m.Tipo,
		MetodoPago:        m.MetodoPago,
		Monto:             m.Monto,
		Descripcion:       m.Descripcion,
		PagaCon:           m.PagaCon,
		Vuelto:            m.Vuelto,
		CreadoPorID:       m.CreadoPorID.String(),
		CreadoEn:          m.CreadoEn.UTC().Format(formatoInstante),
		Editado:           m.Editado,
		EditadoPorID:      fmtUUID(m.EditadoPorID),
		EditadoEn:         fmtInstante(m.EditadoEn),
		MotivoEdicion:     m.MotivoEdicion,
		Anulado:           m.Anulado,
		AnuladoPorID:      fmtUUID(m.AnuladoPorID),
		AnuladoEn:         fmtInstante(m.AnuladoEn),
		MotivoAnulacion:   m.MotivoAnulacion,
		ReversoDeID:       fmtUUID(m.ReversoDeID),
		Eliminado:         m.Eliminado,
		EliminadoPorID:    fmtUUID(m.EliminadoPorID),
		EliminadoEn:       fmtInstante(m.EliminadoEn),
		MotivoEliminacion: m.MotivoEliminacion,
	}
}

func toArqueoResponse(a *model.Arqueo) dto.ArqueoResponse {
	return dto.ArqueoResponse{
		ID:              a.ID.String(),
		TurnoID:         a.TurnoID.String(),
		UsuarioID:       a.UsuarioID.String(),
		EfectivoContado: a.EfectivoContado,
		EfectivoTeorico: a.EfectivoTeorico,
		Diferencia:      a.Diferencia,
		Totales:         map[string]decimal.Decimal(a.Totales),
		Observacion:     a.Observacion,
		EsCierre:        a.EsCierre,
		CreadoEn:        a.CreadoEn.UTC().Format(formatoInstante),
	}
}

func toLogResponse(id uuid.UUID, tipo string, entidadID, turnoID uuid.UUID, snapshot json.RawMessage, motivo string, usuarioID uuid.UUID, creado time.Time) dto.LogResponse {
	var snap map[string]any
	_ = json.Unmarshal(snapshot, &snap)
	return dto.LogResponse{
		ID:          id.String(),
		EntidadTipo: tipo,
		EntidadID:   entidadID.String(),
		TurnoID:     turnoID.String(),
		Snapshot:    snap,
		Motivo:      motivo,
		UsuarioID:   usuarioID.String(),
		CreadoEn:    creado.UTC().Format(formatoInstante),
	}
}

func toEventoResponse(e *model.EventoAuditoria) dto.EventoAuditoriaResponse {
	var detalle map[string]any
	_ = json.Unmarshal(e.Detalle, &detalle)
	return dto.EventoAuditoriaResponse{
		ID:          e.ID.String(),
		UsuarioID:   fmtUUID(e.UsuarioID),
		Username:    e.Username,
		Accion:      e.Accion,
		EntidadTipo: e.EntidadTipo,
		EntidadID:   e.EntidadID,
		Detalle:     detalle,
		CreadoEn:    e.CreadoEn.UTC().Format(formatoInstante),
	}
}

func toLibroResponse(l *model.Libro) dto.LibroResponse {
	return dto.LibroResponse{
		ID:        l.ID.String(),
		Titulo:    l.Titulo,
		Autor:     l.Autor,
		Editorial: l.Editorial,
		ISBN:      l.ISBN,
		Stock:     l.Stock,
		Precio:    l.Precio,
		Ubicacion: l.Ubicacion,
		FechaAlta: l.FechaAlta.UTC().Format(formatoInstante),
		FechaBaja: fmtInstante(l.FechaBaja),
	}
}

func toLibroBajaResponse(b *model.LibroBaja) dto.LibroBajaResponse {
	return dto.LibroBajaResponse{
		ID:              b.ID.String(),
		LibroID:         b.LibroID.String(),
		Titulo:          b.Titulo,
		Autor:           b.Autor,
		Editorial:       b.Editorial,
		ISBN:            b.ISBN,
		Precio:          b.Precio,
		Ubicacion:       b.Ubicacion,
		CantidadBajada:  b.CantidadBajada,
		StockResultante: b.StockResultante,
		Motivo:          b.Motivo,
		UsuarioID:       b.UsuarioID.String(),
		FechaBaja:       b.FechaBaja.UTC().Format(formatoInstante),
	}
}

func toFaltanteResponse(f *model.Faltante) dto.FaltanteResponse {
	return dto.FaltanteResponse{
		ID:            f.ID.String(),
		Descripcion:   f.Descripcion,
		Eliminado:     f.Eliminado,
		FechaCreacion: f.FechaCreacion.UTC().Format(formatoInstante),
	}
}

func toPedidoResponse(p *model.Pedido) dto.PedidoResponse {
	resp := dto.PedidoResponse{
		ID:            p.ID.String(),
		ClienteNombre: p.ClienteNombre,
		Sena:          p.Sena,
		Fecha:         p.Fecha.UTC().Format(formatoInstante),
		Titulo:        p.Titulo,
		Telefono:      p.Telefono,
		Autor:         p.Autor,
		Editorial:     p.Editorial,
		Comentario:    p.Comentario,
		Cantidad:      p.Cantidad,
		ISBN:          p.ISBN,
		Estado:        p.Estado,
		Motivo:        p.Motivo,
		Oculto:        p.Oculto,
	}
	if p.FechaViene != nil {
		s := p.FechaViene.Format(formatoFecha)
		resp.FechaViene = &s
	}
	return resp
}

func toUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	resp := dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Rol:      u.Rol,
		Activo:   u.Activo,
	}
	if u.UltimoLoginEn != nil {
		s := u.UltimoLoginEn.UTC().Format(formatoInstante)
		resp.UltimoLoginEn = &s
	}
	return resp
}
