package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/infra"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/repository"
)

const (
	hojaMovimientos = "Movimientos"
	hojaTotales     = "Totales"
)

type ReporteService interface {
	// ExcelMovimientos returns the XLSX bytes and a suggested file name.
	ExcelMovimientos(ctx context.Context, turnoID uuid.UUID) ([]byte, string, error)
	// PDFCierre renders the closing report of a closed turno and returns the
	// file path together with the turno it describes.
	PDFCierre(ctx context.Context, turnoID uuid.UUID) (string, *model.Turno, error)
}

type reporteService struct {
	repo        repository.CajaRepository
	loc         *time.Location
	storagePath string
}

func NewReporteService(repo repository.CajaRepository, loc *time.Location, storagePath string) ReporteService {
	if loc == nil {
		loc = time.UTC
	}
	return &reporteService{repo: repo, loc: loc, storagePath: storagePath}
}

func (s *reporteService) ExcelMovimientos(ctx context.Context, turnoID uuid.UUID) ([]byte, string, error) {
	r, err := resumir(ctx, s.repo, turnoID, repository.SinLock)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hojaMovimientos); err != nil {
		return nil, "", err
	}
	headers := []any{"Fecha", "Tipo", "Método", "Monto", "Descripción", "Paga con", "Vuelto", "Estado", "Motivo"}
	if err := f.SetSheetRow(hojaMovimientos, "A1", &headers); err != nil {
		return nil, "", err
	}
	for i := range r.Movimientos {
		m := &r.Movimientos[i]
		estado, motivo := "activo", m.MotivoEdicion
		switch {
		case m.Eliminado:
			estado, motivo = "eliminado", m.MotivoEliminacion
		case m.Anulado:
			estado, motivo = "anulado", m.MotivoAnulacion
		case m.Editado:
			estado = "editado"
		}
		row := []any{
			m.CreadoEn.In(s.loc).Format("2006-01-02 15:04"),
			m.Tipo,
			infra.EtiquetaMetodo(m.MetodoPago),
			m.Monto.InexactFloat64(),
			m.Descripcion,
			optFloat(m.PagaCon),
			optFloat(m.Vuelto),
			estado,
			motivo,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", err
		}
		if err := f.SetSheetRow(hojaMovimientos, cell, &row); err != nil {
			return nil, "", err
		}
	}

	if _, err := f.NewSheet(hojaTotales); err != nil {
		return nil, "", err
	}
	filas := [][]any{
		{"Turno", r.Turno.Codigo},
		{"Fecha de negocio", r.Turno.FechaNegocio.Format(formatoFecha)},
		{"Sesión", r.Turno.Sesion},
		{"Estado", r.Turno.Estado},
		{"Fondo inicial", r.Turno.MontoInicial.InexactFloat64()},
	}
	for _, m := range model.MetodosPago {
		filas = append(filas, []any{infra.EtiquetaMetodo(m), r.Totales.Get(m).InexactFloat64()})
	}
	filas = append(filas, []any{"Efectivo teórico", r.EfectivoTeorico.InexactFloat64()})
	if r.Turno.EfectivoContado != nil {
		filas = append(filas, []any{"Efectivo contado", r.Turno.EfectivoContado.InexactFloat64()})
	}
	if r.Turno.Diferencia != nil {
		filas = append(filas, []any{"Diferencia", r.Turno.Diferencia.InexactFloat64()})
	}
	for i := range filas {
		if err := f.SetSheetRow(hojaTotales, fmt.Sprintf("A%d", i+1), &filas[i]); err != nil {
			return nil, "", err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("movimientos_%s.xlsx", r.Turno.Codigo), nil
}

func (s *reporteService) PDFCierre(ctx context.Context, turnoID uuid.UUID) (string, *model.Turno, error) {
	r, err := resumir(ctx, s.repo, turnoID, repository.SinLock)
	if err != nil {
		return "", nil, err
	}
	if r.Turno.Abierto() {
		return "", nil, conflictf("el turno %s sigue abierto", r.Turno.Codigo)
	}
	path, err := infra.GenerateCierrePDF(r.Turno, r.Totales, s.loc, s.storagePath)
	if err != nil {
		return "", nil, err
	}
	return path, r.Turno, nil
}

func optFloat(d *decimal.Decimal) any {
	if d == nil {
		return ""
	}
	return d.InexactFloat64()
}
