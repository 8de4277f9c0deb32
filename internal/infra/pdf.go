package infra

// pdf.go: closing report for a turno using go-pdf/fpdf.
// One A4 page with:
//   - Header with the shift code and business date
//   - Opening and closing data
//   - Opening denominations
//   - Net totals per payment method
//   - Theoretical cash, counted cash and variance
//
// The output file is saved to storagePath/cierre_{codigo}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

var etiquetasMetodo = map[string]string{
	model.MetodoEfectivo:               "Efectivo",
	model.MetodoTransferenciaBancaria:  "Transferencia bancaria",
	model.MetodoTransferenciaBilletera: "Transferencia billetera",
	model.MetodoDebito:                 "Débito",
	model.MetodoCredito:                "Crédito",
	model.MetodoOtro:                   "Otro",
}

// EtiquetaMetodo returns the human label of a payment method.
func EtiquetaMetodo(metodo string) string {
	if l, ok := etiquetasMetodo[metodo]; ok {
		return l
	}
	return metodo
}

// GenerateCierrePDF renders the closing report of a closed turno.
// loc is used to print instants in the business timezone.
// Returns the path of the generated file.
func GenerateCierrePDF(turno *model.Turno, totales model.TotalesPorMetodo, loc *time.Location, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("cierre_%s.pdf", turno.Codigo))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30
	labelW := contentW * 0.6
	valueW := contentW * 0.4

	fila := func(label, value string) {
		pdf.CellFormat(labelW, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, tr(value), "", 1, "R", false, 0, "")
	}
	separador := func() {
		pdf.Ln(2)
		pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
		pdf.Ln(3)
	}

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, tr("Cierre de caja"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Turno %s · %s · %s", turno.Codigo, turno.FechaNegocio.Format("02/01/2006"), turno.Sesion)), "", 1, "C", false, 0, "")
	separador()

	// ── Turno ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	fila("Apertura", turno.AbiertoEn.In(loc).Format("02/01/2006 15:04"))
	if turno.CerradoEn != nil {
		fila("Cierre", turno.CerradoEn.In(loc).Format("02/01/2006 15:04"))
	}
	if turno.ObservacionApertura != "" {
		fila("Observación de apertura", turno.ObservacionApertura)
	}
	if turno.ObservacionCierre != "" {
		fila("Observación de cierre", turno.ObservacionCierre)
	}
	separador()

	// ── Denominaciones ────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Fondo inicial"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, d := range turno.Denominaciones {
		label := d.Etiqueta
		if d.Editado {
			label += " (editado)"
		}
		fila(label, moneda(d.Monto))
	}
	pdf.SetFont("Helvetica", "B", 10)
	fila("Total fondo inicial", moneda(turno.MontoInicial))
	separador()

	// ── Totales por método ────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, tr("Totales por método de pago"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, m := range model.MetodosPago {
		fila(EtiquetaMetodo(m), moneda(totales.Get(m)))
	}
	separador()

	// ── Arqueo ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	if turno.EfectivoTeorico != nil {
		fila("Efectivo teórico", moneda(*turno.EfectivoTeorico))
	}
	if turno.EfectivoContado != nil {
		fila("Efectivo contado", moneda(*turno.EfectivoContado))
	}
	if turno.Diferencia != nil {
		pdf.SetFont("Helvetica", "B", 12)
		fila("Diferencia", moneda(*turno.Diferencia))
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func moneda(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
