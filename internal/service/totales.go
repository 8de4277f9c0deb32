package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nicolasdelfino-123/stock-tp-final-practicas/internal/model"
)

// signo returns +1 for money entering the register and -1 for money leaving.
func signo(tipo string) int64 {
	switch tipo {
	case model.MovimientoVenta, model.MovimientoAjuste:
		return 1
	default:
		return -1
	}
}

// CalcularTotales aggregates the movements of one turno by payment method.
//
// Soft-deleted rows never count. Every other row contributes its monto with
// the sign of its tipo: venta and ajuste add, salida subtracts. A reverso
// carries the opposite sign of the movement it voids, so the pair always
// nets to zero (for the reversal of a venta that is a subtraction).
// Each running total is rounded to 2 decimals after every addition.
//
// movs must contain the turno's soft-deleted rows too, so a reversal can
// always resolve its original.
func CalcularTotales(movs []model.MovimientoCaja) model.TotalesPorMetodo {
	tipos := make(map[uuid.UUID]string, len(movs))
	for i := range movs {
		tipos[movs[i].ID] = movs[i].Tipo
	}

	totales := make(model.TotalesPorMetodo, len(model.MetodosPago))
	for _, m := range model.MetodosPago {
		totales[m] = decimal.Zero
	}

	for i := range movs {
		m := &movs[i]
		if m.Eliminado {
			continue
		}
		s := signo(m.Tipo)
		if m.EsReverso() && m.ReversoDeID != nil {
			if orig, ok := tipos[*m.ReversoDeID]; ok {
				s = -signo(orig)
			}
		}
		acc := totales[m.MetodoPago]
		totales[m.MetodoPago] = acc.Add(m.Monto.Mul(decimal.NewFromInt(s))).Round(2)
	}
	return totales
}

// EfectivoTeorico is the cash that should be in the drawer: net cash
// movements plus the opening float.
func EfectivoTeorico(totales model.TotalesPorMetodo, montoInicial decimal.Decimal) decimal.Decimal {
	return totales.Get(model.MetodoEfectivo).Add(montoInicial).Round(2)
}

// clasificarDiferencia returns "normal" | "advertencia" | "critico"
// normal: |dif| <= 1% of theoretical cash, advertencia: <= 5%, critico: > 5%.
// With zero theoretical cash any difference is critico.
func clasificarDiferencia(dif, teorico decimal.Decimal) (decimal.Decimal, string) {
	if dif.IsZero() {
		return decimal.Zero, "normal"
	}
	if teorico.IsZero() {
		return decimal.Zero, "critico"
	}
	pct := dif.Div(teorico.Abs()).Mul(decimal.NewFromInt(100)).Round(2)
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return pct, "normal"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return pct, "advertencia"
	default:
		return pct, "critico"
	}
}
