package billing

import (
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals importes derivados de una factura.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals calcula subtotal, impuesto y total (servicio de dominio, puro).
// Subtotal = Σ Amount ; Tax = round(Subtotal * pct / 100) ; Total = Subtotal + Tax
// El redondeo es a unidades enteras, mitad alejándose de cero.
func ComputeTotals(items []entity.LineItem, taxPercentage decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}
	tax := subtotal.Mul(taxPercentage).Div(hundred).Round(0)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Recalculate reescribe Subtotal, Tax y Total a partir de Items y TaxPercentage.
// Es el único punto que escribe los importes derivados de una factura.
func Recalculate(inv *entity.Invoice) {
	t := ComputeTotals(inv.Items, inv.TaxPercentage)
	inv.Subtotal = t.Subtotal
	inv.Tax = t.Tax
	inv.Total = t.Total
}
