package billing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RawLineItem línea tal como llega del cliente, antes de normalizar.
// Un campo numérico no válido llega como NullDecimal{Valid: false}.
type RawLineItem struct {
	Name   string
	Qty    decimal.NullDecimal
	Rate   decimal.NullDecimal
	Amount decimal.NullDecimal
}

// ErrNoItems la factura se quedó sin líneas válidas.
var ErrNoItems = fmt.Errorf("%w: se requiere al menos un ítem", domain.ErrValidation)

// NormalizeItems descarta las líneas sin nombre y deriva los importes.
//   - Name se guarda sin espacios alrededor.
//   - Qty y Rate ausentes o no numéricos valen 0.
//   - Amount explícito se respeta; si no, Amount = Qty * Rate.
func NormalizeItems(raw []RawLineItem) ([]entity.LineItem, error) {
	out := make([]entity.LineItem, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		qty := valueOrZero(r.Qty)
		rate := valueOrZero(r.Rate)
		amount := qty.Mul(rate)
		if r.Amount.Valid {
			amount = r.Amount.Decimal
		}
		out = append(out, entity.LineItem{
			Name:   name,
			Qty:    qty,
			Rate:   rate,
			Amount: amount,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoItems
	}
	return out, nil
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
