package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Invoicer-api/internal/domain/billing"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		amounts  []string
		pct      string
		subtotal string
		tax      string
		total    string
	}{
		{"sin ítems", nil, "8", "0", "0", "0"},
		{"impuesto exacto", []string{"100"}, "8", "100", "8", "108"},
		{"redondeo hacia arriba", []string{"33"}, "8.5", "33", "3", "36"},
		{"mitad se aleja de cero", []string{"25"}, "10", "25", "3", "28"},
		{"redondeo hacia abajo", []string{"21"}, "10", "21", "2", "23"},
		{"varias líneas", []string{"5000", "2000"}, "8", "7000", "560", "7560"},
		{"sin impuesto", []string{"12000", "1800"}, "0", "13800", "0", "13800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]entity.LineItem, 0, len(tt.amounts))
			for _, a := range tt.amounts {
				items = append(items, entity.LineItem{Name: "x", Amount: dec(a)})
			}
			got := billing.ComputeTotals(items, dec(tt.pct))
			assert.True(t, dec(tt.subtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, dec(tt.tax).Equal(got.Tax), "tax %s", got.Tax)
			assert.True(t, dec(tt.total).Equal(got.Total), "total %s", got.Total)
			assert.True(t, got.Subtotal.Add(got.Tax).Equal(got.Total))
		})
	}
}

func TestComputeTotals_Deterministic(t *testing.T) {
	items := []entity.LineItem{{Name: "a", Amount: dec("19.99")}, {Name: "b", Amount: dec("0.01")}}
	first := billing.ComputeTotals(items, dec("7.25"))
	for i := 0; i < 10; i++ {
		again := billing.ComputeTotals(items, dec("7.25"))
		assert.True(t, first.Total.Equal(again.Total))
	}
}

func TestRecalculate(t *testing.T) {
	inv := &entity.Invoice{
		TaxPercentage: dec("10"),
		Items:         []entity.LineItem{{Name: "Widget", Qty: dec("2"), Rate: dec("50"), Amount: dec("100")}},
		Subtotal:      dec("999"),
		Total:         dec("999"),
	}
	billing.Recalculate(inv)

	assert.True(t, dec("100").Equal(inv.Subtotal))
	assert.True(t, dec("10").Equal(inv.Tax))
	assert.True(t, dec("110").Equal(inv.Total))
}
