package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de cobro de una factura.
type InvoiceStatus string

// Estados válidos de una factura.
const (
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

// Valid informa si s es uno de los estados conocidos.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// Invoice representa una factura emitida por una Company de un User.
//
// ID es la clave de almacenamiento (UUID); Number es el identificador público
// ("INV-...") que usan los clientes. Number, OwnerID y CompanyID son inmutables.
// Subtotal, Tax y Total son derivados de Items y TaxPercentage (ver billing.Recalculate).
type Invoice struct {
	ID              string
	Number          string
	OwnerID         string
	CompanyID       string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Date            time.Time
	DueDate         time.Time
	Status          InvoiceStatus
	TaxPercentage   decimal.Decimal
	Items           []LineItem
	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LineItem línea facturable. No tiene identidad propia fuera de su Invoice.
type LineItem struct {
	Name   string
	Qty    decimal.Decimal
	Rate   decimal.Decimal
	Amount decimal.Decimal
}

// Clone devuelve una copia profunda (Items no comparte el arreglo subyacente).
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	return out
}
