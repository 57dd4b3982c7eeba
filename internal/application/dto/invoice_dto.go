package dto

import (
	"github.com/shopspring/decimal"
)

// LineItemRequest línea tal como la envía el cliente; qty, rate y amount son tolerantes.
type LineItemRequest struct {
	Name   string `json:"name"`
	Qty    Number `json:"qty"`
	Rate   Number `json:"rate"`
	Amount Number `json:"amount"`
}

// CreateInvoiceRequest body para POST /api/invoices.
// Date y DueDate en formato YYYY-MM-DD; vacíos toman los valores por defecto.
type CreateInvoiceRequest struct {
	CompanyID       string            `json:"companyId"`
	CustomerName    string            `json:"customerName" validate:"max=200"`
	CustomerEmail   string            `json:"customerEmail"`
	CustomerAddress string            `json:"customerAddress"`
	Date            string            `json:"date"`
	DueDate         string            `json:"dueDate"`
	Status          string            `json:"status"`
	TaxPercentage   Number            `json:"taxPercentage"`
	Items           []LineItemRequest `json:"items"`
	// Number solo lo usa el seed; el API lo ignora.
	Number string `json:"-"`
}

// UpdateInvoiceRequest body para PATCH /api/invoices/:id. Solo se aplican los campos presentes.
//
// Los identificadores (id, invoiceId, userId, ownerId, companyId) se aceptan para
// compatibilidad con clientes que reenvían el documento completo, pero se descartan.
type UpdateInvoiceRequest struct {
	CustomerName    *string           `json:"customerName" validate:"omitempty,max=200"`
	CustomerEmail   *string           `json:"customerEmail"`
	CustomerAddress *string           `json:"customerAddress"`
	Date            *string           `json:"date"`
	DueDate         *string           `json:"dueDate"`
	Status          *string           `json:"status"`
	TaxPercentage   Number            `json:"taxPercentage"`
	Items           []LineItemRequest `json:"items"`

	ID        *string `json:"id"`
	InvoiceID *string `json:"invoiceId"`
	UserID    *string `json:"userId"`
	OwnerID   *string `json:"ownerId"`
	CompanyID *string `json:"companyId"`
}

// StripImmutable descarta los identificadores recibidos y devuelve sus nombres JSON.
func (r *UpdateInvoiceRequest) StripImmutable() []string {
	var stripped []string
	for name, p := range map[string]**string{
		"id":        &r.ID,
		"invoiceId": &r.InvoiceID,
		"userId":    &r.UserID,
		"ownerId":   &r.OwnerID,
		"companyId": &r.CompanyID,
	} {
		if *p != nil {
			stripped = append(stripped, name)
			*p = nil
		}
	}
	return stripped
}

// LineItemResponse línea en las respuestas.
type LineItemResponse struct {
	Name   string          `json:"name"`
	Qty    decimal.Decimal `json:"qty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// InvoiceResponse factura en las respuestas. ID es el número público.
type InvoiceResponse struct {
	ID              string             `json:"id"`
	Key             string             `json:"key"`
	CompanyID       string             `json:"companyId"`
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail,omitempty"`
	CustomerAddress string             `json:"customerAddress,omitempty"`
	Date            string             `json:"date"`
	DueDate         string             `json:"dueDate"`
	Status          string             `json:"status"`
	Overdue         bool               `json:"overdue"`
	TaxPercentage   decimal.Decimal    `json:"taxPercentage"`
	Items           []LineItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Tax             decimal.Decimal    `json:"tax"`
	Total           decimal.Decimal    `json:"total"`
}

// InvoiceSummaryResponse totales del tablero (GET /api/invoices/summary).
type InvoiceSummaryResponse struct {
	TotalInvoices int             `json:"totalInvoices"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	PaidCount     int             `json:"paidCount"`
	PendingCount  int             `json:"pendingCount"`
	OverdueCount  int             `json:"overdueCount"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}
