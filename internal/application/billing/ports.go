package billing

import (
	"context"

	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

// BillingTxRunner ejecuta una función dentro de una transacción con los repos de facturación.
// Si fn devuelve error, o el contexto se cancela antes del commit, no se persiste nada.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// NumberGenerator asigna el identificador público de una factura nueva.
type NumberGenerator interface {
	Next() (string, error)
}
