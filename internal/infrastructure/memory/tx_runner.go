package memory

import (
	"context"

	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)
var _ usecase.CompanyTxRunner = (*TxRunner)(nil)

// TxRunner transacciones todo-o-nada sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner con el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

// RunBilling toma el lock de escritura, ejecuta fn sobre una copia del estado y la
// publica solo si fn no devolvió error y el contexto sigue vivo.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	companyRepo repository.CompanyRepository,
	invoiceRepo repository.InvoiceRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	tx := txAccess{st: r.store.st.clone()}
	if err := fn(&CompanyRepo{db: tx}, &InvoiceRepo{db: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.st = tx.st
	return nil
}
