package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// Equivalente en memoria del ON DELETE RESTRICT de Postgres.
var errCompanyInUse = fmt.Errorf("%w: no se puede eliminar una empresa con facturas", domain.ErrConflict)

// InvoiceRepo facturas en memoria, acotadas por dueño.
type InvoiceRepo struct {
	db access
}

// NewInvoiceRepository construye el repositorio sobre el store.
func NewInvoiceRepository(s *Store) *InvoiceRepo {
	return &InvoiceRepo{db: s}
}

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.db.write(ctx, func(st *state) error {
		if _, taken := st.numbers[inv.Number]; taken {
			return fmt.Errorf("%w: el número de factura ya existe", domain.ErrDuplicate)
		}
		if c, ok := st.companies[inv.CompanyID]; !ok || c.c.OwnerID != inv.OwnerID {
			return fmt.Errorf("%w: empresa no encontrada", domain.ErrNotFound)
		}
		if inv.ID == "" {
			inv.ID = uuid.New().String()
		}
		st.invoices[inv.ID] = invoiceRow{inv: inv.Clone(), seq: st.next()}
		st.numbers[inv.Number] = inv.ID
		return nil
	})
}

func (r *InvoiceRepo) GetByRef(ctx context.Context, ownerID, ref string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := r.db.read(ctx, func(st *state) error {
		row, ok := st.invoiceByRef(ownerID, ref)
		if !ok {
			return domain.ErrNotFound
		}
		inv := row.inv.Clone()
		out = &inv
		return nil
	})
	return out, err
}

// GetByRefForUpdate dentro de RunBilling el lock del store ya serializa a los escritores.
func (r *InvoiceRepo) GetByRefForUpdate(ctx context.Context, ownerID, ref string) (*entity.Invoice, error) {
	return r.GetByRef(ctx, ownerID, ref)
}

func (r *InvoiceRepo) List(ctx context.Context, ownerID string) ([]*entity.Invoice, error) {
	var rows []invoiceRow
	err := r.db.read(ctx, func(st *state) error {
		for _, row := range st.invoices {
			if row.inv.OwnerID == ownerID {
				rows = append(rows, invoiceRow{inv: row.inv.Clone(), seq: row.seq})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(rows,
		func(r invoiceRow) int64 { return r.inv.CreatedAt.UnixNano() },
		func(r invoiceRow) int64 { return r.seq },
	)
	list := make([]*entity.Invoice, 0, len(rows))
	for i := range rows {
		inv := rows[i].inv
		list = append(list, &inv)
	}
	return list, nil
}

func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	return r.db.write(ctx, func(st *state) error {
		row, ok := st.invoices[inv.ID]
		if !ok || row.inv.OwnerID != inv.OwnerID {
			return domain.ErrNotFound
		}
		next := inv.Clone()
		// Identidad y referencias no cambian aunque el llamador las altere.
		next.Number = row.inv.Number
		next.CompanyID = row.inv.CompanyID
		next.CreatedAt = row.inv.CreatedAt
		row.inv = next
		st.invoices[inv.ID] = row
		return nil
	})
}

func (r *InvoiceRepo) Delete(ctx context.Context, ownerID, ref string) (bool, error) {
	var deleted bool
	err := r.db.write(ctx, func(st *state) error {
		row, ok := st.invoiceByRef(ownerID, ref)
		if !ok {
			return nil
		}
		delete(st.invoices, row.inv.ID)
		delete(st.numbers, row.inv.Number)
		deleted = true
		return nil
	})
	return deleted, err
}

func (r *InvoiceRepo) ExistsByCompany(ctx context.Context, ownerID, companyID string) (bool, error) {
	var exists bool
	err := r.db.read(ctx, func(st *state) error {
		for _, row := range st.invoices {
			if row.inv.OwnerID == ownerID && row.inv.CompanyID == companyID {
				exists = true
				return nil
			}
		}
		return nil
	})
	return exists, err
}
