package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Las líneas viven en la columna JSONB items de la misma fila, de modo que
// líneas y totales se escriben siempre en una sola sentencia.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, number, owner_id, company_id, customer_name, customer_email, customer_address,
	date, due_date, status, tax_percentage, items, subtotal, tax, total, created_at, updated_at`

// lineItemJSON forma persistida de una línea dentro de items.
type lineItemJSON struct {
	Name   string          `json:"name"`
	Qty    decimal.Decimal `json:"qty"`
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

// Create persiste la factura completa (cabecera, líneas y totales).
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.Number, inv.OwnerID, inv.CompanyID,
		inv.CustomerName, nullIfEmpty(inv.CustomerEmail), nullIfEmpty(inv.CustomerAddress),
		inv.Date, inv.DueDate, string(inv.Status), inv.TaxPercentage, items,
		inv.Subtotal, inv.Tax, inv.Total, inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el número de factura ya existe", domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: empresa no encontrada", domain.ErrNotFound)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByRef obtiene una factura del usuario por número o por clave.
func (r *InvoiceRepo) GetByRef(ctx context.Context, ownerID, ref string) (*entity.Invoice, error) {
	return r.getByRef(ctx, ownerID, ref, "")
}

// GetByRefForUpdate igual que GetByRef con SELECT ... FOR UPDATE. Solo tiene sentido dentro de una tx.
func (r *InvoiceRepo) GetByRefForUpdate(ctx context.Context, ownerID, ref string) (*entity.Invoice, error) {
	return r.getByRef(ctx, ownerID, ref, " FOR UPDATE")
}

func (r *InvoiceRepo) getByRef(ctx context.Context, ownerID, ref, lock string) (*entity.Invoice, error) {
	where := `number = $2`
	if isUUID(ref) {
		where = `id = $2`
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = $1 AND ` + where + lock
	inv, err := scanInvoice(r.q.QueryRow(ctx, query, ownerID, ref))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List devuelve las facturas del usuario, más recientes primero.
func (r *InvoiceRepo) List(ctx context.Context, ownerID string) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = $1 ORDER BY created_at DESC, number DESC`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Update persiste los campos mutables. number, owner_id y company_id nunca se tocan.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	query := `
		UPDATE invoices
		   SET customer_name = $3, customer_email = $4, customer_address = $5,
		       date = $6, due_date = $7, status = $8, tax_percentage = $9, items = $10,
		       subtotal = $11, tax = $12, total = $13, updated_at = $14
		 WHERE owner_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		inv.OwnerID, inv.ID,
		inv.CustomerName, nullIfEmpty(inv.CustomerEmail), nullIfEmpty(inv.CustomerAddress),
		inv.Date, inv.DueDate, string(inv.Status), inv.TaxPercentage, items,
		inv.Subtotal, inv.Tax, inv.Total, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una factura del usuario por número o clave.
func (r *InvoiceRepo) Delete(ctx context.Context, ownerID, ref string) (bool, error) {
	where := `number = $2`
	if isUUID(ref) {
		where = `id = $2`
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE owner_id = $1 AND `+where, ownerID, ref)
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// ExistsByCompany informa si alguna factura del usuario referencia la empresa.
func (r *InvoiceRepo) ExistsByCompany(ctx context.Context, ownerID, companyID string) (bool, error) {
	if !isUUID(companyID) {
		return false, nil
	}
	const query = `SELECT EXISTS (SELECT 1 FROM invoices WHERE owner_id = $1 AND company_id = $2)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, ownerID, companyID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check invoices by company: %w", err)
	}
	return exists, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv            entity.Invoice
		status         string
		email, address *string
		items          []byte
	)
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.OwnerID, &inv.CompanyID,
		&inv.CustomerName, &email, &address,
		&inv.Date, &inv.DueDate, &status, &inv.TaxPercentage, &items,
		&inv.Subtotal, &inv.Tax, &inv.Total, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Status = entity.InvoiceStatus(status)
	inv.CustomerEmail = emptyIfNull(email)
	inv.CustomerAddress = emptyIfNull(address)
	if inv.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &inv, nil
}

func encodeItems(items []entity.LineItem) ([]byte, error) {
	rows := make([]lineItemJSON, 0, len(items))
	for _, it := range items {
		rows = append(rows, lineItemJSON{Name: it.Name, Qty: it.Qty, Rate: it.Rate, Amount: it.Amount})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode invoice items: %w", err)
	}
	return b, nil
}

func decodeItems(b []byte) ([]entity.LineItem, error) {
	var rows []lineItemJSON
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode invoice items: %w", err)
	}
	items := make([]entity.LineItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.LineItem{Name: r.Name, Qty: r.Qty, Rate: r.Rate, Amount: r.Amount})
	}
	return items, nil
}
