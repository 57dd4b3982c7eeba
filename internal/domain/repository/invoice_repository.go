package repository

import (
	"context"

	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice (líneas incluidas).
// Todas las operaciones están acotadas por ownerID.
//
// ref es el número público ("INV-...") o la clave de almacenamiento (UUID).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByRef(ctx context.Context, ownerID, ref string) (*entity.Invoice, error)
	// GetByRefForUpdate igual que GetByRef pero bloquea la fila hasta el fin de la transacción.
	GetByRefForUpdate(ctx context.Context, ownerID, ref string) (*entity.Invoice, error)
	// List devuelve las facturas del usuario, más recientes primero.
	List(ctx context.Context, ownerID string) ([]*entity.Invoice, error)
	// Update persiste todos los campos mutables (cliente, fechas, estado, impuesto, líneas y totales).
	Update(ctx context.Context, invoice *entity.Invoice) error
	Delete(ctx context.Context, ownerID, ref string) (bool, error)
	// ExistsByCompany informa si alguna factura del usuario referencia la empresa.
	ExistsByCompany(ctx context.Context, ownerID, companyID string) (bool, error)
}
