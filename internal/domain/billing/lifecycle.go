package billing

import (
	"fmt"
	"time"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
)

// MarkPaid pasa la factura a Paid. Idempotente: una factura ya pagada no cambia.
func MarkPaid(inv *entity.Invoice) {
	inv.Status = entity.InvoiceStatusPaid
}

// SetStatus asigna cualquier estado válido. No hay tabla de transiciones.
func SetStatus(inv *entity.Invoice, status entity.InvoiceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: estado desconocido %q", domain.ErrValidation, status)
	}
	inv.Status = status
	return nil
}

// IsOverdue indica si una factura pendiente ya pasó su vencimiento respecto a today.
// Solo se compara la fecha (UTC), no la hora. No modifica la factura.
func IsOverdue(inv *entity.Invoice, today time.Time) bool {
	if inv.Status != entity.InvoiceStatusPending {
		return false
	}
	return truncateDay(inv.DueDate).Before(truncateDay(today))
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
