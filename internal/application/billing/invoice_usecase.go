package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/domain"
	dombilling "github.com/jhoicas/Invoicer-api/internal/domain/billing"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// DateLayout formato de fecha en el API (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// InvoiceUseCase casos de uso de facturas: alta, consulta, edición, cobro y baja.
// Toda mutación corre dentro de BillingTxRunner; las lecturas usan invoiceRepo directo.
type InvoiceUseCase struct {
	txRunner    BillingTxRunner
	invoiceRepo repository.InvoiceRepository
	numbers     NumberGenerator
	log         *logger.Logger
	now         func() time.Time
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(txRunner BillingTxRunner, invoiceRepo repository.InvoiceRepository, numbers NumberGenerator, log *logger.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
		log:         log,
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *InvoiceUseCase) WithClock(now func() time.Time) *InvoiceUseCase {
	uc.now = now
	return uc
}

// Create crea una factura de una empresa del usuario.
//
// Orden de validación: empresa y cliente obligatorios, empresa del usuario, líneas válidas.
// Los totales los calcula siempre el dominio; cualquier total enviado por el cliente se ignora.
func (uc *InvoiceUseCase) Create(ctx context.Context, ownerID string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	companyID := strings.TrimSpace(in.CompanyID)
	customerName := strings.TrimSpace(in.CustomerName)
	if companyID == "" || customerName == "" {
		return nil, fmt.Errorf("%w: la empresa y el nombre del cliente son obligatorios", domain.ErrValidation)
	}
	taxPct, err := taxPercentageOrDefault(in.TaxPercentage, decimal.Zero)
	if err != nil {
		return nil, err
	}
	status := entity.InvoiceStatusPending
	if s := strings.TrimSpace(in.Status); s != "" {
		status = entity.InvoiceStatus(s)
		if !status.Valid() {
			return nil, fmt.Errorf("%w: estado desconocido %q", domain.ErrValidation, s)
		}
	}
	now := uc.now().UTC()
	date, err := parseDateOr(in.Date, today(now))
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDateOr(in.DueDate, date)
	if err != nil {
		return nil, err
	}

	var created *entity.Invoice
	err = uc.txRunner.RunBilling(ctx, func(companies repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		if _, err := companies.GetByID(ctx, ownerID, companyID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: empresa no encontrada", domain.ErrNotFound)
			}
			return err
		}
		items, err := dombilling.NormalizeItems(toRawItems(in.Items))
		if err != nil {
			return err
		}
		inv := &entity.Invoice{
			ID:              uuid.New().String(),
			Number:          in.Number,
			OwnerID:         ownerID,
			CompanyID:       companyID,
			CustomerName:    customerName,
			CustomerEmail:   strings.TrimSpace(in.CustomerEmail),
			CustomerAddress: strings.TrimSpace(in.CustomerAddress),
			Date:            date,
			DueDate:         dueDate,
			Status:          status,
			TaxPercentage:   taxPct,
			Items:           items,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if inv.Number == "" {
			number, err := uc.numbers.Next()
			if err != nil {
				return err
			}
			inv.Number = number
		}
		dombilling.Recalculate(inv)
		if err := invoices.Create(ctx, inv); err != nil {
			return err
		}
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("owner_id", ownerID).
		Str("invoice", created.Number).
		Str("total", created.Total.String()).
		Msg("factura creada")
	return uc.toResponse(created), nil
}

// Get obtiene una factura del usuario por número público o clave.
func (uc *InvoiceUseCase) Get(ctx context.Context, ownerID, ref string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByRef(ctx, ownerID, ref)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(inv), nil
}

// List lista las facturas del usuario, más recientes primero.
func (uc *InvoiceUseCase) List(ctx context.Context, ownerID string) ([]dto.InvoiceResponse, error) {
	list, err := uc.invoiceRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *uc.toResponse(inv))
	}
	return out, nil
}

// Update aplica una actualización parcial. Si el body trae items o taxPercentage se
// recalculan los totales; identificadores y referencias recibidos se descartan.
func (uc *InvoiceUseCase) Update(ctx context.Context, ownerID, ref string, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if stripped := in.StripImmutable(); len(stripped) > 0 {
		uc.log.Debug().Str("invoice", ref).Strs("fields", stripped).Msg("campos inmutables descartados")
	}

	var updated *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		inv, err := invoices.GetByRefForUpdate(ctx, ownerID, ref)
		if err != nil {
			return err
		}
		if err := applyUpdate(inv, in); err != nil {
			return err
		}
		inv.UpdatedAt = uc.now().UTC()
		if err := invoices.Update(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("invoice", updated.Number).Msg("factura actualizada")
	return uc.toResponse(updated), nil
}

// MarkPaid marca la factura como pagada. Idempotente: si ya lo estaba no se escribe nada.
func (uc *InvoiceUseCase) MarkPaid(ctx context.Context, ownerID, ref string) (*dto.InvoiceResponse, error) {
	var paid *entity.Invoice
	err := uc.txRunner.RunBilling(ctx, func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		inv, err := invoices.GetByRefForUpdate(ctx, ownerID, ref)
		if err != nil {
			return err
		}
		paid = inv
		if inv.Status == entity.InvoiceStatusPaid {
			return nil
		}
		dombilling.MarkPaid(inv)
		inv.UpdatedAt = uc.now().UTC()
		return invoices.Update(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("invoice", paid.Number).Msg("factura pagada")
	return uc.toResponse(paid), nil
}

// Delete elimina una factura del usuario (terminal).
func (uc *InvoiceUseCase) Delete(ctx context.Context, ownerID, ref string) error {
	err := uc.txRunner.RunBilling(ctx, func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		deleted, err := invoices.Delete(ctx, ownerID, ref)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("invoice", ref).Msg("factura eliminada")
	return nil
}

// Summary totales del tablero: facturado total, conteos por estado y saldo pendiente.
func (uc *InvoiceUseCase) Summary(ctx context.Context, ownerID string) (*dto.InvoiceSummaryResponse, error) {
	list, err := uc.invoiceRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := &dto.InvoiceSummaryResponse{
		TotalInvoices: len(list),
		TotalRevenue:  decimal.Zero,
		Outstanding:   decimal.Zero,
	}
	for _, inv := range list {
		out.TotalRevenue = out.TotalRevenue.Add(inv.Total)
		switch inv.Status {
		case entity.InvoiceStatusPaid:
			out.PaidCount++
		case entity.InvoiceStatusPending:
			out.PendingCount++
		case entity.InvoiceStatusOverdue:
			out.OverdueCount++
		}
		if inv.Status != entity.InvoiceStatusPaid {
			out.Outstanding = out.Outstanding.Add(inv.Total)
		}
	}
	return out, nil
}

// applyUpdate vuelca en inv los campos presentes del body.
func applyUpdate(inv *entity.Invoice, in dto.UpdateInvoiceRequest) error {
	if in.CustomerName != nil {
		name := strings.TrimSpace(*in.CustomerName)
		if name == "" {
			return fmt.Errorf("%w: el nombre del cliente es obligatorio", domain.ErrValidation)
		}
		inv.CustomerName = name
	}
	if in.CustomerEmail != nil {
		inv.CustomerEmail = strings.TrimSpace(*in.CustomerEmail)
	}
	if in.CustomerAddress != nil {
		inv.CustomerAddress = strings.TrimSpace(*in.CustomerAddress)
	}
	if in.Date != nil {
		d, err := parseDateOr(*in.Date, inv.Date)
		if err != nil {
			return err
		}
		inv.Date = d
	}
	if in.DueDate != nil {
		d, err := parseDateOr(*in.DueDate, inv.DueDate)
		if err != nil {
			return err
		}
		inv.DueDate = d
	}
	if in.Status != nil {
		if err := dombilling.SetStatus(inv, entity.InvoiceStatus(strings.TrimSpace(*in.Status))); err != nil {
			return err
		}
	}

	recalc := false
	if in.Items != nil {
		items, err := dombilling.NormalizeItems(toRawItems(in.Items))
		if err != nil {
			return err
		}
		inv.Items = items
		recalc = true
	}
	if in.TaxPercentage.IsSet() {
		pct, err := taxPercentageOrDefault(in.TaxPercentage, inv.TaxPercentage)
		if err != nil {
			return err
		}
		inv.TaxPercentage = pct
		recalc = true
	}
	if recalc {
		dombilling.Recalculate(inv)
	}
	return nil
}

func (uc *InvoiceUseCase) toResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	items := make([]dto.LineItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, dto.LineItemResponse{Name: it.Name, Qty: it.Qty, Rate: it.Rate, Amount: it.Amount})
	}
	return &dto.InvoiceResponse{
		ID:              inv.Number,
		Key:             inv.ID,
		CompanyID:       inv.CompanyID,
		CustomerName:    inv.CustomerName,
		CustomerEmail:   inv.CustomerEmail,
		CustomerAddress: inv.CustomerAddress,
		Date:            inv.Date.Format(DateLayout),
		DueDate:         inv.DueDate.Format(DateLayout),
		Status:          string(inv.Status),
		Overdue:         dombilling.IsOverdue(inv, uc.now()),
		TaxPercentage:   inv.TaxPercentage,
		Items:           items,
		Subtotal:        inv.Subtotal,
		Tax:             inv.Tax,
		Total:           inv.Total,
	}
}

func toRawItems(in []dto.LineItemRequest) []dombilling.RawLineItem {
	raw := make([]dombilling.RawLineItem, 0, len(in))
	for _, it := range in {
		raw = append(raw, dombilling.RawLineItem{
			Name:   it.Name,
			Qty:    it.Qty.NullDecimal,
			Rate:   it.Rate.NullDecimal,
			Amount: it.Amount.NullDecimal,
		})
	}
	return raw
}

// taxPercentageOrDefault: ausente, null o no numérico -> def; negativo -> ErrValidation.
func taxPercentageOrDefault(n dto.Number, def decimal.Decimal) (decimal.Decimal, error) {
	if !n.Valid {
		return def, nil
	}
	if n.Decimal.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: el porcentaje de impuesto no puede ser negativo", domain.ErrValidation)
	}
	return n.Decimal, nil
}

// parseDateOr acepta YYYY-MM-DD o RFC3339; vacío devuelve def.
func parseDateOr(s string, def time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		// Se conserva la fecha de calendario del cliente, no la de UTC.
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("%w: fecha inválida %q (formato YYYY-MM-DD)", domain.ErrValidation, s)
}

func today(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
