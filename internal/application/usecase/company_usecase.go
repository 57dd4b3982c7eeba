package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// CompanyTxRunner transacción con los repos de empresas y facturas (guarda de borrado).
// Misma firma que billing.BillingTxRunner: un único adaptador satisface ambos.
type CompanyTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		companyRepo repository.CompanyRepository,
		invoiceRepo repository.InvoiceRepository,
	) error) error
}

// ErrCompanyHasInvoices la empresa todavía tiene facturas que la referencian.
var ErrCompanyHasInvoices = fmt.Errorf("%w: no se puede eliminar una empresa con facturas; elimine o reasigne las facturas primero", domain.ErrConflict)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo     repository.CompanyRepository
	txRunner CompanyTxRunner
	log      *logger.Logger
	now      func() time.Time
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, txRunner CompanyTxRunner, log *logger.Logger) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, txRunner: txRunner, log: log, now: time.Now}
}

// Create crea una nueva empresa del usuario. El nombre es obligatorio.
func (uc *CompanyUseCase) Create(ctx context.Context, ownerID string, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre de la empresa es obligatorio", domain.ErrValidation)
	}
	now := uc.now().UTC()
	company := &entity.Company{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		GSTIN:     strings.TrimSpace(in.GSTIN),
		Website:   strings.TrimSpace(in.Website),
		Address:   strings.TrimSpace(in.Address),
		Mobile:    strings.TrimSpace(in.Mobile),
		Email:     strings.TrimSpace(in.Email),
		Logo:      in.Logo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	uc.log.Info().Str("owner_id", ownerID).Str("company_id", company.ID).Msg("empresa creada")
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa del usuario.
func (uc *CompanyUseCase) GetByID(ctx context.Context, ownerID, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// List lista las empresas del usuario, más recientes primero.
func (uc *CompanyUseCase) List(ctx context.Context, ownerID string) ([]dto.CompanyResponse, error) {
	list, err := uc.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return items, nil
}

// Update aplica una actualización parcial: solo los campos presentes en el body.
func (uc *CompanyUseCase) Update(ctx context.Context, ownerID, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: el nombre de la empresa es obligatorio", domain.ErrValidation)
		}
		company.Name = name
	}
	setTrimmed(&company.GSTIN, in.GSTIN)
	setTrimmed(&company.Website, in.Website)
	setTrimmed(&company.Address, in.Address)
	setTrimmed(&company.Mobile, in.Mobile)
	setTrimmed(&company.Email, in.Email)
	if in.Logo != nil {
		company.Logo = *in.Logo
	}
	company.UpdatedAt = uc.now().UTC()

	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete elimina una empresa sin facturas. Comprobación y borrado van en la misma transacción;
// nunca se borra en cascada.
func (uc *CompanyUseCase) Delete(ctx context.Context, ownerID, id string) error {
	err := uc.txRunner.RunBilling(ctx, func(companies repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		if _, err := companies.GetByID(ctx, ownerID, id); err != nil {
			return err
		}
		inUse, err := invoices.ExistsByCompany(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if inUse {
			return ErrCompanyHasInvoices
		}
		deleted, err := companies.Delete(ctx, ownerID, id)
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
	uc.log.Info().Str("owner_id", ownerID).Str("company_id", id).Msg("empresa eliminada")
	return nil
}

func setTrimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	out := &dto.CompanyResponse{
		ID:      c.ID,
		Name:    c.Name,
		GSTIN:   c.GSTIN,
		Website: c.Website,
		Address: c.Address,
		Mobile:  c.Mobile,
		Email:   c.Email,
	}
	if c.Logo != "" {
		logo := c.Logo
		out.Logo = &logo
	}
	return out
}
