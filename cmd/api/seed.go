package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Invoicer-api/internal/application/auth"
	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	"github.com/jhoicas/Invoicer-api/internal/domain"
	dombilling "github.com/jhoicas/Invoicer-api/internal/domain/billing"
	"github.com/jhoicas/Invoicer-api/pkg/config"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

const (
	demoEmail    = "user@invoice.com"
	demoPassword = "password123"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Crea el usuario, la empresa y las facturas de demo",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		if cfg.Store.Driver == config.StoreDriverMemory {
			return errors.New("seed sobre STORE_DRIVER=memory no persiste; use serve --seed")
		}
		ctx := cmd.Context()
		be, err := openBackend(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer be.close()
		return seedDemo(ctx, be, cfg, log)
	},
}

// seedDemo carga los datos de demo a través de los casos de uso, así los totales
// salen del mismo cálculo que la API. Si el usuario demo ya existe no hace nada.
func seedDemo(ctx context.Context, be *backend, cfg *config.Config, log *logger.Logger) error {
	secret := cfg.JWT.Secret
	if secret == "" {
		secret = "seed-only"
	}
	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	companyUC := usecase.NewCompanyUseCase(be.companies, be.tx, log)
	invoiceUC := billing.NewInvoiceUseCase(be.tx, be.invoices, dombilling.NewNumberGenerator(), log)

	user, err := authUC.Register(ctx, dto.RegisterRequest{Name: "John Doe", Email: demoEmail, Password: demoPassword})
	if errors.Is(err, domain.ErrDuplicate) {
		log.Info().Str("email", demoEmail).Msg("seed: el usuario demo ya existe, nada que hacer")
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed usuario: %w", err)
	}
	ownerID := user.User.ID

	company, err := companyUC.Create(ctx, ownerID, dto.CreateCompanyRequest{
		Name:    "Easy Invoice",
		GSTIN:   "29AABCU9603R1ZM",
		Website: "www.invoicepro.com",
		Address: "100 Commerce Street\nNew York, NY 10001",
		Mobile:  "+1 (555) 123-4567",
		Email:   "invoices@invoicepro.com",
	})
	if err != nil {
		return fmt.Errorf("seed empresa: %w", err)
	}

	for _, in := range demoInvoices(company.ID) {
		inv, err := invoiceUC.Create(ctx, ownerID, in)
		if err != nil {
			return fmt.Errorf("seed factura %s: %w", in.CustomerName, err)
		}
		log.Info().Str("invoice", inv.ID).Str("total", inv.Total.String()).Msg("seed: factura creada")
	}
	log.Info().Str("email", demoEmail).Str("password", demoPassword).Msg("seed completo")
	return nil
}

func demoInvoices(companyID string) []dto.CreateInvoiceRequest {
	line := func(name string, qty, rate int64) dto.LineItemRequest {
		return dto.LineItemRequest{Name: name, Qty: dto.NewNumber(decimal.NewFromInt(qty)), Rate: dto.NewNumber(decimal.NewFromInt(rate))}
	}
	return []dto.CreateInvoiceRequest{
		{
			CompanyID:       companyID,
			CustomerName:    "Acme Corporation",
			CustomerEmail:   "billing@acme.com",
			CustomerAddress: "123 Business Ave, Suite 100\nNew York, NY 10001",
			Date:            "2025-01-15",
			DueDate:         "2025-02-15",
			Status:          "Paid",
			TaxPercentage:   dto.NewNumber(decimal.NewFromInt(8)),
			Items: []dto.LineItemRequest{
				line("Web Development Services", 40, 125),
				line("UI/UX Design", 20, 100),
			},
		},
		{
			CompanyID:       companyID,
			CustomerName:    "TechStart Inc",
			CustomerEmail:   "accounts@techstart.io",
			CustomerAddress: "456 Innovation Blvd\nSan Francisco, CA 94102",
			Date:            "2025-01-20",
			DueDate:         "2025-02-20",
			Status:          "Pending",
			TaxPercentage:   dto.NewNumber(decimal.NewFromInt(8)),
			Items: []dto.LineItemRequest{
				line("Mobile App Development", 80, 150),
				line("API Integration", 15, 120),
			},
		},
		{
			CompanyID:       companyID,
			CustomerName:    "Global Solutions Ltd",
			CustomerEmail:   "finance@globalsolutions.com",
			CustomerAddress: "789 Enterprise Way\nLondon, UK EC1A 1BB",
			Date:            "2025-01-25",
			DueDate:         "2025-02-25",
			Status:          "Overdue",
			TaxPercentage:   dto.NewNumber(decimal.NewFromInt(8)),
			Items: []dto.LineItemRequest{
				line("Consulting Services", 50, 200),
				line("Training Sessions", 10, 250),
			},
		},
	}
}
