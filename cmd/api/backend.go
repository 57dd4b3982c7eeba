package main

import (
	"context"
	"fmt"

	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/memory"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Invoicer-api/pkg/config"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

type txRunner interface {
	billing.BillingTxRunner
	usecase.CompanyTxRunner
}

// backend repos y transacciones del driver elegido en STORE_DRIVER.
type backend struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	invoices  repository.InvoiceRepository
	tx        txRunner
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			users:     memory.NewUserRepository(store),
			companies: memory.NewCompanyRepository(store),
			invoices:  memory.NewInvoiceRepository(store),
			tx:        memory.NewTxRunner(store),
			close:     func() {},
		}, nil
	case config.StoreDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &backend{
			users:     postgres.NewUserRepository(pool),
			companies: postgres.NewCompanyRepository(pool),
			invoices:  postgres.NewInvoiceRepository(pool),
			tx:        postgres.NewTxRunner(pool),
			close:     pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido %q", cfg.Store.Driver)
	}
}
