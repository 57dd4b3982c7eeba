//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Invoicer-api/internal/application/billing"
	"github.com/jhoicas/Invoicer-api/internal/application/dto"
	"github.com/jhoicas/Invoicer-api/internal/application/usecase"
	"github.com/jhoicas/Invoicer-api/internal/domain"
	dombilling "github.com/jhoicas/Invoicer-api/internal/domain/billing"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Invoicer-api/pkg/logger"
)

// startPostgres levanta un contenedor limpio, aplica las migraciones y devuelve el pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("invoicer_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mg, err := postgres.NewMigrator(dsn, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	pool, err := postgres.NewPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	now := time.Now().UTC()
	u := &entity.User{ID: uuid.New().String(), Name: "Demo", Email: email, PasswordHash: "x", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewUserRepository(pool).Create(context.Background(), u))
	return u.ID
}

func TestPostgres_UserEmailIsUnique(t *testing.T) {
	pool := startPostgres(t)
	createUser(t, pool, "dup@example.com")

	now := time.Now().UTC()
	err := postgres.NewUserRepository(pool).Create(context.Background(), &entity.User{
		ID: uuid.New().String(), Name: "Otro", Email: "dup@example.com", PasswordHash: "x", CreatedAt: now, UpdatedAt: now,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestPostgres_EndToEndInvoiceLifecycle(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	owner := createUser(t, pool, "u@example.com")

	tx := postgres.NewTxRunner(pool)
	companies := usecase.NewCompanyUseCase(postgres.NewCompanyRepository(pool), tx, logger.Nop())
	invoices := billing.NewInvoiceUseCase(tx, postgres.NewInvoiceRepository(pool), dombilling.NewNumberGenerator(), logger.Nop())

	company, err := companies.Create(ctx, owner, dto.CreateCompanyRequest{Name: "Acme"})
	require.NoError(t, err)

	inv, err := invoices.Create(ctx, owner, dto.CreateInvoiceRequest{
		CompanyID:     company.ID,
		CustomerName:  "Bob",
		TaxPercentage: dto.NewNumber(decimal.NewFromInt(10)),
		Items: []dto.LineItemRequest{
			{Name: "Widget", Qty: dto.NewNumber(decimal.NewFromInt(2)), Rate: dto.NewNumber(decimal.NewFromInt(50))},
		},
	})
	require.NoError(t, err)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, inv.Tax.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(110)))
	assert.Equal(t, inv.Date, inv.DueDate)

	byKey, err := invoices.Get(ctx, owner, inv.Key)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byKey.ID)
	require.Len(t, byKey.Items, 1)
	assert.True(t, byKey.Items[0].Amount.Equal(decimal.NewFromInt(100)))

	paid, err := invoices.MarkPaid(ctx, owner, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paid", paid.Status)
	assert.True(t, paid.Total.Equal(inv.Total))

	err = companies.Delete(ctx, owner, company.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, invoices.Delete(ctx, owner, inv.ID))
	require.NoError(t, companies.Delete(ctx, owner, company.ID))

	_, err = companies.GetByID(ctx, owner, company.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_CompanyDeleteForeignKeyIsConflict(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	owner := createUser(t, pool, "fk@example.com")
	now := time.Now().UTC()

	companyRepo := postgres.NewCompanyRepository(pool)
	c := &entity.Company{ID: uuid.New().String(), OwnerID: owner, Name: "Acme", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, companyRepo.Create(ctx, c))

	inv := &entity.Invoice{
		Number:        "INV-FK",
		OwnerID:       owner,
		CompanyID:     c.ID,
		CustomerName:  "Bob",
		Date:          now,
		DueDate:       now,
		Status:        entity.InvoiceStatusPending,
		TaxPercentage: decimal.Zero,
		Items:         []entity.LineItem{{Name: "A", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(5), Amount: decimal.NewFromInt(5)}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	dombilling.Recalculate(inv)
	require.NoError(t, postgres.NewInvoiceRepository(pool).Create(ctx, inv))

	_, err := companyRepo.Delete(ctx, owner, c.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPostgres_InvoiceWithUnknownCompanyIsNotFound(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	owner := createUser(t, pool, "nf@example.com")
	tx := postgres.NewTxRunner(pool)
	invoices := billing.NewInvoiceUseCase(tx, postgres.NewInvoiceRepository(pool), dombilling.NewNumberGenerator(), logger.Nop())

	_, err := invoices.Create(ctx, owner, dto.CreateInvoiceRequest{
		CompanyID:    uuid.New().String(),
		CustomerName: "Bob",
		Items:        []dto.LineItemRequest{{Name: "A", Amount: dto.NewNumber(decimal.NewFromInt(5))}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_RolledBackTransactionLeavesNoRows(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	owner := createUser(t, pool, "rb@example.com")
	tx := postgres.NewTxRunner(pool)

	err := tx.RunBilling(ctx, func(companies repository.CompanyRepository, _ repository.InvoiceRepository) error {
		now := time.Now().UTC()
		if err := companies.Create(ctx, &entity.Company{ID: uuid.New().String(), OwnerID: owner, Name: "Temp", CreatedAt: now, UpdatedAt: now}); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	list, err := postgres.NewCompanyRepository(pool).List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)
}
