package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
	"github.com/jhoicas/Invoicer-api/internal/infrastructure/memory"
)

func seed(t *testing.T, s *memory.Store) (*entity.Company, *entity.Invoice) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	c := &entity.Company{OwnerID: "u1", Name: "Acme", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, memory.NewCompanyRepository(s).Create(ctx, c))
	inv := &entity.Invoice{
		Number:    "INV-1",
		OwnerID:   "u1",
		CompanyID: c.ID,
		Status:    entity.InvoiceStatusPending,
		Items:     []entity.LineItem{{Name: "x", Amount: decimal.NewFromInt(10)}},
		Subtotal:  decimal.NewFromInt(10),
		Total:     decimal.NewFromInt(10),
		CreatedAt: now,
	}
	require.NoError(t, memory.NewInvoiceRepository(s).Create(ctx, inv))
	return c, inv
}

func TestRunBilling_RollsBackOnError(t *testing.T) {
	s := memory.NewStore()
	_, inv := seed(t, s)
	boom := errors.New("boom")

	err := memory.NewTxRunner(s).RunBilling(context.Background(), func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		got, err := invoices.GetByRefForUpdate(context.Background(), "u1", "INV-1")
		require.NoError(t, err)
		got.Status = entity.InvoiceStatusPaid
		require.NoError(t, invoices.Update(context.Background(), got))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := memory.NewInvoiceRepository(s).GetByRef(context.Background(), "u1", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceStatusPending, got.Status)
}

func TestRunBilling_CancelledBeforeCommit(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	ctx, cancel := context.WithCancel(context.Background())

	err := memory.NewTxRunner(s).RunBilling(ctx, func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		deleted, err := invoices.Delete(ctx, "u1", "INV-1")
		require.NoError(t, err)
		require.True(t, deleted)
		cancel()
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = memory.NewInvoiceRepository(s).GetByRef(context.Background(), "u1", "INV-1")
	assert.NoError(t, err)
}

func TestRunBilling_Commits(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)

	err := memory.NewTxRunner(s).RunBilling(context.Background(), func(_ repository.CompanyRepository, invoices repository.InvoiceRepository) error {
		_, err := invoices.Delete(context.Background(), "u1", "INV-1")
		return err
	})
	require.NoError(t, err)

	_, err = memory.NewInvoiceRepository(s).GetByRef(context.Background(), "u1", "INV-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompanyDelete_RestrictedWhileReferenced(t *testing.T) {
	s := memory.NewStore()
	c, _ := seed(t, s)

	deleted, err := memory.NewCompanyRepository(s).Delete(context.Background(), "u1", c.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, deleted)
}

func TestInvoiceRepo_DuplicateNumber(t *testing.T) {
	s := memory.NewStore()
	c, inv := seed(t, s)

	dup := inv.Clone()
	dup.ID = ""
	dup.CompanyID = c.ID
	err := memory.NewInvoiceRepository(s).Create(context.Background(), &dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestInvoiceRepo_ReturnsCopies(t *testing.T) {
	s := memory.NewStore()
	seed(t, s)
	repo := memory.NewInvoiceRepository(s)

	got, err := repo.GetByRef(context.Background(), "u1", "INV-1")
	require.NoError(t, err)
	got.Items[0].Name = "mutated"
	got.Status = entity.InvoiceStatusPaid

	again, err := repo.GetByRef(context.Background(), "u1", "INV-1")
	require.NoError(t, err)
	assert.Equal(t, "x", again.Items[0].Name)
	assert.Equal(t, entity.InvoiceStatusPending, again.Status)
}

func TestUserRepo_UniqueEmail(t *testing.T) {
	repo := memory.NewUserRepository(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &entity.User{Name: "A", Email: "a@x.com"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{Name: "B", Email: "a@x.com"}), domain.ErrDuplicate)

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "hash"))
	u, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", u.PasswordHash)
}
