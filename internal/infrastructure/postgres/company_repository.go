package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, owner_id, name, gstin, website, address, mobile, email, logo, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name,
		nullIfEmpty(c.GSTIN), nullIfEmpty(c.Website), nullIfEmpty(c.Address),
		nullIfEmpty(c.Mobile), nullIfEmpty(c.Email), nullIfEmpty(c.Logo),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa del usuario por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Company, error) {
	if !isUUID(id) {
		return nil, domain.ErrNotFound
	}
	query := `SELECT ` + companyColumns + ` FROM companies WHERE owner_id = $1 AND id = $2`
	c, err := scanCompany(r.q.QueryRow(ctx, query, ownerID, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// List devuelve las empresas del usuario, más recientes primero.
func (r *CompanyRepo) List(ctx context.Context, ownerID string) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update actualiza los campos editables de una empresa del usuario.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies
		   SET name = $3, gstin = $4, website = $5, address = $6, mobile = $7, email = $8, logo = $9, updated_at = $10
		 WHERE owner_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		c.OwnerID, c.ID, c.Name,
		nullIfEmpty(c.GSTIN), nullIfEmpty(c.Website), nullIfEmpty(c.Address),
		nullIfEmpty(c.Mobile), nullIfEmpty(c.Email), nullIfEmpty(c.Logo),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una empresa del usuario. Una violación de FK (facturas que la
// referencian) se traduce a domain.ErrConflict.
func (r *CompanyRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM companies WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("%w: no se puede eliminar una empresa con facturas", domain.ErrConflict)
		}
		return false, fmt.Errorf("delete company: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var (
		c                                            entity.Company
		gstin, website, address, mobile, email, logo *string
	)
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &gstin, &website, &address, &mobile, &email, &logo,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.GSTIN = emptyIfNull(gstin)
	c.Website = emptyIfNull(website)
	c.Address = emptyIfNull(address)
	c.Mobile = emptyIfNull(mobile)
	c.Email = emptyIfNull(email)
	c.Logo = emptyIfNull(logo)
	return &c, nil
}
