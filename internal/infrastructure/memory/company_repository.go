package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo empresas en memoria, acotadas por dueño.
type CompanyRepo struct {
	db access
}

// NewCompanyRepository construye el repositorio sobre el store.
func NewCompanyRepository(s *Store) *CompanyRepo {
	return &CompanyRepo{db: s}
}

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	return r.db.write(ctx, func(st *state) error {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		st.companies[c.ID] = companyRow{c: *c, seq: st.next()}
		return nil
	})
}

func (r *CompanyRepo) GetByID(ctx context.Context, ownerID, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.db.read(ctx, func(st *state) error {
		row, ok := st.companies[id]
		if !ok || row.c.OwnerID != ownerID {
			return domain.ErrNotFound
		}
		c := row.c
		out = &c
		return nil
	})
	return out, err
}

func (r *CompanyRepo) List(ctx context.Context, ownerID string) ([]*entity.Company, error) {
	var rows []companyRow
	err := r.db.read(ctx, func(st *state) error {
		for _, row := range st.companies {
			if row.c.OwnerID == ownerID {
				rows = append(rows, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	newestFirst(rows,
		func(r companyRow) int64 { return r.c.CreatedAt.UnixNano() },
		func(r companyRow) int64 { return r.seq },
	)
	list := make([]*entity.Company, 0, len(rows))
	for i := range rows {
		c := rows[i].c
		list = append(list, &c)
	}
	return list, nil
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	return r.db.write(ctx, func(st *state) error {
		row, ok := st.companies[c.ID]
		if !ok || row.c.OwnerID != c.OwnerID {
			return domain.ErrNotFound
		}
		row.c = *c
		st.companies[c.ID] = row
		return nil
	})
}

func (r *CompanyRepo) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	var deleted bool
	err := r.db.write(ctx, func(st *state) error {
		row, ok := st.companies[id]
		if !ok || row.c.OwnerID != ownerID {
			return nil
		}
		for _, inv := range st.invoices {
			if inv.inv.CompanyID == id {
				return errCompanyInUse
			}
		}
		delete(st.companies, id)
		deleted = true
		return nil
	})
	return deleted, err
}
