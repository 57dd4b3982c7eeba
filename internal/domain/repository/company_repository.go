package repository

import (
	"context"

	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// Todas las operaciones reciben ownerID y lo aplican como filtro: una empresa de otro
// usuario se comporta igual que una inexistente (domain.ErrNotFound).
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, ownerID, id string) (*entity.Company, error)
	// List devuelve las empresas del usuario, más recientes primero.
	List(ctx context.Context, ownerID string) ([]*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	// Delete devuelve false si no existía (o no era del usuario).
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}
