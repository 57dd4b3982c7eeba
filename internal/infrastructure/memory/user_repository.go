package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Invoicer-api/internal/domain"
	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
	"github.com/jhoicas/Invoicer-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	db access
}

// NewUserRepository construye el repositorio sobre el store.
func NewUserRepository(s *Store) *UserRepo {
	return &UserRepo{db: s}
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.db.write(ctx, func(st *state) error {
		if _, taken := st.emails[user.Email]; taken {
			return fmt.Errorf("%w: el email ya está registrado", domain.ErrDuplicate)
		}
		if user.ID == "" {
			user.ID = uuid.New().String()
		}
		st.users[user.ID] = *user
		st.emails[user.Email] = user.ID
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.db.read(ctx, func(st *state) error {
		id, ok := st.emails[email]
		if !ok {
			return domain.ErrNotFound
		}
		u := st.users[id]
		out = &u
		return nil
	})
	return out, err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.db.write(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrNotFound
		}
		u.PasswordHash = passwordHash
		st.users[id] = u
		return nil
	})
}
