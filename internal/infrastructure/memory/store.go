// Package memory implementa los puertos de persistencia en memoria del proceso.
// Sirve para desarrollo local (STORE_DRIVER=memory) y para los tests de casos de uso.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Invoicer-api/internal/domain/entity"
)

// Store contiene todo el estado. Las escrituras fuera de transacción toman el lock
// de escritura y validan antes de mutar; RunBilling trabaja sobre una copia y la
// publica solo si todo salió bien.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

type companyRow struct {
	c   entity.Company
	seq int64
}

type invoiceRow struct {
	inv entity.Invoice
	seq int64
}

type state struct {
	seq       int64
	users     map[string]entity.User
	emails    map[string]string // email -> user id
	companies map[string]companyRow
	invoices  map[string]invoiceRow
	numbers   map[string]string // número público -> id
}

func newState() *state {
	return &state{
		users:     make(map[string]entity.User),
		emails:    make(map[string]string),
		companies: make(map[string]companyRow),
		invoices:  make(map[string]invoiceRow),
		numbers:   make(map[string]string),
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	out := &state{
		seq:       s.seq,
		users:     make(map[string]entity.User, len(s.users)),
		emails:    make(map[string]string, len(s.emails)),
		companies: make(map[string]companyRow, len(s.companies)),
		invoices:  make(map[string]invoiceRow, len(s.invoices)),
		numbers:   make(map[string]string, len(s.numbers)),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.emails {
		out.emails[k] = v
	}
	for k, v := range s.companies {
		out.companies[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = invoiceRow{inv: v.inv.Clone(), seq: v.seq}
	}
	for k, v := range s.numbers {
		out.numbers[k] = v
	}
	return out
}

// invoiceByRef resuelve número público o clave, siempre acotado al dueño.
func (s *state) invoiceByRef(ownerID, ref string) (invoiceRow, bool) {
	id := ref
	if byNumber, ok := s.numbers[ref]; ok {
		id = byNumber
	}
	row, ok := s.invoices[id]
	if !ok || row.inv.OwnerID != ownerID {
		return invoiceRow{}, false
	}
	return row, true
}

// access abstrae si el repositorio trabaja contra el store (con lock) o contra una tx.
type access interface {
	read(ctx context.Context, fn func(*state) error) error
	write(ctx context.Context, fn func(*state) error) error
}

func (s *Store) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) write(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// txAccess opera sobre la copia privada de una transacción; el lock ya lo tiene el runner.
type txAccess struct {
	st *state
}

func (t txAccess) read(ctx context.Context, fn func(*state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.st)
}

func (t txAccess) write(ctx context.Context, fn func(*state) error) error {
	return t.read(ctx, fn)
}

// newestFirst ordena por created_at DESC y, a igualdad, por orden de inserción DESC.
func newestFirst[T any](rows []T, created func(T) int64, seq func(T) int64) {
	sort.SliceStable(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if ci != cj {
			return ci > cj
		}
		return seq(rows[i]) > seq(rows[j])
	})
}
