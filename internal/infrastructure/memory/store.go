// Package memory implementa los puertos de persistencia en memoria con transacciones
// de copia-y-sustitución: los lectores solo ven estados confirmados.
// Sirve como backend de desarrollo (STORE_BACKEND=memory) y en tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

var _ report.TxRunner = (*Store)(nil)

// state es una versión completa de la base. Nunca se muta una vez publicada.
type state struct {
	nextEmployeeID int64
	nextCompanyID  int64
	nextReportID   int64
	employees      map[int64]entity.Employee
	companies      map[int64]entity.Company
	reports        map[int64]entity.Report
	links          map[int64]map[int64]struct{} // reportID -> companyIDs
}

func newState() *state {
	return &state{
		employees: make(map[int64]entity.Employee),
		companies: make(map[int64]entity.Company),
		reports:   make(map[int64]entity.Report),
		links:     make(map[int64]map[int64]struct{}),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextEmployeeID: s.nextEmployeeID,
		nextCompanyID:  s.nextCompanyID,
		nextReportID:   s.nextReportID,
		employees:      make(map[int64]entity.Employee, len(s.employees)),
		companies:      make(map[int64]entity.Company, len(s.companies)),
		reports:        make(map[int64]entity.Report, len(s.reports)),
		links:          make(map[int64]map[int64]struct{}, len(s.links)),
	}
	for k, v := range s.employees {
		c.employees[k] = v
	}
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.reports {
		c.reports[k] = v
	}
	for k, set := range s.links {
		cs := make(map[int64]struct{}, len(set))
		for id := range set {
			cs[id] = struct{}{}
		}
		c.links[k] = cs
	}
	return c
}

// Store almacén transaccional en memoria. Las escrituras se serializan (equivalente a SERIALIZABLE).
type Store struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	committed *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{committed: newState()}
}

// view ejecuta fn sobre el último estado confirmado.
func (s *Store) view(fn func(st *state) error) error {
	s.mu.RLock()
	st := s.committed
	s.mu.RUnlock()
	return fn(st)
}

// update ejecuta fn sobre una copia y la publica solo si fn no falla.
func (s *Store) update(fn func(st *state) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	draft := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(draft); err != nil {
		return err
	}
	s.mu.Lock()
	s.committed = draft
	s.mu.Unlock()
	return nil
}

// querier abstrae "fuera de tx" (cada operación es su propia tx) y "dentro de tx".
type querier interface {
	view(fn func(st *state) error) error
	update(fn func(st *state) error) error
}

// txQuerier opera directamente sobre el borrador de una transacción abierta.
type txQuerier struct {
	draft *state
}

func (q txQuerier) view(fn func(st *state) error) error   { return fn(q.draft) }
func (q txQuerier) update(fn func(st *state) error) error { return fn(q.draft) }

// Employees repositorio de empleados fuera de transacción.
func (s *Store) Employees() repository.EmployeeRepository { return &EmployeeRepo{q: s} }

// Companies repositorio de empresas fuera de transacción.
func (s *Store) Companies() repository.CompanyRepository { return &CompanyRepo{q: s} }

// Reports repositorio de reportes fuera de transacción.
func (s *Store) Reports() repository.ReportRepository { return &ReportRepo{q: s} }

// RunReports ejecuta fn en una transacción. Los lectores siguen viendo el estado anterior hasta el commit.
func (s *Store) RunReports(ctx context.Context, fn func(
	reports repository.ReportRepository,
	companies repository.CompanyRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	return s.update(func(draft *state) error {
		q := txQuerier{draft: draft}
		if err := fn(&ReportRepo{q: q}, &CompanyRepo{q: q}); err != nil {
			return err
		}
		return ctx.Err()
	})
}
