package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

var (
	_ repository.EmployeeRepository = (*EmployeeRepo)(nil)
	_ repository.CompanyRepository  = (*CompanyRepo)(nil)
	_ repository.ReportRepository   = (*ReportRepo)(nil)
)

// EmployeeRepo implementación en memoria de EmployeeRepository.
type EmployeeRepo struct {
	q querier
}

// Create inserta el empleado; external_id es único cuando no está vacío.
func (r *EmployeeRepo) Create(_ context.Context, e *entity.Employee) error {
	return r.q.update(func(st *state) error {
		if e.ExternalID != "" {
			for _, other := range st.employees {
				if other.ExternalID == e.ExternalID {
					return domain.ErrDuplicate
				}
			}
		}
		st.nextEmployeeID++
		e.ID = st.nextEmployeeID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now()
		}
		st.employees[e.ID] = *e
		return nil
	})
}

// GetByID obtiene un empleado por ID (nil si no existe).
func (r *EmployeeRepo) GetByID(_ context.Context, id int64) (*entity.Employee, error) {
	var out *entity.Employee
	err := r.q.view(func(st *state) error {
		if e, ok := st.employees[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

// GetByExternalID obtiene el empleado vinculado a una identidad (nil si no existe).
func (r *EmployeeRepo) GetByExternalID(_ context.Context, externalID string) (*entity.Employee, error) {
	var out *entity.Employee
	if externalID == "" {
		return nil, nil
	}
	err := r.q.view(func(st *state) error {
		for _, e := range st.employees {
			if e.ExternalID == externalID {
				e := e
				out = &e
				return nil
			}
		}
		return nil
	})
	return out, err
}

// List devuelve todos los empleados ordenados por ID.
func (r *EmployeeRepo) List(_ context.Context) ([]*entity.Employee, error) {
	var out []*entity.Employee
	err := r.q.view(func(st *state) error {
		out = make([]*entity.Employee, 0, len(st.employees))
		for _, e := range st.employees {
			e := e
			out = append(out, &e)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// Count cuenta los empleados.
func (r *EmployeeRepo) Count(_ context.Context) (int, error) {
	var n int
	err := r.q.view(func(st *state) error {
		n = len(st.employees)
		return nil
	})
	return n, err
}

// Update reemplaza los datos editables; ExternalID y CreatedAt se conservan.
func (r *EmployeeRepo) Update(_ context.Context, e *entity.Employee) error {
	return r.q.update(func(st *state) error {
		cur, ok := st.employees[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		e.ExternalID = cur.ExternalID
		e.CreatedAt = cur.CreatedAt
		st.employees[e.ID] = *e
		return nil
	})
}

// Delete borra el empleado y, en cascada, sus reportes con sus vínculos.
func (r *EmployeeRepo) Delete(_ context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.q.update(func(st *state) error {
		if _, ok := st.employees[id]; !ok {
			return nil
		}
		delete(st.employees, id)
		for rid, rep := range st.reports {
			if rep.EmployeeID == id {
				delete(st.reports, rid)
				delete(st.links, rid)
			}
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// CompanyRepo implementación en memoria de CompanyRepository.
type CompanyRepo struct {
	q querier
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.q.update(func(st *state) error {
		st.nextCompanyID++
		c.ID = st.nextCompanyID
		st.companies[c.ID] = *c
		return nil
	})
}

// GetByID obtiene una empresa por ID (nil si no existe).
func (r *CompanyRepo) GetByID(_ context.Context, id int64) (*entity.Company, error) {
	var out *entity.Company
	err := r.q.view(func(st *state) error {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

// List devuelve empresas ordenadas por nombre con paginación.
func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	var all []*entity.Company
	err := r.q.view(func(st *state) error {
		for _, c := range st.companies {
			c := c
			all = append(all, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name == all[j].Name {
			return all[i].ID < all[j].ID
		}
		return all[i].Name < all[j].Name
	})
	return paginate(all, limit, offset), nil
}

// FindByName coincidencia exacta del nombre.
func (r *CompanyRepo) FindByName(_ context.Context, name string) ([]*entity.Company, error) {
	var out []*entity.Company
	err := r.q.view(func(st *state) error {
		for _, c := range st.companies {
			if c.Name == name {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// ExistingIDs devuelve los ids que existen.
func (r *CompanyRepo) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	err := r.q.view(func(st *state) error {
		for _, id := range ids {
			if _, ok := st.companies[id]; ok {
				out = append(out, id)
			}
		}
		return nil
	})
	return out, err
}

// Update reemplaza la empresa existente.
func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	return r.q.update(func(st *state) error {
		if _, ok := st.companies[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.companies[c.ID] = *c
		return nil
	})
}

// Delete borra la empresa y, en la misma operación, los vínculos que la referencian.
func (r *CompanyRepo) Delete(_ context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.q.update(func(st *state) error {
		if _, ok := st.companies[id]; !ok {
			return nil
		}
		delete(st.companies, id)
		for _, set := range st.links {
			delete(set, id)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// ReportRepo implementación en memoria de ReportRepository.
type ReportRepo struct {
	q querier
}

// Create inserta el reporte. El empleado debe existir.
func (r *ReportRepo) Create(_ context.Context, rep *entity.Report) error {
	return r.q.update(func(st *state) error {
		if _, ok := st.employees[rep.EmployeeID]; !ok {
			return fmt.Errorf("%w: empleado %d inexistente", domain.ErrInvalidInput, rep.EmployeeID)
		}
		st.nextReportID++
		rep.ID = st.nextReportID
		st.reports[rep.ID] = stripLinks(*rep)
		return nil
	})
}

// GetByID obtiene un reporte (sin empresas) o nil.
func (r *ReportRepo) GetByID(_ context.Context, id int64) (*entity.Report, error) {
	var out *entity.Report
	err := r.q.view(func(st *state) error {
		if rep, ok := st.reports[id]; ok {
			out = &rep
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria las escrituras ya están serializadas.
func (r *ReportRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Report, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza los campos del reporte.
func (r *ReportRepo) Update(_ context.Context, rep *entity.Report) error {
	return r.q.update(func(st *state) error {
		if _, ok := st.reports[rep.ID]; !ok {
			return domain.ErrNotFound
		}
		st.reports[rep.ID] = stripLinks(*rep)
		return nil
	})
}

// Delete borra el reporte y sus vínculos (cascada).
func (r *ReportRepo) Delete(_ context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.q.update(func(st *state) error {
		if _, ok := st.reports[id]; !ok {
			return nil
		}
		delete(st.reports, id)
		delete(st.links, id)
		deleted = true
		return nil
	})
	return deleted, err
}

// List devuelve reportes por fecha descendente.
func (r *ReportRepo) List(_ context.Context, limit, offset int) ([]*entity.Report, error) {
	var all []*entity.Report
	err := r.q.view(func(st *state) error {
		for _, rep := range st.reports {
			rep := rep
			all = append(all, &rep)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortReports(all)
	return paginate(all, limit, offset), nil
}

// ListByEmployee devuelve los reportes de un empleado por fecha descendente.
func (r *ReportRepo) ListByEmployee(_ context.Context, employeeID int64) ([]*entity.Report, error) {
	var out []*entity.Report
	err := r.q.view(func(st *state) error {
		for _, rep := range st.reports {
			if rep.EmployeeID == employeeID {
				rep := rep
				out = append(out, &rep)
			}
		}
		return nil
	})
	sortReports(out)
	return out, err
}

// CompanyIDs ids de empresas vinculadas, ordenados.
func (r *ReportRepo) CompanyIDs(_ context.Context, reportID int64) ([]int64, error) {
	out := []int64{}
	err := r.q.view(func(st *state) error {
		for id := range st.links[reportID] {
			out = append(out, id)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, err
}

// AddLinks inserta vínculos verificando integridad referencial de ambos extremos.
func (r *ReportRepo) AddLinks(_ context.Context, reportID int64, companyIDs []int64) error {
	return r.q.update(func(st *state) error {
		if _, ok := st.reports[reportID]; !ok {
			return fmt.Errorf("%w: reporte %d inexistente", domain.ErrInvalidInput, reportID)
		}
		set := st.links[reportID]
		if set == nil {
			set = make(map[int64]struct{}, len(companyIDs))
			st.links[reportID] = set
		}
		for _, cid := range companyIDs {
			if _, ok := st.companies[cid]; !ok {
				return fmt.Errorf("%w: empresa %d inexistente", domain.ErrInvalidInput, cid)
			}
			if _, dup := set[cid]; dup {
				return domain.ErrDuplicate
			}
			set[cid] = struct{}{}
		}
		return nil
	})
}

// DeleteLinks borra todos los vínculos del reporte.
func (r *ReportRepo) DeleteLinks(_ context.Context, reportID int64) error {
	return r.q.update(func(st *state) error {
		delete(st.links, reportID)
		return nil
	})
}

// Links devuelve todas las filas de la tabla puente.
func (r *ReportRepo) Links(_ context.Context) ([]entity.ReportCompanyLink, error) {
	var out []entity.ReportCompanyLink
	err := r.q.view(func(st *state) error {
		for rid, set := range st.links {
			for cid := range set {
				out = append(out, entity.ReportCompanyLink{ReportID: rid, CompanyID: cid})
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReportID == out[j].ReportID {
			return out[i].CompanyID < out[j].CompanyID
		}
		return out[i].ReportID < out[j].ReportID
	})
	return out, err
}

func stripLinks(rep entity.Report) entity.Report {
	rep.CompanyIDs = nil
	return rep
}

func sortReports(list []*entity.Report) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Date.Equal(list[j].Date) {
			return list[i].ID > list[j].ID
		}
		return list[i].Date.After(list[j].Date)
	})
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
