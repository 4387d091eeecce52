package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// CreateInput datos para crear un reporte. EmployeeID cero = el empleado del actor.
type CreateInput struct {
	EmployeeID        int64
	Date              time.Time
	Market            string
	ContractingAgency string
	Client            string
	ProjectBrand      string
	Media             string
	JobType           string
	Comments          string
	Hours             decimal.Decimal
	CompanyIDs        []int64
}

// UpdateInput actualización parcial: solo se aplican los campos no nil.
// CompanyIDs nil deja los vínculos intactos; un slice vacío (no nil) los quita todos.
type UpdateInput struct {
	Date              *time.Time
	Market            *string
	ContractingAgency *string
	Client            *string
	ProjectBrand      *string
	Media             *string
	JobType           *string
	Comments          *string
	Hours             *decimal.Decimal
	CompanyIDs        *[]int64
}

// Engine mantiene Report y su relación N:M con Company: cada operación es una sola transacción.
type Engine struct {
	tx      TxRunner
	reports repository.ReportRepository
}

// NewEngine construye el motor. reports se usa solo para lecturas fuera de transacción.
func NewEngine(tx TxRunner, reports repository.ReportRepository) *Engine {
	return &Engine{tx: tx, reports: reports}
}

// Create inserta el reporte y un vínculo por empresa (sin duplicados) en la misma transacción.
func (e *Engine) Create(ctx context.Context, actor entity.Actor, in CreateInput) (*entity.Report, error) {
	if in.EmployeeID == 0 {
		in.EmployeeID = actor.EmployeeID
	}
	if in.EmployeeID == 0 {
		return nil, fmt.Errorf("%w: el reporte necesita un empleado", domain.ErrInvalidInput)
	}
	if !actor.CanMutate(in.EmployeeID) {
		return nil, domain.ErrForbidden
	}
	if in.Date.IsZero() {
		return nil, fmt.Errorf("%w: fecha requerida", domain.ErrInvalidInput)
	}
	if in.Hours.IsNegative() {
		return nil, fmt.Errorf("%w: las horas no pueden ser negativas", domain.ErrInvalidInput)
	}
	ids, err := normalizeIDs(in.CompanyIDs)
	if err != nil {
		return nil, err
	}

	r := &entity.Report{
		EmployeeID:        in.EmployeeID,
		Date:              in.Date,
		Market:            in.Market,
		ContractingAgency: in.ContractingAgency,
		Client:            in.Client,
		ProjectBrand:      in.ProjectBrand,
		Media:             in.Media,
		JobType:           in.JobType,
		Comments:          in.Comments,
		Hours:             in.Hours,
	}
	err = e.tx.RunReports(ctx, func(reports repository.ReportRepository, companies repository.CompanyRepository) error {
		if err := checkCompanies(ctx, companies, ids); err != nil {
			return err
		}
		if err := reports.Create(ctx, r); err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := reports.AddLinks(ctx, r.ID, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.CompanyIDs = ids
	return r, nil
}

// Update aplica los campos presentes y, si CompanyIDs viene, reemplaza el conjunto completo
// de vínculos (borrar + insertar en la misma transacción).
func (e *Engine) Update(ctx context.Context, actor entity.Actor, id int64, in UpdateInput) (*entity.Report, error) {
	if in.Hours != nil && in.Hours.IsNegative() {
		return nil, fmt.Errorf("%w: las horas no pueden ser negativas", domain.ErrInvalidInput)
	}
	if in.Date != nil && in.Date.IsZero() {
		return nil, fmt.Errorf("%w: fecha inválida", domain.ErrInvalidInput)
	}
	var ids []int64
	if in.CompanyIDs != nil {
		var err error
		if ids, err = normalizeIDs(*in.CompanyIDs); err != nil {
			return nil, err
		}
	}

	var out *entity.Report
	err := e.tx.RunReports(ctx, func(reports repository.ReportRepository, companies repository.CompanyRepository) error {
		r, err := reports.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if !actor.CanMutate(r.EmployeeID) {
			return domain.ErrForbidden
		}
		if in.CompanyIDs != nil {
			if err := checkCompanies(ctx, companies, ids); err != nil {
				return err
			}
		}

		applyUpdate(r, in)
		if err := reports.Update(ctx, r); err != nil {
			return err
		}

		if in.CompanyIDs != nil {
			if err := reports.DeleteLinks(ctx, id); err != nil {
				return err
			}
			if len(ids) > 0 {
				if err := reports.AddLinks(ctx, id, ids); err != nil {
					return err
				}
			}
			r.CompanyIDs = ids
		} else if r.CompanyIDs, err = reports.CompanyIDs(ctx, id); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra los vínculos y luego la fila, en una transacción. Devuelve el reporte borrado.
func (e *Engine) Delete(ctx context.Context, actor entity.Actor, id int64) (*entity.Report, error) {
	var out *entity.Report
	err := e.tx.RunReports(ctx, func(reports repository.ReportRepository, _ repository.CompanyRepository) error {
		r, err := reports.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if !actor.CanMutate(r.EmployeeID) {
			return domain.ErrForbidden
		}
		if r.CompanyIDs, err = reports.CompanyIDs(ctx, id); err != nil {
			return err
		}
		if err := reports.DeleteLinks(ctx, id); err != nil {
			return err
		}
		deleted, err := reports.Delete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrNotFound
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get devuelve el reporte con sus empresas o domain.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id int64) (*entity.Report, error) {
	r, err := e.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if r.CompanyIDs, err = e.reports.CompanyIDs(ctx, id); err != nil {
		return nil, err
	}
	return r, nil
}

// List devuelve reportes paginados (más recientes primero) con sus empresas.
func (e *Engine) List(ctx context.Context, limit, offset int) ([]*entity.Report, error) {
	list, err := e.reports.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return e.withCompanies(ctx, list)
}

// ListByEmployee devuelve los reportes de un empleado con sus empresas.
func (e *Engine) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.Report, error) {
	list, err := e.reports.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return e.withCompanies(ctx, list)
}

func (e *Engine) withCompanies(ctx context.Context, list []*entity.Report) ([]*entity.Report, error) {
	for _, r := range list {
		ids, err := e.reports.CompanyIDs(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		r.CompanyIDs = ids
	}
	return list, nil
}

func applyUpdate(r *entity.Report, in UpdateInput) {
	if in.Date != nil {
		r.Date = *in.Date
	}
	setString(&r.Market, in.Market)
	setString(&r.ContractingAgency, in.ContractingAgency)
	setString(&r.Client, in.Client)
	setString(&r.ProjectBrand, in.ProjectBrand)
	setString(&r.Media, in.Media)
	setString(&r.JobType, in.JobType)
	setString(&r.Comments, in.Comments)
	if in.Hours != nil {
		r.Hours = *in.Hours
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// normalizeIDs quita duplicados y rechaza ids no positivos. Nunca devuelve nil.
func normalizeIDs(ids []int64) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("%w: id de empresa inválido %d", domain.ErrInvalidInput, id)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

// checkCompanies rechaza, antes de cualquier escritura, ids de empresas inexistentes.
func checkCompanies(ctx context.Context, companies repository.CompanyRepository, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	existing, err := companies.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	found := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
		return fmt.Errorf("%w: empresas inexistentes %v", domain.ErrInvalidInput, missing)
	}
	return nil
}
