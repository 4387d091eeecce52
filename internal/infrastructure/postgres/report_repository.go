package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

const reportColumns = `id, employee_id, report_date, market, contracting_agency, client,
	project_brand, media, job_type, comments, hours`

// ReportRepo implementación de ReportRepository (usable con pool o tx).
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Create inserta la fila del reporte.
func (r *ReportRepo) Create(ctx context.Context, rep *entity.Report) error {
	query := `
		INSERT INTO reports (employee_id, report_date, market, contracting_agency, client,
			project_brand, media, job_type, comments, hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		rep.EmployeeID, rep.Date, rep.Market, rep.ContractingAgency, rep.Client,
		rep.ProjectBrand, rep.Media, rep.JobType, rep.Comments, rep.Hours,
	).Scan(&rep.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: empleado %d inexistente", domain.ErrInvalidInput, rep.EmployeeID)
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID obtiene un reporte sin sus empresas.
func (r *ReportRepo) GetByID(ctx context.Context, id int64) (*entity.Report, error) {
	return r.getOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción.
func (r *ReportRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Report, error) {
	return r.getOne(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1 FOR UPDATE`, id)
}

// Update reemplaza los campos del reporte.
func (r *ReportRepo) Update(ctx context.Context, rep *entity.Report) error {
	query := `
		UPDATE reports SET report_date = $2, market = $3, contracting_agency = $4, client = $5,
			project_brand = $6, media = $7, job_type = $8, comments = $9, hours = $10
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		rep.ID, rep.Date, rep.Market, rep.ContractingAgency, rep.Client,
		rep.ProjectBrand, rep.Media, rep.JobType, rep.Comments, rep.Hours,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra el reporte (los vínculos caen por ON DELETE CASCADE).
func (r *ReportRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List reportes por fecha descendente con paginación.
func (r *ReportRepo) List(ctx context.Context, limit, offset int) ([]*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports ORDER BY report_date DESC, id DESC LIMIT $1 OFFSET $2`
	return r.queryReports(ctx, query, limit, offset)
}

// ListByEmployee reportes de un empleado por fecha descendente.
func (r *ReportRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE employee_id = $1 ORDER BY report_date DESC, id DESC`
	return r.queryReports(ctx, query, employeeID)
}

// CompanyIDs ids de empresas vinculadas, ordenados.
func (r *ReportRepo) CompanyIDs(ctx context.Context, reportID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT company_id FROM report_companies WHERE report_id = $1 ORDER BY company_id`, reportID)
	if err != nil {
		return nil, fmt.Errorf("report companies: %w", err)
	}
	defer rows.Close()
	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// AddLinks inserta un vínculo por empresa en una sola sentencia.
func (r *ReportRepo) AddLinks(ctx context.Context, reportID int64, companyIDs []int64) error {
	query := `
		INSERT INTO report_companies (report_id, company_id)
		SELECT $1, unnest($2::bigint[])`
	if _, err := r.q.Exec(ctx, query, reportID, companyIDs); err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: empresa o reporte inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert report companies: %w", err)
	}
	return nil
}

// DeleteLinks borra todos los vínculos del reporte.
func (r *ReportRepo) DeleteLinks(ctx context.Context, reportID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM report_companies WHERE report_id = $1`, reportID); err != nil {
		return fmt.Errorf("delete report companies: %w", err)
	}
	return nil
}

// Links devuelve todas las filas de la tabla puente.
func (r *ReportRepo) Links(ctx context.Context) ([]entity.ReportCompanyLink, error) {
	rows, err := r.q.Query(ctx, `SELECT report_id, company_id FROM report_companies ORDER BY report_id, company_id`)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()
	var out []entity.ReportCompanyLink
	for rows.Next() {
		var l entity.ReportCompanyLink
		if err := rows.Scan(&l.ReportID, &l.CompanyID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *ReportRepo) getOne(ctx context.Context, query string, id int64) (*entity.Report, error) {
	var rep entity.Report
	err := r.q.QueryRow(ctx, query, id).Scan(&rep.ID, &rep.EmployeeID, &rep.Date, &rep.Market,
		&rep.ContractingAgency, &rep.Client, &rep.ProjectBrand, &rep.Media, &rep.JobType,
		&rep.Comments, &rep.Hours)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &rep, nil
}

func (r *ReportRepo) queryReports(ctx context.Context, query string, args ...any) ([]*entity.Report, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	var list []*entity.Report
	for rows.Next() {
		var rep entity.Report
		if err := rows.Scan(&rep.ID, &rep.EmployeeID, &rep.Date, &rep.Market, &rep.ContractingAgency,
			&rep.Client, &rep.ProjectBrand, &rep.Media, &rep.JobType, &rep.Comments, &rep.Hours); err != nil {
			return nil, err
		}
		list = append(list, &rep)
	}
	return list, rows.Err()
}
