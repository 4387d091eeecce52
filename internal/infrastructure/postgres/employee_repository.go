package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

var _ repository.EmployeeRepository = (*EmployeeRepo)(nil)

const employeeColumns = `id, COALESCE(external_id, ''), name, email, position, department, join_date, status, agency, created_at`

// EmployeeRepo implementación de EmployeeRepository (usable con pool o tx).
type EmployeeRepo struct {
	q Querier
}

// NewEmployeeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEmployeeRepository(q Querier) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

// Create persiste el empleado. external_id tiene índice único: un segundo vínculo falla con ErrDuplicate.
func (r *EmployeeRepo) Create(ctx context.Context, e *entity.Employee) error {
	query := `
		INSERT INTO employees (external_id, name, email, position, department, join_date, status, agency)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		e.ExternalID, e.Name, e.Email, e.Position, e.Department, e.JoinDate, e.Status, e.Agency,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert employee: %w", err)
	}
	return nil
}

// GetByID obtiene un empleado por ID.
func (r *EmployeeRepo) GetByID(ctx context.Context, id int64) (*entity.Employee, error) {
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
}

// GetByExternalID obtiene el empleado vinculado a una identidad.
func (r *EmployeeRepo) GetByExternalID(ctx context.Context, externalID string) (*entity.Employee, error) {
	if externalID == "" {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+employeeColumns+` FROM employees WHERE external_id = $1`, externalID)
}

// List devuelve todos los empleados por ID.
func (r *EmployeeRepo) List(ctx context.Context) ([]*entity.Employee, error) {
	rows, err := r.q.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()
	var list []*entity.Employee
	for rows.Next() {
		var e entity.Employee
		if err := rows.Scan(&e.ID, &e.ExternalID, &e.Name, &e.Email, &e.Position, &e.Department,
			&e.JoinDate, &e.Status, &e.Agency, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Count cuenta los empleados.
func (r *EmployeeRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

// Update actualiza los datos editables del empleado.
func (r *EmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	query := `
		UPDATE employees SET name = $2, email = $3, position = $4, department = $5,
			join_date = $6, status = $7, agency = $8
		WHERE id = $1
		RETURNING COALESCE(external_id, ''), created_at`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.Name, e.Email, e.Position, e.Department, e.JoinDate, e.Status, e.Agency,
	).Scan(&e.ExternalID, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Delete borra el empleado; reports y report_companies caen por ON DELETE CASCADE.
func (r *EmployeeRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete employee: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *EmployeeRepo) getOne(ctx context.Context, query string, arg any) (*entity.Employee, error) {
	var e entity.Employee
	err := r.q.QueryRow(ctx, query, arg).Scan(&e.ID, &e.ExternalID, &e.Name, &e.Email, &e.Position,
		&e.Department, &e.JoinDate, &e.Status, &e.Agency, &e.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return &e, nil
}
