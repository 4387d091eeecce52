package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

const companyColumns = `id, name, contact, email, phone, projects, address, notes`

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (name, contact, email, phone, projects, address, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		c.Name, c.Contact, c.Email, c.Phone, c.Projects, c.Address, c.Notes,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id int64) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Projects, &c.Address, &c.Notes,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// List lista empresas por nombre con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY name, id LIMIT $1 OFFSET $2`
	return r.queryCompanies(ctx, query, limit, offset)
}

// FindByName coincidencia exacta del nombre.
func (r *CompanyRepo) FindByName(ctx context.Context, name string) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE name = $1 ORDER BY id`
	return r.queryCompanies(ctx, query, name)
}

// ExistingIDs devuelve los ids que existen.
func (r *CompanyRepo) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT id FROM companies WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("existing companies: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, contact = $3, email = $4, phone = $5,
			projects = $6, address = $7, notes = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Contact, c.Email, c.Phone, c.Projects, c.Address, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete borra la empresa; report_companies tiene ON DELETE CASCADE, así que los vínculos
// desaparecen en la misma sentencia.
func (r *CompanyRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete company: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CompanyRepo) queryCompanies(ctx context.Context, query string, args ...any) ([]*entity.Company, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Projects, &c.Address, &c.Notes); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
