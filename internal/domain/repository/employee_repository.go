package repository

import (
	"context"

	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// EmployeeRepository define el puerto de persistencia para Employee (DIP).
type EmployeeRepository interface {
	// Create inserta y asigna ID. Devuelve domain.ErrDuplicate si ExternalID ya está vinculado.
	Create(ctx context.Context, employee *entity.Employee) error
	GetByID(ctx context.Context, id int64) (*entity.Employee, error)
	GetByExternalID(ctx context.Context, externalID string) (*entity.Employee, error)
	// List devuelve todos los empleados (conjunto pequeño, sistema administrativo).
	List(ctx context.Context) ([]*entity.Employee, error)
	Count(ctx context.Context) (int, error)
	// Update reemplaza los datos del empleado (no cambia ExternalID ni CreatedAt).
	// Devuelve domain.ErrNotFound si no existe.
	Update(ctx context.Context, employee *entity.Employee) error
	// Delete borra el empleado junto con sus reportes y los vínculos de esos reportes.
	// Devuelve false si no existía.
	Delete(ctx context.Context, id int64) (bool, error)
}
