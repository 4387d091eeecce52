package repository

import (
	"context"

	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id int64) (*entity.Company, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// FindByName coincidencia exacta y sensible a mayúsculas; puede devolver varias.
	FindByName(ctx context.Context, name string) ([]*entity.Company, error)
	// ExistingIDs devuelve el subconjunto de ids que existen.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	// Update reemplaza los datos de contacto. Devuelve domain.ErrNotFound si no existe.
	Update(ctx context.Context, company *entity.Company) error
	// Delete borra la empresa y sus vínculos con reportes. Devuelve false si no existía.
	Delete(ctx context.Context, id int64) (bool, error)
}
