package repository

import (
	"context"

	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// ReportRepository define el puerto de persistencia para Report y su tabla puente con Company.
// Las escrituras de vínculos solo deben invocarse dentro de una transacción (ver report.TxRunner).
type ReportRepository interface {
	// Create inserta la fila del reporte y asigna ID (no toca vínculos).
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id int64) (*entity.Report, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id int64) (*entity.Report, error)
	Update(ctx context.Context, report *entity.Report) error
	// Delete borra la fila. Devuelve false si no existía.
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Report, error)
	ListByEmployee(ctx context.Context, employeeID int64) ([]*entity.Report, error)

	CompanyIDs(ctx context.Context, reportID int64) ([]int64, error)
	AddLinks(ctx context.Context, reportID int64, companyIDs []int64) error
	DeleteLinks(ctx context.Context, reportID int64) error
	// Links devuelve todas las filas de la tabla puente (auditoría de integridad).
	Links(ctx context.Context) ([]entity.ReportCompanyLink, error)
}
