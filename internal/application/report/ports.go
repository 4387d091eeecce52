package report

import (
	"context"

	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Si fn devuelve error se hace rollback y ninguna escritura queda visible.
type TxRunner interface {
	RunReports(ctx context.Context, fn func(
		reports repository.ReportRepository,
		companies repository.CompanyRepository,
	) error) error
}
