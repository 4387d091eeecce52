package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report registro de horas de un empleado. CompanyIDs es el conjunto de empresas asociadas.
type Report struct {
	ID                int64
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

// ReportCompanyLink fila de la tabla puente reporte-empresa.
type ReportCompanyLink struct {
	ReportID  int64
	CompanyID int64
}
