package dto

import "github.com/shopspring/decimal"

// DateLayout formato de fecha de los reportes.
const DateLayout = "2006-01-02"

// CreateReportRequest entrada para crear un reporte.
// Las empresas pueden venir por id (company_ids) o por nombre (companies).
type CreateReportRequest struct {
	EmployeeID        int64           `json:"employee_id" validate:"omitempty,min=1"`
	Date              string          `json:"date" validate:"required,datetime=2006-01-02"`
	Market            string          `json:"market" validate:"max=200"`
	ContractingAgency string          `json:"contracting_agency" validate:"max=200"`
	Client            string          `json:"client" validate:"max=200"`
	ProjectBrand      string          `json:"project_brand" validate:"max=200"`
	Media             string          `json:"media" validate:"max=200"`
	JobType           string          `json:"job_type" validate:"max=200"`
	Comments          string          `json:"comments"`
	Hours             decimal.Decimal `json:"hours"`
	CompanyIDs        []int64         `json:"company_ids"`
	Companies         []string        `json:"companies"`
}

// UpdateReportRequest actualización parcial. Un campo ausente no se modifica;
// company_ids/companies presentes (aunque vacíos) reemplazan todas las asociaciones.
type UpdateReportRequest struct {
	Date              *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Market            *string          `json:"market"`
	ContractingAgency *string          `json:"contracting_agency"`
	Client            *string          `json:"client"`
	ProjectBrand      *string          `json:"project_brand"`
	Media             *string          `json:"media"`
	JobType           *string          `json:"job_type"`
	Comments          *string          `json:"comments"`
	Hours             *decimal.Decimal `json:"hours"`
	CompanyIDs        *[]int64         `json:"company_ids"`
	Companies         *[]string        `json:"companies"`
}

// UnresolvedCompanyResponse nombre de empresa que no generó asociación.
type UnresolvedCompanyResponse struct {
	Name   string `json:"name"`
	Reason string `json:"reason"` // not_found | ambiguous
}

// ReportResponse salida de un reporte con sus empresas.
type ReportResponse struct {
	ID                  int64                       `json:"id"`
	EmployeeID          int64                       `json:"employee_id"`
	Date                string                      `json:"date"`
	Market              string                      `json:"market"`
	ContractingAgency   string                      `json:"contracting_agency"`
	Client              string                      `json:"client"`
	ProjectBrand        string                      `json:"project_brand"`
	Media               string                      `json:"media"`
	JobType             string                      `json:"job_type"`
	Comments            string                      `json:"comments"`
	Hours               decimal.Decimal             `json:"hours"`
	CompanyIDs          []int64                     `json:"company_ids"`
	UnresolvedCompanies []UnresolvedCompanyResponse `json:"unresolved_companies,omitempty"`
}

// ReportListResponse lista de reportes.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
