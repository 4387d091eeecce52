package dto

import "time"

// EmployeeResponse salida de un empleado.
type EmployeeResponse struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Position   string    `json:"position"`
	Department string    `json:"department"`
	JoinDate   time.Time `json:"join_date"`
	Status     string    `json:"status"`
	Agency     string    `json:"agency,omitempty"`
}

// CreateEmployeeRequest alta manual de un empleado (sin identidad vinculada).
type CreateEmployeeRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Position   string `json:"position" validate:"max=200"`
	Department string `json:"department" validate:"max=200"`
	JoinDate   string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Agency     string `json:"agency" validate:"max=200"`
}

// UpdateEmployeeRequest actualización parcial; un campo ausente no se modifica.
type UpdateEmployeeRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Position   *string `json:"position" validate:"omitempty,max=200"`
	Department *string `json:"department" validate:"omitempty,max=200"`
	JoinDate   *string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	Status     *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Agency     *string `json:"agency" validate:"omitempty,max=200"`
}

// EmployeeListResponse lista de empleados.
type EmployeeListResponse struct {
	Items []EmployeeResponse `json:"items"`
}
