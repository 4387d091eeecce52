package dto

// CreateCompanyRequest entrada para crear una empresa.
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Contact string `json:"contact" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CompanyResponse salida de una empresa.
type CompanyResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Contact  string `json:"contact"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Projects int    `json:"projects"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CompanyListResponse lista paginada de empresas.
type CompanyListResponse struct {
	Items []CompanyResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// UpdateCompanyRequest actualización parcial; un campo ausente no se modifica.
type UpdateCompanyRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Contact  *string `json:"contact" validate:"omitempty,max=200"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=50"`
	Projects *int    `json:"projects" validate:"omitempty,min=0"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
}
