package dto

// FirstUserResponse resultado de evaluar el bootstrap del primer administrador.
type FirstUserResponse struct {
	Success  bool              `json:"success"`
	IsAdmin  bool              `json:"isAdmin"`
	Outcome  string            `json:"outcome"`
	Message  string            `json:"message"`
	Employee *EmployeeResponse `json:"employee,omitempty"`
}

// RegistrationStatusResponse indica si el alta de usuarios está abierta.
type RegistrationStatusResponse struct {
	RegistrationAllowed bool   `json:"registrationAllowed"`
	LocalUsers          bool   `json:"localUsers"`
	ProviderUsers       bool   `json:"providerUsers"`
	Message             string `json:"message"`
}

// WebhookResponse acuse de recibo de un webhook del proveedor de identidad.
type WebhookResponse struct {
	Success bool   `json:"success"`
	IsAdmin bool   `json:"isAdmin"`
	Outcome string `json:"outcome,omitempty"`
}
