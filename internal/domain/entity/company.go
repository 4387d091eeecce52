package entity

// Company contraparte con datos de contacto. Referenciada por los reportes (tabla report_companies).
type Company struct {
	ID       int64
	Name     string
	Contact  string
	Email    string
	Phone    string
	Projects int
	Address  string
	Notes    string
}
