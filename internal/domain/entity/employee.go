package entity

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Estados de un empleado.
const (
	EmployeeActive   = "Active"
	EmployeeInactive = "Inactive"
)

// Employee persona registrada en el sistema. El rol NO se guarda aquí: vive en el proveedor de identidad.
type Employee struct {
	ID         int64
	ExternalID string // id en el proveedor de identidad; vacío = sin vincular (único cuando existe)
	Name       string
	Email      string
	Position   string
	Department string
	JoinDate   time.Time
	Status     string
	Agency     string
	CreatedAt  time.Time
}

// NormalizeEmail deja el email listo para comparar (trim + case folding Unicode).
// Un Caser tiene estado, por eso se crea uno por llamada.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// SameEmail compara dos emails ignorando mayúsculas y espacios.
func SameEmail(a, b string) bool {
	na := NormalizeEmail(a)
	return na != "" && na == NormalizeEmail(b)
}
