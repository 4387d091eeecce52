package entity

import "strings"

// Role claim de rol almacenado en el proveedor de identidad.
type Role string

const (
	RoleNone   Role = ""
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ParseRole interpreta el valor crudo del proveedor. Cualquier valor desconocido se trata como RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleMember:
		return RoleMember
	default:
		return RoleNone
	}
}

// IsAdmin informa si el rol es administrador.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Identity usuario tal como lo ve el proveedor de identidad.
type Identity struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      Role
}

// DisplayName nombre para mostrar; "Admin User" si el proveedor no trae nombre.
func (i Identity) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
	if name == "" {
		return "Admin User"
	}
	return name
}

// Actor quien ejecuta una operación, resuelto explícitamente por petición.
type Actor struct {
	IdentityID string
	EmployeeID int64
	Role       Role
}

// CanMutate informa si el actor puede modificar un recurso del empleado ownerID.
func (a Actor) CanMutate(ownerID int64) bool {
	return a.Role.IsAdmin() || (a.EmployeeID != 0 && a.EmployeeID == ownerID)
}
