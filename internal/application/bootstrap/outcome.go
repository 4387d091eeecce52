package bootstrap

// Outcome resultado de evaluar el bootstrap para una identidad.
type Outcome int

const (
	// OutcomeAlreadyAdmin existe el empleado y ya es admin. Sin escrituras.
	OutcomeAlreadyAdmin Outcome = iota + 1
	// OutcomePromoted el único empleado es esta identidad y se le asignó el rol admin.
	OutcomePromoted
	// OutcomeEmailCollision otra fila con el mismo email ya existe (la creó el otro disparador).
	OutcomeEmailCollision
	// OutcomeBootstrapped no había empleados: rol admin + fila nueva.
	OutcomeBootstrapped
	// OutcomeRepaired la identidad ya era admin pero faltaba su fila; se insertó.
	OutcomeRepaired
	// OutcomeNotFirst ya hay empleados y ninguno coincide. Sin cambio de privilegios.
	OutcomeNotFirst
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyAdmin:
		return "already_admin"
	case OutcomePromoted:
		return "promoted"
	case OutcomeEmailCollision:
		return "email_collision"
	case OutcomeBootstrapped:
		return "bootstrapped"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeNotFirst:
		return "not_first"
	default:
		return "unknown"
	}
}

// IsAdmin informa si, tras este resultado, la identidad evaluada es administradora.
func (o Outcome) IsAdmin() bool {
	switch o {
	case OutcomeAlreadyAdmin, OutcomePromoted, OutcomeBootstrapped, OutcomeRepaired:
		return true
	default:
		return false
	}
}

// writes informa si el resultado requiere escribir (y por tanto el lease).
func (o Outcome) writes() bool {
	switch o {
	case OutcomePromoted, OutcomeBootstrapped, OutcomeRepaired:
		return true
	default:
		return false
	}
}
