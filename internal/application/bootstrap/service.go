package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
	"github.com/jhoicas/timetracker-api/pkg/logger"
)

var (
	// ErrContended el lease siguió ocupado durante todos los intentos. Es seguro reintentar.
	ErrContended = errors.New("bootstrap en curso por otro proceso")
	// ErrLeaseExpired la sección crítica agotó su presupuesto antes de terminar; no se escribió
	// nada después de ese punto. Es seguro reintentar.
	ErrLeaseExpired = errors.New("el lease del bootstrap venció antes de completar las escrituras")
)

const releaseTimeout = 5 * time.Second

// Config espera acotada cuando el lease está ocupado.
type Config struct {
	RetryInterval time.Duration
	MaxAttempts   int
	// Lease duración del lease del LockCoordinator. La sección crítica corre con un plazo
	// de CriticalBudget(Lease) para terminar antes de que otro proceso pueda tomarlo.
	// Cero deja la sección sin plazo.
	Lease time.Duration
}

// CriticalBudget tiempo disponible para leer-decidir-escribir con el lease tomado (80% del lease).
func CriticalBudget(lease time.Duration) time.Duration {
	return lease - lease/5
}

// Result resultado de Admit. Employee es la fila vinculada a la identidad (nil en NotFirst y EmailCollision).
type Result struct {
	Outcome  Outcome
	Employee *entity.Employee
}

// AdmissionService decide si una identidad externa debe convertirse (o ya es) el administrador del sistema.
//
// Todo el ciclo leer-decidir-escribir ocurre con el lease tomado; el perdedor de una carrera
// espera, relee el estado y converge a un resultado sin escrituras.
type AdmissionService struct {
	employees repository.EmployeeRepository
	idp       ports.IdentityProvider
	lock      LockCoordinator
	cfg       Config
	log       *logger.Logger
	rec       Recorder
	now       func() time.Time
}

// NewAdmissionService construye el servicio con sus puertos.
func NewAdmissionService(
	employees repository.EmployeeRepository,
	idp ports.IdentityProvider,
	lock LockCoordinator,
	cfg Config,
	log *logger.Logger,
) *AdmissionService {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AdmissionService{
		employees: employees,
		idp:       idp,
		lock:      lock,
		cfg:       cfg,
		log:       log.WithComponent("bootstrap"),
		rec:       nopRecorder{},
		now:       time.Now,
	}
}

// WithRecorder conecta un receptor de métricas.
func (s *AdmissionService) WithRecorder(r Recorder) *AdmissionService {
	if r != nil {
		s.rec = r
	}
	return s
}

// Admit evalúa el bootstrap para la identidad. Es idempotente: se puede reintentar
// o recibir duplicado (webhook + polling) sin crear filas ni promociones extra.
func (s *AdmissionService) Admit(ctx context.Context, identity entity.Identity) (*Result, error) {
	if identity.ID == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: identidad y email son requeridos", domain.ErrInvalidInput)
	}

	for attempt := 1; ; attempt++ {
		token, ok, err := s.lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("adquirir lock: %w", err)
		}
		if ok {
			return s.admitWithinLease(ctx, identity, token)
		}

		if attempt >= s.cfg.MaxAttempts {
			s.log.Warn().Str("identity_id", identity.ID).Int("attempts", attempt).Msg("lease ocupado, se agotaron los intentos")
			return nil, ErrContended
		}
		if err := sleep(ctx, s.cfg.RetryInterval); err != nil {
			return nil, err
		}

		// Estado fresco tras la espera: si ya no hay nada que escribir no hace falta el lease.
		st, err := s.load(ctx, identity)
		if err != nil {
			return nil, err
		}
		if outcome := st.decide(); !outcome.writes() {
			return s.finish(identity, outcome, st.byIdentity), nil
		}
	}
}

// admitWithinLease ejecuta la sección crítica con un plazo menor que el lease. Si el plazo
// vence, cualquier error del paso en curso se informa como ErrLeaseExpired.
func (s *AdmissionService) admitWithinLease(ctx context.Context, identity entity.Identity, token string) (*Result, error) {
	lctx := ctx
	if s.cfg.Lease > 0 {
		var cancel context.CancelFunc
		lctx, cancel = context.WithTimeout(ctx, CriticalBudget(s.cfg.Lease))
		defer cancel()
	}
	res, err := s.admitLocked(lctx, identity, token)
	if err != nil && ctx.Err() == nil && errors.Is(lctx.Err(), context.DeadlineExceeded) {
		s.log.Error().Err(err).Str("identity_id", identity.ID).Msg("bootstrap abortado: plazo del lease agotado")
		return nil, fmt.Errorf("%w: %v", ErrLeaseExpired, err)
	}
	return res, err
}

func (s *AdmissionService) admitLocked(ctx context.Context, identity entity.Identity, token string) (*Result, error) {
	defer func() {
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		if err := s.lock.Release(relCtx, token); err != nil {
			s.log.Warn().Err(err).Str("identity_id", identity.ID).Msg("no se pudo liberar el lease; expirará solo")
		}
	}()

	// La comprobación "no hay empleados" se repite aquí, con el lease tomado.
	st, err := s.load(ctx, identity)
	if err != nil {
		return nil, err
	}
	outcome := st.decide()
	if outcome.writes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	switch outcome {
	case OutcomePromoted:
		if err := s.setAdmin(ctx, identity.ID); err != nil {
			return nil, err
		}
		return s.finish(identity, outcome, st.byIdentity), nil

	case OutcomeBootstrapped:
		if err := s.setAdmin(ctx, identity.ID); err != nil {
			return nil, err
		}
		// Un proveedor que ignora ctx puede volver tarde: sin plazo no se inserta.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s.insertAdmin(ctx, identity, outcome)

	case OutcomeRepaired:
		return s.insertAdmin(ctx, identity, outcome)

	default:
		return s.finish(identity, outcome, st.byIdentity), nil
	}
}

// insertAdmin crea la fila del administrador. Si el rol ya quedó asignado y el insert falla,
// el siguiente intento entra por OutcomeRepaired.
func (s *AdmissionService) insertAdmin(ctx context.Context, identity entity.Identity, outcome Outcome) (*Result, error) {
	emp := &entity.Employee{
		ExternalID: identity.ID,
		Name:       identity.DisplayName(),
		Email:      identity.Email,
		Position:   "Admin",
		Department: "Administration",
		JoinDate:   s.now().UTC().Truncate(24 * time.Hour),
		Status:     entity.EmployeeActive,
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			existing, gerr := s.employees.GetByExternalID(ctx, identity.ID)
			if gerr != nil {
				return nil, gerr
			}
			return s.finish(identity, OutcomeAlreadyAdmin, existing), nil
		}
		s.log.Error().Err(err).Str("identity_id", identity.ID).Msg("rol admin asignado pero falló el alta del empleado")
		return nil, fmt.Errorf("crear empleado administrador: %w", err)
	}
	return s.finish(identity, outcome, emp), nil
}

func (s *AdmissionService) setAdmin(ctx context.Context, identityID string) error {
	if err := s.idp.SetRole(ctx, identityID, entity.RoleAdmin); err != nil {
		s.log.Error().Err(err).Str("identity_id", identityID).Msg("asignar rol admin")
		return fmt.Errorf("asignar rol admin: %w", err)
	}
	return nil
}

func (s *AdmissionService) finish(identity entity.Identity, outcome Outcome, emp *entity.Employee) *Result {
	s.log.Info().Str("identity_id", identity.ID).Str("outcome", outcome.String()).Msg("bootstrap evaluado")
	s.rec.ObserveBootstrap(outcome.String())
	return &Result{Outcome: outcome, Employee: emp}
}

// state foto del conjunto de empleados relevante para una identidad.
type state struct {
	total      int
	byIdentity *entity.Employee
	byEmail    *entity.Employee
	role       entity.Role
}

func (s *AdmissionService) load(ctx context.Context, identity entity.Identity) (*state, error) {
	all, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar empleados: %w", err)
	}
	st := &state{total: len(all)}
	for _, e := range all {
		if e.ExternalID == identity.ID {
			st.byIdentity = e
		} else if st.byEmail == nil && entity.SameEmail(e.Email, identity.Email) {
			st.byEmail = e
		}
	}

	// Sin fila propia y con colisión de email no hace falta consultar el rol.
	if st.byIdentity == nil && st.byEmail != nil {
		return st, nil
	}
	role, err := s.idp.GetRole(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("consultar rol: %w", err)
	}
	st.role = role
	return st, nil
}

func (st *state) decide() Outcome {
	if st.byIdentity != nil {
		switch {
		case st.role.IsAdmin():
			return OutcomeAlreadyAdmin
		case st.total == 1:
			return OutcomePromoted
		default:
			return OutcomeNotFirst
		}
	}
	if st.byEmail != nil {
		return OutcomeEmailCollision
	}
	if st.role.IsAdmin() {
		return OutcomeRepaired
	}
	if st.total == 0 {
		return OutcomeBootstrapped
	}
	return OutcomeNotFirst
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
