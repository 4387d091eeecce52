package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// EmployeeUseCase consultas de empleados y resolución del actor de cada petición.
type EmployeeUseCase struct {
	repo repository.EmployeeRepository
	idp  ports.IdentityProvider
}

// NewEmployeeUseCase construye el caso de uso.
func NewEmployeeUseCase(repo repository.EmployeeRepository, idp ports.IdentityProvider) *EmployeeUseCase {
	return &EmployeeUseCase{repo: repo, idp: idp}
}

// Current devuelve el empleado vinculado a la identidad o domain.ErrNotFound.
func (uc *EmployeeUseCase) Current(ctx context.Context, identityID string) (*dto.EmployeeResponse, error) {
	e, err := uc.repo.GetByExternalID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return EmployeeToResponse(e), nil
}

// Actor arma el actor de la petición: su empleado (0 si no tiene) y su rol en el proveedor.
func (uc *EmployeeUseCase) Actor(ctx context.Context, identityID string) (entity.Actor, error) {
	actor := entity.Actor{IdentityID: identityID}
	e, err := uc.repo.GetByExternalID(ctx, identityID)
	if err != nil {
		return actor, err
	}
	if e != nil {
		actor.EmployeeID = e.ID
	}
	role, err := uc.idp.GetRole(ctx, identityID)
	if err != nil {
		return actor, fmt.Errorf("rol del actor: %w", err)
	}
	actor.Role = role
	return actor, nil
}

// List devuelve todos los empleados. Solo administradores.
func (uc *EmployeeUseCase) List(ctx context.Context, actor entity.Actor) (*dto.EmployeeListResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.EmployeeResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *EmployeeToResponse(e))
	}
	return &dto.EmployeeListResponse{Items: items}, nil
}

// Create da de alta un empleado sin identidad vinculada. Solo administradores.
func (uc *EmployeeUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	e := &entity.Employee{
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Position:   in.Position,
		Department: in.Department,
		Status:     in.Status,
		Agency:     in.Agency,
		JoinDate:   time.Now().UTC().Truncate(24 * time.Hour),
	}
	if e.Name == "" || e.Email == "" {
		return nil, domain.ErrInvalidInput
	}
	if e.Status == "" {
		e.Status = entity.EmployeeActive
	}
	if in.JoinDate != "" {
		d, err := parseDate(in.JoinDate)
		if err != nil {
			return nil, err
		}
		e.JoinDate = d
	}
	if err := uc.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return EmployeeToResponse(e), nil
}

// Update aplica una actualización parcial. Solo administradores.
func (uc *EmployeeUseCase) Update(ctx context.Context, actor entity.Actor, id int64, in dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	e, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		if e.Name = strings.TrimSpace(*in.Name); e.Name == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Email != nil {
		if e.Email = strings.TrimSpace(*in.Email); e.Email == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Position != nil {
		e.Position = *in.Position
	}
	if in.Department != nil {
		e.Department = *in.Department
	}
	if in.JoinDate != nil {
		d, err := parseDate(*in.JoinDate)
		if err != nil {
			return nil, err
		}
		e.JoinDate = d
	}
	if in.Status != nil {
		e.Status = *in.Status
	}
	if in.Agency != nil {
		e.Agency = *in.Agency
	}
	if err := uc.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return EmployeeToResponse(e), nil
}

// Delete borra el empleado con sus reportes. Solo administradores.
func (uc *EmployeeUseCase) Delete(ctx context.Context, actor entity.Actor, id int64) error {
	if !actor.Role.IsAdmin() {
		return domain.ErrForbidden
	}
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

// EmployeeToResponse convierte la entidad al DTO de salida.
func EmployeeToResponse(e *entity.Employee) *dto.EmployeeResponse {
	if e == nil {
		return nil
	}
	return &dto.EmployeeResponse{
		ID:         e.ID,
		ExternalID: e.ExternalID,
		Name:       e.Name,
		Email:      e.Email,
		Position:   e.Position,
		Department: e.Department,
		JoinDate:   e.JoinDate,
		Status:     e.Status,
		Agency:     e.Agency,
	}
}
