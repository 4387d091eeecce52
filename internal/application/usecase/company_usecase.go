package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/internal/domain/repository"
)

// CompanyUseCase aplica reglas de negocio para empresas (casos de uso).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una nueva empresa.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	company := &entity.Company{
		Name:    strings.TrimSpace(in.Name),
		Contact: in.Contact,
		Email:   in.Email,
		Phone:   in.Phone,
		Address: in.Address,
		Notes:   in.Notes,
	}
	if company.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtiene una empresa por ID.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id int64) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update aplica una actualización parcial. Solo administradores.
func (uc *CompanyUseCase) Update(ctx context.Context, actor entity.Actor, id int64, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		company.Name = strings.TrimSpace(*in.Name)
		if company.Name == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Contact != nil {
		company.Contact = *in.Contact
	}
	if in.Email != nil {
		company.Email = *in.Email
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Projects != nil {
		company.Projects = *in.Projects
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Notes != nil {
		company.Notes = *in.Notes
	}
	if err := uc.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// Delete borra la empresa; sus vínculos con reportes se eliminan en cascada. Solo administradores.
func (uc *CompanyUseCase) Delete(ctx context.Context, actor entity.Actor, id int64) error {
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

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:       c.ID,
		Name:     c.Name,
		Contact:  c.Contact,
		Email:    c.Email,
		Phone:    c.Phone,
		Projects: c.Projects,
		Address:  c.Address,
		Notes:    c.Notes,
	}
}
