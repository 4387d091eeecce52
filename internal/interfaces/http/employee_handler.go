package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/application/usecase"
	"github.com/jhoicas/timetracker-api/internal/domain"
)

// EmployeeHandler maneja las peticiones HTTP para el recurso Employee.
type EmployeeHandler struct {
	uc *usecase.EmployeeUseCase
}

// NewEmployeeHandler construye el handler inyectando el caso de uso.
func NewEmployeeHandler(uc *usecase.EmployeeUseCase) *EmployeeHandler {
	return &EmployeeHandler{uc: uc}
}

// Current godoc
// @Summary      Empleado del usuario autenticado
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.EmployeeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/current [get]
func (h *EmployeeHandler) Current(c *fiber.Ctx) error {
	out, err := h.uc.Current(c.UserContext(), GetIdentityID(c))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "no hay empleado para este usuario"})
		}
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar empleados (admin)
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.EmployeeListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/employees [get]
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Alta de empleado (admin)
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateEmployeeRequest  true  "Datos del empleado"
// @Security     BearerAuth
// @Success      201  {object}  dto.EmployeeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/employees [post]
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateBody(&in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar empleado (admin, parcial)
// @Tags         employees
// @Accept       json
// @Produce      json
// @Param        id    path  int                        true  "ID del empleado"
// @Param        body  body  dto.UpdateEmployeeRequest  true  "Campos a modificar"
// @Security     BearerAuth
// @Success      200  {object}  dto.EmployeeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [put]
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	var in dto.UpdateEmployeeRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateBody(&in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), int64(id), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar empleado y sus reportes (admin)
// @Tags         employees
// @Param        id   path  int  true  "ID del empleado"
// @Security     BearerAuth
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/employees/{id} [delete]
func (h *EmployeeHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), int64(id)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
