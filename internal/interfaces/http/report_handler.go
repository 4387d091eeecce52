package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// ReportHandler maneja las peticiones HTTP para Report y sus empresas asociadas.
type ReportHandler struct {
	engine   *report.Engine
	resolver *report.CompanyResolver
}

// NewReportHandler construye el handler.
func NewReportHandler(engine *report.Engine, resolver *report.CompanyResolver) *ReportHandler {
	return &ReportHandler{engine: engine, resolver: resolver}
}

// Create godoc
// @Summary      Crear reporte de horas
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateReportRequest  true  "Reporte"
// @Success      201   {object}  dto.ReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	actor := GetActor(c)
	if !hasEmployee(actor) {
		return employeeNotFound(c)
	}
	var in dto.CreateReportRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateBody(&in); err != nil {
		return writeError(c, err)
	}
	date, _ := time.Parse(dto.DateLayout, in.Date)

	names := in.Companies
	if len(in.CompanyIDs) == 0 && len(names) == 0 {
		// Sin empresas explícitas se intenta con cliente y agencia.
		names = nonEmpty(in.Client, in.ContractingAgency)
	}
	ids, unresolved, err := h.companyIDs(c, in.CompanyIDs, names)
	if err != nil {
		return writeError(c, err)
	}

	r, err := h.engine.Create(c.UserContext(), actor, report.CreateInput{
		EmployeeID:        in.EmployeeID,
		Date:              date,
		Market:            in.Market,
		ContractingAgency: in.ContractingAgency,
		Client:            in.Client,
		ProjectBrand:      in.ProjectBrand,
		Media:             in.Media,
		JobType:           in.JobType,
		Comments:          in.Comments,
		Hours:             in.Hours,
		CompanyIDs:        ids,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toReportResponse(r, unresolved))
}

// Update godoc
// @Summary      Actualizar reporte (parcial). company_ids/companies reemplazan las asociaciones
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                      true  "ID del reporte"
// @Param        body  body  dto.UpdateReportRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.ReportResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/reports/{id} [put]
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	actor := GetActor(c)
	if !hasEmployee(actor) {
		return employeeNotFound(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	var in dto.UpdateReportRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if err := validateBody(&in); err != nil {
		return writeError(c, err)
	}

	upd := report.UpdateInput{
		Market:            in.Market,
		ContractingAgency: in.ContractingAgency,
		Client:            in.Client,
		ProjectBrand:      in.ProjectBrand,
		Media:             in.Media,
		JobType:           in.JobType,
		Comments:          in.Comments,
		Hours:             in.Hours,
	}
	if in.Date != nil {
		d, _ := time.Parse(dto.DateLayout, *in.Date)
		upd.Date = &d
	}
	var unresolved []report.UnresolvedName
	if in.CompanyIDs != nil || in.Companies != nil {
		var rawIDs []int64
		var names []string
		if in.CompanyIDs != nil {
			rawIDs = *in.CompanyIDs
		}
		if in.Companies != nil {
			names = *in.Companies
		}
		ids, unres, err := h.companyIDs(c, rawIDs, names)
		if err != nil {
			return writeError(c, err)
		}
		upd.CompanyIDs = &ids
		unresolved = unres
	}

	r, err := h.engine.Update(c.UserContext(), actor, int64(id), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReportResponse(r, unresolved))
}

// Delete godoc
// @Summary      Eliminar reporte y sus asociaciones
// @Tags         reports
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del reporte"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{id} [delete]
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	actor := GetActor(c)
	if !hasEmployee(actor) {
		return employeeNotFound(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	if _, err := h.engine.Delete(c.UserContext(), actor, int64(id)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetByID godoc
// @Summary      Obtener reporte con sus empresas
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  int  true  "ID del reporte"
// @Success      200  {object}  dto.ReportResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reports/{id} [get]
func (h *ReportHandler) GetByID(c *fiber.Ctx) error {
	actor := GetActor(c)
	if !hasEmployee(actor) {
		return employeeNotFound(c)
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return invalidID(c)
	}
	r, err := h.engine.Get(c.UserContext(), int64(id))
	if err != nil {
		return writeError(c, err)
	}
	if !actor.CanMutate(r.EmployeeID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el reporte pertenece a otro empleado"})
	}
	return c.JSON(toReportResponse(r, nil))
}

// List godoc
// @Summary      Listar reportes (admin: todos; resto: los propios)
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.ReportListResponse
// @Router       /api/reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	actor := GetActor(c)
	if !hasEmployee(actor) {
		return employeeNotFound(c)
	}
	page := pageFromQuery(c)
	var (
		list []*entity.Report
		err  error
	)
	if actor.Role.IsAdmin() {
		list, err = h.engine.List(c.UserContext(), page.Limit, page.Offset)
	} else {
		list, err = h.engine.ListByEmployee(c.UserContext(), actor.EmployeeID)
	}
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, toReportResponse(r, nil))
	}
	return c.JSON(dto.ReportListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)},
	})
}

// companyIDs une los ids explícitos con los resueltos por nombre.
func (h *ReportHandler) companyIDs(c *fiber.Ctx, ids []int64, names []string) ([]int64, []report.UnresolvedName, error) {
	out := append([]int64{}, ids...)
	if len(names) == 0 {
		return out, nil, nil
	}
	resolved, unresolved, err := h.resolver.ResolveAll(c.UserContext(), names)
	if err != nil {
		return nil, nil, err
	}
	return append(out, resolved...), unresolved, nil
}

// hasEmployee el llamante necesita fila de empleado salvo que sea admin.
func hasEmployee(actor entity.Actor) bool {
	return actor.EmployeeID != 0 || actor.Role.IsAdmin()
}

func employeeNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "no hay empleado para este usuario"})
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toReportResponse(r *entity.Report, unresolved []report.UnresolvedName) dto.ReportResponse {
	ids := r.CompanyIDs
	if ids == nil {
		ids = []int64{}
	}
	out := dto.ReportResponse{
		ID:                r.ID,
		EmployeeID:        r.EmployeeID,
		Date:              r.Date.Format(dto.DateLayout),
		Market:            r.Market,
		ContractingAgency: r.ContractingAgency,
		Client:            r.Client,
		ProjectBrand:      r.ProjectBrand,
		Media:             r.Media,
		JobType:           r.JobType,
		Comments:          r.Comments,
		Hours:             r.Hours,
		CompanyIDs:        ids,
	}
	for _, u := range unresolved {
		out.UnresolvedCompanies = append(out.UnresolvedCompanies, dto.UnresolvedCompanyResponse{
			Name:   u.Name,
			Reason: u.Reason.String(),
		})
	}
	return out
}
