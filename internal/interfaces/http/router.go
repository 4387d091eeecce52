package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/application/report"
	"github.com/jhoicas/timetracker-api/internal/application/usecase"
	"github.com/jhoicas/timetracker-api/pkg/logger"
	"github.com/jhoicas/timetracker-api/pkg/webhook"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Bootstrap       *bootstrap.AdmissionService
	Identity        ports.IdentityProvider
	WebhookVerifier *webhook.Verifier
	CompanyUC       *usecase.CompanyUseCase
	EmployeeUC      *usecase.EmployeeUseCase
	Reports         *report.Engine
	Resolver        *report.CompanyResolver
	JWTSecret       string
	Log             *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	bootstrapHandler := NewBootstrapHandler(deps.Bootstrap, deps.Identity, deps.WebhookVerifier, deps.Log)

	// Webhooks (firma propia, sin JWT). Solo si hay secreto configurado.
	if deps.WebhookVerifier != nil {
		api.Post("/webhooks/identity", bootstrapHandler.Webhook)
	}

	// Auth
	authGroup := api.Group("/auth")
	authGroup.Get("/registration-status", bootstrapHandler.RegistrationStatus)
	authGroup.Get("/first-user", AuthMiddleware(deps.JWTSecret), bootstrapHandler.FirstUser)

	// Rutas protegidas (requieren Bearer Token)
	auth := AuthMiddleware(deps.JWTSecret)
	actor := ResolveActor(deps.EmployeeUC)

	employeeHandler := NewEmployeeHandler(deps.EmployeeUC)
	employees := api.Group("/employees", auth)
	employees.Get("/current", employeeHandler.Current)
	employees.Get("/", actor, RequireAdmin(), employeeHandler.List)
	employees.Post("/", actor, RequireAdmin(), employeeHandler.Create)
	employees.Put("/:id", actor, RequireAdmin(), employeeHandler.Update)
	employees.Delete("/:id", actor, RequireAdmin(), employeeHandler.Delete)

	// Companies: lectura y alta con sesión; edición y borrado solo admin.
	companies := api.Group("/companies", auth)
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Get("/", companyHandler.List)
	companies.Post("/", companyHandler.Create)
	companies.Get("/:id", companyHandler.GetByID)
	companies.Put("/:id", actor, RequireAdmin(), companyHandler.Update)
	companies.Delete("/:id", actor, RequireAdmin(), companyHandler.Delete)

	// Reports
	reports := api.Group("/reports", auth, actor)
	reportHandler := NewReportHandler(deps.Reports, deps.Resolver)
	reports.Get("/", reportHandler.List)
	reports.Post("/", reportHandler.Create)
	reports.Get("/:id", reportHandler.GetByID)
	reports.Put("/:id", reportHandler.Update)
	reports.Delete("/:id", reportHandler.Delete)
}
