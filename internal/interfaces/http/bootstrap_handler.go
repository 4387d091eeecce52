package http

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/timetracker-api/internal/application/bootstrap"
	"github.com/jhoicas/timetracker-api/internal/application/dto"
	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/application/usecase"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
	"github.com/jhoicas/timetracker-api/pkg/logger"
	"github.com/jhoicas/timetracker-api/pkg/webhook"
)

var outcomeMessages = map[bootstrap.Outcome]string{
	bootstrap.OutcomeAlreadyAdmin:   "el usuario ya es administrador",
	bootstrap.OutcomePromoted:       "usuario promovido a administrador",
	bootstrap.OutcomeEmailCollision: "ya existe un empleado con ese email",
	bootstrap.OutcomeBootstrapped:   "primer usuario creado como administrador",
	bootstrap.OutcomeRepaired:       "registro de administrador reparado",
	bootstrap.OutcomeNotFirst:       "no es el primer usuario",
}

// identityRegistrar lo implementan los proveedores que admiten alta a partir de la sesión.
type identityRegistrar interface {
	Register(ctx context.Context, id entity.Identity) (*entity.Identity, error)
}

// BootstrapHandler expone los dos disparadores del bootstrap (webhook y polling)
// y el estado del registro.
type BootstrapHandler struct {
	svc      *bootstrap.AdmissionService
	idp      ports.IdentityProvider
	verifier *webhook.Verifier
	log      *logger.Logger
}

// NewBootstrapHandler construye el handler. verifier puede ser nil si no hay webhook configurado.
func NewBootstrapHandler(svc *bootstrap.AdmissionService, idp ports.IdentityProvider, verifier *webhook.Verifier, log *logger.Logger) *BootstrapHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BootstrapHandler{svc: svc, idp: idp, verifier: verifier, log: log.WithComponent("http.bootstrap")}
}

// FirstUser godoc
// @Summary      Evaluar bootstrap del primer administrador para el llamante
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.FirstUserResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/auth/first-user [get]
func (h *BootstrapHandler) FirstUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	identityID, email := GetIdentityID(c), GetEmail(c)
	identity, err := h.idp.GetIdentity(ctx, identityID)
	if errors.Is(err, domain.ErrNotFound) {
		identity, err = h.register(ctx, identityID, email)
	}
	if err != nil {
		return writeError(c, err)
	}
	if identity.Email == "" {
		identity.Email = email
	}
	res, err := h.svc.Admit(ctx, *identity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FirstUserResponse{
		Success:  true,
		IsAdmin:  res.Outcome.IsAdmin(),
		Outcome:  res.Outcome.String(),
		Message:  outcomeMessages[res.Outcome],
		Employee: usecase.EmployeeToResponse(res.Employee),
	})
}

// register da de alta una identidad desconocida con el email del token, si el proveedor lo admite.
func (h *BootstrapHandler) register(ctx context.Context, identityID, email string) (*entity.Identity, error) {
	reg, ok := h.idp.(identityRegistrar)
	if !ok || email == "" {
		return nil, domain.ErrNotFound
	}
	identity, err := reg.Register(ctx, entity.Identity{ID: identityID, Email: email})
	if err != nil {
		return nil, err
	}
	h.log.Info().Str("identity_id", identityID).Msg("identidad registrada desde la sesión")
	return identity, nil
}

// RegistrationStatus godoc
// @Summary      Indica si el alta de usuarios está abierta
// @Tags         auth
// @Produce      json
// @Success      200  {object}  dto.RegistrationStatusResponse
// @Router       /api/auth/registration-status [get]
func (h *BootstrapHandler) RegistrationStatus(c *fiber.Ctx) error {
	st, err := h.svc.RegistrationStatus(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	msg := "registro abierto: aún no hay usuarios"
	switch {
	case st.Degraded:
		msg = "no se pudo verificar el proveedor de identidad; registro permitido"
	case !st.Allowed:
		msg = "registro cerrado: ya existen usuarios"
	}
	c.Set(fiber.HeaderCacheControl, "max-age=300")
	return c.JSON(dto.RegistrationStatusResponse{
		RegistrationAllowed: st.Allowed,
		LocalUsers:          st.LocalEmployees,
		ProviderUsers:       st.ProviderIdentities,
		Message:             msg,
	})
}

// webhookEvent sobre de los eventos del proveedor (formato Clerk).
type webhookEvent struct {
	Type string      `json:"type"`
	Data webhookUser `json:"data"`
}

type webhookUser struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (u webhookUser) primaryEmail() string {
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// Webhook godoc
// @Summary      Webhook del proveedor de identidad (firma Svix)
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.WebhookResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/webhooks/identity [post]
func (h *BootstrapHandler) Webhook(c *fiber.Ctx) error {
	payload := c.Body()
	err := h.verifier.Verify(payload, webhook.Headers{
		ID:        c.Get(webhook.HeaderID),
		Timestamp: c.Get(webhook.HeaderTimestamp),
		Signature: c.Get(webhook.HeaderSignature),
	})
	if err != nil {
		if errors.Is(err, webhook.ErrMissingHeaders) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_HEADERS", Message: err.Error()})
		}
		h.log.Warn().Err(err).Msg("webhook rechazado")
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_SIGNATURE", Message: err.Error()})
	}

	var evt webhookEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return invalidBody(c)
	}
	if evt.Type != "user.created" {
		return c.JSON(dto.WebhookResponse{Success: true})
	}

	identity := entity.Identity{
		ID:        evt.Data.ID,
		Email:     strings.TrimSpace(evt.Data.primaryEmail()),
		FirstName: evt.Data.FirstName,
		LastName:  evt.Data.LastName,
	}
	if identity.ID == "" || identity.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el usuario no tiene id o email"})
	}
	res, err := h.svc.Admit(c.UserContext(), identity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.WebhookResponse{
		Success: true,
		IsAdmin: res.Outcome.IsAdmin(),
		Outcome: res.Outcome.String(),
	})
}
