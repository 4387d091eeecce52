// Package identity contiene los adaptadores del puerto IdentityProvider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/timetracker-api/internal/application/ports"
	"github.com/jhoicas/timetracker-api/internal/domain"
	"github.com/jhoicas/timetracker-api/internal/domain/entity"
)

// Verificar en tiempo de compilación que ClerkProvider implementa IdentityProvider.
var _ ports.IdentityProvider = (*ClerkProvider)(nil)

// DefaultClerkAPIURL base de la Backend API de Clerk.
const DefaultClerkAPIURL = "https://api.clerk.com/v1"

// ClerkProvider adaptador REST de la Backend API de Clerk con net/http.
// El rol vive en public_metadata.role.
type ClerkProvider struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClerkProvider construye el adaptador. baseURL vacío usa DefaultClerkAPIURL.
func NewClerkProvider(baseURL, secretKey string) *ClerkProvider {
	if baseURL == "" {
		baseURL = DefaultClerkAPIURL
	}
	return &ClerkProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithTimeout fija el plazo de cada llamada HTTP.
func (p *ClerkProvider) WithTimeout(d time.Duration) *ClerkProvider {
	if d > 0 {
		p.httpClient.Timeout = d
	}
	return p
}

// ── Estructuras del protocolo Clerk ─────────────────────────────────────────

// User representación de usuario de Clerk (API y payload de webhooks).
type User struct {
	ID                    string `json:"id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PublicMetadata map[string]any `json:"public_metadata"`
}

// Identity traduce el usuario de Clerk al modelo de dominio.
// Usa el email primario y, si no está marcado, el primero de la lista.
func (u User) Identity() entity.Identity {
	var email string
	for _, e := range u.EmailAddresses {
		if e.ID == u.PrimaryEmailAddressID {
			email = e.EmailAddress
			break
		}
	}
	if email == "" && len(u.EmailAddresses) > 0 {
		email = u.EmailAddresses[0].EmailAddress
	}
	role, _ := u.PublicMetadata["role"].(string)
	return entity.Identity{
		ID:        u.ID,
		Email:     email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      entity.ParseRole(role),
	}
}

type clerkError struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// ── Implementación del puerto ────────────────────────────────────────────────

// GetIdentity consulta GET /users/{id}.
func (p *ClerkProvider) GetIdentity(ctx context.Context, identityID string) (*entity.Identity, error) {
	var u User
	if err := p.do(ctx, http.MethodGet, "/users/"+url.PathEscape(identityID), nil, &u); err != nil {
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

// GetRole lee public_metadata.role.
func (p *ClerkProvider) GetRole(ctx context.Context, identityID string) (entity.Role, error) {
	id, err := p.GetIdentity(ctx, identityID)
	if err != nil {
		return entity.RoleNone, err
	}
	return id.Role, nil
}

// SetRole hace merge de public_metadata.role; repetirlo es inocuo.
func (p *ClerkProvider) SetRole(ctx context.Context, identityID string, role entity.Role) error {
	body := map[string]any{"public_metadata": map[string]any{"role": string(role)}}
	return p.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(identityID)+"/metadata", body, nil)
}

// ListIdentities consulta GET /users?limit=N.
func (p *ClerkProvider) ListIdentities(ctx context.Context, limit int) ([]entity.Identity, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []User
	if err := p.do(ctx, http.MethodGet, "/users?limit="+strconv.Itoa(limit), nil, &users); err != nil {
		return nil, err
	}
	out := make([]entity.Identity, 0, len(users))
	for _, u := range users {
		out = append(out, u.Identity())
	}
	return out, nil
}

func (p *ClerkProvider) do(ctx context.Context, method, path string, in, out any) error {
	if p.secretKey == "" {
		return fmt.Errorf("%w: CLERK_SECRET_KEY no configurado", domain.ErrIdentityProvider)
	}
	var reader io.Reader
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("clerk: serializar request: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("clerk: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrIdentityProvider, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrIdentityProvider, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode >= 300:
		var ce clerkError
		if jsonErr := json.Unmarshal(raw, &ce); jsonErr == nil && len(ce.Errors) > 0 {
			return fmt.Errorf("%w: clerk %d (%s): %s", domain.ErrIdentityProvider, resp.StatusCode, ce.Errors[0].Code, ce.Errors[0].Message)
		}
		return fmt.Errorf("%w: clerk HTTP %d", domain.ErrIdentityProvider, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: deserializar respuesta: %v", domain.ErrIdentityProvider, err)
	}
	return nil
}
