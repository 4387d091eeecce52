package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	// Cabeceras que firma el emisor (esquema Svix, usado por Clerk).
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

var (
	ErrMissingHeaders   = errors.New("webhook: faltan cabeceras de firma")
	ErrInvalidSignature = errors.New("webhook: firma inválida")
)

// Verifier valida los webhooks entrantes con la librería de Svix
// (firma v1, varias firmas por cabecera y tolerancia de timestamp).
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier construye el verificador a partir del secreto "whsec_<base64>".
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook: secreto vacío")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("webhook: secreto mal formado: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Headers valores de las cabeceras svix-* de la petición.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

func (h Headers) http() http.Header {
	out := make(http.Header, 3)
	out.Set(HeaderID, h.ID)
	out.Set(HeaderTimestamp, h.Timestamp)
	out.Set(HeaderSignature, h.Signature)
	return out
}

// Verify devuelve ErrMissingHeaders si falta alguna cabecera y ErrInvalidSignature
// para cualquier otro rechazo (firma, timestamp viejo o mal formado).
func (v *Verifier) Verify(payload []byte, h Headers) error {
	if h.ID == "" || h.Timestamp == "" || h.Signature == "" {
		return ErrMissingHeaders
	}
	if err := v.wh.Verify(payload, h.http()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// Sign devuelve la cabecera de firma ("v1,<base64>") para id, ts y payload.
func (v *Verifier) Sign(id string, ts time.Time, payload []byte) (string, error) {
	return v.wh.Sign(id, ts, payload)
}
