package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Identity is the authenticated principal carried by a verified token.
type Identity struct {
	Subject string
	Role    string
}

// Verifier checks bearer tokens issued by the storefront's identity provider.
// Tokens are HS256 over a shared secret; issuer and audience are pinned when
// configured.
type Verifier struct {
	Secret    []byte
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// Verify parses and validates the raw token and extracts the identity.
func (v *Verifier) Verify(raw string) (Identity, error) {
	if v == nil || len(v.Secret) == 0 {
		return Identity{}, errors.New("auth: verifier not configured")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, errors.New("auth: empty token")
	}

	options := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.Secret),
		jwt.WithValidate(true),
	}
	if v.ClockSkew > 0 {
		options = append(options, jwt.WithAcceptableSkew(v.ClockSkew))
	}
	if v.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		options = append(options, jwt.WithAudience(v.Audience))
	}

	tok, err := jwt.Parse([]byte(raw), options...)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}
	subject := tok.Subject()
	if subject == "" {
		return Identity{}, errors.New("auth: token missing subject")
	}
	identity := Identity{Subject: subject}
	if claim, ok := tok.Get("role"); ok {
		if role, ok := claim.(string); ok {
			identity.Role = role
		}
	}
	return identity, nil
}
