package identity

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"github.com/tasklane/tasklane/internal/store"
)

// Claims represents the session token claims issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Email  string   `json:"email"`
	Groups []string `json:"groups"`
}

// Verifier validates session tokens and extracts the caller's identity.
type Verifier struct {
	publicKey *ecdsa.PublicKey
}

// NewVerifierFromPEM creates a verifier from a PEM-encoded EC public key.
func NewVerifierFromPEM(publicKeyPEM string) (*Verifier, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("session public key not provided")
	}

	publicKey, err := jwt.ParseECPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse session public key: %w", err)
	}

	return &Verifier{publicKey: publicKey}, nil
}

// Verify parses and validates a session token, returning the identity it
// carries. Every validation failure maps to store.ErrUnauthenticated so
// callers can route the user back to login without inspecting causes.
func (v *Verifier) Verify(tokenStr string) (*Identity, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: missing session token", store.ErrUnauthenticated)
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, errors.New("invalid signing method")
		}
		return v.publicKey, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("session token parse error")
		return nil, fmt.Errorf("%w: invalid session token", store.ErrUnauthenticated)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("%w: session token invalid", store.ErrUnauthenticated)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid session claims", store.ErrUnauthenticated)
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: session expired", store.ErrUnauthenticated)
	}

	return &Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Groups:  claims.Groups,
	}, nil
}
