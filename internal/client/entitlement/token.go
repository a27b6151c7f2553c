package entitlement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// Claims carries the entitlement grant inside a signed token.
type Claims struct {
	jwt.RegisteredClaims
	Capabilities []string `json:"capabilities"`
}

// TokenPolicy derives capabilities from an HS256-signed entitlement token,
// typically pasted into the settings panel after a purchase. An absent,
// invalid or expired token grants nothing.
type TokenPolicy struct {
	secret []byte

	mu      sync.Mutex
	granted map[Capability]bool
}

// NewTokenPolicy builds a policy that trusts tokens signed with secret.
func NewTokenPolicy(secret []byte) *TokenPolicy {
	return &TokenPolicy{secret: secret, granted: map[Capability]bool{}}
}

// SetToken parses and verifies token and replaces the current grant set.
// An empty token clears all grants.
func (p *TokenPolicy) SetToken(token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.granted = map[Capability]bool{}
	if token == "" {
		return nil
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return fmt.Errorf("parsing entitlement token: %w: %v", common.ErrEntitlementDenied, err)
	}
	if !parsed.Valid {
		return fmt.Errorf("entitlement token rejected: %w", common.ErrEntitlementDenied)
	}

	for _, c := range claims.Capabilities {
		p.granted[Capability(c)] = true
	}
	return nil
}

func (p *TokenPolicy) Allows(_ context.Context, cap Capability) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.granted[cap]
}

// MintToken signs a capability set into a token valid for validity. Used by
// tests and by the licensing tooling.
func MintToken(secret []byte, caps []Capability, validity time.Duration) (string, error) {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Capabilities: names,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing entitlement token: %w", err)
	}
	return signed, nil
}
