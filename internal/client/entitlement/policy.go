// Package entitlement gates premium options behind a policy oracle. The
// mediator consults the oracle before forwarding a start request; denied
// requests fail with EntitlementDenied and never reach a service.
package entitlement

import (
	"context"
	"sync"
)

// Capability is a boolean entitlement a premium option maps onto.
type Capability string

const (
	// CapabilityServerProcessing gates options that offload work to the
	// remote backend (compression useServerProcessing, OCR accurate
	// quality, AI premium quality).
	CapabilityServerProcessing Capability = "server-processing"

	// CapabilityBulkProcessing gates requests carrying more than one
	// input file.
	CapabilityBulkProcessing Capability = "bulk-processing"
)

// Policy answers whether the current user holds a capability.
type Policy interface {
	Allows(ctx context.Context, cap Capability) bool
}

type allowAll struct{}

func (allowAll) Allows(context.Context, Capability) bool { return true }

// AllowAll grants every capability. Default for local, non-premium builds
// where the backend enforces its own limits.
func AllowAll() Policy { return allowAll{} }

type denyAll struct{}

func (denyAll) Allows(context.Context, Capability) bool { return false }

// DenyAll refuses every capability.
func DenyAll() Policy { return denyAll{} }

// Static grants exactly the listed capabilities.
type Static struct {
	mu   sync.Mutex
	caps map[Capability]bool
}

// NewStatic builds a fixed policy from caps.
func NewStatic(caps ...Capability) *Static {
	s := &Static{caps: make(map[Capability]bool, len(caps))}
	for _, c := range caps {
		s.caps[c] = true
	}
	return s
}

func (s *Static) Allows(_ context.Context, cap Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps[cap]
}

// Grant adds a capability at runtime (settings panel).
func (s *Static) Grant(cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps[cap] = true
}

// Revoke removes a capability at runtime.
func (s *Static) Revoke(cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.caps, cap)
}
