// Package cloud defines the storage provider contract behind the cloud
// upload/download service and the providers shipped with the client. OAuth
// for the consumer providers is an external collaborator: until an account is
// connected those providers refuse transfers.
package cloud

import (
	"context"
	"fmt"
	"sync"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// ProviderID names a configured storage destination.
type ProviderID string

const (
	GoogleDrive ProviderID = "google_drive"
	Dropbox     ProviderID = "dropbox"
	OneDrive    ProviderID = "onedrive"
	S3          ProviderID = "s3"
	Memory      ProviderID = "memory"
)

// Object is a downloaded payload plus its remote name.
type Object struct {
	Name  string
	Bytes []byte
}

// Provider moves bytes to and from one storage destination.
type Provider interface {
	ID() ProviderID
	Upload(ctx context.Context, path string, data []byte) error
	Download(ctx context.Context, path string) (Object, error)
}

// Registry resolves provider ids for the cloud service.
type Registry struct {
	mu        sync.Mutex
	providers map[ProviderID]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[ProviderID]Provider)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Get resolves id; unknown ids report Unsupported so the failure surfaces as
// an option problem rather than a missing file.
func (r *Registry) Get(id ProviderID) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("cloud provider %q: %w", id, common.ErrUnsupported)
	}
	return p, nil
}

// MemoryProvider keeps objects in a map. Used in tests and as the backing
// store for connected consumer-provider accounts during development.
type MemoryProvider struct {
	id ProviderID

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryProvider returns an empty in-memory provider registered under id.
func NewMemoryProvider(id ProviderID) *MemoryProvider {
	return &MemoryProvider{id: id, objects: make(map[string][]byte)}
}

func (m *MemoryProvider) ID() ProviderID { return m.id }

func (m *MemoryProvider) Upload(_ context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("destination path is required: %w", common.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryProvider) Download(_ context.Context, path string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[path]
	if !ok {
		return Object{}, fmt.Errorf("cloud object %q: %w", path, common.ErrNotFound)
	}
	return Object{Name: path, Bytes: append([]byte(nil), data...)}, nil
}

// unconnectedProvider stands in for a consumer provider whose OAuth flow has
// not completed.
type unconnectedProvider struct {
	id ProviderID
}

// NewUnconnected returns a provider that rejects every transfer until the
// account is linked.
func NewUnconnected(id ProviderID) Provider {
	return &unconnectedProvider{id: id}
}

func (u *unconnectedProvider) ID() ProviderID { return u.id }

func (u *unconnectedProvider) Upload(context.Context, string, []byte) error {
	return fmt.Errorf("provider %s is not connected: %w", u.id, common.ErrRemoteFailure)
}

func (u *unconnectedProvider) Download(context.Context, string) (Object, error) {
	return Object{}, fmt.Errorf("provider %s is not connected: %w", u.id, common.ErrRemoteFailure)
}
