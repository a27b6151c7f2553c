package cloud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

func TestRegistry_ResolvesRegisteredProviders(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewMemoryProvider(Memory))

	p, err := reg.Get(Memory)
	require.NoError(t, err)
	require.Equal(t, Memory, p.ID())

	_, err = reg.Get(GoogleDrive)
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestMemoryProvider_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryProvider(Memory)

	require.NoError(t, p.Upload(ctx, "out/a.pdf", []byte("payload")))

	obj, err := p.Download(ctx, "out/a.pdf")
	require.NoError(t, err)
	require.Equal(t, "out/a.pdf", obj.Name)
	require.Equal(t, []byte("payload"), obj.Bytes)
}

func TestMemoryProvider_MissingObject(t *testing.T) {
	p := NewMemoryProvider(Memory)
	_, err := p.Download(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemoryProvider_EmptyPathRejected(t *testing.T) {
	p := NewMemoryProvider(Memory)
	err := p.Upload(context.Background(), "", []byte("x"))
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestUnconnected_RefusesTransfers(t *testing.T) {
	ctx := context.Background()
	p := NewUnconnected(Dropbox)

	require.Equal(t, Dropbox, p.ID())
	require.ErrorIs(t, p.Upload(ctx, "a", []byte("x")), common.ErrRemoteFailure)

	_, err := p.Download(ctx, "a")
	require.ErrorIs(t, err, common.ErrRemoteFailure)
}
