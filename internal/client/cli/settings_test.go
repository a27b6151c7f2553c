package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

func stubSecrets(t *testing.T, values ...string) {
	t.Helper()
	old := readSecret
	i := 0
	readSecret = func(int) ([]byte, error) {
		v := values[i]
		i++
		return []byte(v), nil
	}
	t.Cleanup(func() { readSecret = old })
}

func TestConnect_RegistersS3Provider(t *testing.T) {
	captureOutput(t)
	a := newTestApp(t)

	_, err := a.providers.Get(cloud.S3)
	require.ErrorIs(t, err, common.ErrUnsupported, "s3 starts unregistered without a configured bucket")

	stubSecrets(t, "AKIA_TEST", "shh")
	require.NoError(t, a.Connect(context.Background(), []string{"s3", "eu-west-1", "bucket"}))

	p, err := a.providers.Get(cloud.S3)
	require.NoError(t, err)
	require.Equal(t, cloud.S3, p.ID())
}

func TestConnect_RejectsConsumerProviders(t *testing.T) {
	captureOutput(t)
	a := newTestApp(t)

	err := a.Connect(context.Background(), []string{"dropbox", "x", "y"})
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestShare_UnknownProvider(t *testing.T) {
	captureOutput(t)
	a := newTestApp(t)

	err := a.Share(context.Background(), []string{"s3", "backups/a.pdf"})
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestShare_ProviderWithoutLinks(t *testing.T) {
	captureOutput(t)
	a := newTestApp(t)

	err := a.Share(context.Background(), []string{"memory", "backups/a.pdf"})
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestShare_BadExpiry(t *testing.T) {
	captureOutput(t)
	a := newTestApp(t)

	stubSecrets(t, "AKIA_TEST", "shh")
	require.NoError(t, a.Connect(context.Background(), []string{"s3", "eu-west-1", "bucket"}))

	err := a.Share(context.Background(), []string{"s3", "backups/a.pdf", "zero"})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
