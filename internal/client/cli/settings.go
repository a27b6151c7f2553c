package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// Connect links a cloud provider account at runtime:
// connect s3 <region> <bucket> [endpoint]. The access keys are read from the
// terminal without echo so they never land in shell history.
func (a *App) Connect(_ context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("Usage: connect s3 <region> <bucket> [endpoint]")
		return nil
	}

	if cloud.ProviderID(args[0]) != cloud.S3 {
		return fmt.Errorf("provider %q cannot be connected from the terminal: %w", args[0], common.ErrUnsupported)
	}
	if len(args) < 3 {
		printlnFn("Usage: connect s3 <region> <bucket> [endpoint]")
		return nil
	}

	cfg := cloud.S3Config{Region: args[1], Bucket: args[2]}
	if len(args) > 3 {
		cfg.Endpoint = args[3]
	}

	accessKey, err := GetSecret("Access key", os.Stdout)
	if err != nil {
		return err
	}
	secretKey, err := GetSecret("Secret key", os.Stdout)
	if err != nil {
		return err
	}
	cfg.AccessKey = string(accessKey)
	cfg.SecretKey = string(secretKey)

	provider, err := cloud.NewS3Provider(cfg)
	if err != nil {
		return err
	}
	a.providers.Register(provider)
	printlnFn("Provider s3 connected to bucket", cfg.Bucket)
	return nil
}

// sharer is the optional capability a provider exposes for presigned links.
type sharer interface {
	ShareLink(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Share prints a time-limited download link for an uploaded object:
// share <provider> <path> [minutes].
func (a *App) Share(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printlnFn("Usage: share <provider> <path> [minutes]")
		return nil
	}

	provider, err := a.providers.Get(cloud.ProviderID(args[0]))
	if err != nil {
		return err
	}
	s, ok := provider.(sharer)
	if !ok {
		return fmt.Errorf("provider %q cannot share links: %w", args[0], common.ErrUnsupported)
	}

	expiry := 15 * time.Minute
	if len(args) > 2 {
		minutes, err := strconv.Atoi(args[2])
		if err != nil || minutes <= 0 {
			return fmt.Errorf("bad expiry %q: %w", args[2], common.ErrInvalidInput)
		}
		expiry = time.Duration(minutes) * time.Minute
	}

	url, err := s.ShareLink(ctx, args[1], expiry)
	if err != nil {
		return err
	}
	printlnFn(url)
	return nil
}
