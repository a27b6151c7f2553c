package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// Seams for unit tests: the SDK constructors and calls are indirected so the
// provider can be exercised without network access.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Config points the provider at a bucket. Endpoint is optional and covers
// S3-compatible stores (MinIO).
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3Provider stores objects in an S3 bucket.
type S3Provider struct {
	cfg S3Config
}

// NewS3Provider validates cfg and returns the provider.
func NewS3Provider(cfg S3Config) (*S3Provider, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required: %w", common.ErrInvalidInput)
	}
	return &S3Provider{cfg: cfg}, nil
}

func (p *S3Provider) ID() ProviderID { return S3 }

func (p *S3Provider) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(p.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			p.cfg.AccessKey,
			p.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w: %v", common.ErrRemoteFailure, err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if p.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
		}
	}), nil
}

func (p *S3Provider) Upload(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("destination path is required: %w", common.ErrInvalidInput)
	}

	client, err := p.client(ctx)
	if err != nil {
		return err
	}

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("uploading %q: %w: %v", key, common.ErrRemoteFailure, err)
	}
	return nil
}

func (p *S3Provider) Download(ctx context.Context, key string) (Object, error) {
	client, err := p.client(ctx)
	if err != nil {
		return Object{}, err
	}

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return Object{}, fmt.Errorf("cloud object %q: %w", key, common.ErrNotFound)
		}
		return Object{}, fmt.Errorf("downloading %q: %w: %v", key, common.ErrRemoteFailure, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return Object{}, fmt.Errorf("reading %q body: %w: %v", key, common.ErrRemoteFailure, err)
	}

	return Object{Name: path.Base(key), Bytes: data}, nil
}

// ShareLink returns a presigned GET URL for an uploaded object, valid for
// expiry.
func (p *S3Provider) ShareLink(ctx context.Context, key string, expiry time.Duration) (string, error) {
	client, err := p.client(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presigning %q: %w: %v", key, common.ErrRemoteFailure, err)
	}
	return req.URL, nil
}
