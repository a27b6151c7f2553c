package services

import (
	"context"
	"fmt"
	"path"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// CloudUploadResult lists the remote keys written by an upload run.
type CloudUploadResult struct {
	Provider cloud.ProviderID
	Keys     []string
}

// CloudUpload pushes stored files to a cloud provider.
type CloudUpload struct {
	*Base
	providers *cloud.Registry
}

func NewCloudUpload(bus *eventbus.Bus, logger logging.Logger, providers *cloud.Registry) *CloudUpload {
	return &CloudUpload{
		Base:      NewBase(models.ServiceCloudUpload, bus, logger, 0),
		providers: providers,
	}
}

func (s *CloudUpload) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(CloudUploadOptions)
	if !ok {
		return fmt.Errorf("cloud upload options expected, got %T: %w", options, common.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(inputs.FileIDs) == 0 {
		return fmt.Errorf("at least one input file is required: %w", common.ErrInvalidInput)
	}

	provider, err := s.providers.Get(opts.Provider)
	if err != nil {
		return err
	}

	runCtx, err := s.begin(ctx, inputs)
	if err != nil {
		return err
	}

	result := CloudUploadResult{Provider: opts.Provider}
	total := len(inputs.FileIDs)

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		// A single file uploads to the destination path as given; a batch
		// treats it as a prefix.
		key := opts.DestinationPath
		if total > 1 {
			key = path.Join(opts.DestinationPath, record.Name)
		}

		s.Progress(float64(i)/float64(total)*100, "uploading "+record.Name)
		if err := provider.Upload(runCtx, key, record.Bytes); err != nil {
			s.End(err)
			return err
		}
		result.Keys = append(result.Keys, key)
	}

	s.Complete(nil, result, fmt.Sprintf("uploaded %d file(s) to %s", total, opts.Provider))
	return nil
}

// CloudDownload fetches a remote object and hands it to the store. It is the
// only service that takes no input fileIds.
type CloudDownload struct {
	*Base
	providers *cloud.Registry
}

func NewCloudDownload(bus *eventbus.Bus, logger logging.Logger, providers *cloud.Registry) *CloudDownload {
	return &CloudDownload{
		Base:      NewBase(models.ServiceCloudDownload, bus, logger, 0),
		providers: providers,
	}
}

func (s *CloudDownload) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(CloudDownloadOptions)
	if !ok {
		return fmt.Errorf("cloud download options expected, got %T: %w", options, common.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	provider, err := s.providers.Get(opts.Provider)
	if err != nil {
		return err
	}

	runCtx, err := s.begin(ctx, inputs)
	if err != nil {
		return err
	}

	s.Progress(10, "downloading "+opts.FilePath)
	obj, err := provider.Download(runCtx, opts.FilePath)
	if err != nil {
		s.End(err)
		return err
	}

	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	s.Progress(80, "storing "+obj.Name)
	outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
		Name:     obj.Name,
		MimeType: mimeType,
		Bytes:    obj.Bytes,
		Source:   models.SourceCloudDownload,
	})
	if err != nil {
		s.End(err)
		return err
	}

	s.Complete([]string{outputID}, nil, "downloaded "+opts.FilePath)
	return nil
}
