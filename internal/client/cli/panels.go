package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/services"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// selectedIDs snapshots the widget selection for a start request.
func (a *App) selectedIDs() ([]string, error) {
	files := a.uploader.GetSelectedFiles()
	if len(files) == 0 {
		return nil, fmt.Errorf("no files selected, use add first: %w", common.ErrInvalidInput)
	}
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}
	return ids, nil
}

// startService publishes the intent; the mediator takes it from there.
func (a *App) startService(kind models.ServiceKind, fileIDs []string, options any) {
	a.bus.Publish(events.TopicServiceStartRequest, events.ServiceStartRequest{
		ServiceKind: kind,
		FileIDs:     fileIDs,
		Options:     options,
	})
}

// Compress runs the compression panel: compress [level] [server].
func (a *App) Compress(_ context.Context, args []string) error {
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	opts := services.CompressionOptions{CompressionLevel: "medium", ImageQuality: 80}
	if len(args) > 0 {
		opts.CompressionLevel = args[0]
	}
	for _, arg := range args[1:] {
		switch {
		case arg == "server":
			opts.UseServerProcessing = true
		default:
			quality, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("bad image quality %q: %w", arg, common.ErrInvalidInput)
			}
			opts.ImageQuality = quality
		}
	}

	a.startService(models.ServiceCompression, ids, opts)
	return nil
}

// Convert runs the conversion panel: convert <format> [quality].
func (a *App) Convert(_ context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("Usage: convert <docx|xlsx|html|txt> [quality]")
		return nil
	}
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	opts := services.ConversionOptions{TargetFormat: args[0], Quality: "medium", PreserveLayout: true}
	if len(args) > 1 {
		opts.Quality = args[1]
	}

	a.startService(models.ServiceConversion, ids, opts)
	return nil
}

// OCR runs the recognition panel: ocr [lang] [quality].
func (a *App) OCR(_ context.Context, args []string) error {
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	opts := services.OCROptions{
		Language:            "en",
		OutputFormat:        "searchable_pdf",
		Quality:             "balanced",
		ConfidenceThreshold: 0.7,
	}
	if len(args) > 0 {
		opts.Language = args[0]
	}
	if len(args) > 1 {
		opts.Quality = args[1]
	}

	a.startService(models.ServiceOCR, ids, opts)
	return nil
}

// Summarize runs the AI summary panel: summarize [style] [length].
func (a *App) Summarize(_ context.Context, args []string) error {
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	opts := services.SummarizeOptions{Style: "concise", Length: "medium", IncludeKeyPoints: true}
	if len(args) > 0 {
		opts.Style = args[0]
	}
	if len(args) > 1 {
		opts.Length = args[1]
	}

	a.startService(models.ServiceAISummarize, ids, opts)
	return nil
}

// Translate runs the AI translation panel: translate <lang> [quality].
func (a *App) Translate(_ context.Context, args []string) error {
	if len(args) < 1 {
		printlnFn("Usage: translate <language> [quality]")
		return nil
	}
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	opts := services.TranslateOptions{
		TargetLanguage:     args[0],
		Quality:            "standard",
		PreserveFormatting: true,
	}
	if len(args) > 1 {
		opts.Quality = args[1]
	}

	a.startService(models.ServiceAITranslate, ids, opts)
	return nil
}

// CloudUpload pushes the selection: upload <provider> <path>.
func (a *App) CloudUpload(_ context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: upload <provider> <path>")
		return nil
	}
	ids, err := a.selectedIDs()
	if err != nil {
		return err
	}

	a.startService(models.ServiceCloudUpload, ids, services.CloudUploadOptions{
		Provider:        cloud.ProviderID(args[0]),
		DestinationPath: args[1],
	})
	return nil
}

// CloudDownload fetches a remote object: download <provider> <path>.
func (a *App) CloudDownload(_ context.Context, args []string) error {
	if len(args) != 2 {
		printlnFn("Usage: download <provider> <path>")
		return nil
	}

	a.startService(models.ServiceCloudDownload, nil, services.CloudDownloadOptions{
		Provider: cloud.ProviderID(args[0]),
		FilePath: args[1],
	})
	return nil
}
