package services

import (
	"context"
	"fmt"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/backend"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

var ocrMimeTypes = map[string]struct {
	mime string
	ext  string
}{
	"searchable_pdf": {"application/pdf", "pdf"},
	"text":           {"text/plain", "txt"},
	"json":           {"application/json", "json"},
}

// OCRRunResult summarizes text recognition over the whole input set.
type OCRRunResult struct {
	Language      string
	WordCount     int
	MinConfidence float64
}

// OCR recognizes text in stored PDFs through the remote client.
type OCR struct {
	*Base
	remote backend.Client
}

func NewOCR(bus *eventbus.Bus, logger logging.Logger, remote backend.Client) *OCR {
	return &OCR{
		Base:   NewBase(models.ServiceOCR, bus, logger, 0),
		remote: remote,
	}
}

func (s *OCR) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(OCROptions)
	if !ok {
		return fmt.Errorf("ocr options expected, got %T: %w", options, common.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if len(inputs.FileIDs) == 0 {
		return fmt.Errorf("at least one input file is required: %w", common.ErrInvalidInput)
	}

	runCtx, err := s.begin(ctx, inputs)
	if err != nil {
		return err
	}

	var outputIDs []string
	total := len(inputs.FileIDs)
	runResult := OCRRunResult{Language: opts.Language, MinConfidence: 1}

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		res, err := s.remote.RecognizeText(runCtx, record.Bytes, backend.OCRRequest{
			Language:            opts.Language,
			OutputFormat:        opts.OutputFormat,
			Quality:             opts.Quality,
			ExtractTables:       opts.ExtractTables,
			PreserveLayout:      opts.PreserveLayout,
			DetectColumns:       opts.DetectColumns,
			EnhanceImages:       opts.EnhanceImages,
			ConfidenceThreshold: opts.ConfidenceThreshold,
		}, s.spanProgress(i, total, "recognizing "+record.Name))
		if err != nil {
			s.End(err)
			return err
		}

		out := ocrMimeTypes[opts.OutputFormat]
		mimeType := res.MimeType
		if mimeType == "" {
			mimeType = out.mime
		}

		outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
			Name:        suffixName(record.Name, "_ocr", out.ext),
			MimeType:    mimeType,
			Bytes:       res.Output,
			DerivedFrom: record.ID,
		})
		if err != nil {
			s.End(err)
			return err
		}
		outputIDs = append(outputIDs, outputID)

		runResult.WordCount += res.WordCount
		if res.Confidence < runResult.MinConfidence {
			runResult.MinConfidence = res.Confidence
		}
	}

	s.Complete(outputIDs, runResult, fmt.Sprintf("recognized text in %d file(s)", total))
	return nil
}
