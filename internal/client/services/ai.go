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

// Summarize produces AI summaries of stored documents.
type Summarize struct {
	*Base
	remote backend.Client
}

func NewSummarize(bus *eventbus.Bus, logger logging.Logger, remote backend.Client) *Summarize {
	return &Summarize{
		Base:   NewBase(models.ServiceAISummarize, bus, logger, 0),
		remote: remote,
	}
}

func (s *Summarize) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(SummarizeOptions)
	if !ok {
		return fmt.Errorf("summarize options expected, got %T: %w", options, common.ErrInvalidInput)
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

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		summary, err := s.remote.Summarize(runCtx, record.Bytes, backend.SummarizeRequest{
			Style:            opts.Style,
			Length:           opts.Length,
			IncludeKeyPoints: opts.IncludeKeyPoints,
			IncludeMetadata:  opts.IncludeMetadata,
		}, s.spanProgress(i, total, "summarizing "+record.Name))
		if err != nil {
			s.End(err)
			return err
		}

		outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
			Name:        suffixName(record.Name, "_summary", "txt"),
			MimeType:    "text/plain",
			Bytes:       summary,
			DerivedFrom: record.ID,
		})
		if err != nil {
			s.End(err)
			return err
		}
		outputIDs = append(outputIDs, outputID)
	}

	s.Complete(outputIDs, nil, fmt.Sprintf("summarized %d file(s)", total))
	return nil
}

// Translate produces AI translations of stored documents.
type Translate struct {
	*Base
	remote backend.Client
}

func NewTranslate(bus *eventbus.Bus, logger logging.Logger, remote backend.Client) *Translate {
	return &Translate{
		Base:   NewBase(models.ServiceAITranslate, bus, logger, 0),
		remote: remote,
	}
}

func (s *Translate) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(TranslateOptions)
	if !ok {
		return fmt.Errorf("translate options expected, got %T: %w", options, common.ErrInvalidInput)
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

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		translated, err := s.remote.Translate(runCtx, record.Bytes, backend.TranslateRequest{
			TargetLanguage:     opts.TargetLanguage,
			Quality:            opts.Quality,
			PreserveFormatting: opts.PreserveFormatting,
		}, s.spanProgress(i, total, "translating "+record.Name))
		if err != nil {
			s.End(err)
			return err
		}

		outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
			Name:        suffixName(record.Name, "_"+opts.TargetLanguage, ""),
			MimeType:    record.MimeType,
			Bytes:       translated,
			DerivedFrom: record.ID,
		})
		if err != nil {
			s.End(err)
			return err
		}
		outputIDs = append(outputIDs, outputID)
	}

	s.Complete(outputIDs, nil, fmt.Sprintf("translated %d file(s) to %s", total, opts.TargetLanguage))
	return nil
}
