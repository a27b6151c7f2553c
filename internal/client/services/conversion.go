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

var convertMimeTypes = map[string]string{
	"txt":  "text/plain",
	"html": "text/html",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ConversionResult summarizes a conversion run.
type ConversionResult struct {
	TargetFormat string
	Files        int
}

// Conversion turns stored PDFs into other document formats. txt and html
// convert in-process; office formats go through the remote client.
type Conversion struct {
	*Base
	local  *backend.LocalEngine
	remote backend.Client
}

func NewConversion(bus *eventbus.Bus, logger logging.Logger, remote backend.Client) *Conversion {
	return &Conversion{
		Base:   NewBase(models.ServiceConversion, bus, logger, 0),
		local:  backend.NewLocalEngine(),
		remote: remote,
	}
}

func (s *Conversion) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(ConversionOptions)
	if !ok {
		return fmt.Errorf("conversion options expected, got %T: %w", options, common.ErrInvalidInput)
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
	remoteFormat := opts.RequiresServerProcessing()

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		onProgress := s.spanProgress(i, total, "converting "+record.Name)

		req := backend.ConvertRequest{
			TargetFormat:   opts.TargetFormat,
			PreserveLayout: opts.PreserveLayout,
			ExtractTables:  opts.ExtractTables,
			IncludeImages:  opts.IncludeImages,
			Quality:        opts.Quality,
		}

		var converted []byte
		if remoteFormat {
			converted, err = s.remote.Convert(runCtx, record.Bytes, req, onProgress)
		} else {
			converted, err = s.local.Convert(runCtx, record.Bytes, req, onProgress)
		}
		if err != nil {
			s.End(err)
			return err
		}

		outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
			Name:        suffixName(record.Name, "", opts.TargetFormat),
			MimeType:    convertMimeTypes[opts.TargetFormat],
			Bytes:       converted,
			DerivedFrom: record.ID,
		})
		if err != nil {
			s.End(err)
			return err
		}
		outputIDs = append(outputIDs, outputID)
	}

	s.Complete(outputIDs,
		ConversionResult{TargetFormat: opts.TargetFormat, Files: total},
		fmt.Sprintf("converted %d file(s) to %s", total, opts.TargetFormat))
	return nil
}
