package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/backend"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// CompressionResult summarizes a compression run.
type CompressionResult struct {
	OriginalBytes   int64
	CompressedBytes int64
	Ratio           float64
	Level           string
}

// Compression shrinks stored files. The local path runs on the bundled flate
// engine; useServerProcessing routes through the remote client.
type Compression struct {
	*Base
	local  *backend.LocalEngine
	remote backend.Client
}

// NewCompression wires the service. remote may be a stub.
func NewCompression(bus *eventbus.Bus, logger logging.Logger, remote backend.Client) *Compression {
	return &Compression{
		Base:   NewBase(models.ServiceCompression, bus, logger, 0),
		local:  backend.NewLocalEngine(),
		remote: remote,
	}
}

// Start runs one compression job over inputs.FileIDs in order.
func (s *Compression) Start(ctx context.Context, inputs StartInputs, options any) error {
	opts, ok := options.(CompressionOptions)
	if !ok {
		return fmt.Errorf("compression options expected, got %T: %w", options, common.ErrInvalidInput)
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

	var (
		outputIDs []string
		totalIn   int64
		totalOut  int64
	)
	total := len(inputs.FileIDs)

	for i, fileID := range inputs.FileIDs {
		record, err := s.ResolveFile(runCtx, fileID)
		if err != nil {
			s.End(err)
			return err
		}

		onProgress := s.spanProgress(i, total, "compressing "+record.Name)

		var compressed []byte
		req := backend.CompressRequest{Level: opts.CompressionLevel, ImageQuality: opts.ImageQuality}
		if opts.UseServerProcessing {
			compressed, err = s.remote.Compress(runCtx, record.Bytes, req, onProgress)
		} else {
			compressed, err = s.local.Compress(runCtx, record.Bytes, req, onProgress)
		}
		if err != nil {
			s.End(err)
			return err
		}

		outputID, err := s.PersistOutput(runCtx, events.FilePersistRequest{
			Name:        suffixName(record.Name, "_compressed", ""),
			MimeType:    record.MimeType,
			Bytes:       compressed,
			DerivedFrom: record.ID,
		})
		if err != nil {
			s.End(err)
			return err
		}

		outputIDs = append(outputIDs, outputID)
		totalIn += record.SizeBytes
		totalOut += int64(len(compressed))
	}

	result := CompressionResult{
		OriginalBytes:   totalIn,
		CompressedBytes: totalOut,
		Level:           opts.CompressionLevel,
	}
	if totalIn > 0 {
		result.Ratio = float64(totalOut) / float64(totalIn)
	}

	s.Complete(outputIDs, result, fmt.Sprintf("compressed %d file(s)", total))
	return nil
}

// spanProgress maps an engine's 0..100 callback into this file's share of the
// whole run.
func (b *Base) spanProgress(index, total int, message string) backend.Progress {
	base := float64(index) / float64(total) * 100
	span := 100 / float64(total)
	return func(percent float64, detail string) {
		if detail != "" {
			b.Progress(base+percent/100*span, message+": "+detail)
			return
		}
		b.Progress(base+percent/100*span, message)
	}
}

// suffixName inserts suffix before the extension, optionally replacing the
// extension with newExt (without dot).
func suffixName(name, suffix, newExt string) string {
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 {
		ext = name[i+1:]
		name = name[:i]
	}
	if newExt != "" {
		ext = newExt
	}
	if ext == "" {
		return name + suffix
	}
	return name + suffix + "." + ext
}
