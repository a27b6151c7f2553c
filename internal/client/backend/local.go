package backend

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// chunkSize bounds the work done between cancellation checks.
const chunkSize = 64 * 1024

// LocalEngine runs the operations that do not need the remote backend:
// flate-based stream compression and plain-text/HTML conversion. Anything
// richer (docx, xlsx, OCR, AI) is out of its reach and reports Unsupported.
type LocalEngine struct{}

// NewLocalEngine returns the bundled in-process engine.
func NewLocalEngine() *LocalEngine {
	return &LocalEngine{}
}

func flateLevel(level string) (int, error) {
	switch level {
	case "low":
		return flate.BestSpeed, nil
	case "medium":
		return flate.DefaultCompression, nil
	case "high":
		return 7, nil
	case "maximum":
		return flate.BestCompression, nil
	default:
		return 0, fmt.Errorf("compression level %q: %w", level, common.ErrUnsupported)
	}
}

// Compress recompresses input streams with flate at the requested level,
// checking for cancellation between chunks.
func (e *LocalEngine) Compress(ctx context.Context, input []byte, req CompressRequest, onProgress Progress) ([]byte, error) {
	level, err := flateLevel(req.Level)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	w, err := flate.NewWriter(&out, level)
	if err != nil {
		return nil, fmt.Errorf("initializing compressor: %w", err)
	}

	total := len(input)
	for offset := 0; offset < total; offset += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("compression aborted: %w", common.ErrCancelled)
		}
		end := offset + chunkSize
		if end > total {
			end = total
		}
		if _, err := w.Write(input[offset:end]); err != nil {
			return nil, fmt.Errorf("compressing chunk: %w", err)
		}
		if onProgress != nil && total > 0 {
			onProgress(float64(end)/float64(total)*100, "compressing")
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing compressed stream: %w", err)
	}
	if onProgress != nil {
		onProgress(100, "compressed")
	}
	return out.Bytes(), nil
}

// Convert produces txt or html output from input. Office formats need the
// remote backend.
func (e *LocalEngine) Convert(ctx context.Context, input []byte, req ConvertRequest, onProgress Progress) ([]byte, error) {
	switch req.TargetFormat {
	case "txt", "html":
	case "docx", "xlsx":
		return nil, fmt.Errorf("local conversion to %s: %w", req.TargetFormat, common.ErrUnsupported)
	default:
		return nil, fmt.Errorf("target format %q: %w", req.TargetFormat, common.ErrUnsupported)
	}

	text, err := extractText(ctx, input, onProgress)
	if err != nil {
		return nil, err
	}

	if req.TargetFormat == "html" {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n<html><body>\n")
		for _, line := range strings.Split(text, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(line)
			b.WriteString("</p>\n")
		}
		b.WriteString("</body></html>\n")
		text = b.String()
	}

	if onProgress != nil {
		onProgress(100, "converted")
	}
	return []byte(text), nil
}

// extractText keeps the printable runs of the payload. It is the local
// stand-in for real PDF text extraction, which is delegated to the backend.
func extractText(ctx context.Context, input []byte, onProgress Progress) (string, error) {
	var b strings.Builder
	total := len(input)

	for offset := 0; offset < total; offset += chunkSize {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("conversion aborted: %w", common.ErrCancelled)
		}
		end := offset + chunkSize
		if end > total {
			end = total
		}
		for _, r := range string(input[offset:end]) {
			if unicode.IsPrint(r) || r == '\n' {
				b.WriteRune(r)
			}
		}
		if onProgress != nil && total > 0 {
			onProgress(float64(end)/float64(total)*90, "extracting text")
		}
	}
	return b.String(), nil
}
