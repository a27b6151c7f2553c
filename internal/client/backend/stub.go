package backend

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// Stub is a deterministic Client used when no remote backend is configured
// and throughout the test suite. Every method produces stable output for a
// given input and reports a handful of intermediate progress points.
//
// Err, when set, fails every call with a RemoteFailure — handy for testing
// the error path end to end.
type Stub struct {
	Err error
	// StepHook runs before each progress step; tests use it to trigger
	// cancellation at a defined suspension point.
	StepHook func()
}

var progressSteps = []struct {
	percent float64
	message string
}{
	{10, "uploading"},
	{45, "processing"},
	{85, "assembling output"},
}

func (s *Stub) run(ctx context.Context, onProgress Progress) error {
	if s.Err != nil {
		return fmt.Errorf("backend call failed: %w: %v", common.ErrRemoteFailure, s.Err)
	}
	for _, step := range progressSteps {
		if s.StepHook != nil {
			s.StepHook()
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("backend call aborted: %w", common.ErrCancelled)
		}
		if onProgress != nil {
			onProgress(step.percent, step.message)
		}
	}
	return nil
}

func (s *Stub) Compress(ctx context.Context, input []byte, req CompressRequest, onProgress Progress) ([]byte, error) {
	if err := s.run(ctx, onProgress); err != nil {
		return nil, err
	}
	// Simulate a size win proportional to the requested level.
	keep := map[string]int{"low": 9, "medium": 7, "high": 5, "maximum": 3}[req.Level]
	if keep == 0 {
		return nil, fmt.Errorf("compression level %q: %w", req.Level, common.ErrUnsupported)
	}
	var out bytes.Buffer
	for i, b := range input {
		if i%10 < keep {
			out.WriteByte(b)
		}
	}
	if onProgress != nil {
		onProgress(100, "compressed")
	}
	return out.Bytes(), nil
}

func (s *Stub) Convert(ctx context.Context, input []byte, req ConvertRequest, onProgress Progress) ([]byte, error) {
	if err := s.run(ctx, onProgress); err != nil {
		return nil, err
	}
	out := fmt.Sprintf("[%s converted, quality=%s, %d bytes in]", req.TargetFormat, req.Quality, len(input))
	if onProgress != nil {
		onProgress(100, "converted")
	}
	return []byte(out), nil
}

func (s *Stub) RecognizeText(ctx context.Context, input []byte, req OCRRequest, onProgress Progress) (OCRResult, error) {
	if err := s.run(ctx, onProgress); err != nil {
		return OCRResult{}, err
	}
	text := fmt.Sprintf("[ocr %s %s: %d bytes recognized]", req.Language, req.Quality, len(input))
	mime := map[string]string{
		"searchable_pdf": "application/pdf",
		"text":           "text/plain",
		"json":           "application/json",
	}[req.OutputFormat]
	if onProgress != nil {
		onProgress(100, "recognized")
	}
	return OCRResult{
		Output:     []byte(text),
		MimeType:   mime,
		WordCount:  len(strings.Fields(text)),
		Confidence: 0.97,
	}, nil
}

func (s *Stub) Summarize(ctx context.Context, input []byte, req SummarizeRequest, onProgress Progress) ([]byte, error) {
	if err := s.run(ctx, onProgress); err != nil {
		return nil, err
	}
	out := fmt.Sprintf("[%s summary, %s: %d bytes in]", req.Style, req.Length, len(input))
	if onProgress != nil {
		onProgress(100, "summarized")
	}
	return []byte(out), nil
}

func (s *Stub) Translate(ctx context.Context, input []byte, req TranslateRequest, onProgress Progress) ([]byte, error) {
	if err := s.run(ctx, onProgress); err != nil {
		return nil, err
	}
	out := fmt.Sprintf("[translated to %s, quality=%s: %d bytes in]", req.TargetLanguage, req.Quality, len(input))
	if onProgress != nil {
		onProgress(100, "translated")
	}
	return []byte(out), nil
}

var _ Client = (*Stub)(nil)
