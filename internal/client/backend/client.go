// Package backend defines the contract to the remote processing endpoints.
// The concrete HTTP transport is an external collaborator and lives outside
// this repository; the package ships a bundled local engine for the
// operations that can run in-process and a deterministic stub for the rest.
package backend

import "context"

// CompressRequest mirrors the remote compression endpoint parameters.
type CompressRequest struct {
	Level        string // low | medium | high | maximum
	ImageQuality int    // 10..100
}

// ConvertRequest mirrors the remote conversion endpoint parameters.
type ConvertRequest struct {
	TargetFormat   string // docx | xlsx | html | txt
	PreserveLayout bool
	ExtractTables  bool
	IncludeImages  bool
	Quality        string // low | medium | high
}

// OCRRequest mirrors the remote OCR endpoint parameters.
type OCRRequest struct {
	Language            string
	OutputFormat        string // searchable_pdf | text | json
	Quality             string // fast | balanced | accurate
	ExtractTables       bool
	PreserveLayout      bool
	DetectColumns       bool
	EnhanceImages       bool
	ConfidenceThreshold float64
}

// OCRResult is the recognized payload plus basic run statistics.
type OCRResult struct {
	Output     []byte
	MimeType   string
	WordCount  int
	Confidence float64
}

// SummarizeRequest mirrors the AI summarization endpoint parameters.
type SummarizeRequest struct {
	Style            string // concise | detailed | academic | casual | professional
	Length           string // short | medium | long
	IncludeKeyPoints bool
	IncludeMetadata  bool
}

// TranslateRequest mirrors the AI translation endpoint parameters.
type TranslateRequest struct {
	TargetLanguage     string
	Quality            string // standard | high | premium
	PreserveFormatting bool
}

// Progress lets long remote calls report percentages back to the caller.
// Implementations may call it from the request goroutine only.
type Progress func(percent float64, message string)

// Client is the processing backend contract. Implementations map transport
// failures to common.ErrRemoteFailure and honor ctx cancellation.
type Client interface {
	Compress(ctx context.Context, input []byte, req CompressRequest, onProgress Progress) ([]byte, error)
	Convert(ctx context.Context, input []byte, req ConvertRequest, onProgress Progress) ([]byte, error)
	RecognizeText(ctx context.Context, input []byte, req OCRRequest, onProgress Progress) (OCRResult, error)
	Summarize(ctx context.Context, input []byte, req SummarizeRequest, onProgress Progress) ([]byte, error)
	Translate(ctx context.Context, input []byte, req TranslateRequest, onProgress Progress) ([]byte, error)
}
