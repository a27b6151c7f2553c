package services

import (
	"fmt"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// Options is the per-service option bag. Validate rejects values outside the
// enumerated sets with ErrUnsupported (wrong enum member) or ErrInvalidInput
// (out-of-range scalar). RequiresServerProcessing reports whether the chosen
// values need the server-processing entitlement.
type Options interface {
	Validate() error
	RequiresServerProcessing() bool
}

func unsupported(field, value string) error {
	return fmt.Errorf("%s %q: %w", field, value, common.ErrUnsupported)
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// CompressionOptions configures the compression service.
type CompressionOptions struct {
	CompressionLevel    string // low | medium | high | maximum
	ImageQuality        int    // 10..100
	UseServerProcessing bool
}

func (o CompressionOptions) Validate() error {
	if !oneOf(o.CompressionLevel, "low", "medium", "high", "maximum") {
		return unsupported("compression level", o.CompressionLevel)
	}
	if o.ImageQuality < 10 || o.ImageQuality > 100 {
		return fmt.Errorf("image quality %d outside [10,100]: %w", o.ImageQuality, common.ErrInvalidInput)
	}
	return nil
}

func (o CompressionOptions) RequiresServerProcessing() bool { return o.UseServerProcessing }

// ConversionOptions configures the conversion service. Office target formats
// run remotely; txt and html convert in-process.
type ConversionOptions struct {
	TargetFormat   string // docx | xlsx | html | txt
	PreserveLayout bool
	ExtractTables  bool
	IncludeImages  bool
	Quality        string // low | medium | high
}

func (o ConversionOptions) Validate() error {
	if !oneOf(o.TargetFormat, "docx", "xlsx", "html", "txt") {
		return unsupported("target format", o.TargetFormat)
	}
	if !oneOf(o.Quality, "low", "medium", "high") {
		return unsupported("conversion quality", o.Quality)
	}
	return nil
}

func (o ConversionOptions) RequiresServerProcessing() bool {
	return o.TargetFormat == "docx" || o.TargetFormat == "xlsx"
}

// OCRLanguages is the supported recognition language set.
var OCRLanguages = []string{"en", "es", "fr", "de", "it", "pt", "nl", "ru", "zh", "ja", "ko", "ar"}

// OCROptions configures the OCR service.
type OCROptions struct {
	Language            string
	OutputFormat        string // searchable_pdf | text | json
	Quality             string // fast | balanced | accurate
	ExtractTables       bool
	PreserveLayout      bool
	DetectColumns       bool
	EnhanceImages       bool
	ConfidenceThreshold float64 // 0..1
}

func (o OCROptions) Validate() error {
	if !oneOf(o.Language, OCRLanguages...) {
		return unsupported("ocr language", o.Language)
	}
	if !oneOf(o.OutputFormat, "searchable_pdf", "text", "json") {
		return unsupported("ocr output format", o.OutputFormat)
	}
	if !oneOf(o.Quality, "fast", "balanced", "accurate") {
		return unsupported("ocr quality", o.Quality)
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence threshold %.2f outside [0,1]: %w",
			o.ConfidenceThreshold, common.ErrInvalidInput)
	}
	return nil
}

func (o OCROptions) RequiresServerProcessing() bool { return o.Quality == "accurate" }

// SummarizeOptions configures the AI summarization service.
type SummarizeOptions struct {
	Style            string // concise | detailed | academic | casual | professional
	Length           string // short | medium | long
	IncludeKeyPoints bool
	IncludeMetadata  bool
}

func (o SummarizeOptions) Validate() error {
	if !oneOf(o.Style, "concise", "detailed", "academic", "casual", "professional") {
		return unsupported("summary style", o.Style)
	}
	if !oneOf(o.Length, "short", "medium", "long") {
		return unsupported("summary length", o.Length)
	}
	return nil
}

func (o SummarizeOptions) RequiresServerProcessing() bool { return false }

// TranslateOptions configures the AI translation service.
type TranslateOptions struct {
	TargetLanguage     string
	Quality            string // standard | high | premium
	PreserveFormatting bool
}

func (o TranslateOptions) Validate() error {
	if o.TargetLanguage == "" {
		return fmt.Errorf("target language is required: %w", common.ErrInvalidInput)
	}
	if !oneOf(o.Quality, "standard", "high", "premium") {
		return unsupported("translation quality", o.Quality)
	}
	return nil
}

func (o TranslateOptions) RequiresServerProcessing() bool { return o.Quality == "premium" }

// CloudUploadOptions configures the cloud upload service. DestinationPath is
// the object key in the remote store.
type CloudUploadOptions struct {
	Provider        cloud.ProviderID
	DestinationPath string
}

func (o CloudUploadOptions) Validate() error {
	if !oneOf(string(o.Provider),
		string(cloud.GoogleDrive), string(cloud.Dropbox), string(cloud.OneDrive),
		string(cloud.S3), string(cloud.Memory)) {
		return unsupported("cloud provider", string(o.Provider))
	}
	if o.DestinationPath == "" {
		return fmt.Errorf("destination path is required: %w", common.ErrInvalidInput)
	}
	return nil
}

func (o CloudUploadOptions) RequiresServerProcessing() bool { return false }

// CloudDownloadOptions configures the cloud download service. FilePath names
// the remote object to fetch; MimeType is applied to the stored record.
type CloudDownloadOptions struct {
	Provider cloud.ProviderID
	FilePath string
	MimeType string
}

func (o CloudDownloadOptions) Validate() error {
	if !oneOf(string(o.Provider),
		string(cloud.GoogleDrive), string(cloud.Dropbox), string(cloud.OneDrive),
		string(cloud.S3), string(cloud.Memory)) {
		return unsupported("cloud provider", string(o.Provider))
	}
	if o.FilePath == "" {
		return fmt.Errorf("file path is required: %w", common.ErrInvalidInput)
	}
	return nil
}

func (o CloudDownloadOptions) RequiresServerProcessing() bool { return false }
