// Package models defines client-side data models shared by the PDFSmaller
// orchestration core: service identities, file records and job records.
package models

// ServiceKind is the enumerated identity of a feature service.
type ServiceKind string

const (
	ServiceCompression   ServiceKind = "compression"
	ServiceConversion    ServiceKind = "conversion"
	ServiceOCR           ServiceKind = "ocr"
	ServiceAISummarize   ServiceKind = "ai-summarize"
	ServiceAITranslate   ServiceKind = "ai-translate"
	ServiceCloudUpload   ServiceKind = "cloud-upload"
	ServiceCloudDownload ServiceKind = "cloud-download"
)

// ServiceKinds lists every known service kind in a stable order.
func ServiceKinds() []ServiceKind {
	return []ServiceKind{
		ServiceCompression,
		ServiceConversion,
		ServiceOCR,
		ServiceAISummarize,
		ServiceAITranslate,
		ServiceCloudUpload,
		ServiceCloudDownload,
	}
}

// Valid reports whether k is one of the enumerated service kinds.
func (k ServiceKind) Valid() bool {
	for _, known := range ServiceKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// ServiceState models the lifecycle of a feature service.
type ServiceState string

const (
	StateUninitialized ServiceState = "uninitialized"
	StateIdle          ServiceState = "idle"
	StateRunning       ServiceState = "running"
	StateCompleted     ServiceState = "completed"
	StateFailed        ServiceState = "failed"
	StateCancelled     ServiceState = "cancelled"
)
