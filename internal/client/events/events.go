// Package events is the catalog of bus topics and their payload schemas.
// Every cross-component message in the client goes through one of these;
// modules never call each other directly.
package events

import (
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// User intent topics.
const (
	TopicServiceStartRequest = "service-start-request"
	TopicJobCancelRequest    = "job-cancel-request"
)

// File lifecycle topics (published by the FileStore and the uploader).
const (
	TopicFileAdded    = "file-added"
	TopicFileRemoved  = "file-removed"
	TopicFilesCleared = "files-cleared"
	TopicFileUploaded = "file-uploaded"
)

// File resolution topics (service <-> mediator). Persist is the outbound
// counterpart of request: services hand produced artifacts to the mediator,
// which is the only component allowed to touch the FileStore.
const (
	TopicFileRequest         = "file-request"
	TopicFileResponse        = "file-response"
	TopicFilePersistRequest  = "file-persist-request"
	TopicFilePersistResponse = "file-persist-response"
)

// Republished job topics (published by the mediator).
const (
	TopicJobProgress  = "job-progress"
	TopicJobCompleted = "job-completed"
	TopicJobFailed    = "job-failed"
	TopicJobCancelled = "job-cancelled"
)

// Uploader topics.
const (
	TopicModeChanged            = "mode-changed"
	TopicModeChangeError        = "mode-change-error"
	TopicFilesAdapted           = "files-adapted"
	TopicInitialized            = "initialized"
	TopicAttributeCallbackError = "attribute-callback-error"
	TopicInitializationError    = "initialization-error"
)

// TopicHandlerError is reserved for the bus itself: failures inside a
// subscriber are reported here instead of aborting the fan-out.
const TopicHandlerError = "handler-error"

// Per-service event suffixes. The full topic is "<kind>:<suffix>", built by
// ServiceTopic.
const (
	SuffixStatusChanged = "status-changed"
	SuffixProgress      = "progress"
	SuffixComplete      = "complete"
	SuffixError         = "error"
	SuffixCancelled     = "cancelled"
)

// ServiceTopic returns the bus topic a service of the given kind uses for the
// given event suffix, e.g. "ocr:progress".
func ServiceTopic(kind models.ServiceKind, suffix string) string {
	return string(kind) + ":" + suffix
}

// ServiceStartRequest asks the mediator to run a service over stored files.
type ServiceStartRequest struct {
	ServiceKind models.ServiceKind
	FileIDs     []string
	Options     any
}

// JobCancelRequest asks the mediator to cancel a running job. Best-effort.
type JobCancelRequest struct {
	JobID string
}

// FileRequest is published by a service that needs the bytes behind a fileId.
type FileRequest struct {
	RequestID string
	FileID    string
}

// FileResponse answers a FileRequest. Exactly one of Record or ErrorKind is
// set. Record bytes are read-only by contract.
type FileResponse struct {
	RequestID    string
	FileID       string
	Record       *models.FileRecord
	ErrorKind    common.Kind
	ErrorMessage string
}

// FilePersistRequest asks the mediator to store a produced artifact.
type FilePersistRequest struct {
	RequestID   string
	Name        string
	MimeType    string
	Bytes       []byte
	Source      models.FileSource
	DerivedFrom string
}

// FilePersistResponse answers a FilePersistRequest with the new fileId.
type FilePersistResponse struct {
	RequestID    string
	FileID       string
	ErrorKind    common.Kind
	ErrorMessage string
}

// FileAdded announces a new record in the FileStore.
type FileAdded struct {
	FileID    string
	Name      string
	SizeBytes int64
	Source    models.FileSource
}

// FileRemoved announces an explicit removal.
type FileRemoved struct {
	FileID string
}

// FilesCleared announces a bulk clear; Count is the number of records dropped.
type FilesCleared struct {
	Count int
}

// FileUploaded is published by the uploader after handing bytes to the store.
type FileUploaded struct {
	FileIDs []string
	Mode    string
}

// StatusChanged reports a service lifecycle transition.
type StatusChanged struct {
	ServiceKind models.ServiceKind
	JobID       string
	State       models.ServiceState
	Context     string
}

// Progress reports service run progress. Percent is monotonic within a run
// and reaches 100 before Complete.
type Progress struct {
	ServiceKind models.ServiceKind
	JobID       string
	Percent     float64
	Message     string
}

// Complete reports a successful run.
type Complete struct {
	ServiceKind   models.ServiceKind
	JobID         string
	OutputFileIDs []string
	Result        any
	Message       string
}

// ServiceError reports a failed run. Services never throw across the bus;
// they emit this instead.
type ServiceError struct {
	ServiceKind models.ServiceKind
	JobID       string
	Kind        common.Kind
	Message     string
	Context     string
}

// Cancelled reports a cooperative cancellation.
type Cancelled struct {
	ServiceKind models.ServiceKind
	JobID       string
	Reason      string
}

// JobProgress is the mediator's republished progress stream.
type JobProgress struct {
	JobID       string
	ServiceKind models.ServiceKind
	Percent     float64
	Message     string
}

// JobCompleted is the mediator's republished terminal success event.
type JobCompleted struct {
	JobID         string
	ServiceKind   models.ServiceKind
	OutputFileIDs []string
	Result        any
	Message       string
}

// JobFailed is the mediator's republished terminal failure event.
type JobFailed struct {
	JobID       string
	ServiceKind models.ServiceKind
	Kind        common.Kind
	Message     string
}

// JobCancelled is the mediator's republished terminal cancellation event.
type JobCancelled struct {
	JobID       string
	ServiceKind models.ServiceKind
	Reason      string
}

// ModeChanged announces a successful uploader mode transition.
type ModeChanged struct {
	OldMode     string
	NewMode     string
	TriggeredBy string // user | programmatic | init
	Success     bool
}

// ModeChangeError announces a rejected mode transition.
type ModeChangeError struct {
	Error     string // invalid_mode | mode_change_blocked
	Requested string
}

// FilesAdapted warns that intake or a mode change discarded files.
type FilesAdapted struct {
	Reason       string
	Source       string // selection | drop | mode-change
	Kept         int
	Discarded    int
	DiscardedIDs []string
	// Duplicates lists fileIds whose content already existed in the store.
	// They are kept, the flag is informational.
	Duplicates []string
}

// Initialized announces that the uploader finished its first-init sequence.
type Initialized struct {
	Mode string
}

// AttributeCallbackError reports an invalid attribute value observed while
// applying the uploader's attribute surface.
type AttributeCallbackError struct {
	Attribute string
	Value     string
	Message   string
}

// InitializationError reports a failed uploader bootstrap.
type InitializationError struct {
	Message string
}

// HandlerError is the payload of TopicHandlerError.
type HandlerError struct {
	Topic   string
	Message string
}
