// Package uploader implements the dual-mode file intake widget. It is the
// only component with non-trivial internal state: a single/batch mode state
// machine, per-mode file-set adaptation and a session-scoped mode preference.
package uploader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/filestore"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/session"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

// Mode is the widget's intake mode.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

func (m Mode) valid() bool { return m == ModeSingle || m == ModeBatch }

// Intake sources.
const (
	SourceSelection = "selection"
	SourceDrop      = "drop"
)

// Mode change triggers.
const (
	TriggerUser         = "user"
	TriggerProgrammatic = "programmatic"
	TriggerInit         = "init"
)

// Mode change rejection reasons.
const (
	ErrorInvalidMode       = "invalid_mode"
	ErrorModeChangeBlocked = "mode_change_blocked"
)

// preferenceKey is the session record holding the preferred mode.
const preferenceKey = "preferredMode"

// DefaultMaxFileSize applies when no max-size attribute is given.
const DefaultMaxFileSize = 50 * sizex.MB

// FileUpload is one incoming file from a selection dialog or a drop.
type FileUpload struct {
	Name         string
	MimeType     string
	Bytes        []byte
	LastModified time.Time
}

// Widget is the dual-mode uploader. All methods are safe for concurrent use.
type Widget struct {
	bus     *eventbus.Bus
	store   *filestore.Store
	session *session.Store // nil disables preference persistence
	logger  logging.Logger

	mu                 sync.Mutex
	initialized        bool
	mode               Mode
	files              []string
	accept             []string
	maxSize            int64
	disabled           bool
	toggleDisabled     bool
	rememberPreference bool
	modeTransitioning  bool
	isProcessing       bool
	isDragOver         bool
	announcement       string
}

// New wires a widget. sess may be nil.
func New(bus *eventbus.Bus, store *filestore.Store, sess *session.Store, logger logging.Logger) *Widget {
	return &Widget{
		bus:     bus,
		store:   store,
		session: sess,
		logger:  logging.OrNop(logger).With("component", "uploader"),

		mode:               ModeSingle,
		accept:             []string{".pdf"},
		maxSize:            DefaultMaxFileSize,
		rememberPreference: true,
	}
}

// Initialize applies the attribute surface and resolves the starting mode.
// First match wins: session preference (when remembered), the legacy
// multiple attribute, default-mode, single.
func (w *Widget) Initialize(ctx context.Context, attrs map[string]string) error {
	w.mu.Lock()
	if w.initialized {
		w.mu.Unlock()
		return fmt.Errorf("uploader already initialized: %w", common.ErrInvalidInput)
	}
	w.initialized = true
	w.mu.Unlock()

	var defaultMode Mode
	var legacyMultiple bool

	for attr, value := range attrs {
		switch attr {
		case "accept":
			w.setAccept(value)
		case "multiple":
			legacyMultiple = value != "false"
		case "max-size":
			size, err := sizex.Parse(value)
			if err != nil {
				w.attributeError(attr, value, err.Error())
				continue
			}
			w.mu.Lock()
			w.maxSize = size
			w.mu.Unlock()
		case "disabled":
			w.mu.Lock()
			w.disabled = value != "false"
			w.mu.Unlock()
		case "default-mode":
			if !Mode(value).valid() {
				w.attributeError(attr, value, "mode must be single or batch")
				continue
			}
			defaultMode = Mode(value)
		case "remember-preference":
			w.mu.Lock()
			w.rememberPreference = value != "false"
			w.mu.Unlock()
		case "toggle-disabled":
			w.mu.Lock()
			w.toggleDisabled = value != "false"
			w.mu.Unlock()
		default:
			w.attributeError(attr, value, "unknown attribute")
		}
	}

	mode := w.resolveInitialMode(ctx, legacyMultiple, defaultMode)

	w.mu.Lock()
	w.mode = mode
	w.announcement = "Uploader ready in " + string(mode) + " mode"
	w.mu.Unlock()

	w.bus.Publish(events.TopicInitialized, events.Initialized{Mode: string(mode)})
	return nil
}

func (w *Widget) resolveInitialMode(ctx context.Context, legacyMultiple bool, defaultMode Mode) Mode {
	w.mu.Lock()
	remember := w.rememberPreference
	w.mu.Unlock()

	if remember && w.session != nil {
		if raw := w.session.Get(ctx, preferenceKey); raw != nil {
			pref := Mode(raw)
			if pref.valid() {
				return pref
			}
			w.attributeError("session-preference", string(raw), "invalid stored mode, falling back")
		}
	}
	if legacyMultiple {
		return ModeBatch
	}
	if defaultMode.valid() {
		return defaultMode
	}
	return ModeSingle
}

func (w *Widget) setAccept(value string) {
	var exts []string
	for _, part := range strings.Split(value, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		w.attributeError("accept", value, "no usable extensions")
		return
	}
	w.mu.Lock()
	w.accept = exts
	w.mu.Unlock()
}

func (w *Widget) attributeError(attr, value, message string) {
	w.logger.Warn(context.Background(), "attribute rejected",
		"attribute", attr, "value", value, "reason", message)
	w.bus.Publish(events.TopicAttributeCallbackError, events.AttributeCallbackError{
		Attribute: attr,
		Value:     value,
		Message:   message,
	})
}

// GetMode returns the current mode.
func (w *Widget) GetMode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}

// SetMode requests a programmatic mode change. It reports whether the widget
// ends up in the requested mode.
func (w *Widget) SetMode(target Mode) bool {
	return w.setMode(context.Background(), target, TriggerProgrammatic)
}

// ToggleMode flips between single and batch on behalf of the user.
func (w *Widget) ToggleMode() bool {
	if w.GetMode() == ModeSingle {
		return w.setMode(context.Background(), ModeBatch, TriggerUser)
	}
	return w.setMode(context.Background(), ModeSingle, TriggerUser)
}

func (w *Widget) setMode(ctx context.Context, target Mode, triggeredBy string) bool {
	if !target.valid() {
		w.bus.Publish(events.TopicModeChangeError, events.ModeChangeError{
			Error:     ErrorInvalidMode,
			Requested: string(target),
		})
		return false
	}

	w.mu.Lock()
	if w.toggleDisabled || w.disabled || w.modeTransitioning {
		w.mu.Unlock()
		w.bus.Publish(events.TopicModeChangeError, events.ModeChangeError{
			Error:     ErrorModeChangeBlocked,
			Requested: string(target),
		})
		return false
	}
	if target == w.mode {
		w.mu.Unlock()
		return true
	}

	w.modeTransitioning = true
	oldMode := w.mode

	// batch -> single keeps the first file.
	var discarded []string
	if target == ModeSingle && len(w.files) > 1 {
		discarded = append(discarded, w.files[1:]...)
		w.files = w.files[:1]
	}
	w.mode = target
	w.announcement = "Switched to " + string(target) + " mode"
	remember := w.rememberPreference
	w.mu.Unlock()

	w.discardFromStore(discarded, "mode-change", 1)

	if remember {
		w.persistPreference(ctx, target)
	}

	w.bus.Publish(events.TopicModeChanged, events.ModeChanged{
		OldMode:     string(oldMode),
		NewMode:     string(target),
		TriggeredBy: triggeredBy,
		Success:     true,
	})

	w.mu.Lock()
	w.modeTransitioning = false
	w.mu.Unlock()
	return true
}

func (w *Widget) persistPreference(ctx context.Context, mode Mode) {
	if w.session == nil {
		return
	}
	if err := w.session.Put(ctx, preferenceKey, []byte(mode)); err != nil {
		// Preference persistence is best-effort; the mode change stands.
		w.logger.Warn(ctx, "persisting mode preference", "err", err)
	}
}

func (w *Widget) discardFromStore(fileIDs []string, reason string, kept int) {
	if len(fileIDs) == 0 {
		return
	}
	for _, id := range fileIDs {
		w.store.Remove(id)
	}
	w.bus.Publish(events.TopicFilesAdapted, events.FilesAdapted{
		Reason:       reason,
		Source:       reason,
		Kept:         kept,
		Discarded:    len(fileIDs),
		DiscardedIDs: fileIDs,
	})
}

// AddFiles takes files from a selection dialog or a drop, validates them
// against accept and max-size, adapts the set to the current mode and hands
// the survivors to the FileStore. It returns the stored fileIds.
func (w *Widget) AddFiles(ctx context.Context, incoming []FileUpload, source string) ([]string, error) {
	if source != SourceSelection && source != SourceDrop {
		return nil, fmt.Errorf("unknown intake source %q: %w", source, common.ErrInvalidInput)
	}

	w.mu.Lock()
	if !w.initialized {
		w.mu.Unlock()
		return nil, fmt.Errorf("uploader not initialized: %w", common.ErrInvalidInput)
	}
	if w.disabled {
		w.mu.Unlock()
		return nil, fmt.Errorf("uploader is disabled: %w", common.ErrInvalidInput)
	}
	if w.isProcessing {
		w.mu.Unlock()
		return nil, fmt.Errorf("intake already in progress: %w", common.ErrServiceBusy)
	}
	w.isProcessing = true
	mode := w.mode
	accept := w.accept
	maxSize := w.maxSize
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.isProcessing = false
		w.mu.Unlock()
	}()

	valid, rejected := w.validateIntake(incoming, accept, maxSize)
	if len(valid) == 0 {
		if len(rejected) > 0 {
			w.publishIntakeAdapted(source, 0, len(rejected), nil, nil, "no valid files")
		}
		return nil, fmt.Errorf("no acceptable files in intake: %w", common.ErrInvalidInput)
	}

	// Mode adaptation: single-mode selection keeps the last pick, a drop
	// keeps the first.
	adaptedAway := 0
	if mode == ModeSingle && len(valid) > 1 {
		adaptedAway = len(valid) - 1
		if source == SourceSelection {
			valid = valid[len(valid)-1:]
		} else {
			valid = valid[:1]
		}
	}

	var replaced []string
	if mode == ModeSingle {
		w.mu.Lock()
		replaced = w.files
		w.files = nil
		w.mu.Unlock()
	}

	fileSource := models.SourceUserSelected
	if source == SourceDrop {
		fileSource = models.SourceDropped
	}

	var (
		added      []string
		duplicates []string
	)
	for i := range incoming {
		f := &incoming[i]
		if !containsUpload(valid, f) {
			continue
		}
		if dup := w.store.FindByChecksum(filestore.Checksum(f.Bytes)); len(dup) > 0 {
			duplicates = append(duplicates, dup...)
		}
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		id, err := w.store.Add(f.Bytes, models.FileMeta{
			Name:         f.Name,
			MimeType:     mimeType,
			LastModified: f.LastModified,
			Source:       fileSource,
		})
		if err != nil {
			w.publishIntakeAdapted(source, len(added), 1, nil, nil, err.Error())
			continue
		}
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("intake stored no files: %w", common.ErrInternal)
	}

	w.mu.Lock()
	w.files = append(w.files, added...)
	w.announcement = fmt.Sprintf("%d file(s) added", len(added))
	w.mu.Unlock()

	// Replaced single-mode files leave the store; their ids are reported.
	for _, id := range replaced {
		w.store.Remove(id)
	}

	if discardedTotal := adaptedAway + len(rejected) + len(replaced); discardedTotal > 0 || len(duplicates) > 0 {
		w.publishIntakeAdapted(source, len(added), discardedTotal, replaced, duplicates,
			intakeReason(mode, adaptedAway, len(rejected), len(replaced)))
	}

	w.bus.Publish(events.TopicFileUploaded, events.FileUploaded{
		FileIDs: added,
		Mode:    string(mode),
	})
	return added, nil
}

func intakeReason(mode Mode, adapted, rejected, replaced int) string {
	switch {
	case rejected > 0:
		return "validation"
	case adapted > 0 || replaced > 0:
		return "single-mode limit"
	default:
		return "duplicate content"
	}
}

func containsUpload(set []*FileUpload, f *FileUpload) bool {
	for _, s := range set {
		if s == f {
			return true
		}
	}
	return false
}

func (w *Widget) validateIntake(incoming []FileUpload, accept []string, maxSize int64) ([]*FileUpload, []string) {
	var valid []*FileUpload
	var rejected []string
	for i := range incoming {
		f := &incoming[i]
		if !extensionAccepted(f.Name, accept) {
			rejected = append(rejected, f.Name)
			continue
		}
		if maxSize > 0 && int64(len(f.Bytes)) > maxSize {
			rejected = append(rejected, f.Name)
			continue
		}
		valid = append(valid, f)
	}
	return valid, rejected
}

func extensionAccepted(name string, accept []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range accept {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func (w *Widget) publishIntakeAdapted(source string, kept, discarded int, discardedIDs, duplicates []string, reason string) {
	w.bus.Publish(events.TopicFilesAdapted, events.FilesAdapted{
		Reason:       reason,
		Source:       source,
		Kept:         kept,
		Discarded:    discarded,
		DiscardedIDs: discardedIDs,
		Duplicates:   duplicates,
	})
}

// GetSelectedFiles snapshots the records currently visible in the widget.
// Ids whose record disappeared from the store are pruned.
func (w *Widget) GetSelectedFiles() []*models.FileRecord {
	w.mu.Lock()
	ids := append([]string(nil), w.files...)
	w.mu.Unlock()

	var records []*models.FileRecord
	var live []string
	for _, id := range ids {
		record, err := w.store.Get(id)
		if err != nil {
			continue
		}
		records = append(records, record)
		live = append(live, id)
	}

	if len(live) != len(ids) {
		w.mu.Lock()
		w.files = live
		w.mu.Unlock()
	}
	return records
}

// ClearFiles removes every widget-held file from the store.
func (w *Widget) ClearFiles() {
	w.mu.Lock()
	ids := w.files
	w.files = nil
	w.announcement = "Selection cleared"
	w.mu.Unlock()

	for _, id := range ids {
		w.store.Remove(id)
	}
}

// RemoveFile drops one file from the widget and the store. Idempotent.
func (w *Widget) RemoveFile(fileID string) bool {
	w.mu.Lock()
	found := false
	for i, id := range w.files {
		if id == fileID {
			w.files = append(w.files[:i:i], w.files[i+1:]...)
			found = true
			break
		}
	}
	w.mu.Unlock()

	if found {
		w.store.Remove(fileID)
	}
	return found
}

// SetDisabled enables or disables all interaction.
func (w *Widget) SetDisabled(disabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disabled = disabled
}

// SetDragOver tracks drag state for rendering.
func (w *Widget) SetDragOver(over bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.isDragOver = over
}

// MaxFileSize returns the configured per-file cap in bytes.
func (w *Widget) MaxFileSize() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maxSize
}

// Accept returns the accepted extension list.
func (w *Widget) Accept() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.accept...)
}
