package uploader

import (
	"fmt"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

// The accessibility surface mirrors what a screen reader would get from the
// widget: static instructions per mode, state-dependent assistive text and a
// live announcement updated on every state change.

// InstructionText is the primary prompt for the current mode.
func (w *Widget) InstructionText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mode == ModeBatch {
		return "Drop PDF files here or browse to select multiple files"
	}
	return "Drop a PDF file here or browse to select one"
}

// AssistiveText describes limits and the current selection for assistive
// technology.
func (w *Widget) AssistiveText() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.disabled:
		return "Upload is currently disabled"
	case w.isProcessing:
		return "Files are being processed, please wait"
	case w.isDragOver:
		return "Release to add the files"
	}

	limit := sizex.Format(w.maxSize)
	if w.mode == ModeBatch {
		return fmt.Sprintf("%d file(s) selected, up to %s each", len(w.files), limit)
	}
	if len(w.files) == 1 {
		return fmt.Sprintf("1 file selected, selecting another replaces it, up to %s", limit)
	}
	return fmt.Sprintf("No file selected, up to %s", limit)
}

// Announcement is the last live-region message.
func (w *Widget) Announcement() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.announcement
}

// Icon names the glyph for the current mode.
func (w *Widget) Icon() string {
	if w.GetMode() == ModeBatch {
		return "files-stack"
	}
	return "file-single"
}

// AriaLabel labels the widget root for the current mode.
func (w *Widget) AriaLabel() string {
	if w.GetMode() == ModeBatch {
		return "Batch file uploader"
	}
	return "Single file uploader"
}
