package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/uploader"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/filex"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/sizex"
)

// readUploads loads files from disk into intake payloads. The terminal
// stands in for both the file dialog and the drop zone.
func readUploads(paths []string) ([]uploader.FileUpload, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one path is required: %w", common.ErrInvalidInput)
	}

	uploads := make([]uploader.FileUpload, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, uploader.FileUpload{
			Name:         filepath.Base(path),
			MimeType:     "application/pdf",
			Bytes:        data,
			LastModified: info.ModTime(),
		})
	}
	return uploads, nil
}

func (a *App) intake(ctx context.Context, paths []string, source string) error {
	uploads, err := readUploads(paths)
	if err != nil {
		return err
	}
	ids, err := a.uploader.AddFiles(ctx, uploads, source)
	if err != nil {
		return err
	}
	for _, id := range ids {
		printlnFn("added", id)
	}
	return nil
}

// Add mirrors picking files through the dialog.
func (a *App) Add(ctx context.Context, paths []string) error {
	return a.intake(ctx, paths, uploader.SourceSelection)
}

// Drop mirrors dragging files onto the widget.
func (a *App) Drop(ctx context.Context, paths []string) error {
	return a.intake(ctx, paths, uploader.SourceDrop)
}

// Files prints the current selection.
func (a *App) Files(context.Context) error {
	files := a.uploader.GetSelectedFiles()
	if len(files) == 0 {
		printlnFn("No files selected.")
		return nil
	}
	for _, f := range files {
		printlnFn(fmt.Sprintf("%s  %-30s %8s  %s", f.ID, f.Name, sizex.Format(f.SizeBytes), f.Source))
	}
	return nil
}

// Remove drops one file from the selection.
func (a *App) Remove(_ context.Context, fileID string) error {
	if !a.uploader.RemoveFile(fileID) {
		printlnFn("No such file in the selection:", fileID)
	}
	return nil
}

// Clear empties the selection.
func (a *App) Clear(context.Context) error {
	a.uploader.ClearFiles()
	printlnFn("Selection cleared.")
	return nil
}

// Mode switches the uploader mode. The rejection reason, if any, is rendered
// from the mode-change-error event.
func (a *App) Mode(_ context.Context, target string) error {
	a.uploader.SetMode(uploader.Mode(target))
	return nil
}

// Toggle flips the uploader mode.
func (a *App) Toggle(context.Context) error {
	a.uploader.ToggleMode()
	return nil
}

// Save writes a stored file into ./output (or the given directory).
func (a *App) Save(_ context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		printlnFn("Usage: save <fileId> [dir]")
		return nil
	}

	record, err := a.store.Get(args[0])
	if err != nil {
		return err
	}

	dirName := "output"
	if len(args) == 2 {
		dirName = args[1]
	}
	dir, err := filex.EnsureSubdDir(dirName)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, filex.SafeName(record.Name))
	if err := os.WriteFile(path, record.Bytes, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	printlnFn("saved", path)
	return nil
}
