// Package filestore is the authoritative owner of user-supplied file bytes.
// Everything else refers to files by opaque id; only the mediator resolves
// ids back to bytes on behalf of services.
package filestore

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/logging"
)

// Options bounds what the store accepts.
type Options struct {
	// MaxFileBytes caps a single file. Zero means unlimited.
	MaxFileBytes int64
	// MaxSessionBytes caps the sum of all retained bytes. Zero means unlimited.
	MaxSessionBytes int64
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Source     models.FileSource
	MimePrefix string
}

// Store holds file records in memory for the lifetime of the session.
type Store struct {
	mu      sync.Mutex
	records map[string]*models.FileRecord
	order   []string
	held    int64

	opts   Options
	bus    *eventbus.Bus
	logger logging.Logger
}

// New returns an empty store publishing lifecycle events on bus.
func New(bus *eventbus.Bus, opts Options, logger logging.Logger) *Store {
	return &Store{
		records: make(map[string]*models.FileRecord),
		opts:    opts,
		bus:     bus,
		logger:  logging.OrNop(logger),
	}
}

// Add registers bytes under a fresh fileId and emits file-added. The id is
// allocated synchronously: a Get issued from the file-added handler already
// resolves. Metadata must carry a name and a mime type.
func (s *Store) Add(bytes []byte, meta models.FileMeta) (string, error) {
	if strings.TrimSpace(meta.Name) == "" {
		return "", fmt.Errorf("file name is required: %w", common.ErrInvalidInput)
	}
	if strings.TrimSpace(meta.MimeType) == "" {
		return "", fmt.Errorf("mime type is required: %w", common.ErrInvalidInput)
	}
	if meta.Source == "" {
		meta.Source = models.SourceUserSelected
	}

	size := int64(len(bytes))
	if s.opts.MaxFileBytes > 0 && size > s.opts.MaxFileBytes {
		return "", fmt.Errorf("file %q is %d bytes, cap is %d: %w",
			meta.Name, size, s.opts.MaxFileBytes, common.ErrTooLarge)
	}

	sum := blake2b.Sum256(bytes)

	record := &models.FileRecord{
		ID:           uuid.NewString(),
		Name:         meta.Name,
		SizeBytes:    size,
		MimeType:     meta.MimeType,
		LastModified: meta.LastModified,
		Bytes:        bytes,
		Source:       meta.Source,
		DerivedFrom:  meta.DerivedFrom,
		CreatedAt:    time.Now().UTC(),
		Checksum:     hex.EncodeToString(sum[:]),
	}

	s.mu.Lock()
	if s.opts.MaxSessionBytes > 0 && s.held+size > s.opts.MaxSessionBytes {
		s.mu.Unlock()
		return "", fmt.Errorf("session ceiling of %d bytes reached: %w",
			s.opts.MaxSessionBytes, common.ErrTooLarge)
	}
	s.records[record.ID] = record
	s.order = append(s.order, record.ID)
	s.held += size
	s.mu.Unlock()

	s.logger.Debug(context.Background(), "file added",
		"file_id", record.ID, "name", record.Name, "size", size)
	s.bus.Publish(events.TopicFileAdded, events.FileAdded{
		FileID:    record.ID,
		Name:      record.Name,
		SizeBytes: size,
		Source:    record.Source,
	})

	return record.ID, nil
}

// Get resolves a fileId to its record. The returned struct is a copy; Bytes
// is shared and read-only by contract.
func (s *Store) Get(fileID string) (*models.FileRecord, error) {
	s.mu.Lock()
	record, ok := s.records[fileID]
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("file %q: %w", fileID, common.ErrNotFound)
	}
	copied := *record
	return &copied, nil
}

// Remove deletes a record and emits file-removed. Idempotent: removing an
// unknown id reports false without an event.
func (s *Store) Remove(fileID string) bool {
	s.mu.Lock()
	record, ok := s.records[fileID]
	if ok {
		delete(s.records, fileID)
		s.held -= record.SizeBytes
		for i, id := range s.order {
			if id == fileID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.bus.Publish(events.TopicFileRemoved, events.FileRemoved{FileID: fileID})
	return true
}

// Clear drops every record, returns how many were dropped, and emits
// files-cleared.
func (s *Store) Clear() int {
	s.mu.Lock()
	count := len(s.records)
	s.records = make(map[string]*models.FileRecord)
	s.order = nil
	s.held = 0
	s.mu.Unlock()

	s.bus.Publish(events.TopicFilesCleared, events.FilesCleared{Count: count})
	return count
}

// List snapshots records in insertion order, optionally narrowed by filter.
func (s *Store) List(filter *Filter) []*models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.FileRecord, 0, len(s.order))
	for _, id := range s.order {
		record := s.records[id]
		if filter != nil {
			if filter.Source != "" && record.Source != filter.Source {
				continue
			}
			if filter.MimePrefix != "" && !strings.HasPrefix(record.MimeType, filter.MimePrefix) {
				continue
			}
		}
		copied := *record
		out = append(out, &copied)
	}
	return out
}

// FindByChecksum returns ids of records whose content digest matches sum.
// Used to flag duplicate intake.
func (s *Store) FindByChecksum(sum string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, id := range s.order {
		if s.records[id].Checksum == sum {
			ids = append(ids, id)
		}
	}
	return ids
}

// Checksum computes the digest Add would assign to bytes.
func Checksum(bytes []byte) string {
	sum := blake2b.Sum256(bytes)
	return hex.EncodeToString(sum[:])
}

// HeldBytes reports the total size currently retained.
func (s *Store) HeldBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held
}
