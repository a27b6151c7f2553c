package models

import "time"

// FileSource records how a file entered the store.
type FileSource string

const (
	SourceUserSelected  FileSource = "user-selected"
	SourceDropped       FileSource = "dropped"
	SourceCloudDownload FileSource = "cloud-download"
	SourceServiceOutput FileSource = "service-output"
)

// FileMeta is the caller-supplied metadata for FileStore.Add. Name and
// MimeType are required; the store fills in the rest.
type FileMeta struct {
	Name         string
	MimeType     string
	LastModified time.Time
	Source       FileSource
	// DerivedFrom references the record this file was produced from
	// (service output, cloud download). Empty for user intake.
	DerivedFrom string
}

// FileRecord is the authoritative description of a stored file. Records are
// immutable after creation; the store hands out shallow copies.
type FileRecord struct {
	ID           string
	Name         string
	SizeBytes    int64
	MimeType     string
	LastModified time.Time
	Bytes        []byte
	Source       FileSource
	DerivedFrom  string
	CreatedAt    time.Time
	// Checksum is the BLAKE2b-256 digest of Bytes, hex-encoded. Used to
	// flag duplicate intake.
	Checksum string
}
