package constants

import "strings"

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageMinIO = "minio"
	StorageGCS   = "gcs"
)

// Mode is the invocation mode of a pipeline run.
type Mode string

const (
	ModeSync   Mode = "SYNC"   // inline bytes, result returned to caller
	ModeQueued Mode = "QUEUED" // stored document, persisted and announced
)

// NormalizeBackend lowercases and trims a backend name.
func NormalizeBackend(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
