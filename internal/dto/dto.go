package dto

import "time"

// UploadDescriptor is what a client declares about the file it intends to
// upload directly to object storage.
type UploadDescriptor struct {
	FileName    string
	ContentType string
}

// UploadCredential is a time-limited authorization for a direct PUT to object
// storage, scoped to a single object key.
type UploadCredential struct {
	UploadURL string
	ExpiresAt time.Time
}

// StatusChange is one lifecycle transition the indexing worker asks this
// service to commit against the record store.
type StatusChange struct {
	Keywords    []string
	ErrorDetail *string
}
