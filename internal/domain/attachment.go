package domain

import "time"

// AttachmentReference stores metadata for persisted ticket attachments.
// Blob contents live with the external storage collaborator; the workflow
// only ever references ids and metadata.
type AttachmentReference struct {
	ID         string
	TicketID   string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	UploadedBy string
	CreatedAt  time.Time
}
