package domain

import "time"

// Document is a file uploaded to exactly one project.
type Document struct {
	ID               string    `json:"id"`
	ProjectID        string    `json:"project_id"`
	UploaderID       string    `json:"uploader_id"`
	FileName         string    `json:"file_name"`
	OriginalFileName string    `json:"original_file_name"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	Description      string    `json:"description,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// AllowedContentTypes is the upload allow-list.
var AllowedContentTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.ms-excel":                                                  {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint":                                             {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/plain": {},
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/webp": {},
}
