package files

import "time"

// File is the metadata record of one completed upload. Rows are created by
// the completion step only and never mutated afterward.
type File struct {
	ID         int64          `gorm:"column:id;primaryKey" json:"id"`
	Filename   string         `gorm:"column:filename" json:"filename"`
	FileURL    string         `gorm:"column:file_url" json:"file_url"`
	FileType   string         `gorm:"column:file_type" json:"file_type"`
	FileSize   int64          `gorm:"column:file_size" json:"file_size"`
	Metadata   map[string]any `gorm:"column:metadata;serializer:json" json:"metadata"`
	CaseID     int64          `gorm:"column:case_id" json:"case_id"`
	UploadedBy int64          `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time      `gorm:"column:uploaded_at" json:"uploaded_at"`
}

func (File) TableName() string { return "files" }

// Upload session states.
const (
	SessionInitiated = "initiated"
	SessionCompleted = "completed"
	SessionAborted   = "aborted"
)

// UploadSession tracks one multipart upload attempt between the prepare and
// complete calls. It exists so sign-part and complete can be authorization
// checked against the case, and so abandoned sessions can be reconciled.
type UploadSession struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	UploadID    string    `gorm:"column:upload_id;uniqueIndex" json:"upload_id"`
	ObjectKey   string    `gorm:"column:object_key" json:"object_key"`
	Filename    string    `gorm:"column:filename" json:"filename"`
	ContentType string    `gorm:"column:content_type" json:"content_type"`
	CaseID      int64     `gorm:"column:case_id" json:"case_id"`
	CreatedBy   int64     `gorm:"column:created_by" json:"created_by"`
	Status      string    `gorm:"column:status" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	ExpiresAt   time.Time `gorm:"column:expires_at" json:"expires_at"`
}

func (UploadSession) TableName() string { return "upload_sessions" }
