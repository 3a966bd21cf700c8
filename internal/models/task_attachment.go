package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskAttachment holds file metadata only; the bytes live in the object
// store under StoragePath. The metadata row is exclusively owned by its task.
type TaskAttachment struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	FileName         string         `gorm:"type:varchar(255);not null" json:"filename"`
	OriginalFileName string         `gorm:"type:varchar(255);not null" json:"original_filename"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `gorm:"type:varchar(100)" json:"mime_type"`
	StoragePath      string         `gorm:"type:varchar(500);not null" json:"-"`
	TaskID           uint64         `gorm:"not null;index" json:"task_id"`
	UploadedBy       uint64         `gorm:"not null" json:"uploaded_by"`
	CreatedAt        time.Time      `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task     Task `gorm:"foreignKey:TaskID" json:"-"`
	Uploader User `gorm:"foreignKey:UploadedBy" json:"-"`
}
