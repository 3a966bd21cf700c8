package dto

import (
	"time"

	"github.com/taskhive/taskhive/internal/models"
)

// CommentDTO represents a task comment in API responses
type CommentDTO struct {
	ID         uint64    `json:"id"`
	Content    string    `json:"content"`
	TaskID     uint64    `json:"task_id"`
	UserID     uint64    `json:"user_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AttachmentDTO represents attachment metadata in API responses
type AttachmentDTO struct {
	ID               uint64    `json:"id"`
	FileName         string    `json:"filename"`
	OriginalFileName string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	TaskID           uint64    `json:"task_id"`
	UploadedBy       uint64    `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToCommentDTO converts a TaskComment model to CommentDTO
func ToCommentDTO(comment models.TaskComment) CommentDTO {
	authorName := "Unknown"
	if comment.Author.ID != 0 {
		authorName = comment.Author.FullName()
	}

	return CommentDTO{
		ID:         comment.ID,
		Content:    comment.Content,
		TaskID:     comment.TaskID,
		UserID:     comment.UserID,
		AuthorName: authorName,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

// ToAttachmentDTO converts a TaskAttachment model to AttachmentDTO
func ToAttachmentDTO(attachment models.TaskAttachment) AttachmentDTO {
	return AttachmentDTO{
		ID:               attachment.ID,
		FileName:         attachment.FileName,
		OriginalFileName: attachment.OriginalFileName,
		FileSize:         attachment.FileSize,
		MimeType:         attachment.MimeType,
		TaskID:           attachment.TaskID,
		UploadedBy:       attachment.UploadedBy,
		CreatedAt:        attachment.CreatedAt,
	}
}
