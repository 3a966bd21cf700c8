package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/storage"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

const downloadURLTTL = 15 * time.Minute

// AttachmentService handles attachment metadata and hands the bytes to the
// file store. Metadata is authoritative: byte removal is best-effort and
// never blocks a metadata delete.
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	taskRepo       repository.TaskRepository
	files          storage.FileStorage
	logger         *zap.Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(attachmentRepo repository.AttachmentRepository, taskRepo repository.TaskRepository, files storage.FileStorage, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		files:          files,
		logger:         logger,
	}
}

// UploadInput describes an incoming attachment
type UploadInput struct {
	TaskID   uint64
	UserID   uint64
	FileName string
	MimeType string
	Size     int64
	Body     io.Reader
}

// Upload stores the bytes and persists the metadata row
func (s *AttachmentService) Upload(ctx context.Context, input UploadInput) (*models.TaskAttachment, error) {
	task, err := s.taskRepo.FindByID(input.TaskID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	key, err := s.files.Save(ctx, input.FileName, input.MimeType, input.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	attachment := &models.TaskAttachment{
		FileName:         key,
		OriginalFileName: input.FileName,
		FileSize:         input.Size,
		MimeType:         input.MimeType,
		StoragePath:      key,
		TaskID:           task.ID,
		UploadedBy:       input.UserID,
	}

	if err := s.attachmentRepo.Create(attachment); err != nil {
		// The metadata row is the source of truth; without it the stored
		// bytes are garbage, so try to reclaim them.
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to clean up stored file after metadata failure",
				zap.String("storage_path", key),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	return attachment, nil
}

// List returns a task's attachments
func (s *AttachmentService) List(taskID, userID uint64) ([]models.TaskAttachment, error) {
	if _, err := s.taskRepo.FindByID(taskID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	attachments, err := s.attachmentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	return attachments, nil
}

// Delete removes the metadata row, then releases the bytes best-effort
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, userID uint64) error {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return err
	}

	if err := s.attachmentRepo.Delete(attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	if err := s.files.Delete(ctx, attachment.StoragePath); err != nil {
		s.logger.Warn("failed to remove attachment bytes",
			zap.String("storage_path", attachment.StoragePath),
			zap.Uint64("attachment_id", attachmentID),
			zap.Error(err))
	}

	return nil
}

// DownloadURL returns a short-lived URL for fetching the attachment
func (s *AttachmentService) DownloadURL(ctx context.Context, attachmentID, userID uint64) (string, error) {
	attachment, err := s.findOwned(attachmentID, userID)
	if err != nil {
		return "", err
	}

	url, err := s.files.DownloadURL(ctx, attachment.StoragePath, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate download URL: %w", err)
	}

	return url, nil
}

func (s *AttachmentService) findOwned(attachmentID, userID uint64) (*models.TaskAttachment, error) {
	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}

	if _, err := s.taskRepo.FindByID(attachment.TaskID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to verify task ownership: %w", err)
	}

	return attachment, nil
}
