package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/internal/constants"
	"github.com/taskhive/taskhive/internal/dto"
	apierrors "github.com/taskhive/taskhive/internal/errors"
	"github.com/taskhive/taskhive/internal/middleware"
	"github.com/taskhive/taskhive/internal/services"
)

// AttachmentHandler coordinates attachment-related HTTP handlers
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// ListAttachments returns a task's attachment metadata
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(taskID, userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	out := make([]dto.AttachmentDTO, 0, len(attachments))
	for _, attachment := range attachments {
		out = append(out, dto.ToAttachmentDTO(attachment))
	}

	c.JSON(http.StatusOK, gin.H{
		"attachments": out,
		"total":       len(out),
	})
}

// UploadAttachment stores an uploaded file against a task
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseIDParam(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}
	if fileHeader.Size > constants.MaxAttachmentSize {
		apierrors.BadRequest(c, "File exceeds the maximum allowed size")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), services.UploadInput{
		TaskID:   taskID,
		UserID:   userID,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Body:     file,
	})
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// DownloadAttachment returns a short-lived URL for the file bytes
func (h *AttachmentHandler) DownloadAttachment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	attachmentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	url, err := h.attachmentService.DownloadURL(c.Request.Context(), attachmentID, userID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"download_url": url,
	})
}

// DeleteAttachment removes an attachment and its stored bytes
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	attachmentID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), attachmentID, userID); err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attachment deleted successfully",
	})
}

func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttachmentNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
