package files

import (
	"errors"
	"net/http"
	"strconv"

	"casehub/internal/domain/access"
	"casehub/internal/pkg/response"
	"casehub/internal/storage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type prepareUploadRequest struct {
	CaseID      int64  `json:"caseId" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType"`
}

// PrepareUpload godoc
// @Summary Open a multipart upload session for a case file
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,502 {object} map[string]interface{}
// @Router /files/prepare-upload [post]
func (h *Handler) PrepareUpload(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	var req prepareUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "caseId and filename are required")
		return
	}

	result, err := h.service.Prepare(c.Request.Context(), userID, req.CaseID, req.Filename, req.ContentType)
	if err != nil {
		h.renderError(c, err, "No write access")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SignPart godoc
// @Summary Presign the upload URL for one part
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param key query string true "Object key"
// @Param uploadId query string true "Upload session id"
// @Param partNumber query int true "Part number"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404,502 {object} map[string]interface{}
// @Router /files/sign-part [get]
func (h *Handler) SignPart(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	key := c.Query("key")
	uploadID := c.Query("uploadId")
	partNumber, err := strconv.ParseInt(c.Query("partNumber"), 10, 64)
	if key == "" || uploadID == "" || err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "key, uploadId and partNumber are required")
		return
	}

	url, err := h.service.SignPart(c.Request.Context(), userID, uploadID, key, partNumber)
	if err != nil {
		h.renderError(c, err, "No write access")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

type completeUploadRequest struct {
	Key      string                  `json:"key" binding:"required"`
	UploadID string                  `json:"uploadId" binding:"required"`
	Parts    []storage.CompletedPart `json:"parts" binding:"required"`
	FileSize int64                   `json:"fileSize"`
	Metadata map[string]any          `json:"metadata"`
	// caseId and contentType are accepted for wire compatibility but the
	// session row is authoritative for both.
	CaseID      int64  `json:"caseId"`
	ContentType string `json:"contentType"`
}

// CompleteUpload godoc
// @Summary Assemble the uploaded parts and record the file
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404,409,502 {object} map[string]interface{}
// @Router /files/complete-upload [post]
func (h *Handler) CompleteUpload(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	var req completeUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "key, uploadId and parts are required")
		return
	}

	file, err := h.service.Complete(c.Request.Context(), userID, req.UploadID, req.Key, req.Parts, req.FileSize, req.Metadata)
	if err != nil {
		h.renderError(c, err, "No write access")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Upload completed", "file": file})
}

type abortUploadRequest struct {
	Key      string `json:"key" binding:"required"`
	UploadID string `json:"uploadId" binding:"required"`
}

// AbortUpload godoc
// @Summary Abort an open multipart upload session
// @Tags Files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404,502 {object} map[string]interface{}
// @Router /files/abort-upload [post]
func (h *Handler) AbortUpload(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	var req abortUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "key and uploadId are required")
		return
	}

	if err := h.service.Abort(c.Request.Context(), userID, req.UploadID, req.Key); err != nil {
		h.renderError(c, err, "No write access")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Upload aborted"})
}

// Download godoc
// @Summary Get a short-lived download URL for a file
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403,404,502 {object} map[string]interface{}
// @Router /files/download/{id} [get]
func (h *Handler) Download(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	fileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid file ID")
		return
	}

	url, err := h.service.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		h.renderError(c, err, "No read access")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"url": url})
}

// List godoc
// @Summary List files of a case
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param caseId query int true "Case ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,403 {object} map[string]interface{}
// @Router /files [get]
func (h *Handler) List(c *gin.Context) {
	userID := currentUserID(c)
	if userID == 0 {
		return
	}

	caseID, err := strconv.ParseInt(c.Query("caseId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "caseId is required")
		return
	}

	records, err := h.service.ListByCase(c.Request.Context(), userID, caseID)
	if err != nil {
		h.renderError(c, err, "No read access")
		return
	}

	response.Success(c, http.StatusOK, records)
}

func (h *Handler) renderError(c *gin.Context, err error, forbiddenMsg string) {
	switch {
	case errors.Is(err, access.ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", forbiddenMsg)
	case errors.Is(err, ErrFileNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
	case errors.Is(err, ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload session not found")
	case errors.Is(err, ErrSessionClosed):
		response.Error(c, http.StatusConflict, "CONFLICT", "Upload session is no longer open")
	case errors.Is(err, ErrKeyMismatch), errors.Is(err, ErrInvalidFilename),
		errors.Is(err, ErrInvalidPart), errors.Is(err, ErrNoParts):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUpstream):
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Object storage request failed")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Request failed")
	}
}

func currentUserID(c *gin.Context) int64 {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	}
	return id
}
