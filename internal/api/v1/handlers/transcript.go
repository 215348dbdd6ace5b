package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"video-transcript/internal/api/errors"
	"video-transcript/internal/api/middleware"
	"video-transcript/internal/api/v1/dto"
	"video-transcript/internal/api/v1/services"
	"video-transcript/internal/app/format"
	"video-transcript/internal/app/util/files"
)

// maxUploadBytes caps direct audio uploads at 100 MB.
const maxUploadBytes = 100 << 20

// TranscriptHandler handles transcript acquisition and retrieval endpoints
type TranscriptHandler struct {
	service services.TranscriptService
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(service services.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{
		service: service,
	}
}

// Acquire handles POST /api/v1/transcript
// Runs the acquisition pipeline for a video URL
func (h *TranscriptHandler) Acquire(c *gin.Context) {
	var req dto.AcquireTranscriptRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Acquire(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Format handles POST /api/v1/transcript/format
// Parses canonical transcript text into renderable lines
func (h *TranscriptHandler) Format(c *gin.Context) {
	var req dto.FormatTranscriptRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FormatTranscriptResponse{
		Lines: format.Parse(req.Transcript),
	})
}

// Upload handles POST /api/v1/transcript/upload
// Transcribes an uploaded audio file directly, bypassing video acquisition
func (h *TranscriptHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("missing audio file in form field 'audio'"))
		return
	}
	if fileHeader.Size > maxUploadBytes {
		middleware.HandleError(c, errors.NewBadRequestError("audio file too large"))
		return
	}

	tmpDir, err := os.MkdirTemp("", "vts_upload_*")
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("cannot allocate upload storage"))
		return
	}
	defer os.RemoveAll(tmpDir)

	name := files.SanitizeFilename(fileHeader.Filename)
	audioPath := filepath.Join(tmpDir, name)
	if err := c.SaveUploadedFile(fileHeader, audioPath); err != nil {
		middleware.HandleError(c, errors.NewInternalError("cannot store uploaded file"))
		return
	}

	response, err := h.service.TranscribeUpload(c.Request.Context(), audioPath, name)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/transcripts/:id
func (h *TranscriptHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid transcript ID"))
		return
	}

	response, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/transcripts
func (h *TranscriptHandler) List(c *gin.Context) {
	var query dto.ListTranscriptsQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.List(c.Request.Context(), &query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
