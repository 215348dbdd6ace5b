package dto

import (
	"strings"
	"time"

	"video-transcript/internal/api/errors"
	"video-transcript/internal/app/format"
	"video-transcript/internal/app/model"
)

// AcquireTranscriptRequest represents the request to acquire a transcript
// for a video.
type AcquireTranscriptRequest struct {
	URL         string `json:"url" binding:"required"`
	Diarization bool   `json:"diarization"`
}

// Validate performs domain-specific validation
func (r *AcquireTranscriptRequest) Validate() error {
	validationErrors := make(map[string]string)

	url := strings.TrimSpace(r.URL)
	if url == "" {
		validationErrors["url"] = "is required"
	} else if len(url) > 2048 {
		validationErrors["url"] = "is too long"
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Invalid transcript request", validationErrors)
	}
	return nil
}

// TranscriptResponse represents an acquired transcript in API responses
type TranscriptResponse struct {
	ID         int    `json:"id,omitempty"`
	VideoID    string `json:"video_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Transcript string `json:"transcript"`
	Source     string `json:"source"`
	Filename   string `json:"filename"`
	Cached     bool   `json:"cached,omitempty"`
}

// FormatTranscriptRequest carries raw canonical transcript text to be
// parsed into renderable lines.
type FormatTranscriptRequest struct {
	Transcript string `json:"transcript" binding:"required"`
}

// FormatTranscriptResponse returns the parsed line sequence.
type FormatTranscriptResponse struct {
	Lines []format.Line `json:"lines"`
}

// ListTranscriptsQuery represents pagination for stored transcripts
type ListTranscriptsQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// TranscriptRecordResponse represents a stored transcript
type TranscriptRecordResponse struct {
	ID         int       `json:"id"`
	VideoID    string    `json:"video_id"`
	Title      string    `json:"title,omitempty"`
	Source     string    `json:"source"`
	Diarized   bool      `json:"diarized"`
	Duration   int       `json:"duration"`
	Transcript string    `json:"transcript"`
	Filename   string    `json:"filename"`
	CreatedAt  time.Time `json:"created_at"`
}

// PaginatedTranscriptsResponse wraps a page of stored transcripts
type PaginatedTranscriptsResponse struct {
	Transcripts []TranscriptRecordResponse `json:"transcripts"`
	Page        int                        `json:"page"`
	Limit       int                        `json:"limit"`
}

// FromRecord converts a storage record to its API representation
func FromRecord(rec *model.TranscriptRecord) TranscriptRecordResponse {
	return TranscriptRecordResponse{
		ID:         rec.ID,
		VideoID:    rec.VideoID,
		Title:      rec.Title,
		Source:     rec.Source,
		Diarized:   rec.Diarized,
		Duration:   rec.Duration,
		Transcript: rec.Transcript,
		Filename:   rec.Filename,
		CreatedAt:  rec.CreatedAt,
	}
}
