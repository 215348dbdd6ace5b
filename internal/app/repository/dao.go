package repository

import (
	"errors"

	"video-transcript/internal/app/model"
)

// ErrNotFound is returned by lookups that match no record.
var ErrNotFound = errors.New("transcript record not found")

// TranscriptDAO is the storage contract for finished transcripts. Both the
// sqlite and postgres implementations satisfy it.
type TranscriptDAO interface {
	Close() error

	// Save persists a finished transcript and returns its id.
	Save(rec *model.TranscriptRecord) (int, error)

	// FindCached returns the most recent record for a video with the same
	// diarization setting, or ErrNotFound.
	FindCached(videoID string, diarized bool) (*model.TranscriptRecord, error)

	// GetByID fetches one record, or ErrNotFound.
	GetByID(id int) (*model.TranscriptRecord, error)

	// List returns records newest first. Transcript bodies are included.
	List(limit, offset int) ([]model.TranscriptRecord, error)
}
