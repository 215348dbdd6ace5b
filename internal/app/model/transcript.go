package model

import "time"

// TranscriptRecord is a stored pipeline result. Records double as a
// cache: a later request for the same video and options is served from
// here instead of re-running acquisition.
type TranscriptRecord struct {
	ID         int
	VideoID    string
	Title      string
	Source     string
	Diarized   bool
	Duration   int
	Transcript string
	Filename   string
	CreatedAt  time.Time
}
