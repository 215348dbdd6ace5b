package errors

import (
	"errors"
	"fmt"
)

// Acquisition stages that can fail with no further fallback.
type Stage string

const (
	StageAudioDownload Stage = "audio_download"
	StageTranscription Stage = "transcription"
)

// ResolutionError means a video reference could not be resolved to a
// concrete id from user input. No acquisition is attempted.
type ResolutionError struct {
	Input string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve video id from %q", e.Input)
}

// DurationExceededError means the known video duration is over the
// configured ceiling. Surfaced before any acquisition work starts.
type DurationExceededError struct {
	Duration int
	Limit    int
}

func (e *DurationExceededError) Error() string {
	return fmt.Sprintf("video duration %ds exceeds maximum of %ds", e.Duration, e.Limit)
}

// AcquisitionError is fatal for a request: captions were unavailable and
// the audio path failed at the given stage. There is no fallback beneath it.
type AcquisitionError struct {
	Stage Stage
	Err   error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed at %s: %v", e.Stage, e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// TimeoutError means the total pipeline duration exceeded its proportional
// budget. Kept distinct from a transcription failure so callers can tell
// "took too long" from "could not transcribe".
type TimeoutError struct {
	Budget string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("pipeline exceeded its time budget of %s", e.Budget)
}

// ErrCaptionsUnavailable signals that no captions exist for a video.
// It is not a failure: the assembler escalates to the audio path.
var ErrCaptionsUnavailable = errors.New("captions unavailable")

// ErrTranscriberBusy is returned when the transcription worker limit is
// reached and the request cannot be admitted.
var ErrTranscriberBusy = errors.New("transcriber at capacity")

// NewAudioDownloadError wraps a media retrieval failure.
func NewAudioDownloadError(err error) *AcquisitionError {
	return &AcquisitionError{Stage: StageAudioDownload, Err: err}
}

// NewTranscriptionError wraps a speech-to-text failure.
func NewTranscriptionError(err error) *AcquisitionError {
	return &AcquisitionError{Stage: StageTranscription, Err: err}
}

// IsResolution reports whether err is a resolution failure.
func IsResolution(err error) bool {
	var target *ResolutionError
	return errors.As(err, &target)
}

// IsDurationExceeded reports whether err is a duration ceiling rejection.
func IsDurationExceeded(err error) bool {
	var target *DurationExceededError
	return errors.As(err, &target)
}

// IsTimeout reports whether err is a pipeline budget timeout.
func IsTimeout(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// AsAcquisition extracts an AcquisitionError if err carries one.
func AsAcquisition(err error) (*AcquisitionError, bool) {
	var target *AcquisitionError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
