package diarize

import (
	"context"
	"log/slog"

	"video-transcript/internal/app/audio"
	"video-transcript/internal/app/metrics"
	"video-transcript/internal/app/transcript"
)

// Merger is the best-effort speaker annotation pass. It never fails a
// request: any error from the identification service degrades to the
// original unlabeled segment stream.
type Merger struct {
	identifier Identifier
	downloader audio.Downloader
	logger     *slog.Logger
}

// NewMerger creates a merger. The downloader covers the caption path, where
// no local audio exists yet by the time diarization runs.
func NewMerger(identifier Identifier, downloader audio.Downloader, logger *slog.Logger) *Merger {
	return &Merger{
		identifier: identifier,
		downloader: downloader,
		logger:     logger,
	}
}

// Merge annotates segments with speaker labels. audioPath may be empty
// (captions produced the stream); the merger then downloads the audio
// itself. All failures degrade gracefully.
func (m *Merger) Merge(ctx context.Context, videoURL, audioPath string, segments []transcript.Segment) []transcript.Segment {
	if m.identifier == nil {
		return segments
	}

	if audioPath == "" {
		path, cleanup, err := m.downloader.Download(ctx, videoURL)
		if err != nil {
			m.degrade("audio download for diarization failed", err)
			return segments
		}
		defer cleanup()
		audioPath = path
	}

	spans, err := m.identifier.Identify(ctx, audioPath, streamEnd(segments))
	if err != nil {
		m.degrade("speaker identification failed", err)
		return segments
	}

	m.logger.Info("diarization merged", "spans", len(spans), "segments", len(segments))
	return MergeSpans(segments, spans)
}

func (m *Merger) degrade(msg string, err error) {
	// Diarization is a best-effort enhancement; the transcript ships unlabeled.
	m.logger.Warn(msg, "error", err, "degraded", true)
	metrics.DiarizationDegradations.Inc()
}

func streamEnd(segments []transcript.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	return segments[len(segments)-1].End
}
