package captions

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "video-transcript/internal/app/errors"
	"video-transcript/internal/app/transcript"
)

const defaultBaseURL = "https://video.google.com/timedtext"

// Source fetches pre-existing captions for a video id. It is the cheapest
// acquisition path: read-only, no media download, no model invocation.
type Source interface {
	Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error)
}

// TimedTextSource reads captions from the public timed-text endpoint.
// Every failure mode, network errors included, collapses into
// ErrCaptionsUnavailable: captions legitimately may not exist, and the
// assembler treats all of it as "escalate to audio".
type TimedTextSource struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewTimedTextSource creates a caption source against the public endpoint.
func NewTimedTextSource(logger *slog.Logger) *TimedTextSource {
	return &TimedTextSource{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// NewTimedTextSourceWithBase is used by tests to point at a local server.
func NewTimedTextSourceWithBase(baseURL string, logger *slog.Logger) *TimedTextSource {
	s := NewTimedTextSource(logger)
	s.baseURL = baseURL
	return s
}

type trackList struct {
	Tracks []track `xml:"track"`
}

type track struct {
	LangCode string `xml:"lang_code,attr"`
	Name     string `xml:"name,attr"`
	Kind     string `xml:"kind,attr"`
}

type timedText struct {
	Texts []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

// Fetch returns the ordered caption segments for a video, or
// ErrCaptionsUnavailable when no usable track exists.
func (s *TimedTextSource) Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	tr, err := s.pickTrack(ctx, videoID)
	if err != nil {
		s.logger.Warn("captions not available", "video_id", videoID, "reason", err)
		return nil, apperrors.ErrCaptionsUnavailable
	}

	body, err := s.get(ctx, s.trackURL(videoID, tr))
	if err != nil {
		s.logger.Warn("caption track fetch failed", "video_id", videoID, "lang", tr.LangCode, "reason", err)
		return nil, apperrors.ErrCaptionsUnavailable
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, apperrors.ErrCaptionsUnavailable
	}

	segments := make([]transcript.Segment, 0, len(tt.Texts))
	for _, line := range tt.Texts {
		segments = append(segments, transcript.Segment{
			Start: line.Start,
			End:   line.Start + line.Dur,
			Text:  line.Body,
		})
	}

	segments = transcript.Normalize(segments)
	if len(segments) == 0 {
		return nil, apperrors.ErrCaptionsUnavailable
	}

	s.logger.Info("captions fetched", "video_id", videoID, "lang", tr.LangCode, "segments", len(segments))
	return segments, nil
}

// pickTrack prefers English, then a manually created track, then whatever
// comes first. Mirrors the track selection order of the caption API.
func (s *TimedTextSource) pickTrack(ctx context.Context, videoID string) (track, error) {
	listURL := fmt.Sprintf("%s?type=list&v=%s", s.baseURL, url.QueryEscape(videoID))
	body, err := s.get(ctx, listURL)
	if err != nil {
		return track{}, err
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return track{}, err
	}
	if len(list.Tracks) == 0 {
		return track{}, fmt.Errorf("no caption tracks listed")
	}

	for _, tr := range list.Tracks {
		if tr.LangCode == "en" {
			return tr, nil
		}
	}
	for _, tr := range list.Tracks {
		if tr.Kind != "asr" {
			return tr, nil
		}
	}
	return list.Tracks[0], nil
}

func (s *TimedTextSource) trackURL(videoID string, tr track) string {
	u := fmt.Sprintf("%s?v=%s&lang=%s", s.baseURL, url.QueryEscape(videoID), url.QueryEscape(tr.LangCode))
	if tr.Name != "" {
		u += "&name=" + url.QueryEscape(tr.Name)
	}
	if tr.Kind != "" {
		u += "&kind=" + url.QueryEscape(tr.Kind)
	}
	return u
}

func (s *TimedTextSource) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return body, nil
}
