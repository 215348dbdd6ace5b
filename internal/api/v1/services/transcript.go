package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/lo"

	apierrors "video-transcript/internal/api/errors"
	"video-transcript/internal/api/v1/dto"
	"video-transcript/internal/app/assembler"
	"video-transcript/internal/app/model"
	"video-transcript/internal/app/repository"
	"video-transcript/internal/app/stt"
	"video-transcript/internal/app/transcript"
	"video-transcript/internal/app/video"
)

// TranscriptService is the application boundary behind the transcript
// endpoints.
type TranscriptService interface {
	// Acquire runs the full pipeline (or serves a cached result) for a
	// video URL.
	Acquire(ctx context.Context, req *dto.AcquireTranscriptRequest) (*dto.TranscriptResponse, error)

	// TranscribeUpload transcribes an already-local audio file.
	TranscribeUpload(ctx context.Context, audioPath, originalName string) (*dto.TranscriptResponse, error)

	// Get fetches one stored transcript.
	Get(ctx context.Context, id int) (*dto.TranscriptRecordResponse, error)

	// List pages through stored transcripts, newest first.
	List(ctx context.Context, query *dto.ListTranscriptsQuery) (*dto.PaginatedTranscriptsResponse, error)
}

type transcriptService struct {
	assembler   *assembler.Assembler
	dao         repository.TranscriptDAO
	transcriber stt.Transcriber
	logger      *slog.Logger
}

// NewTranscriptService wires the pipeline, storage and direct transcriber
// together. dao may be nil; caching and listing are then disabled.
func NewTranscriptService(
	asm *assembler.Assembler,
	dao repository.TranscriptDAO,
	transcriber stt.Transcriber,
	logger *slog.Logger,
) TranscriptService {
	return &transcriptService{
		assembler:   asm,
		dao:         dao,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (s *transcriptService) Acquire(ctx context.Context, req *dto.AcquireTranscriptRequest) (*dto.TranscriptResponse, error) {
	if cached := s.lookupCache(req); cached != nil {
		return cached, nil
	}

	result, err := s.assembler.Assemble(ctx, assembler.Request{URL: req.URL, Diarize: req.Diarization})
	if err != nil {
		return nil, apierrors.FromPipelineError(err)
	}

	resp := &dto.TranscriptResponse{
		Transcript: result.Transcript,
		Source:     string(result.Source),
		Filename:   result.Filename,
		Title:      result.Title,
	}
	resp.VideoID = video.ExtractVideoID(req.URL)
	s.store(resp, req.Diarization, result.Duration)
	return resp, nil
}

// lookupCache returns a previous result for the same video and options,
// or nil. Cache misses and storage errors both fall through to a fresh
// acquisition.
func (s *transcriptService) lookupCache(req *dto.AcquireTranscriptRequest) *dto.TranscriptResponse {
	if s.dao == nil {
		return nil
	}
	videoID := video.ExtractVideoID(req.URL)
	if videoID == "" {
		return nil
	}

	rec, err := s.dao.FindCached(videoID, req.Diarization)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("transcript cache lookup failed", "video_id", videoID, "error", err)
		}
		return nil
	}

	s.logger.Info("serving cached transcript", "video_id", videoID, "record_id", rec.ID)
	return &dto.TranscriptResponse{
		ID:         rec.ID,
		VideoID:    rec.VideoID,
		Title:      rec.Title,
		Transcript: rec.Transcript,
		Source:     rec.Source,
		Filename:   rec.Filename,
		Cached:     true,
	}
}

// store persists a fresh result. Failures only cost the cache, never the
// response.
func (s *transcriptService) store(resp *dto.TranscriptResponse, diarized bool, duration int) {
	if s.dao == nil || resp.VideoID == "" {
		return
	}
	rec := &model.TranscriptRecord{
		VideoID:    resp.VideoID,
		Title:      resp.Title,
		Source:     resp.Source,
		Diarized:   diarized,
		Duration:   duration,
		Transcript: resp.Transcript,
		Filename:   resp.Filename,
	}
	id, err := s.dao.Save(rec)
	if err != nil {
		s.logger.Warn("failed to persist transcript", "video_id", resp.VideoID, "error", err)
		return
	}
	resp.ID = id
}

func (s *transcriptService) TranscribeUpload(ctx context.Context, audioPath, originalName string) (*dto.TranscriptResponse, error) {
	segments, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, apierrors.FromPipelineError(err)
	}

	return &dto.TranscriptResponse{
		Transcript: transcript.Serialize(transcript.Normalize(segments)),
		Source:     string(transcript.SourceAudio),
		Filename:   "transcript_" + originalName + ".txt",
	}, nil
}

func (s *transcriptService) Get(ctx context.Context, id int) (*dto.TranscriptRecordResponse, error) {
	if s.dao == nil {
		return nil, apierrors.NewServiceUnavailableError("transcript storage is not configured")
	}
	rec, err := s.dao.GetByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierrors.NewNotFoundError("transcript")
		}
		return nil, apierrors.NewInternalError(err.Error())
	}
	resp := dto.FromRecord(rec)
	return &resp, nil
}

func (s *transcriptService) List(ctx context.Context, query *dto.ListTranscriptsQuery) (*dto.PaginatedTranscriptsResponse, error) {
	if s.dao == nil {
		return nil, apierrors.NewServiceUnavailableError("transcript storage is not configured")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	records, err := s.dao.List(limit, (page-1)*limit)
	if err != nil {
		return nil, apierrors.NewInternalError(err.Error())
	}

	return &dto.PaginatedTranscriptsResponse{
		Transcripts: lo.Map(records, func(rec model.TranscriptRecord, _ int) dto.TranscriptRecordResponse {
			return dto.FromRecord(&rec)
		}),
		Page:  page,
		Limit: limit,
	}, nil
}
