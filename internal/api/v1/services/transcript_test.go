package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "video-transcript/internal/api/errors"
	"video-transcript/internal/api/v1/dto"
	"video-transcript/internal/app/model"
	"video-transcript/internal/app/repository"
	"video-transcript/internal/app/transcript"
)

type fakeDAO struct {
	records map[int]*model.TranscriptRecord
	cached  *model.TranscriptRecord
	saved   []*model.TranscriptRecord
}

func (d *fakeDAO) Close() error { return nil }

func (d *fakeDAO) Save(rec *model.TranscriptRecord) (int, error) {
	rec.ID = len(d.saved) + 1
	d.saved = append(d.saved, rec)
	return rec.ID, nil
}

func (d *fakeDAO) FindCached(videoID string, diarized bool) (*model.TranscriptRecord, error) {
	if d.cached != nil && d.cached.VideoID == videoID && d.cached.Diarized == diarized {
		return d.cached, nil
	}
	return nil, repository.ErrNotFound
}

func (d *fakeDAO) GetByID(id int) (*model.TranscriptRecord, error) {
	if rec, ok := d.records[id]; ok {
		return rec, nil
	}
	return nil, repository.ErrNotFound
}

func (d *fakeDAO) List(limit, offset int) ([]model.TranscriptRecord, error) {
	out := make([]model.TranscriptRecord, 0, len(d.saved))
	for _, rec := range d.saved {
		out = append(out, *rec)
	}
	return out, nil
}

type fixedTranscriber struct {
	segments []transcript.Segment
	err      error
}

func (f *fixedTranscriber) Transcribe(context.Context, string) ([]transcript.Segment, error) {
	return f.segments, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAcquireServesCachedResult(t *testing.T) {
	dao := &fakeDAO{cached: &model.TranscriptRecord{
		ID:         9,
		VideoID:    "abc123",
		Source:     "captions",
		Transcript: "[00:00] cached",
		Filename:   "transcript_abc123_captions.txt",
	}}
	service := NewTranscriptService(nil, dao, nil, discardLogger())

	resp, err := service.Acquire(context.Background(), &dto.AcquireTranscriptRequest{
		URL: "https://youtu.be/abc123",
	})
	require.NoError(t, err)

	assert.True(t, resp.Cached)
	assert.Equal(t, 9, resp.ID)
	assert.Equal(t, "[00:00] cached", resp.Transcript)
	assert.Empty(t, dao.saved, "cache hits must not re-run acquisition or re-save")
}

func TestAcquireCacheRespectsDiarizationFlag(t *testing.T) {
	dao := &fakeDAO{cached: &model.TranscriptRecord{
		VideoID: "abc123", Diarized: false, Transcript: "[00:00] plain",
	}}
	// A diarized request must miss the unlabeled cache entry. With no
	// assembler behind the service that miss would panic, so only the
	// lookup itself is exercised here.
	service := &transcriptService{dao: dao, logger: discardLogger()}

	hit := service.lookupCache(&dto.AcquireTranscriptRequest{
		URL:         "https://youtu.be/abc123",
		Diarization: true,
	})
	assert.Nil(t, hit)
}

func TestTranscribeUpload(t *testing.T) {
	transcriber := &fixedTranscriber{segments: []transcript.Segment{
		{Start: 0, End: 2, Text: "uploaded words"},
	}}
	service := NewTranscriptService(nil, nil, transcriber, discardLogger())

	resp, err := service.TranscribeUpload(context.Background(), "/tmp/a.mp3", "a.mp3")
	require.NoError(t, err)

	assert.Equal(t, "[00:00] uploaded words", resp.Transcript)
	assert.Equal(t, "audio", resp.Source)
	assert.Equal(t, "transcript_a.mp3.txt", resp.Filename)
}

func TestGetWithoutStorage(t *testing.T) {
	service := NewTranscriptService(nil, nil, nil, discardLogger())

	_, err := service.Get(context.Background(), 1)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindServiceUnavailable, apiErr.Kind)
}

func TestGetMapsNotFound(t *testing.T) {
	service := NewTranscriptService(nil, &fakeDAO{}, nil, discardLogger())

	_, err := service.Get(context.Background(), 404)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, apierrors.KindNotFound, apiErr.Kind)
}

func TestListPagesResults(t *testing.T) {
	dao := &fakeDAO{}
	dao.Save(&model.TranscriptRecord{VideoID: "vid1", Source: "captions"})
	service := NewTranscriptService(nil, dao, nil, discardLogger())

	resp, err := service.List(context.Background(), &dto.ListTranscriptsQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	require.Len(t, resp.Transcripts, 1)
	assert.Equal(t, "vid1", resp.Transcripts[0].VideoID)
}
