package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "video-transcript/internal/api/errors"
	"video-transcript/internal/api/v1/dto"
	apperrors "video-transcript/internal/app/errors"
)

type stubService struct {
	acquireResp *dto.TranscriptResponse
	acquireErr  error
	uploadResp  *dto.TranscriptResponse
	getResp     *dto.TranscriptRecordResponse
	getErr      error
	listResp    *dto.PaginatedTranscriptsResponse
	lastAcquire *dto.AcquireTranscriptRequest
}

func (s *stubService) Acquire(_ context.Context, req *dto.AcquireTranscriptRequest) (*dto.TranscriptResponse, error) {
	s.lastAcquire = req
	return s.acquireResp, s.acquireErr
}

func (s *stubService) TranscribeUpload(context.Context, string, string) (*dto.TranscriptResponse, error) {
	return s.uploadResp, nil
}

func (s *stubService) Get(context.Context, int) (*dto.TranscriptRecordResponse, error) {
	return s.getResp, s.getErr
}

func (s *stubService) List(context.Context, *dto.ListTranscriptsQuery) (*dto.PaginatedTranscriptsResponse, error) {
	return s.listResp, nil
}

func setupRouter(service *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewTranscriptHandler(service)
	router.POST("/api/v1/transcript", handler.Acquire)
	router.POST("/api/v1/transcript/format", handler.Format)
	router.POST("/api/v1/transcript/upload", handler.Upload)
	router.GET("/api/v1/transcripts", handler.List)
	router.GET("/api/v1/transcripts/:id", handler.Get)
	return router
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAcquireSuccess(t *testing.T) {
	service := &stubService{acquireResp: &dto.TranscriptResponse{
		Transcript: "[00:00] hello",
		Source:     "captions",
		Filename:   "transcript_abc123_captions.txt",
	}}
	router := setupRouter(service)

	w := postJSON(router, "/api/v1/transcript", `{"url":"https://youtu.be/abc123","diarization":true}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TranscriptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "captions", resp.Source)
	require.NotNil(t, service.lastAcquire)
	assert.True(t, service.lastAcquire.Diarization)
}

func TestAcquireMissingURL(t *testing.T) {
	router := setupRouter(&stubService{})

	w := postJSON(router, "/api/v1/transcript", `{}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, apierrors.KindValidation, apiErr.Kind)
}

func TestAcquirePipelineErrorMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   apierrors.ErrorKind
	}{
		{
			name:       "duration exceeded",
			err:        apierrors.FromPipelineError(&apperrors.DurationExceededError{Duration: 7200, Limit: 5400}),
			wantStatus: http.StatusBadRequest,
			wantKind:   apierrors.KindDurationExceeded,
		},
		{
			name:       "acquisition failed",
			err:        apierrors.FromPipelineError(apperrors.NewTranscriptionError(assertableErr("boom"))),
			wantStatus: http.StatusBadGateway,
			wantKind:   apierrors.KindAcquisition,
		},
		{
			name:       "timeout",
			err:        apierrors.FromPipelineError(&apperrors.TimeoutError{Budget: "5m0s"}),
			wantStatus: http.StatusGatewayTimeout,
			wantKind:   apierrors.KindTimeout,
		},
		{
			name:       "busy",
			err:        apierrors.FromPipelineError(apperrors.ErrTranscriberBusy),
			wantStatus: http.StatusServiceUnavailable,
			wantKind:   apierrors.KindServiceUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(&stubService{acquireErr: tc.err})

			w := postJSON(router, "/api/v1/transcript", `{"url":"https://youtu.be/abc123"}`)

			assert.Equal(t, tc.wantStatus, w.Code)
			var apiErr apierrors.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, tc.wantKind, apiErr.Kind)
		})
	}
}

func TestFormatEndpoint(t *testing.T) {
	router := setupRouter(&stubService{})

	w := postJSON(router, "/api/v1/transcript/format",
		`{"transcript":"[1:05] Speaker 1: Hello there\n[1:10] Speaker 2: Hi back"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.FormatTranscriptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 2)
	assert.Equal(t, "Speaker 1", resp.Lines[0].SpeakerName)
	assert.Equal(t, 1, resp.Lines[0].ColorID)
	assert.Equal(t, 2, resp.Lines[1].ColorID)
}

func TestUploadEndpoint(t *testing.T) {
	service := &stubService{uploadResp: &dto.TranscriptResponse{
		Transcript: "[00:00] uploaded",
		Source:     "audio",
		Filename:   "transcript_sample.mp3.txt",
	}}
	router := setupRouter(service)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "sample.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcript/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.TranscriptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "audio", resp.Source)
}

func TestUploadMissingFile(t *testing.T) {
	router := setupRouter(&stubService{})

	w := postJSON(router, "/api/v1/transcript/upload", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvalidID(t *testing.T) {
	router := setupRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts/notanumber", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetNotFound(t *testing.T) {
	router := setupRouter(&stubService{getErr: apierrors.NewNotFoundError("transcript")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEndpoint(t *testing.T) {
	router := setupRouter(&stubService{listResp: &dto.PaginatedTranscriptsResponse{
		Transcripts: []dto.TranscriptRecordResponse{{ID: 1, VideoID: "abc123", Source: "captions"}},
		Page:        1,
		Limit:       20,
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcripts?page=1&limit=20", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.PaginatedTranscriptsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transcripts, 1)
	assert.Equal(t, "abc123", resp.Transcripts[0].VideoID)
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
