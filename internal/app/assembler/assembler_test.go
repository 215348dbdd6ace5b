package assembler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-transcript/internal/app/diarize"
	apperrors "video-transcript/internal/app/errors"
	"video-transcript/internal/app/metrics"
	"video-transcript/internal/app/transcript"
	"video-transcript/internal/app/video"
)

type stubResolver struct {
	ref *video.Reference
	err error
}

func (s *stubResolver) Resolve(context.Context, string) (*video.Reference, error) {
	return s.ref, s.err
}

type stubCaptions struct {
	segments []transcript.Segment
	err      error
	calls    int
}

func (s *stubCaptions) Fetch(context.Context, string) ([]transcript.Segment, error) {
	s.calls++
	return s.segments, s.err
}

type stubDownloader struct {
	path    string
	err     error
	calls   int
	cleaned bool
}

func (s *stubDownloader) Download(context.Context, string) (string, func(), error) {
	s.calls++
	if s.err != nil {
		return "", func() {}, s.err
	}
	return s.path, func() { s.cleaned = true }, nil
}

type stubTranscriber struct {
	segments []transcript.Segment
	err      error
	calls    int
}

func (s *stubTranscriber) Transcribe(context.Context, string) ([]transcript.Segment, error) {
	s.calls++
	return s.segments, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRef() *video.Reference {
	return &video.Reference{ID: "abc123", URL: "https://youtu.be/abc123", Title: "Test", Duration: 300}
}

func captionSegments() []transcript.Segment {
	return []transcript.Segment{{Start: 0, End: 3, Text: "from captions"}}
}

func audioSegments() []transcript.Segment {
	return []transcript.Segment{{Start: 0, End: 3, Text: "from audio"}}
}

type fixture struct {
	resolver    *stubResolver
	captions    *stubCaptions
	downloader  *stubDownloader
	transcriber *stubTranscriber
	assembler   *Assembler
}

func newFixture(mutate func(*fixture)) *fixture {
	f := &fixture{
		resolver:    &stubResolver{ref: testRef()},
		captions:    &stubCaptions{segments: captionSegments()},
		downloader:  &stubDownloader{path: "/tmp/audio.mp3"},
		transcriber: &stubTranscriber{segments: audioSegments()},
	}
	if mutate != nil {
		mutate(f)
	}
	f.assembler = New(
		f.resolver, f.captions, f.downloader, f.transcriber,
		nil, NewLimiter(2, 2), Config{MaxDuration: 5400}, testLogger(),
	)
	return f
}

func TestAssembleUsesCaptionsFirst(t *testing.T) {
	f := newFixture(nil)

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "https://youtu.be/abc123"})
	require.NoError(t, err)

	assert.Equal(t, transcript.SourceCaptions, result.Source)
	assert.Equal(t, "[00:00] from captions", result.Transcript)
	assert.Equal(t, "transcript_abc123_captions.txt", result.Filename)
	assert.Equal(t, 0, f.transcriber.calls, "audio path must be skipped entirely when captions exist")
	assert.Equal(t, 0, f.downloader.calls)
}

func TestAssembleFallsBackToAudio(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.captions.err = apperrors.ErrCaptionsUnavailable
		f.captions.segments = nil
	})

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "https://youtu.be/abc123"})
	require.NoError(t, err)

	assert.Equal(t, transcript.SourceAudio, result.Source)
	assert.Equal(t, "transcript_abc123_audio.txt", result.Filename)
	assert.Equal(t, 1, f.captions.calls)
	assert.Equal(t, 1, f.transcriber.calls)
	assert.True(t, f.downloader.cleaned, "temp audio must be removed after the request")
}

func TestAssembleRejectsOverlongVideoBeforeAcquisition(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.resolver.ref = &video.Reference{ID: "abc123", URL: "u", Duration: 7200}
	})

	_, err := f.assembler.Assemble(context.Background(), Request{URL: "u"})

	assert.True(t, apperrors.IsDurationExceeded(err))
	assert.Equal(t, 0, f.captions.calls, "no acquisition may start for rejected durations")
	assert.Equal(t, 0, f.downloader.calls)
	assert.Equal(t, 0, f.transcriber.calls)
}

func TestAssemblePropagatesResolutionError(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.resolver.ref = nil
		f.resolver.err = &apperrors.ResolutionError{Input: "garbage"}
	})

	_, err := f.assembler.Assemble(context.Background(), Request{URL: "garbage"})
	assert.True(t, apperrors.IsResolution(err))
	assert.Equal(t, 0, f.captions.calls)
}

func TestAssembleAudioDownloadFailureIsTerminal(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.captions.err = apperrors.ErrCaptionsUnavailable
		f.captions.segments = nil
		f.downloader.err = errors.New("network down")
	})

	_, err := f.assembler.Assemble(context.Background(), Request{URL: "u"})

	acq, ok := apperrors.AsAcquisition(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.StageAudioDownload, acq.Stage)
	assert.Equal(t, 0, f.transcriber.calls)
}

func TestAssembleTranscriptionFailureIsTerminal(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.captions.err = apperrors.ErrCaptionsUnavailable
		f.captions.segments = nil
		f.transcriber.err = errors.New("model crashed")
		f.transcriber.segments = nil
	})

	_, err := f.assembler.Assemble(context.Background(), Request{URL: "u"})

	acq, ok := apperrors.AsAcquisition(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.StageTranscription, acq.Stage)
	assert.True(t, f.downloader.cleaned, "partial audio must be cleaned up on failure")
}

// killedTranscriber mimics exec.CommandContext behavior when the context
// deadline fires mid-run: the process is killed and the returned error
// does not wrap context.DeadlineExceeded.
type killedTranscriber struct{}

func (killedTranscriber) Transcribe(ctx context.Context, _ string) ([]transcript.Segment, error) {
	<-ctx.Done()
	return nil, errors.New("command execution error: signal: killed")
}

func TestAssembleBudgetExpiryDuringTranscriptionIsTimeout(t *testing.T) {
	asm := New(
		&stubResolver{ref: testRef()},
		&stubCaptions{err: apperrors.ErrCaptionsUnavailable},
		&stubDownloader{path: "/tmp/audio.mp3"},
		killedTranscriber{},
		nil, NewLimiter(2, 2), Config{MaxDuration: 5400}, testLogger(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := asm.Assemble(ctx, Request{URL: "u"})
	require.Error(t, err)
	assert.True(t, apperrors.IsTimeout(err), "expected a timeout, got %T: %v", err, err)
	_, isAcq := apperrors.AsAcquisition(err)
	assert.False(t, isAcq, "budget expiry must not be reported as a transcription failure")
}

func TestAssembleFailureBeforeAcquisitionCountsSourceNone(t *testing.T) {
	before := testutil.ToFloat64(metrics.PipelineRequests.WithLabelValues("none", "audio_download_failed"))

	f := newFixture(func(f *fixture) {
		f.captions.err = apperrors.ErrCaptionsUnavailable
		f.captions.segments = nil
		f.downloader.err = errors.New("network down")
	})
	_, err := f.assembler.Assemble(context.Background(), Request{URL: "u"})
	require.Error(t, err)

	after := testutil.ToFloat64(metrics.PipelineRequests.WithLabelValues("none", "audio_download_failed"))
	assert.Equal(t, before+1, after)
}

// Unexpected caption-source errors still escalate rather than fail the
// request; escalation is the retry strategy.
func TestAssembleEscalatesOnUnexpectedCaptionError(t *testing.T) {
	f := newFixture(func(f *fixture) {
		f.captions.err = errors.New("weird parser bug")
		f.captions.segments = nil
	})

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "u"})
	require.NoError(t, err)
	assert.Equal(t, transcript.SourceAudio, result.Source)
}

type failingIdentifier struct{ calls int }

func (f *failingIdentifier) Identify(context.Context, string, float64) ([]diarize.Span, error) {
	f.calls++
	return nil, errors.New("speaker service down")
}

type labelingIdentifier struct{}

func (labelingIdentifier) Identify(context.Context, string, float64) ([]diarize.Span, error) {
	return []diarize.Span{{Start: 0, End: 10, Speaker: "Speaker 1"}}, nil
}

func TestAssembleDiarizationFailureStillReturnsTranscript(t *testing.T) {
	identifier := &failingIdentifier{}
	f := newFixtureWithMerger(identifier)

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "u", Diarize: true})
	require.NoError(t, err, "diarization is best effort, never fatal")

	assert.Equal(t, 1, identifier.calls)
	assert.Equal(t, "[00:00] from captions", result.Transcript, "transcript ships unlabeled on degradation")
}

func TestAssembleDiarizationLabelsSpeakers(t *testing.T) {
	f := newFixtureWithMerger(labelingIdentifier{})

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "u", Diarize: true})
	require.NoError(t, err)
	assert.Equal(t, "[00:00] Speaker 1: from captions", result.Transcript)
}

func TestAssembleDiarizeRequestedWithoutMergerProceedsUnlabeled(t *testing.T) {
	f := newFixture(nil)

	result, err := f.assembler.Assemble(context.Background(), Request{URL: "u", Diarize: true})
	require.NoError(t, err)
	assert.Equal(t, "[00:00] from captions", result.Transcript)
}

func newFixtureWithMerger(identifier diarize.Identifier) *fixture {
	f := &fixture{
		resolver:    &stubResolver{ref: testRef()},
		captions:    &stubCaptions{segments: captionSegments()},
		downloader:  &stubDownloader{path: "/tmp/audio.mp3"},
		transcriber: &stubTranscriber{segments: audioSegments()},
	}
	merger := diarize.NewMerger(identifier, f.downloader, testLogger())
	f.assembler = New(
		f.resolver, f.captions, f.downloader, f.transcriber,
		merger, NewLimiter(2, 2), Config{MaxDuration: 5400}, testLogger(),
	)
	return f
}

func TestEstimateBudget(t *testing.T) {
	testCases := []struct {
		durationSec int
		expected    time.Duration
	}{
		{0, 15 * time.Minute},
		{300, 2 * time.Minute},
		{599, 2 * time.Minute},
		{600, 5 * time.Minute},
		{1800, 10 * time.Minute},
		{3600, 15 * time.Minute},
		{5400, 15 * time.Minute},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, EstimateBudget(tc.durationSec), "duration %d", tc.durationSec)
	}
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateDone.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateTryingCaptions.Terminal())
	assert.False(t, StateTryingAudio.Terminal())
	assert.False(t, StateDiarizing.Terminal())
}

func TestLimiterRejectsWhenQueueFull(t *testing.T) {
	l := NewLimiter(1, 0)

	require.NoError(t, l.Acquire(context.Background()))
	err := l.Acquire(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrTranscriberBusy)

	l.Release()
	require.NoError(t, l.Acquire(context.Background()))
	l.Release()
}

func TestLimiterQueuedWaiterHonorsContext(t *testing.T) {
	l := NewLimiter(1, 1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	l.Release()
}
