package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"video-transcript/internal/app/audio"
	"video-transcript/internal/app/captions"
	"video-transcript/internal/app/diarize"
	apperrors "video-transcript/internal/app/errors"
	"video-transcript/internal/app/metrics"
	"video-transcript/internal/app/stt"
	"video-transcript/internal/app/transcript"
	"video-transcript/internal/app/util/files"
	"video-transcript/internal/app/video"
)

// Request is one acquisition request: a video reference plus whether the
// caller wants speaker identification.
type Request struct {
	URL     string
	Diarize bool
}

// Result is the finished artifact: the canonical transcript text, which
// stage produced it, and a download filename.
type Result struct {
	Transcript string
	Source     transcript.Source
	Filename   string
	Title      string
	Duration   int
}

// Config carries the assembler knobs.
type Config struct {
	// MaxDuration is the acceptance ceiling in seconds. Videos whose known
	// duration exceeds it are rejected before any acquisition work.
	MaxDuration int
}

// Assembler orchestrates the fallback chain: captions first, audio
// transcription when captions are unavailable, then an optional
// best-effort diarization pass. Escalation between stages is the only
// retry strategy; each external call runs exactly once per request and
// the chain never revisits an earlier stage.
type Assembler struct {
	resolver    video.Resolver
	captions    captions.Source
	downloader  audio.Downloader
	transcriber stt.Transcriber
	merger      *diarize.Merger
	limiter     *Limiter
	config      Config
	logger      *slog.Logger
}

// New creates an assembler. merger may be nil when diarization is not
// configured; requests asking for it then proceed unlabeled.
func New(
	resolver video.Resolver,
	captionSource captions.Source,
	downloader audio.Downloader,
	transcriber stt.Transcriber,
	merger *diarize.Merger,
	limiter *Limiter,
	config Config,
	logger *slog.Logger,
) *Assembler {
	if config.MaxDuration <= 0 {
		config.MaxDuration = 5400
	}
	return &Assembler{
		resolver:    resolver,
		captions:    captionSource,
		downloader:  downloader,
		transcriber: transcriber,
		merger:      merger,
		limiter:     limiter,
		config:      config,
		logger:      logger,
	}
}

// Assemble runs the full pipeline for one request under a time budget
// proportional to the video length. Stage failures with a fallback are
// swallowed; everything else propagates as a structured pipeline error.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	ref, err := a.resolver.Resolve(ctx, req.URL)
	if err != nil {
		metrics.PipelineRequests.WithLabelValues("none", "resolution_error").Inc()
		return nil, err
	}

	// Fail fast: do not spend minutes transcribing content that will be
	// rejected anyway.
	if ref.Duration > a.config.MaxDuration {
		metrics.PipelineRequests.WithLabelValues("none", "duration_exceeded").Inc()
		return nil, &apperrors.DurationExceededError{Duration: ref.Duration, Limit: a.config.MaxDuration}
	}

	budget := EstimateBudget(ref.Duration)
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	a.logger.Info("pipeline started",
		"video_id", ref.ID,
		"duration", ref.Duration,
		"diarize", req.Diarize,
		"budget", budget.String(),
	)

	run := &pipelineRun{assembler: a, request: req, ref: ref}
	defer run.cleanupAudio()

	for state := StateTryingCaptions; !state.Terminal(); {
		next := a.transition(ctx, state, run)
		a.logger.Debug("pipeline transition", "video_id", ref.ID, "from", string(state), "to", string(next))
		state = next
	}

	if run.err != nil {
		err := a.mapError(ctx, run.err, budget)
		metrics.PipelineRequests.WithLabelValues(sourceLabel(run.source), errorStatus(err)).Inc()
		return nil, err
	}

	result := run.result()
	metrics.PipelineRequests.WithLabelValues(string(result.Source), "success").Inc()
	a.logger.Info("pipeline done", "video_id", ref.ID, "source", string(result.Source), "chars", len(result.Transcript))
	return result, nil
}

// transition executes one stage and returns the next state.
func (a *Assembler) transition(ctx context.Context, state State, run *pipelineRun) State {
	switch state {
	case StateTryingCaptions:
		return a.tryCaptions(ctx, run)
	case StateTryingAudio:
		return a.tryAudio(ctx, run)
	case StateDiarizing:
		return a.diarize(ctx, run)
	default:
		run.err = fmt.Errorf("invalid pipeline state %q", state)
		return StateFailed
	}
}

// tryCaptions attempts the cheapest source. "Unavailable" is not a
// failure, it escalates to the audio path.
func (a *Assembler) tryCaptions(ctx context.Context, run *pipelineRun) State {
	timer := time.Now()
	segments, err := a.captions.Fetch(ctx, run.ref.ID)
	metrics.StageDuration.WithLabelValues("captions").Observe(time.Since(timer).Seconds())

	if err != nil {
		if errors.Is(err, apperrors.ErrCaptionsUnavailable) {
			return StateTryingAudio
		}
		// Caption sources must collapse all failures to unavailable;
		// anything else still escalates rather than killing the request.
		a.logger.Warn("caption source returned unexpected error", "video_id", run.ref.ID, "error", err)
		return StateTryingAudio
	}

	run.segments = segments
	run.source = transcript.SourceCaptions
	return a.afterAcquisition(run)
}

// tryAudio is the terminal acquisition stage: there is no fallback
// beneath it. Admission is bounded by the transcription worker limit.
func (a *Assembler) tryAudio(ctx context.Context, run *pipelineRun) State {
	if err := a.limiter.Acquire(ctx); err != nil {
		run.err = err
		return StateFailed
	}
	defer a.limiter.Release()

	timer := time.Now()
	audioPath, cleanup, err := a.downloader.Download(ctx, run.ref.URL)
	metrics.StageDuration.WithLabelValues("audio_download").Observe(time.Since(timer).Seconds())
	if err != nil {
		run.err = apperrors.NewAudioDownloadError(err)
		return StateFailed
	}
	run.audioPath = audioPath
	run.audioCleanup = cleanup

	timer = time.Now()
	segments, err := a.transcriber.Transcribe(ctx, audioPath)
	metrics.StageDuration.WithLabelValues("transcription").Observe(time.Since(timer).Seconds())
	if err != nil {
		run.err = apperrors.NewTranscriptionError(err)
		return StateFailed
	}

	run.segments = transcript.Normalize(segments)
	run.source = transcript.SourceAudio
	return a.afterAcquisition(run)
}

// afterAcquisition branches into diarization only when requested and a
// merger is configured.
func (a *Assembler) afterAcquisition(run *pipelineRun) State {
	if run.request.Diarize && a.merger != nil {
		return StateDiarizing
	}
	return StateDone
}

// diarize never fails the request; a degraded pass just ships the stream
// unlabeled.
func (a *Assembler) diarize(ctx context.Context, run *pipelineRun) State {
	timer := time.Now()
	run.segments = a.merger.Merge(ctx, run.ref.URL, run.audioPath, run.segments)
	metrics.StageDuration.WithLabelValues("diarization").Observe(time.Since(timer).Seconds())
	return StateDone
}

// mapError distinguishes "the budget ran out" from stage failures. The
// context is authoritative: a deadline firing mid-stage usually surfaces
// as a killed subprocess error that does not wrap DeadlineExceeded.
func (a *Assembler) mapError(ctx context.Context, err error, budget time.Duration) error {
	if ctx.Err() == context.DeadlineExceeded {
		return &apperrors.TimeoutError{Budget: budget.String()}
	}
	return err
}

// sourceLabel keeps the metric label non-empty for failures that happen
// before any source acquired the transcript.
func sourceLabel(source transcript.Source) string {
	if source == "" {
		return "none"
	}
	return string(source)
}

func errorStatus(err error) string {
	switch {
	case apperrors.IsTimeout(err):
		return "timeout"
	case errors.Is(err, apperrors.ErrTranscriberBusy):
		return "rejected_busy"
	default:
		if acq, ok := apperrors.AsAcquisition(err); ok {
			return string(acq.Stage) + "_failed"
		}
		return "error"
	}
}

// pipelineRun is the per-request mutable state threaded through the FSM.
type pipelineRun struct {
	assembler *Assembler
	request   Request
	ref       *video.Reference

	segments     []transcript.Segment
	source       transcript.Source
	audioPath    string
	audioCleanup func()
	err          error
}

func (r *pipelineRun) cleanupAudio() {
	if r.audioCleanup != nil {
		r.audioCleanup()
	}
}

func (r *pipelineRun) result() *Result {
	return &Result{
		Transcript: transcript.Serialize(r.segments),
		Source:     r.source,
		Filename:   files.SanitizeFilename(fmt.Sprintf("transcript_%s_%s.txt", r.ref.ID, r.source)),
		Title:      r.ref.Title,
		Duration:   r.ref.Duration,
	}
}
