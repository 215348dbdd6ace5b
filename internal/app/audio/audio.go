package audio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	downloadFormat    = "ba/best"
	preferredCodec    = "mp3"
	preferredQuality  = "128K"
	socketTimeoutSec  = 60
	fragmentRetries   = 3
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	cookiesFilename   = "cookies.txt"
)

// Downloader fetches the audio track of a video into request-scoped
// temporary storage. The returned cleanup must run on every exit path,
// success or failure, so partial downloads never accumulate.
type Downloader interface {
	Download(ctx context.Context, videoURL string) (path string, cleanup func(), err error)
}

// YtDlpDownloader shells out to yt-dlp for media retrieval.
type YtDlpDownloader struct {
	binaryPath string
	attempts   int
	retryDelay time.Duration
}

// NewYtDlpDownloader creates a downloader using the given yt-dlp binary.
// An empty binaryPath falls back to "yt-dlp" on PATH.
func NewYtDlpDownloader(binaryPath string) *YtDlpDownloader {
	if binaryPath == "" {
		binaryPath = "yt-dlp"
	}
	return &YtDlpDownloader{
		binaryPath: binaryPath,
		attempts:   3,
		retryDelay: 5 * time.Second,
	}
}

// Download fetches the best audio stream as mp3 into a fresh temp dir.
// Transient failures are retried a fixed number of times with a delay;
// the temp dir is removed by cleanup regardless of outcome.
func (d *YtDlpDownloader) Download(ctx context.Context, videoURL string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "vts_audio_*")
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("failed to clean up audio dir %s: %v", dir, err)
		}
	}

	outputTemplate := filepath.Join(dir, "audio.%(ext)s")
	args := d.buildArgs(outputTemplate, videoURL)

	var lastErr error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			cleanup()
			return "", func() {}, err
		}

		log.Printf("audio download attempt %d/%d: %s", attempt, d.attempts, videoURL)
		if lastErr = d.run(ctx, args); lastErr == nil {
			break
		}

		log.Printf("attempt %d failed (%v), retrying...", attempt, lastErr)
		if attempt < d.attempts {
			select {
			case <-time.After(d.retryDelay):
			case <-ctx.Done():
				cleanup()
				return "", func() {}, ctx.Err()
			}
		}
	}
	if lastErr != nil {
		cleanup()
		// A kill on the final attempt reports a subprocess error, not the
		// context error that caused it.
		if err := ctx.Err(); err != nil {
			return "", func() {}, err
		}
		return "", func() {}, lastErr
	}

	audioPath := filepath.Join(dir, "audio."+preferredCodec)
	if _, err := os.Stat(audioPath); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("downloaded audio file not found: %w", err)
	}

	log.Printf("audio downloaded: %s", audioPath)
	return audioPath, cleanup, nil
}

func (d *YtDlpDownloader) buildArgs(outputTemplate, videoURL string) []string {
	args := []string{
		"--quiet", "--no-warnings",
		"-f", downloadFormat,
		"-x",
		"--audio-format", preferredCodec,
		"--audio-quality", preferredQuality,
		"--socket-timeout", strconv.Itoa(socketTimeoutSec),
		"--fragment-retries", strconv.Itoa(fragmentRetries),
		"--user-agent", downloadUserAgent,
		"-o", outputTemplate,
	}

	// Pick up cookies.txt from the working directory when present.
	if cookiesPath := cookiesFile(); cookiesPath != "" {
		log.Printf("using cookies from: %s", cookiesPath)
		args = append(args, "--cookies", cookiesPath)
	}

	return append(args, videoURL)
}

func (d *YtDlpDownloader) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, d.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func cookiesFile() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	path := filepath.Join(wd, cookiesFilename)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// ConvertTo16kHzWav converts an audio file into the 16kHz mono-ish WAV
// layout whisper.cpp expects, next to the input file. The converted path
// lives in the same request-scoped directory so the usual cleanup removes it.
func ConvertTo16kHzWav(ctx context.Context, inputFilePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(inputFilePath))
	if ext != ".mp3" && ext != ".m4a" && ext != ".wav" {
		return "", fmt.Errorf("unsupported audio format not in [mp3,m4a,wav]: %s", ext)
	}

	outputFilePath := strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_16khz.wav"
	if _, err := os.Stat(outputFilePath); err == nil {
		return outputFilePath, nil
	}

	log.Printf("convert to 16kHz wav: %s", inputFilePath)
	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", inputFilePath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputFilePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("FFmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	return outputFilePath, nil
}

// GetAudioDuration reads the media duration in whole seconds via ffprobe.
func GetAudioDuration(filePath string) (int, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(durationFloat)), nil
}
