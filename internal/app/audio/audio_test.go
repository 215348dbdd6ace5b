package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	d := NewYtDlpDownloader("yt-dlp")
	args := d.buildArgs("/tmp/x/audio.%(ext)s", "https://youtu.be/abc123")

	assert.Contains(t, args, "ba/best")
	assert.Contains(t, args, "--audio-format")
	assert.Contains(t, args, "mp3")
	assert.Contains(t, args, "128K")
	assert.Equal(t, "https://youtu.be/abc123", args[len(args)-1], "URL must come last")

	idx := indexOf(args, "-o")
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "/tmp/x/audio.%(ext)s", args[idx+1])
}

func TestNewYtDlpDownloaderDefaultsBinary(t *testing.T) {
	d := NewYtDlpDownloader("")
	assert.Equal(t, "yt-dlp", d.binaryPath)
	assert.Equal(t, 3, d.attempts)
	assert.Equal(t, 5*time.Second, d.retryDelay)
}

func TestDownloadHonorsCancelledContext(t *testing.T) {
	d := NewYtDlpDownloader("definitely-not-a-real-binary")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, cleanup, err := d.Download(ctx, "https://youtu.be/abc123")
	cleanup()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	_, err := ConvertTo16kHzWav(context.Background(), "/tmp/audio.flac")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func indexOf(slice []string, want string) int {
	for i, s := range slice {
		if s == want {
			return i
		}
	}
	return -1
}
