package whisper_cpp

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"video-transcript/internal/app/audio"
	"video-transcript/internal/app/transcript"
)

// LocalTranscriber runs a local whisper.cpp binary. This is the heavy,
// CPU-bound path of the pipeline; expected runtime scales with the
// length of the video.
type LocalTranscriber struct {
	binaryPath string
	modelPath  string
	language   string
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(binaryPath, modelPath, language string) *LocalTranscriber {
	if language == "" {
		language = "auto"
	}
	return &LocalTranscriber{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		language:   language,
	}
}

// Transcribe converts the input to the 16kHz WAV layout whisper.cpp needs,
// runs the binary and parses its timestamped stdout into segments.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	wavPath, err := audio.ConvertTo16kHzWav(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("error converting input file: %w", err)
	}

	args := []string{
		"-m", lt.modelPath,
		"-l", lt.language,
		"-f", wavPath,
	}

	cmd := exec.CommandContext(ctx, lt.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Printf("running transcription command: %s %s", lt.binaryPath, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("command execution error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	segments := ParseOutput(stdout.String())
	if len(segments) == 0 {
		return nil, fmt.Errorf("transcription produced no segments")
	}

	log.Printf("transcription complete: %d segments", len(segments))
	return segments, nil
}

// whisper.cpp prints one line per segment:
//   [00:00:00.000 --> 00:00:02.560]  some text
var outputLineRe = regexp.MustCompile(`^\[(\d{2}):(\d{2}):(\d{2})\.(\d{3}) --> (\d{2}):(\d{2}):(\d{2})\.(\d{3})\]\s*(.*)$`)

// ParseOutput converts whisper.cpp stdout into an ordered segment stream.
// Lines that do not match the timeline format (banners, progress noise)
// are ignored.
func ParseOutput(out string) []transcript.Segment {
	var segments []transcript.Segment
	for _, line := range strings.Split(out, "\n") {
		m := outputLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		text := strings.TrimSpace(m[9])
		if text == "" {
			continue
		}

		segments = append(segments, transcript.Segment{
			Start: clockToSeconds(m[1], m[2], m[3], m[4]),
			End:   clockToSeconds(m[5], m[6], m[7], m[8]),
			Text:  text,
		})
	}
	return segments
}

func clockToSeconds(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000
}
