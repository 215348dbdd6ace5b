package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"video-transcript/internal/app/transcript"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
// It is the alternative to the local whisper.cpp path for hosts without
// a compiled binary.
type RemoteTranscriber struct {
	client *openai.Client
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client) *RemoteTranscriber {
	return &RemoteTranscriber{client: client}
}

// NewRemoteTranscriberFromKey builds a transcriber from an API key.
func NewRemoteTranscriberFromKey(apiKey string) *RemoteTranscriber {
	return &RemoteTranscriber{client: openai.NewClient(apiKey)}
}

// Transcribe requests verbose JSON output so the response carries
// segment-level timing, then maps it onto the pipeline segment stream.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("createTranscription failed: %w", err)
	}

	if len(resp.Segments) == 0 {
		if resp.Text == "" {
			return nil, fmt.Errorf("transcription returned no text")
		}
		// Some models return plain text only; a single zero-based segment
		// still yields a valid canonical transcript.
		return []transcript.Segment{{Start: 0, End: float64(resp.Duration), Text: resp.Text}}, nil
	}

	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, transcript.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return transcript.Normalize(segments), nil
}
