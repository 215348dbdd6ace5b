package diarize

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const (
	defaultModel  = "gemini-flash-latest"
	pollInterval  = 2 * time.Second
	uploadTimeout = 5 * time.Minute
)

const diarizationPrompt = `Transcribe this audio.
Identify different speakers (e.g., Speaker 1, Speaker 2).
Format exactly like this:
[MM:SS] Speaker 1: Text...
[MM:SS] Speaker 2: Text...

Ensure timestamps correspond to the start of the sentence.`

// Identifier calls an external speaker-identification service over an
// audio file and returns labeled spans.
type Identifier interface {
	Identify(ctx context.Context, audioPath string, streamEnd float64) ([]Span, error)
}

// GeminiIdentifier uploads the audio to Gemini and asks for a
// speaker-attributed transcript, which it parses into spans.
type GeminiIdentifier struct {
	client *genai.Client
	model  string
}

// NewGeminiIdentifier builds a Gemini-backed identifier from an API key.
func NewGeminiIdentifier(ctx context.Context, apiKey, model string) (*GeminiIdentifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required for diarization")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiIdentifier{client: client, model: model}, nil
}

// Identify uploads the file, waits for server-side processing, then prompts
// for a speaker-labeled transcript.
func (g *GeminiIdentifier) Identify(ctx context.Context, audioPath string, streamEnd float64) ([]Span, error) {
	file, err := g.client.Files.UploadFromPath(ctx, audioPath, &genai.UploadFileConfig{
		MIMEType: "audio/mpeg",
	})
	if err != nil {
		return nil, fmt.Errorf("upload audio: %w", err)
	}
	defer g.client.Files.Delete(ctx, file.Name, nil)

	file, err = g.waitForProcessing(ctx, file)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(diarizationPrompt),
			genai.NewPartFromURI(file.URI, file.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	spans := ParseSpeakerLines(resp.Text(), streamEnd)
	if len(spans) == 0 {
		return nil, fmt.Errorf("no speaker spans in model output")
	}
	return spans, nil
}

func (g *GeminiIdentifier) waitForProcessing(ctx context.Context, file *genai.File) (*genai.File, error) {
	deadline := time.Now().Add(uploadTimeout)
	for file.State == genai.FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("audio processing timed out")
		}
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		var err error
		file, err = g.client.Files.Get(ctx, file.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("poll uploaded file: %w", err)
		}
	}

	if file.State == genai.FileStateFailed {
		return nil, fmt.Errorf("audio processing failed")
	}
	return file, nil
}
