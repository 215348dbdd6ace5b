package stt

import (
	"context"
	"fmt"
	"sync"

	"video-transcript/internal/app/transcript"
)

// Transcriber runs speech-to-text over a local audio file and returns
// time-coded segments in stream order.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]transcript.Segment, error)
}

// Registry holds the configured transcription providers by name.
type Registry struct {
	mu           sync.RWMutex
	transcribers map[string]Transcriber
	defaultName  string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{transcribers: make(map[string]Transcriber)}
}

// Register adds a provider. The first registered provider becomes the default.
func (r *Registry) Register(name string, t Transcriber) error {
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if t == nil {
		return fmt.Errorf("provider cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transcribers[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.transcribers[name] = t
	if r.defaultName == "" {
		r.defaultName = name
	}
	return nil
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.transcribers[name]
	if !exists {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	return t, nil
}

// Default returns the default provider.
func (r *Registry) Default() (Transcriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.defaultName == "" {
		return nil, fmt.Errorf("no transcription provider registered")
	}
	return r.transcribers[r.defaultName], nil
}

// SetDefault updates the default provider.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transcribers[name]; !exists {
		return fmt.Errorf("provider %q not found", name)
	}
	r.defaultName = name
	return nil
}

// List returns the names of all registered providers.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.transcribers))
	for name := range r.transcribers {
		names = append(names, name)
	}
	return names
}
