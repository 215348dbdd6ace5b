// Package player defines the seek integration between a rendered
// transcript and whatever media player is hosting the video. The
// transcript side only needs two capabilities, so that is all the
// interface asks for.
package player

import (
	"sync"

	"video-transcript/internal/app/format"
	"video-transcript/internal/app/timestamp"
)

// Controller is the capability a media player exposes to the transcript
// view. Both calls must be idempotent and safe with no media loaded.
type Controller interface {
	SeekTo(seconds int)
	Play()
}

// Registry tracks named player handles so a view can discover one when
// nothing was injected. The first registered controller is the default.
type Registry struct {
	mu       sync.RWMutex
	byName   map[string]Controller
	fallback Controller
}

// NewRegistry returns an empty player registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Controller)}
}

// Register adds a controller under name. The first registration becomes
// the fallback returned by Default.
func (r *Registry) Register(name string, c Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = c
	if r.fallback == nil {
		r.fallback = c
	}
}

// Get returns the controller registered under name, or nil.
func (r *Registry) Get(name string) Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Default returns the fallback controller, or nil when none registered.
func (r *Registry) Default() Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}

// TranscriptView pairs a parsed transcript with the player that should
// respond to timestamp clicks. The controller may be nil when no video is
// loaded; activation is then a no-op rather than an error.
type TranscriptView struct {
	lines      []format.Line
	controller Controller
	registry   *Registry
}

// NewTranscriptView parses text and binds it to controller. registry may
// be nil; it is only consulted when controller is nil.
func NewTranscriptView(text string, controller Controller, registry *Registry) *TranscriptView {
	return &TranscriptView{
		lines:      format.Parse(text),
		controller: controller,
		registry:   registry,
	}
}

// Lines returns the parsed transcript lines.
func (v *TranscriptView) Lines() []format.Line {
	return v.lines
}

// ActivateTimestamp handles a click on a timestamp token: seek to the
// parsed offset, then resume playback. With no player attached the click
// does nothing.
func (v *TranscriptView) ActivateTimestamp(token string) {
	c := v.player()
	if c == nil {
		return
	}
	c.SeekTo(timestamp.ParseTimestamp(token))
	c.Play()
}

func (v *TranscriptView) player() Controller {
	if v.controller != nil {
		return v.controller
	}
	if v.registry != nil {
		return v.registry.Default()
	}
	return nil
}
