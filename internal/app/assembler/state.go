package assembler

import "time"

// State enumerates the acquisition pipeline stages. The fallback chain is
// a finite state machine: every transition is explicit and each stage's
// entry and exit conditions are testable on their own.
type State string

const (
	StateTryingCaptions State = "trying_captions"
	StateTryingAudio    State = "trying_audio"
	StateDiarizing      State = "diarizing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// Terminal reports whether the pipeline halts in this state.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// EstimateBudget maps a known video duration onto a total pipeline time
// budget. The bands mirror the documented processing estimates for audio
// transcription: short videos finish in a couple of minutes, anything
// approaching the 90-minute ceiling may take a quarter hour. Unknown
// durations get the widest budget.
func EstimateBudget(durationSec int) time.Duration {
	switch {
	case durationSec <= 0:
		return 15 * time.Minute
	case durationSec < 600:
		return 2 * time.Minute
	case durationSec < 1800:
		return 5 * time.Minute
	case durationSec < 3600:
		return 10 * time.Minute
	default:
		return 15 * time.Minute
	}
}
