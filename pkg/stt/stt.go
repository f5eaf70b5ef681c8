// Package stt wraps the external speech-to-text services behind a single
// Transcriber interface. The analysis worker only needs a transcript plus
// word-level timestamps; which vendor produced them is a config choice.
package stt

import (
	"context"
	"fmt"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// Word is a single transcribed word with its time span in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is the unified transcription result.
type Transcript struct {
	Text     string  `json:"text"`
	Words    []Word  `json:"words"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
	Provider string  `json:"provider"`
}

// Transcriber produces a transcript with word timestamps from a local
// audio file. Implementations block until the vendor reports a terminal
// state; any non-success vendor response is an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, language string) (*Transcript, error)
}

// New builds the Transcriber selected by cfg.Provider.
func New(cfg *config.STTConfig) (Transcriber, error) {
	switch cfg.Provider {
	case "whisper":
		return NewWhisperTranscriber(cfg), nil
	case "assemblyai":
		return NewAssemblyAITranscriber(cfg), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q", cfg.Provider)
	}
}
