package stt

import (
	"context"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// AssemblyAITranscriber transcribes audio through AssemblyAI using the
// official SDK in upload-then-poll mode. No webhook endpoint is needed:
// TranscribeFromURL blocks until the transcript reaches a terminal state.
type AssemblyAITranscriber struct {
	client *aai.Client
}

// NewAssemblyAITranscriber creates an AssemblyAI-backed transcriber.
func NewAssemblyAITranscriber(cfg *config.STTConfig) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{
		client: aai.NewClient(cfg.AssemblyAPIKey),
	}
}

// Transcribe uploads the local audio file and waits for the transcript.
// AssemblyAI reports word times in milliseconds; they are converted to
// seconds here.
func (a *AssemblyAITranscriber) Transcribe(ctx context.Context, audioPath string, language string) (*Transcript, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	uploadURL, err := a.client.Upload(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to AssemblyAI: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(language),
	}

	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "assemblyai reported an error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai transcription failed: %s", msg)
	}

	out := &Transcript{Provider: "assemblyai"}
	if transcript.Text != nil {
		out.Text = *transcript.Text
	}
	if transcript.LanguageCode != "" {
		out.Language = string(transcript.LanguageCode)
	}
	if transcript.AudioDuration != nil {
		out.Duration = float64(*transcript.AudioDuration)
	}

	out.Words = make([]Word, 0, len(transcript.Words))
	for _, w := range transcript.Words {
		word := Word{}
		if w.Text != nil {
			word.Word = *w.Text
		}
		if w.Start != nil {
			word.Start = float64(*w.Start) / 1000.0
		}
		if w.End != nil {
			word.End = float64(*w.End) / 1000.0
		}
		out.Words = append(out.Words, word)
	}

	return out, nil
}
