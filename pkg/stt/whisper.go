package stt

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// WhisperTranscriber transcribes audio through the OpenAI audio API,
// requesting verbose JSON with word-level timestamp granularity.
type WhisperTranscriber struct {
	client *openai.Client
}

// NewWhisperTranscriber creates a Whisper-backed transcriber.
func NewWhisperTranscriber(cfg *config.STTConfig) *WhisperTranscriber {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &WhisperTranscriber{
		client: openai.NewClientWithConfig(clientCfg),
	}
}

// Transcribe sends the audio file for transcription and maps the word
// timestamps into the unified shape. Whisper reports times in seconds.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, language string) (*Transcript, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
		Language: language,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	words := make([]Word, 0, len(resp.Words))
	for _, rw := range resp.Words {
		words = append(words, Word{
			Word:  rw.Word,
			Start: rw.Start,
			End:   rw.End,
		})
	}

	return &Transcript{
		Text:     resp.Text,
		Words:    words,
		Language: resp.Language,
		Duration: resp.Duration,
		Provider: "whisper",
	}, nil
}
