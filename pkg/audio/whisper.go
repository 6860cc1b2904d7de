package audio

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes clips with the OpenAI audio API.
type WhisperTranscriber struct {
	client   *openai.Client
	language string
}

func NewWhisperTranscriber(client *openai.Client, language string) *WhisperTranscriber {
	return &WhisperTranscriber{
		client:   client,
		language: LanguageBase(language),
	}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, clip Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", ErrEmptyClip
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(clip.Data),
		FilePath: clip.Filename(),
		Language: t.language,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	return resp.Text, nil
}
