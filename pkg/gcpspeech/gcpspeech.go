package gcpspeech

import (
	"context"
	"fmt"
	"mime"
	"os"
	"strings"

	"Edunabha/pkg/audio"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"
)

// Transcriber recognizes short command clips with Google Cloud Speech.
type Transcriber struct {
	client   *speech.Client
	language string
}

// New uses GOOGLE_APPLICATION_CREDENTIALS when set and application default
// credentials otherwise.
func New(ctx context.Context, language string) (*Transcriber, error) {
	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("speech client: %w", err)
	}

	if language == "" {
		language = "en-US"
	}
	return &Transcriber{client: client, language: language}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if len(clip.Data) == 0 {
		return "", audio.ErrEmptyClip
	}

	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     encodingFor(clip.MimeType),
			LanguageCode: t.language,
			// one hypothesis only
			MaxAlternatives: 1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.Data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech recognize: %w", err)
	}

	return bestTranscript(resp), nil
}

func (t *Transcriber) Close() error {
	return t.client.Close()
}

func bestTranscript(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		if text := strings.TrimSpace(alts[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func encodingFor(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	mt, _, _ := mime.ParseMediaType(mimeType)
	switch mt {
	case "audio/webm", "video/webm", "":
		return speechpb.RecognitionConfig_WEBM_OPUS
	case "audio/ogg", "application/ogg":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "audio/wav", "audio/x-wav", "audio/wave":
		return speechpb.RecognitionConfig_LINEAR16
	case "audio/flac":
		return speechpb.RecognitionConfig_FLAC
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
