package utils

import (
	"crypto/rand"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile       = errors.New("no audio file uploaded")
	ErrFileTooLarge = errors.New("audio file size exceeds limit")
	ErrNotAudio     = errors.New("uploaded file is not audio")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateAudioFile(file *multipart.FileHeader) error
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 10 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// ValidateAudioFile accepts audio/* uploads and the webm/ogg containers
// browsers record voice clips into.
func (u *utils) ValidateAudioFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "audio/"),
		contentType == "video/webm",
		contentType == "application/ogg":
		return nil
	}
	return ErrNotAudio
}
