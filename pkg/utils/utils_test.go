package utils

import (
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(contentType string, size int64) *multipart.FileHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	return &multipart.FileHeader{Filename: "clip", Header: h, Size: size}
}

func TestValidateAudioFile(t *testing.T) {
	u := New()

	assert.NoError(t, u.ValidateAudioFile(header("audio/wav", 1024)))
	assert.NoError(t, u.ValidateAudioFile(header("video/webm", 1024)))
	assert.ErrorIs(t, u.ValidateAudioFile(nil), ErrNoFile)
	assert.ErrorIs(t, u.ValidateAudioFile(header("image/png", 1024)), ErrNotAudio)
	assert.ErrorIs(t, u.ValidateAudioFile(header("audio/wav", 11*1024*1024)), ErrFileTooLarge)
}

func TestNewULIDFromTimestamp(t *testing.T) {
	now := time.Now()
	id, err := New().NewULIDFromTimestamp(now)
	require.NoError(t, err)

	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(now), parsed.Time())
}
