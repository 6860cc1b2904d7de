package handlerUtil

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"testing"

	"Edunabha/internal/api/voice"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantError  string
	}{
		{"domain error", voice.ErrSessionNotFound, 404, "SESSION_NOT_FOUND", "navigation session not found"},
		{"wrapped domain error", fmt.Errorf("%w: redis timeout", voice.ErrCatalogUnavailable), 503, "CATALOG_UNAVAILABLE", "course catalog unavailable"},
		{"fiber error", fiber.ErrUpgradeRequired, 426, "", "Upgrade Required"},
		{"unknown error", errors.New("boom"), 500, "INTERNAL_ERROR", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			h := New(quietLogger())
			app.Get("/", func(c *fiber.Ctx) error {
				return h.Handle(c, "req-1", tt.err, c.Path(), "test")
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			var body ErrorResponse
			require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}
