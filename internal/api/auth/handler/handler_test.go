package authHandler

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"Edunabha/internal/api/auth"
	"Edunabha/internal/middleware"
	jwtPkg "Edunabha/pkg/jwt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registered []auth.RegisterRequest
}

func (f *fakeAuth) Register(_ context.Context, req auth.RegisterRequest) (auth.UserResponse, error) {
	if req.Email == "taken@example.com" {
		return auth.UserResponse{}, auth.ErrEmailAlreadyExists
	}
	f.registered = append(f.registered, req)
	return auth.UserResponse{ID: "u1", Name: req.Name, Email: req.Email, Role: "student"}, nil
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if req.Password != "secret1" {
		return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
	}
	return auth.LoginResponse{AccessToken: "tok", User: auth.UserResponse{ID: "u1"}}, nil
}

func (f *fakeAuth) Profile(_ context.Context, userID string) (auth.UserResponse, error) {
	return auth.UserResponse{ID: userID, Role: "teacher"}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *fakeAuth) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := &fakeAuth{}
	app := fiber.New()
	New(logger, validator.New(), middleware.New(logger), svc).Start(app)
	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, target, body, token string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRegister(t *testing.T) {
	app, svc := newTestApp(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"created", `{"name":"Asha","email":"asha@example.com","password":"secret1"}`, fiber.StatusCreated, ""},
		{"short password", `{"name":"Asha","email":"asha@example.com","password":"123"}`, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown role", `{"name":"Asha","email":"asha@example.com","password":"secret1","role":"admin"}`, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{"duplicate", `{"name":"Asha","email":"taken@example.com","password":"secret1"}`, fiber.StatusConflict, "EMAIL_ALREADY_EXISTS"},
		{"malformed", `{"name":`, fiber.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, "POST", "/auth/register", tt.body, "")
			assert.Equal(t, tt.status, status)
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}

	assert.Len(t, svc.registered, 1)
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/auth/login", `{"email":"asha@example.com","password":"secret1"}`, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "tok", body["access_token"])

	status, body = doJSON(t, app, "POST", "/auth/login", `{"email":"asha@example.com","password":"wrong"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_CREDENTIALS", body["code"])
}

func TestProfile_AnyRole(t *testing.T) {
	t.Setenv(jwtPkg.AccessTokenSecret, "secret")
	token, _, err := jwtPkg.Sign(map[string]interface{}{"id": "u7", "role": "teacher"}, time.Hour)
	require.NoError(t, err)

	app, _ := newTestApp(t)

	status, body := doJSON(t, app, "GET", "/auth/me", "", token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "u7", body["id"])

	status, _ = doJSON(t, app, "GET", "/auth/me", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
