package jwtPkg

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Setenv(AccessTokenSecret, "test-secret")

	token, exp, err := Sign(map[string]interface{}{"id": "stu-1", "name": "Asha"}, time.Hour)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		parsed, err := VerifyTokenHeader(c, AccessTokenSecret)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		student, err := StudentFromClaims(parsed.Claims.(jwt.MapClaims))
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(student.ID + ":" + student.Name)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	bad := httptest.NewRequest("GET", "/", nil)
	bad.Header.Set("Authorization", "Token "+token)
	resp, err = app.Test(bad)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStudentFromClaims_RequiresID(t *testing.T) {
	_, err := StudentFromClaims(jwt.MapClaims{"name": "x"})
	assert.ErrorIs(t, err, ErrMissingClaims)
}

func TestSign_WithoutSecret(t *testing.T) {
	t.Setenv(AccessTokenSecret, "")
	_, _, err := Sign(nil, time.Minute)
	assert.ErrorIs(t, err, ErrNoSecret)
}
