package middleware

import (
	jwtPkg "Edunabha/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const unauthorizedMessage = "Unauthorized, access token invalid or expired"

// NewTokenMiddleware resolves the student from the bearer token. Browsers
// cannot set headers on a websocket handshake, so an access_token query
// parameter is accepted in its place.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	requestID := m.GetRequestID(ctx)

	if ctx.Get(fiber.HeaderAuthorization) == "" {
		if token := ctx.Query("access_token"); token != "" {
			ctx.Request().Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
	}

	token, err := jwtPkg.VerifyTokenHeader(ctx, jwtPkg.AccessTokenSecret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	student, err := jwtPkg.StudentFromClaims(claims)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Token claims check")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	ctx.Locals(jwtPkg.StudentLocalsKey, student)
	return ctx.Next()
}
