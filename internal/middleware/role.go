package middleware

import (
	"Edunabha/internal/entity"
	jwtPkg "Edunabha/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// NewStudentOnly must run after NewTokenMiddleware. Teacher and parent
// accounts may sign in but cannot drive a learning session.
func (m *middleware) NewStudentOnly(ctx *fiber.Ctx) error {
	student, ok := ctx.Locals(jwtPkg.StudentLocalsKey).(entity.StudentLoginData)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": unauthorizedMessage,
		})
	}

	if !student.IsStudent() {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"user_id":    student.ID,
			"role":       student.Role,
		}).Warn("Non-student account rejected")
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Only student accounts can use this feature",
		})
	}

	return ctx.Next()
}
