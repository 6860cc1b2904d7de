package jwtPkg

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"Edunabha/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
	StudentLocalsKey  = "student"
)

var (
	ErrEmptyHeader   = errors.New("empty Authorization header")
	ErrInvalidFormat = errors.New("invalid Authorization format")
	ErrNoSecret      = errors.New("JWT secret not configured")
	ErrMissingClaims = errors.New("token claims are missing required fields")
)

func Sign(data map[string]interface{}, expiresIn time.Duration) (string, int64, error) {
	secret := os.Getenv(AccessTokenSecret)
	if secret == "" {
		return "", 0, ErrNoSecret
	}

	expiredAt := time.Now().Add(expiresIn).Unix()
	claims := jwt.MapClaims{"exp": expiredAt}
	for k, v := range data {
		claims[k] = v
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}

	return token, expiredAt, nil
}

// VerifyTokenHeader parses the bearer token of the request with the HMAC
// secret stored in secretEnvKey.
func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, ErrEmptyHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || accessToken == "" {
		return nil, ErrInvalidFormat
	}

	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return nil, ErrNoSecret
	}

	return jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
}

// StudentFromClaims reads the student identity out of verified claims.
func StudentFromClaims(claims jwt.MapClaims) (entity.StudentLoginData, error) {
	id, _ := claims["id"].(string)
	if id == "" {
		return entity.StudentLoginData{}, ErrMissingClaims
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return entity.StudentLoginData{ID: id, Name: name, Email: email, Role: entity.Role(role)}, nil
}

func GetStudentLoginData(c *fiber.Ctx) (entity.StudentLoginData, error) {
	student, ok := c.Locals(StudentLocalsKey).(entity.StudentLoginData)
	if !ok {
		return entity.StudentLoginData{}, fiber.ErrUnauthorized
	}
	return student, nil
}
