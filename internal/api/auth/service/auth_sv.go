package authService

import (
	"context"
	"errors"
	"strings"

	"Edunabha/internal/api/auth"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"
	jwtPkg "Edunabha/pkg/jwt"

	"github.com/sirupsen/logrus"
)

func (s *authService) Register(ctx context.Context, req auth.RegisterRequest) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	hashed, err := s.bcrypt.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.UserResponse{}, err
	}

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return auth.UserResponse{}, err
	}

	role := entity.Role(req.Role)
	if role == "" {
		role = entity.RoleStudent
	}

	user := entity.User{
		ID:        id,
		Name:      strings.TrimSpace(req.Name),
		Email:     normalizeEmail(req.Email),
		Password:  hashed,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.UserResponse{}, err
	}

	if err := repo.Users.CreateUser(ctx, user); err != nil {
		return auth.UserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    user.ID,
		"role":       user.Role,
	}).Info("User registered")

	return toUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginResponse{}, err
	}

	user, err := repo.Users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithField("request_id", requestID).Warn("Login for unknown email")
			return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
		}
		return auth.LoginResponse{}, err
	}

	if err := s.bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    user.ID,
		}).Warn("Login with wrong password")
		return auth.LoginResponse{}, auth.ErrInvalidEmailOrPassword
	}

	token, expiresAt, err := jwtPkg.Sign(map[string]interface{}{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}, s.tokenTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return auth.LoginResponse{}, err
	}

	return auth.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (auth.UserResponse, error) {
	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(ctx, userID)
	if err != nil {
		return auth.UserResponse{}, err
	}
	return toUserResponse(user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(user entity.User) auth.UserResponse {
	return auth.UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}
