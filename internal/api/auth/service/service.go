package authService

import (
	"context"
	"time"

	"Edunabha/internal/api/auth"
	authRepository "Edunabha/internal/api/auth/repository"
	"Edunabha/pkg/bcrypt"
	"Edunabha/pkg/utils"

	"github.com/sirupsen/logrus"
)

const defaultTokenTTL = 24 * time.Hour

type IAuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (auth.UserResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	Profile(ctx context.Context, userID string) (auth.UserResponse, error)
}

type authService struct {
	log      *logrus.Logger
	repo     authRepository.Repository
	bcrypt   bcrypt.IBcrypt
	utils    utils.IUtils
	tokenTTL time.Duration
	now      func() time.Time
}

type Option func(*authService)

// WithTokenTTL sets the lifetime of issued access tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *authService) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

func New(
	log *logrus.Logger,
	repo authRepository.Repository,
	bcrypt bcrypt.IBcrypt,
	utils utils.IUtils,
	opts ...Option,
) IAuthService {
	s := &authService{
		log:      log,
		repo:     repo,
		bcrypt:   bcrypt,
		utils:    utils,
		tokenTTL: defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
