package voiceRepository

import (
	"context"
	"errors"
	"time"

	"Edunabha/internal/api/voice"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/redis"

	"github.com/sirupsen/logrus"
)

const keyPrefix = "voice:session:"

// Repository keeps navigation sessions in redis. Every write refreshes the
// expiry, so an abandoned dashboard simply times out. Save only updates a
// session that still exists; a deleted or expired one stays gone.
type Repository interface {
	Create(ctx context.Context, session entity.NavigationSession) error
	Get(ctx context.Context, id string) (entity.NavigationSession, error)
	Save(ctx context.Context, session entity.NavigationSession) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	store redis.IRedis
	log   *logrus.Logger
	ttl   time.Duration
}

func New(store redis.IRedis, log *logrus.Logger, ttl time.Duration) Repository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &repository{
		store: store,
		log:   log,
		ttl:   ttl,
	}
}

func (r *repository) Create(ctx context.Context, session entity.NavigationSession) error {
	if err := r.store.SetJSON(ctx, keyPrefix+session.ID, session, r.ttl); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to create navigation session")
		return err
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (entity.NavigationSession, error) {
	var session entity.NavigationSession
	if err := r.store.GetJSON(ctx, keyPrefix+id, &session); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.NavigationSession{}, voice.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": id,
			"error":      err.Error(),
		}).Error("Failed to load navigation session")
		return entity.NavigationSession{}, err
	}
	return session, nil
}

func (r *repository) Save(ctx context.Context, session entity.NavigationSession) error {
	if err := r.store.ReplaceJSON(ctx, keyPrefix+session.ID, session, r.ttl); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return voice.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": session.ID,
			"error":      err.Error(),
		}).Error("Failed to store navigation session")
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, keyPrefix+id)
	if errors.Is(err, redis.ErrNotFound) {
		return voice.ErrSessionNotFound
	}
	return err
}
