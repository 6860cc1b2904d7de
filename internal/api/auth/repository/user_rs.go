package authRepository

import (
	"context"
	"database/sql"
	"errors"

	"Edunabha/internal/api/auth"
	"Edunabha/internal/entity"
	contextPkg "Edunabha/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

func (r *userRepository) CreateUser(ctx context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateUser, map[string]interface{}{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"password":   user.Password,
		"role":       string(user.Role),
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateUser")
		return err
	}

	if _, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"constraint": pqErr.Constraint,
			}).Warn("Email already exists")
			return auth.ErrEmailAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")
		return err
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (entity.User, error) {
	return r.getOne(ctx, queryGetByID, map[string]interface{}{"id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (entity.User, error) {
	return r.getOne(ctx, queryGetByEmail, map[string]interface{}{"email": email})
}

func (r *userRepository) getOne(ctx context.Context, namedQuery string, argsKV map[string]interface{}) (entity.User, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("User named query preparation err")
		return entity.User{}, err
	}

	var user entity.User
	if err := r.q.GetContext(ctx, &user, r.q.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when getting user")
		return entity.User{}, err
	}

	return user, nil
}
