package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("key not found")

// IRedis stores JSON documents with an expiry.
type IRedis interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// ReplaceJSON overwrites an existing key and returns ErrNotFound when
	// the key is gone.
	ReplaceJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
	json   jsoniter.API
}

// New connects using REDIS_ADDRESS, REDIS_PASSWORD and REDIS_DB. A failed
// ping is logged, not fatal, so the server can start before redis does.
func New(log *logrus.Logger) IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}

	log.Infof("Connecting to Redis at %s...", addr)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	r := NewFromClient(log, client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.Ping(ctx); err != nil {
		log.WithField("error", err.Error()).Error("Failed to connect to Redis")
	} else {
		log.Info("Successfully connected to Redis")
	}

	return r
}

func NewFromClient(log *logrus.Logger, client *redis.Client) IRedis {
	return &redisClient{
		client: client,
		log:    log,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

func (r *redisClient) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := r.json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		r.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Error("Error setting key")
		return err
	}
	return nil
}

func (r *redisClient) ReplaceJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	payload, err := r.json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	replaced, err := r.client.SetXX(ctx, key, payload, expiration).Result()
	if err != nil {
		r.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Error("Error replacing key")
		return err
	}
	if !replaced {
		return ErrNotFound
	}
	return nil
}

func (r *redisClient) GetJSON(ctx context.Context, key string, dest interface{}) error {
	payload, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		r.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Error("Error getting key")
		return err
	}

	if err := r.json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) Delete(ctx context.Context, key string) error {
	removed, err := r.client.Del(ctx, key).Result()
	if err != nil {
		r.log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Error("Error deleting key")
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
