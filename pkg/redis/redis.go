package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrTokenNotFound = errors.New("token not found or expired")

// IRedis stores the short lived one-shot tokens used for e-mail
// verification and password resets.
type IRedis interface {
	SetToken(ctx context.Context, key string, value string, expiration time.Duration) error
	GetToken(ctx context.Context, key string) (string, error)
	ConsumeToken(ctx context.Context, key string) (string, error)
	DeleteToken(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

type redisClient struct {
	client *redis.Client
	log    *logrus.Logger
}

func New(log *logrus.Logger) IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	log.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		log.Info("Successfully connected to Redis")
	}

	return NewWithClient(client, log)
}

func NewWithClient(client *redis.Client, log *logrus.Logger) IRedis {
	return &redisClient{client: client, log: log}
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisClient) SetToken(ctx context.Context, key string, value string, expiration time.Duration) error {
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		r.log.WithField("key", key).Error(fmt.Sprintf("Error setting token: %v", err))
		return err
	}
	return nil
}

func (r *redisClient) GetToken(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	} else if err != nil {
		r.log.WithField("key", key).Error(fmt.Sprintf("Error getting token: %v", err))
		return "", err
	}
	return val, nil
}

// ConsumeToken reads and removes key in one step so a token can only be
// redeemed once.
func (r *redisClient) ConsumeToken(ctx context.Context, key string) (string, error) {
	val, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	} else if err != nil {
		r.log.WithField("key", key).Error(fmt.Sprintf("Error consuming token: %v", err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) DeleteToken(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.WithField("key", key).Error(fmt.Sprintf("Error deleting token: %v", err))
		return err
	}
	return nil
}
