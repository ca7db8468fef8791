package accesstokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lanzath/authapi/internal/common"
	"github.com/lanzath/authapi/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "authapi:access_token:"

	maxRevokeAttempts = 5
)

type redisRecord struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// RedisRepository stores each token as a JSON document under its own key.
// Keys carry no TTL: an expired token stays readable so lookups can tell
// "expired" apart from "unknown".
type RedisRepository struct {
	rdb *redis.Client
}

// NewRedisRepository returns a repository using rdb.
func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) Create(ctx context.Context, token *models.AccessToken) error {
	payload, err := json.Marshal(redisRecord{
		UserID:    token.UserID,
		Name:      token.Name,
		IssuedAt:  token.IssuedAt,
		ExpiresAt: token.ExpiresAt,
		Revoked:   token.Revoked,
	})
	if err != nil {
		return err
	}

	ok, err := r.rdb.SetNX(ctx, redisKey(token.Hash), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *RedisRepository) FindByHash(ctx context.Context, hash string) (*models.AccessToken, error) {
	data, err := r.rdb.Get(ctx, redisKey(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return decodeRecord(hash, data)
}

func (r *RedisRepository) Revoke(ctx context.Context, hash string) error {
	key := redisKey(hash)

	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return common.ErrorNotFound
			}
			return err
		}

		var rec redisRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}
		if rec.Revoked {
			return nil
		}
		rec.Revoked = true

		payload, err := json.Marshal(&rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxRevokeAttempts; i++ {
		err := r.rdb.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("redis error: %w", err)
		}
		return err
	}
	return fmt.Errorf("redis error: %w", redis.TxFailedErr)
}

func decodeRecord(hash string, data []byte) (*models.AccessToken, error) {
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis error: decode token: %w", err)
	}
	return &models.AccessToken{
		Hash:      hash,
		UserID:    rec.UserID,
		Name:      rec.Name,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
		Revoked:   rec.Revoked,
	}, nil
}

func redisKey(hash string) string {
	return redisKeyPrefix + hash
}
