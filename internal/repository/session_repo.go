// internal/repository/session_repo.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"tipkesho-settlement/internal/domain"
	"tipkesho-settlement/pkg/xerrors"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "tipkesho:session:"

type SessionRepository interface {
	Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepo struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) SessionRepository {
	return &sessionRepo{rdb: rdb}
}

func (r *sessionRepo) Save(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sessionKeyPrefix+sess.ID, data, ttl).Err()
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, xerrors.ErrSessionNotFound
		}
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
