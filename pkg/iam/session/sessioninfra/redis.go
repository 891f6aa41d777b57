package sessioninfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Abraxas-365/nimbus/pkg/iam"
	"github.com/Abraxas-365/nimbus/pkg/iam/session"
)

// RedisStore keeps one hash per identity, expiring with the access token.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store whose keys start with prefix.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) key(identity iam.Identity) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, identity.IdentityPoolID, identity.IdentityID)
}

// Get implements session.Store.
func (s *RedisStore) Get(ctx context.Context, identity iam.Identity) (*session.Session, error) {
	records, err := s.rdb.HGetAll(ctx, s.key(identity)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("sessioninfra: redis get: %w", err)
	}
	if len(records) == 0 {
		return nil, session.ErrNotFound
	}
	return session.FromRecords(records)
}

// Save implements session.Writer. Sessions that already expired are not stored.
func (s *RedisStore) Save(ctx context.Context, identity iam.Identity, sess session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	records, err := sess.Records()
	if err != nil {
		return err
	}

	key := s.key(identity)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, records)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sessioninfra: redis save: %w", err)
	}
	return nil
}
