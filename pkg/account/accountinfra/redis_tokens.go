package accountinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/playforge/login/pkg/account"
	"github.com/playforge/login/pkg/errx"
	"github.com/playforge/login/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore records active unique tokens. A token lives under its own
// key with a TTL matching the token expiry, and every account keeps a hash of
// system-name to token uuid so all of its tokens can be revoked at once.
type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) account.TokenStore {
	return &RedisTokenStore{rdb: rdb}
}

func tokenKey(uuid string) string { return fmt.Sprintf("access_token:%s", uuid) }

func accountTokensKey(a kernel.AccountID) string {
	return fmt.Sprintf("account_tokens:%s", a)
}

// Save records the token and drops the previous one issued to the same
// (account, name) pair, so re-login kicks the older session.
func (s *RedisTokenStore) Save(ctx context.Context, accountID kernel.AccountID, name, uuid string, expires time.Time) error {
	previous, err := s.rdb.HGet(ctx, accountTokensKey(accountID), name).Result()
	if err != nil && err != redis.Nil {
		return errx.Wrap(err, "failed to look up previous token")
	}

	ttl := time.Until(expires)
	if ttl <= 0 {
		return errx.Internal("token already expired")
	}

	pipe := s.rdb.TxPipeline()
	if previous != "" && previous != uuid {
		pipe.Del(ctx, tokenKey(previous))
	}
	pipe.Set(ctx, tokenKey(uuid), string(accountID), ttl)
	pipe.HSet(ctx, accountTokensKey(accountID), name, uuid)
	if _, err := pipe.Exec(ctx); err != nil {
		return errx.Wrap(err, "failed to save token").
			WithDetail("account", string(accountID))
	}
	return nil
}

func (s *RedisTokenStore) IsLive(ctx context.Context, uuid string) (bool, error) {
	n, err := s.rdb.Exists(ctx, tokenKey(uuid)).Result()
	if err != nil {
		return false, errx.Wrap(err, "failed to check token")
	}
	return n > 0, nil
}

func (s *RedisTokenStore) InvalidateAccount(ctx context.Context, accountID kernel.AccountID) error {
	names, err := s.rdb.HGetAll(ctx, accountTokensKey(accountID)).Result()
	if err != nil {
		return errx.Wrap(err, "failed to list account tokens")
	}
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, 0, len(names)+1)
	for _, uuid := range names {
		keys = append(keys, tokenKey(uuid))
	}
	keys = append(keys, accountTokensKey(accountID))
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return errx.Wrap(err, "failed to invalidate account tokens").
			WithDetail("account", string(accountID))
	}
	return nil
}
