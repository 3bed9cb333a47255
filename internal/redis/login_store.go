package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const loginTTL = 7 * 24 * time.Hour

// LoginStore persists login records keyed by username. A second save for
// the same username replaces the prior record and restarts its expiry.
type LoginStore struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

func NewLoginStore(rdb *goredis.Client, clock clockwork.Clock) *LoginStore {
	return &LoginStore{rdb: rdb, clock: clock}
}

func (s *LoginStore) Save(ctx context.Context, username, country string) (domain.LoginRecord, error) {
	record := domain.LoginRecord{
		Username: username,
		Country:  country,
		Expires:  s.clock.Now().Add(loginTTL),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return domain.LoginRecord{}, fmt.Errorf("failed to marshal login record: %w", err)
	}

	if err := s.rdb.Set(ctx, loginKey(username), data, loginTTL).Err(); err != nil {
		return domain.LoginRecord{}, fmt.Errorf("failed to store login record: %w", err)
	}
	return record, nil
}

// Get returns the record for a username, or nil once it has expired or was
// never stored.
func (s *LoginStore) Get(ctx context.Context, username string) (*domain.LoginRecord, error) {
	result, err := s.rdb.Get(ctx, loginKey(username)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read login record: %w", err)
	}

	var record domain.LoginRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login record: %w", err)
	}
	return &record, nil
}

func loginKey(username string) string {
	return "login:" + username
}
