package server

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/chatrelay/internal/config"
	"github.com/pscheid92/chatrelay/internal/domain"
	"github.com/pscheid92/chatrelay/internal/relay"
	"github.com/pscheid92/chatrelay/internal/upload"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeLoginStore struct {
	records map[string]domain.LoginRecord
	saveErr error
}

func newFakeLoginStore() *fakeLoginStore {
	return &fakeLoginStore{records: make(map[string]domain.LoginRecord)}
}

func (f *fakeLoginStore) Save(_ context.Context, username, country string) (domain.LoginRecord, error) {
	if f.saveErr != nil {
		return domain.LoginRecord{}, f.saveErr
	}
	record := domain.LoginRecord{Username: username, Country: country, Expires: time.Now().Add(7 * 24 * time.Hour)}
	f.records[username] = record
	return record, nil
}

func (f *fakeLoginStore) Get(_ context.Context, username string) (*domain.LoginRecord, error) {
	record, ok := f.records[username]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(_ context.Context) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	return goredis.NewStatusResult("PONG", nil)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:         "test",
		Port:           "0",
		UploadDir:      t.TempDir(),
		MaxConnections: 16,
		SweepInterval:  30 * time.Second,
		SessionTTL:     90 * time.Second,
		ChatRateLimit:  100,
		ChatRateBurst:  100,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, logins domain.LoginStore) *Server {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	if logins == nil {
		logins = newFakeLoginStore()
	}

	clock := clockwork.NewRealClock()
	hub := relay.NewHub(relay.Options{Clock: clock, SweepInterval: cfg.SweepInterval, SessionTTL: cfg.SessionTTL})
	t.Cleanup(hub.Stop)

	files, err := upload.NewDiskStore(cfg.UploadDir, clock)
	require.NoError(t, err)

	srv := NewServer(cfg, hub, logins, files, nil, clock)
	srv.redis = fakePinger{}
	return srv
}
