package history

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyHistoryKey = "replyflow:replied_posts"

// ValkeyStore backs the history set with a Valkey SET. Useful when several
// deployments of the bot share one identity; the flat file remains the
// default backend.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore connects using VALKEY_INIT_ADDRESS / VALKEY_PASSWORD and
// verifies the connection with a ping.
func NewValkeyStore() (*ValkeyStore, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{os.Getenv("VALKEY_INIT_ADDRESS")},
		Password:         os.Getenv("VALKEY_PASSWORD"),
		ConnWriteTimeout: 5 * time.Second,
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[HistoryStore] creating valkey client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[HistoryStore] pinging valkey: %w", err)
	}

	slog.Info("[HistoryStore] Connected to valkey")
	return &ValkeyStore{client: client}, nil
}

func (s *ValkeyStore) Contains(ctx context.Context, postID string) (bool, error) {
	res := s.client.Do(ctx, s.client.B().Sismember().Key(valkeyHistoryKey).Member(postID).Build())
	if err := res.Error(); err != nil {
		return false, err
	}
	return res.AsBool()
}

func (s *ValkeyStore) Add(ctx context.Context, postID string) error {
	return s.client.Do(ctx, s.client.B().Sadd().Key(valkeyHistoryKey).Member(postID).Build()).Error()
}

func (s *ValkeyStore) Len(ctx context.Context) (int, error) {
	res := s.client.Do(ctx, s.client.B().Scard().Key(valkeyHistoryKey).Build())
	if err := res.Error(); err != nil {
		return 0, err
	}
	n, err := res.AsInt64()
	return int(n), err
}

func (s *ValkeyStore) Close() error {
	s.client.Close()
	return nil
}
