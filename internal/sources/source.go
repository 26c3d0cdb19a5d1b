package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 16 * time.Second
)

// Source fetches candidate posts from one upstream. Implementations are
// selected by source.type in the configuration, not detected at runtime.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Post, error)
	Ping(ctx context.Context) error
}

// FetchErrorKind classifies fetch failures for the cycle result.
type FetchErrorKind string

const (
	FetchErrAuth        FetchErrorKind = "auth"
	FetchErrNetwork     FetchErrorKind = "network"
	FetchErrRateLimited FetchErrorKind = "rate-limited"
)

// FetchError wraps an upstream failure with its classification.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// KindOf extracts the classification from err, defaulting to network.
func KindOf(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FetchErrNetwork
}

// New builds the configured source.
func New(cfg config.SourceConfig) (Source, error) {
	switch cfg.Type {
	case "twitter":
		return NewTwitterSource(cfg), nil
	case "reddit":
		return NewRedditSource(cfg), nil
	case "rss":
		return NewRSSSource(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported source type %q", cfg.Type)
	}
}
