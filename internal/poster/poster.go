package poster

import (
	"context"
	"fmt"
)

// PostResult identifies the reply that was created.
type PostResult struct {
	ID string
}

// PostErrorKind classifies posting failures for the cycle result.
type PostErrorKind string

const (
	PostErrAuth        PostErrorKind = "auth"
	PostErrRateLimited PostErrorKind = "rate-limited"
	PostErrRejected    PostErrorKind = "rejected"
)

// PostError wraps an upstream posting failure with its classification.
type PostError struct {
	Kind PostErrorKind
	Err  error
}

func (e *PostError) Error() string {
	return fmt.Sprintf("post failed (%s): %v", e.Kind, e.Err)
}

func (e *PostError) Unwrap() error { return e.Err }

// Poster publishes generated text, either against a source post or
// standalone. Posting is not undoable: once a call starts the orchestrator
// will not cancel it.
type Poster interface {
	PostReply(ctx context.Context, postID, text string) (PostResult, error)
	Quote(ctx context.Context, postID, text string) (PostResult, error)
	Post(ctx context.Context, text string) (PostResult, error)
	Ping(ctx context.Context) error
}
