package history

import "context"

// Store is the set of post identifiers the bot has already acted on. Adding
// an identifier twice is a no-op; membership causes the orchestrator to skip
// the post before any generation happens.
//
// Durability is at-least-once: history is appended after the posting action,
// so a crash between posting and the append can produce one duplicate reply
// on restart. That window is accepted rather than papered over.
type Store interface {
	Contains(ctx context.Context, postID string) (bool, error)
	Add(ctx context.Context, postID string) error
	Len(ctx context.Context) (int, error)
	Close() error
}
