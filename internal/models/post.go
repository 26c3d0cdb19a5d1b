package models

import "time"

// Post is a single candidate post fetched from a source. It is immutable once
// fetched; the cycle that fetched it owns it for the duration of that cycle.
type Post struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	Likes      int       `json:"likes"`
	Reposts    int       `json:"reposts"`
	Replies    int       `json:"replies"`
	CreatedAt  time.Time `json:"created_at"`
	Verified   bool      `json:"verified"`
	Lang       string    `json:"lang"`
	Source     string    `json:"source"`
}

// Engagement is the raw engagement total used by the filter threshold.
func (p Post) Engagement() int {
	return p.Likes + p.Reposts + p.Replies
}

// Age reports how old the post is relative to now. Posts with a zero
// CreatedAt report a negative age so callers can treat them as malformed.
func (p Post) Age(now time.Time) time.Duration {
	if p.CreatedAt.IsZero() {
		return -1
	}
	return now.Sub(p.CreatedAt)
}
