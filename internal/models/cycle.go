package models

import "time"

// Outcome classifies how a cycle ended. Skips are normal control flow, not
// errors; only external calls can produce OutcomeFailed.
type Outcome string

const (
	OutcomePosted  Outcome = "posted"
	OutcomeLogged  Outcome = "logged"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Skip reasons surfaced in cycle results and the status command.
const (
	ReasonNoPosts          = "no_posts"
	ReasonFilteredOut      = "filtered_out"
	ReasonNoSelection      = "no_selection"
	ReasonAlreadyReplied   = "already_replied"
	ReasonRateLimited      = "rate_limited"
	ReasonReplyProbability = "reply_probability"
	ReasonGenerationFailed = "generation_failed"
	ReasonCancelled        = "cancelled"
)

// GenFailure is the reason code attached to a failed generation.
type GenFailure string

const (
	GenFailureTimeout    GenFailure = "timeout"
	GenFailureConnection GenFailure = "connection"
	GenFailureEmpty      GenFailure = "empty"
	GenFailureEcho       GenFailure = "echo"
	GenFailureTooShort   GenFailure = "too_short"
	GenFailureGeneric    GenFailure = "generic"
)

// GeneratedResponse is the sanitized output of one generation attempt.
type GeneratedResponse struct {
	Text        string     `json:"text"`
	PostID      string     `json:"post_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Failure     GenFailure `json:"failure,omitempty"`
}

func (g GeneratedResponse) OK() bool { return g.Failure == "" }

// CycleResult is the structured record of one orchestrator cycle. The last
// result is persisted so the status command always reflects the most recent
// outcome classification.
type CycleResult struct {
	CycleID      string    `json:"cycle_id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Outcome      Outcome   `json:"outcome"`
	Reason       string    `json:"reason,omitempty"`
	Error        string    `json:"error,omitempty"`
	PostID       string    `json:"post_id,omitempty"`
	Strategy     string    `json:"strategy,omitempty"`
	Score        float64   `json:"score,omitempty"`
	Response     string    `json:"response,omitempty"`
	PostsFetched int       `json:"posts_fetched"`
	Candidates   int       `json:"candidates"`
}
