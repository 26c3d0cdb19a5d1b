package bot

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/filter"
	"github.com/spacesedan/replyflow/internal/history"
	"github.com/spacesedan/replyflow/internal/models"
	"github.com/spacesedan/replyflow/internal/poster"
	"github.com/spacesedan/replyflow/internal/ratelimit"
	"github.com/spacesedan/replyflow/internal/selection"
	"github.com/spacesedan/replyflow/internal/sources"
)

// ReplyGenerator is the model-backend boundary the orchestrator drives.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, post models.Post) models.GeneratedResponse
	GenerateQuote(ctx context.Context, post models.Post) models.GeneratedResponse
}

// Bot runs the posting pipeline. One cycle walks
// fetch -> filter -> select -> history -> rate limit -> generate -> sanitize
// -> post-or-log -> record, handling at most one post per cycle. Any stage
// may short-circuit back to idle with a skip reason; skips are normal
// outcomes, not errors.
type Bot struct {
	cfg      *config.Config
	source   sources.Source
	gen      ReplyGenerator
	poster   poster.Poster
	history  history.Store
	limiter  *ratelimit.Limiter
	strategy selection.Strategy
	respLog  *ResponseLogger
	status   *StatusFile

	rng   *rand.Rand
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Deps bundles the collaborators a Bot needs. Tests swap in fakes.
type Deps struct {
	Source   sources.Source
	Gen      ReplyGenerator
	Poster   poster.Poster
	History  history.Store
	Limiter  *ratelimit.Limiter
	Strategy selection.Strategy
	RespLog  *ResponseLogger
	Status   *StatusFile

	// Rand, Now and Sleep default to real implementations when nil.
	Rand  *rand.Rand
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, deps Deps) *Bot {
	b := &Bot{
		cfg:      cfg,
		source:   deps.Source,
		gen:      deps.Gen,
		poster:   deps.Poster,
		history:  deps.History,
		limiter:  deps.Limiter,
		strategy: deps.Strategy,
		respLog:  deps.RespLog,
		status:   deps.Status,
		rng:      deps.Rand,
		now:      deps.Now,
		sleep:    deps.Sleep,
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.sleep == nil {
		b.sleep = sleepCtx
	}
	return b
}

// RunCycle executes one full cycle and persists its result. The context is
// honored at every suspension point before posting; once the posting call
// starts, the cycle runs to completion so the posted reply is always
// recorded.
func (b *Bot) RunCycle(ctx context.Context) models.CycleResult {
	result := models.CycleResult{
		CycleID:   uuid.NewString(),
		StartedAt: b.now(),
		Strategy:  b.strategy.Name(),
	}

	defer func() {
		result.FinishedAt = b.now()
		b.recordStatus(result)
		slog.Info("[Bot] Cycle finished",
			slog.String("cycle_id", result.CycleID),
			slog.String("outcome", string(result.Outcome)),
			slog.String("reason", result.Reason),
			slog.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))
	}()

	// FETCHING
	posts, err := b.source.Fetch(ctx)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Reason = "fetch_" + string(sources.KindOf(err))
		result.Error = err.Error()
		return result
	}
	result.PostsFetched = len(posts)
	if len(posts) == 0 {
		return skip(result, models.ReasonNoPosts)
	}

	// FILTERING
	candidates := filter.Apply(posts, b.cfg.Filter, b.now())
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return skip(result, models.ReasonFilteredOut)
	}

	// SELECTING
	selected := b.strategy.Select(candidates)
	if selected.Post == nil {
		return skip(result, models.ReasonNoSelection)
	}
	result.PostID = selected.Post.ID
	result.Score = selected.Score

	// CHECKING_HISTORY
	seen, err := b.history.Contains(ctx, selected.Post.ID)
	if err != nil {
		result.Outcome = models.OutcomeFailed
		result.Reason = "history_error"
		result.Error = err.Error()
		return result
	}
	if seen {
		return skip(result, models.ReasonAlreadyReplied)
	}

	// CHECKING_RATE_LIMIT
	if !b.limiter.Allow() {
		return skip(result, models.ReasonRateLimited)
	}
	if b.cfg.Reply.ReplyProbability < 1 && b.rng.Float64() > b.cfg.Reply.ReplyProbability {
		return skip(result, models.ReasonReplyProbability)
	}

	// GENERATING + SANITIZING
	action := b.pickAction()
	var generated models.GeneratedResponse
	if action == "quote" {
		generated = b.gen.GenerateQuote(ctx, *selected.Post)
	} else {
		generated = b.gen.GenerateReply(ctx, *selected.Post)
	}
	if !generated.OK() {
		result.Error = string(generated.Failure)
		return skip(result, models.ReasonGenerationFailed)
	}
	result.Response = generated.Text

	// POSTING_OR_LOGGING
	mode := b.cfg.Reply.Mode
	logged := false
	if mode == "log" || mode == "both" {
		entry := LogEntry{
			Timestamp: b.now(),
			CycleID:   result.CycleID,
			PostID:    selected.Post.ID,
			Author:    selected.Post.AuthorName,
			Post:      selected.Post.Text,
			Response:  generated.Text,
			Action:    action,
			WouldPost: mode == "log",
			Strategy:  selected.Strategy,
			Score:     selected.Score,
		}
		if err := b.respLog.Log(entry); err != nil {
			slog.Error("[Bot] Failed to write response log",
				slog.String("post_id", selected.Post.ID),
				slog.String("error", err.Error()))
		}
		logged = true
	}

	posted := false
	if mode == "post" || mode == "both" {
		// Randomized pause before posting; a scheduling decision, cancellable.
		if delay := b.limiter.Delay(); delay > 0 {
			slog.Debug("[Bot] Delaying before post", slog.Duration("delay", delay))
			if err := b.sleep(ctx, delay); err != nil {
				return skip(result, models.ReasonCancelled)
			}
		}

		// Point of no return: posting is not undoable, so it is detached
		// from the caller's cancellation.
		postCtx := context.WithoutCancel(ctx)
		var postErr error
		if action == "quote" {
			_, postErr = b.poster.Quote(postCtx, selected.Post.ID, generated.Text)
		} else {
			_, postErr = b.poster.PostReply(postCtx, selected.Post.ID, generated.Text)
		}
		if postErr != nil {
			result.Outcome = models.OutcomeFailed
			result.Reason = "post_failed"
			result.Error = postErr.Error()
			return result
		}
		posted = true

		if err := b.limiter.Record(); err != nil {
			slog.Error("[Bot] Failed to persist rate state", slog.String("error", err.Error()))
		}
	}

	// RECORDING. History is appended after the action; a crash in between
	// can duplicate one reply after restart (accepted at-least-once window).
	if err := b.history.Add(context.WithoutCancel(ctx), selected.Post.ID); err != nil {
		slog.Error("[Bot] Failed to append history",
			slog.String("post_id", selected.Post.ID),
			slog.String("error", err.Error()))
	}

	if posted {
		result.Outcome = models.OutcomePosted
	} else if logged {
		result.Outcome = models.OutcomeLogged
	} else {
		result.Outcome = models.OutcomeSkipped
	}
	return result
}

func (b *Bot) pickAction() string {
	if b.cfg.Reply.QuoteRatio > 0 && b.rng.Float64() < b.cfg.Reply.QuoteRatio {
		return "quote"
	}
	return "reply"
}

func (b *Bot) recordStatus(result models.CycleResult) {
	if b.status == nil {
		return
	}
	size, err := b.history.Len(context.Background())
	if err != nil {
		size = -1
	}
	if err := b.status.Record(result, size); err != nil {
		slog.Error("[Bot] Failed to persist status", slog.String("error", err.Error()))
	}
}

func skip(result models.CycleResult, reason string) models.CycleResult {
	result.Outcome = models.OutcomeSkipped
	result.Reason = reason
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
