package selection

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spacesedan/replyflow/internal/models"
)

// Result is the outcome of a selection pass: at most one chosen post, its
// score, and the strategy that produced it. A nil Post means no selection.
type Result struct {
	Post     *models.Post
	Score    float64
	Strategy string
}

// Strategy picks zero or one post from a filtered candidate set. Given the
// same input, a strategy returns the same result on every call; the only
// sanctioned randomness lives in the random strategy's injected source.
type Strategy interface {
	Name() string
	Select(candidates []models.Post) Result
}

// Options carries the knobs individual strategies need.
type Options struct {
	// Rand seeds the random strategy. Nil falls back to a time-seeded source.
	Rand *rand.Rand
	// MaxAge bounds the recency factor of the selective strategy.
	MaxAge time.Duration
	// Now supplies the clock for age computations. Nil means time.Now.
	Now func() time.Time
}

// New builds the strategy named by the configuration value.
func New(name string, opts Options) (Strategy, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	switch name {
	case "random":
		rng := opts.Rand
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		return &randomStrategy{rng: rng}, nil
	case "engagement_based":
		return engagementStrategy{}, nil
	case "selective":
		return selectiveStrategy{maxAge: opts.MaxAge, now: opts.Now}, nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q", name)
	}
}

type randomStrategy struct {
	rng *rand.Rand
}

func (s *randomStrategy) Name() string { return "random" }

func (s *randomStrategy) Select(candidates []models.Post) Result {
	if len(candidates) == 0 {
		return Result{Strategy: s.Name()}
	}
	pick := candidates[s.rng.Intn(len(candidates))]
	return Result{Post: &pick, Score: 1, Strategy: s.Name()}
}

type engagementStrategy struct{}

func (engagementStrategy) Name() string { return "engagement_based" }

// Score weights replies double: a reply is a stronger engagement signal than
// a like or a repost.
func (engagementStrategy) score(p models.Post) float64 {
	return float64(p.Likes + p.Reposts + 2*p.Replies)
}

func (s engagementStrategy) Select(candidates []models.Post) Result {
	return pickMax(candidates, s.Name(), s.score)
}

type selectiveStrategy struct {
	maxAge time.Duration
	now    func() time.Time
}

func (selectiveStrategy) Name() string { return "selective" }

func (s selectiveStrategy) Select(candidates []models.Post) Result {
	if len(candidates) == 0 {
		return Result{Strategy: s.Name()}
	}

	// Normalization floor of 1 keeps an all-zero-engagement set well defined.
	maxEngagement := 1
	for _, p := range candidates {
		if e := p.Engagement(); e > maxEngagement {
			maxEngagement = e
		}
	}

	now := s.now()
	return pickMax(candidates, s.Name(), func(p models.Post) float64 {
		normalized := float64(p.Engagement()) / float64(maxEngagement)

		recency := 0.0
		if s.maxAge > 0 && !p.CreatedAt.IsZero() {
			ageRatio := float64(now.Sub(p.CreatedAt)) / float64(s.maxAge)
			if r := 1 - ageRatio; r > 0 {
				recency = r
			}
		}

		verification := 0.0
		if p.Verified {
			verification = 1.0
		}

		return 0.4*normalized + 0.3*recency + 0.3*verification
	})
}

// pickMax returns the highest-scoring candidate. Ties go to the lexically
// smallest post ID so repeated runs over a reordered input stay reproducible.
func pickMax(candidates []models.Post, strategy string, score func(models.Post) float64) Result {
	if len(candidates) == 0 {
		return Result{Strategy: strategy}
	}

	best := candidates[0]
	bestScore := score(best)
	for _, p := range candidates[1:] {
		s := score(p)
		if s > bestScore || (s == bestScore && p.ID < best.ID) {
			best = p
			bestScore = s
		}
	}
	return Result{Post: &best, Score: bestScore, Strategy: strategy}
}
