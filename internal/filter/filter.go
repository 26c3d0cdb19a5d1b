package filter

import (
	"strings"
	"time"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
	"github.com/spacesedan/replyflow/internal/sentiment"
)

// Apply evaluates every post against the configured predicates and returns
// the ones that pass all of them, preserving input order. It has no side
// effects and no error conditions: posts missing a field fail the predicates
// that depend on that field.
func Apply(posts []models.Post, cfg config.FilterConfig, now time.Time) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if Passes(p, cfg, now) {
			out = append(out, p)
		}
	}
	return out
}

// Passes reports whether a single post clears every predicate.
func Passes(p models.Post, cfg config.FilterConfig, now time.Time) bool {
	if p.Engagement() < cfg.MinEngagement {
		return false
	}
	if !recentEnough(p, cfg, now) {
		return false
	}
	if !languageMatches(p, cfg) {
		return false
	}
	if !passesKeywords(p, cfg) {
		return false
	}
	if !passesSentiment(p, cfg) {
		return false
	}
	return true
}

func recentEnough(p models.Post, cfg config.FilterConfig, now time.Time) bool {
	if cfg.MaxAgeHours <= 0 {
		return true
	}
	age := p.Age(now)
	if age < 0 {
		// No timestamp to check against, fail closed.
		return false
	}
	return age <= time.Duration(cfg.MaxAgeHours*float64(time.Hour))
}

func languageMatches(p models.Post, cfg config.FilterConfig) bool {
	if cfg.Language == "" {
		return true
	}
	return strings.EqualFold(p.Lang, cfg.Language)
}

// passesKeywords applies the exclude list first: an excluded keyword rejects
// the post even when an include keyword also matches.
func passesKeywords(p models.Post, cfg config.FilterConfig) bool {
	text := strings.ToLower(p.Text)

	for _, kw := range cfg.KeywordsExclude {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return false
		}
	}

	if len(cfg.KeywordsInclude) == 0 {
		return true
	}
	if text == "" {
		return false
	}
	for _, kw := range cfg.KeywordsInclude {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func passesSentiment(p models.Post, cfg config.FilterConfig) bool {
	if cfg.MinSentiment == nil {
		return true
	}
	if p.Text == "" {
		return false
	}
	score, _ := sentiment.AnalyzeWithVADER(p.Text)
	return score >= *cfg.MinSentiment
}
