package bot

import (
	"context"
	"fmt"
	"os"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/history"
	"github.com/spacesedan/replyflow/internal/poster"
	"github.com/spacesedan/replyflow/internal/sources"
)

// CheckResult is one component connectivity check from the test command.
type CheckResult struct {
	Component string
	Err       error
}

func (c CheckResult) OK() bool { return c.Err == nil }

// CheckComponents pings each configured dependency without running a cycle
// or posting anything.
func CheckComponents(ctx context.Context, cfg *config.Config, src sources.Source, store history.Store, p poster.Poster) []CheckResult {
	var checks []CheckResult

	checks = append(checks, CheckResult{
		Component: fmt.Sprintf("source (%s)", src.Name()),
		Err:       src.Ping(ctx),
	})

	_, err := store.Len(ctx)
	checks = append(checks, CheckResult{
		Component: fmt.Sprintf("history (%s)", cfg.History.Backend),
		Err:       err,
	})

	var llmErr error
	if os.Getenv("OPENAI_API_KEY") == "" && cfg.LLM.BaseURL == "" {
		llmErr = fmt.Errorf("OPENAI_API_KEY not set and no llm.base_url configured")
	}
	checks = append(checks, CheckResult{Component: "llm (" + cfg.LLM.Model + ")", Err: llmErr})

	if cfg.Reply.Mode != "log" && p != nil {
		checks = append(checks, CheckResult{Component: "poster", Err: p.Ping(ctx)})
	}

	return checks
}
