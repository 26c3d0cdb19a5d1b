package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/bot"
	"github.com/spacesedan/replyflow/internal/generator"
	"github.com/spacesedan/replyflow/internal/history"
	"github.com/spacesedan/replyflow/internal/logging"
	"github.com/spacesedan/replyflow/internal/poster"
	"github.com/spacesedan/replyflow/internal/ratelimit"
	"github.com/spacesedan/replyflow/internal/selection"
	"github.com/spacesedan/replyflow/internal/sources"
)

const usage = `usage: replyflow <command> [flags]

commands:
  run-once   execute a single cycle and exit
  start      run the poll loop until interrupted
  status     print the persisted status
  test       check connectivity of configured components
  config     print the effective config, or write the default file
`

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd := os.Args[1]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	configPath := fs.String("config", "replyflow.yaml", "path to the YAML config file")
	writeDefault := fs.Bool("write-default", false, "config: write the default config file and exit")
	fs.Parse(os.Args[2:])

	var err error
	switch cmd {
	case "run-once":
		err = runOnce(*configPath)
	case "start":
		err = start(*configPath)
	case "status":
		err = printStatus(*configPath)
	case "test":
		err = testComponents(*configPath)
	case "config":
		err = showConfig(*configPath, *writeDefault)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("[Main] Command failed",
			slog.String("command", cmd),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runOnce(configPath string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := a.bot.RunCycle(ctx)
	fmt.Printf("cycle %s: %s", result.CycleID, result.Outcome)
	if result.Reason != "" {
		fmt.Printf(" (%s)", result.Reason)
	}
	if result.PostID != "" {
		fmt.Printf(", post %s", result.PostID)
	}
	fmt.Println()
	if result.Outcome == "failed" {
		return fmt.Errorf("cycle failed: %s", result.Error)
	}
	return nil
}

func start(configPath string) error {
	a, err := buildApp(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Server.Enabled {
		// The server reads through the same instances the cycles write
		// through, so status reads serialize against cycle writes.
		srv := bot.NewStatusServer(a.cfg.Server.Addr, a.status, a.respLog)
		go srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	bot.NewScheduler(a.bot, a.cfg.FetchIntervalDuration()).Run(ctx)
	return nil
}

func printStatus(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	st, err := bot.NewStatusFile(cfg.History.StatusPath).Read()
	if err != nil {
		return err
	}

	fmt.Printf("cycles: %d (posted %d, logged %d, skipped %d, failed %d)\n",
		st.TotalCycles, st.Posted, st.Logged, st.Skipped, st.Failed)
	fmt.Printf("history size: %d\n", st.HistorySize)
	if st.LastCycle != nil {
		fmt.Printf("last cycle: %s at %s (%s",
			st.LastCycle.Outcome,
			st.LastCycle.FinishedAt.Format(time.RFC3339),
			st.LastCycle.Reason)
		if st.LastCycle.PostID != "" {
			fmt.Printf(", post %s", st.LastCycle.PostID)
		}
		fmt.Println(")")
	}
	return nil
}

func testComponents(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	src, err := sources.New(cfg.Source)
	if err != nil {
		return err
	}
	store, err := newHistoryStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var p poster.Poster
	if cfg.Reply.Mode != "log" {
		p = poster.NewTwitterPoster(time.Duration(cfg.Source.FetchTimeout) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	failed := false
	for _, check := range bot.CheckComponents(ctx, cfg, src, store, p) {
		if check.OK() {
			fmt.Printf("ok    %s\n", check.Component)
		} else {
			fmt.Printf("FAIL  %s: %v\n", check.Component, check.Err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("one or more component checks failed")
	}
	return nil
}

func showConfig(configPath string, writeDefault bool) error {
	if writeDefault {
		if err := config.WriteDefault(configPath); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", configPath)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	fmt.Printf("source: %s (interval %s)\n", cfg.Source.Type, cfg.FetchIntervalDuration())
	fmt.Printf("llm: %s", cfg.LLM.Model)
	if cfg.LLM.BaseURL != "" {
		fmt.Printf(" via %s", cfg.LLM.BaseURL)
	}
	fmt.Println()
	fmt.Printf("reply: mode=%s strategy=%s max/hour=%d probability=%.2f\n",
		cfg.Reply.Mode, cfg.Reply.Strategy, cfg.Reply.MaxPerHour, cfg.Reply.ReplyProbability)
	fmt.Printf("history: %s\n", cfg.History.Backend)
	return nil
}

func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Backend == "valkey" {
		return history.NewValkeyStore()
	}
	return history.NewFileStore(cfg.History.Path)
}

// app bundles the bot with the state-file instances it writes through, so
// the status server and commands read through the same mutexes.
type app struct {
	bot     *bot.Bot
	cfg     *config.Config
	respLog *bot.ResponseLogger
	status  *bot.StatusFile
}

func buildApp(configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	src, err := sources.New(cfg.Source)
	if err != nil {
		return nil, err
	}

	store, err := newHistoryStore(cfg)
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.New(cfg.Reply.MaxPerHour, cfg.History.RateStatePath,
		ratelimit.WithDelayRange(
			time.Duration(cfg.Reply.DelayMinSeconds)*time.Second,
			time.Duration(cfg.Reply.DelayMaxSeconds)*time.Second))
	if err != nil {
		return nil, err
	}

	strategy, err := selection.New(cfg.Reply.Strategy, selection.Options{
		MaxAge: time.Duration(cfg.Filter.MaxAgeHours * float64(time.Hour)),
	})
	if err != nil {
		return nil, err
	}

	respLog, err := bot.NewResponseLogger(cfg.Reply.ResponseLog)
	if err != nil {
		return nil, err
	}
	status := bot.NewStatusFile(cfg.History.StatusPath)

	var p poster.Poster
	if cfg.Reply.Mode != "log" {
		p = poster.NewTwitterPoster(time.Duration(cfg.Source.FetchTimeout) * time.Second)
	}

	gen := generator.New(cfg.LLM, cfg.Reply.MaxLength)

	b := bot.New(cfg, bot.Deps{
		Source:   src,
		Gen:      gen,
		Poster:   p,
		History:  store,
		Limiter:  limiter,
		Strategy: strategy,
		RespLog:  respLog,
		Status:   status,
	})
	return &app{bot: b, cfg: cfg, respLog: respLog, status: status}, nil
}
