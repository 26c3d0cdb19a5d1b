package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const summaryMaxLen = 280

// MaybePostSummary publishes a once-per-day recap of the trailing 24 hours
// of activity, after the configured hour. The marker persisted in the status
// file survives restarts, so a bounce within the same day never repeats the
// recap. Delivery follows the reply mode: logged in log mode, published in
// post mode, both in both.
func (b *Bot) MaybePostSummary(ctx context.Context) (bool, error) {
	if !b.cfg.Summary.Enabled || b.status == nil {
		return false, nil
	}

	now := b.now()
	if now.Hour() < b.cfg.Summary.Hour {
		return false, nil
	}

	st, err := b.status.Read()
	if err != nil {
		return false, err
	}
	if sameDay(st.LastSummary, now) {
		return false, nil
	}

	entries, err := b.respLog.Recent(now.Add(-24 * time.Hour))
	if err != nil {
		return false, err
	}

	text := BuildSummary(entries, now)
	if text == "" {
		// Nothing happened; try again tomorrow without burning the marker.
		return false, nil
	}

	mode := b.cfg.Reply.Mode
	if mode == "log" || mode == "both" {
		entry := LogEntry{
			Timestamp: now,
			Response:  text,
			Action:    "summary",
			WouldPost: mode == "log",
		}
		if err := b.respLog.Log(entry); err != nil {
			slog.Error("[Bot] Failed to log daily summary", slog.String("error", err.Error()))
		}
	}
	if mode == "post" || mode == "both" {
		if _, err := b.poster.Post(context.WithoutCancel(ctx), text); err != nil {
			return false, err
		}
	}

	if err := b.status.MarkSummaryPosted(now); err != nil {
		slog.Error("[Bot] Failed to persist summary marker", slog.String("error", err.Error()))
	}
	slog.Info("[Bot] Daily summary delivered",
		slog.String("mode", mode),
		slog.Int("entries", len(entries)))
	return true, nil
}

// BuildSummary renders the recap text from the day's response-log entries.
// Previous summaries in the log are ignored; an empty activity window yields
// an empty string.
func BuildSummary(entries []LogEntry, now time.Time) string {
	var replies, quotes int
	var top *LogEntry
	for i := range entries {
		switch entries[i].Action {
		case "reply":
			replies++
		case "quote":
			quotes++
		default:
			continue
		}
		if top == nil || entries[i].Score > top.Score {
			top = &entries[i]
		}
	}
	if replies+quotes == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Daily recap (%s): ", now.Format("Jan 2"))
	parts := []string{}
	if replies > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", replies, plural(replies, "reply", "replies")))
	}
	if quotes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", quotes, plural(quotes, "quote", "quotes")))
	}
	sb.WriteString(strings.Join(parts, " and "))
	sb.WriteString(" in the last 24h.")

	if top != nil && top.Author != "" {
		line := fmt.Sprintf(" Best conversation: @%s on %q.", top.Author, excerpt(top.Post, 80))
		if sb.Len()+len(line) <= summaryMaxLen {
			sb.WriteString(line)
		}
	}
	return sb.String()
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// excerpt trims text to limit bytes at a whitespace boundary.
func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= limit {
		return text
	}
	cut := text[:limit]
	if idx := strings.LastIndexAny(cut, " \t"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}
