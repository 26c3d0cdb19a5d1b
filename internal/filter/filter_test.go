package filter

import (
	"testing"
	"time"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func post(id string, mutate func(*models.Post)) models.Post {
	p := models.Post{
		ID:        id,
		AuthorID:  "a1",
		Text:      "interesting take on go generics",
		Likes:     10,
		CreatedAt: now.Add(-time.Hour),
		Lang:      "en",
	}
	if mutate != nil {
		mutate(&p)
	}
	return p
}

func TestPassesEngagementBoundary(t *testing.T) {
	cfg := config.FilterConfig{MinEngagement: 5}

	tests := []struct {
		name string
		post models.Post
		want bool
	}{
		{"above threshold", post("p1", func(p *models.Post) { p.Likes = 6 }), true},
		{"exactly at threshold", post("p2", func(p *models.Post) { p.Likes = 5 }), true},
		{"below threshold", post("p3", func(p *models.Post) { p.Likes = 4 }), false},
		{"sums all engagement fields", post("p4", func(p *models.Post) {
			p.Likes = 1
			p.Reposts = 2
			p.Replies = 2
		}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passes(tt.post, cfg, now); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesAge(t *testing.T) {
	cfg := config.FilterConfig{MaxAgeHours: 24}

	tests := []struct {
		name string
		post models.Post
		want bool
	}{
		{"recent", post("p1", nil), true},
		{"exactly at limit", post("p2", func(p *models.Post) { p.CreatedAt = now.Add(-24 * time.Hour) }), true},
		{"too old", post("p3", func(p *models.Post) { p.CreatedAt = now.Add(-25 * time.Hour) }), false},
		{"missing timestamp fails closed", post("p4", func(p *models.Post) { p.CreatedAt = time.Time{} }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passes(tt.post, cfg, now); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesAgeDisabled(t *testing.T) {
	// With no age limit a missing timestamp is not checked at all.
	p := post("p1", func(p *models.Post) { p.CreatedAt = time.Time{} })
	if !Passes(p, config.FilterConfig{}, now) {
		t.Error("expected pass when age filtering is disabled")
	}
}

func TestPassesLanguage(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.FilterConfig
		post models.Post
		want bool
	}{
		{"match", config.FilterConfig{Language: "en"}, post("p1", nil), true},
		{"case insensitive", config.FilterConfig{Language: "EN"}, post("p2", nil), true},
		{"mismatch", config.FilterConfig{Language: "en"}, post("p3", func(p *models.Post) { p.Lang = "de" }), false},
		{"missing lang fails closed", config.FilterConfig{Language: "en"}, post("p4", func(p *models.Post) { p.Lang = "" }), false},
		{"no requirement", config.FilterConfig{}, post("p5", func(p *models.Post) { p.Lang = "" }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Passes(tt.post, tt.cfg, now); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesKeywords(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.FilterConfig
		text string
		want bool
	}{
		{"exclude rejects", config.FilterConfig{KeywordsExclude: []string{"giveaway"}}, "huge GIVEAWAY today", false},
		{"include requires match", config.FilterConfig{KeywordsInclude: []string{"golang"}}, "nothing relevant here", false},
		{"include matches", config.FilterConfig{KeywordsInclude: []string{"golang"}}, "learning Golang this week", true},
		{
			"exclude wins over include",
			config.FilterConfig{KeywordsInclude: []string{"golang"}, KeywordsExclude: []string{"spam"}},
			"golang spam thread",
			false,
		},
		{"empty text fails include", config.FilterConfig{KeywordsInclude: []string{"golang"}}, "", false},
		{"empty text passes without include list", config.FilterConfig{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := post("p1", func(p *models.Post) { p.Text = tt.text })
			if got := Passes(p, tt.cfg, now); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPassesSentiment(t *testing.T) {
	permissive := -1.0
	strict := 0.9

	tests := []struct {
		name string
		cfg  config.FilterConfig
		text string
		want bool
	}{
		{"disabled", config.FilterConfig{}, "this is terrible and awful", true},
		{"permissive floor", config.FilterConfig{MinSentiment: &permissive}, "I love this, great work", true},
		{"strict floor rejects negative", config.FilterConfig{MinSentiment: &strict}, "I hate this, terrible and awful", false},
		{"empty text fails closed", config.FilterConfig{MinSentiment: &permissive}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := post("p1", func(p *models.Post) { p.Text = tt.text })
			if got := Passes(p, tt.cfg, now); got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	posts := []models.Post{
		post("a", nil),
		post("b", func(p *models.Post) { p.Likes = 0 }),
		post("c", nil),
		post("d", nil),
	}

	got := Apply(posts, config.FilterConfig{MinEngagement: 5}, now)

	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("Apply() returned %d posts, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Apply()[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestApplyEmptyInput(t *testing.T) {
	if got := Apply(nil, config.FilterConfig{}, now); len(got) != 0 {
		t.Errorf("Apply(nil) returned %d posts, want 0", len(got))
	}
}
