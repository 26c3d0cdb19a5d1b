package sources

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

// RSSSource turns feed items into candidate posts. Feeds carry no engagement
// metrics, so the engagement threshold must be zero for items to pass the
// filter; useful for keyword-driven setups.
type RSSSource struct {
	cfg    config.SourceConfig
	parser *gofeed.Parser
}

func NewRSSSource(cfg config.SourceConfig) *RSSSource {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	return &RSSSource{cfg: cfg, parser: parser}
}

func (s *RSSSource) Name() string { return "rss" }

func (s *RSSSource) Fetch(ctx context.Context) ([]models.Post, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.FetchTimeout)*time.Second)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.cfg.FeedURL, fetchCtx)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrNetwork, Err: err}
	}

	var posts []models.Post
	for _, item := range feed.Items {
		if item.GUID == "" && item.Link == "" {
			continue
		}
		id := item.GUID
		if id == "" {
			id = item.Link
		}

		var createdAt time.Time
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		}

		author := feed.Title
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}

		text := item.Title
		if item.Description != "" {
			text = item.Title + "\n\n" + item.Description
		}

		posts = append(posts, models.Post{
			ID:         id,
			AuthorName: author,
			Text:       text,
			CreatedAt:  createdAt,
			Lang:       feed.Language,
			Source:     "rss",
		})
	}

	slog.Info("[RSSSource] Fetched feed",
		slog.String("feed", s.cfg.FeedURL),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func (s *RSSSource) Ping(ctx context.Context) error {
	if s.cfg.FeedURL == "" {
		return fmt.Errorf("feed_url not configured")
	}
	_, err := s.Fetch(ctx)
	return err
}
