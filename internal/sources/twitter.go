package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

// TwitterSource reads the home timeline through the GraphQL endpoint the web
// client uses. Credentials come from the environment so they never land in
// the YAML file.
type TwitterSource struct {
	cfg    config.SourceConfig
	client *http.Client
}

func NewTwitterSource(cfg config.SourceConfig) *TwitterSource {
	return &TwitterSource{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.FetchTimeout) * time.Second,
		},
	}
}

func (s *TwitterSource) Name() string { return "twitter" }

func (s *TwitterSource) Fetch(ctx context.Context) ([]models.Post, error) {
	payload := map[string]any{
		"variables": map[string]any{
			"count":                  40,
			"includePromotedContent": false,
			"latestControlAvailable": true,
			"requestContext":         "launch",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	backoff := INITIAL_BACKOFF
	var lastErr error

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		s.setHeaders(req)

		res, err := s.client.Do(req)
		if err != nil {
			lastErr = &FetchError{Kind: FetchErrNetwork, Err: err}
			slog.Warn("[TwitterSource] Request failed",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
		} else {
			posts, retry, ferr := s.handleResponse(res)
			if ferr == nil {
				return posts, nil
			}
			lastErr = ferr
			if !retry {
				return nil, ferr
			}
			slog.Warn("[TwitterSource] Retrying after upstream error",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", ferr.Error()))
		}

		select {
		case <-ctx.Done():
			return nil, &FetchError{Kind: FetchErrNetwork, Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}
	return nil, lastErr
}

func (s *TwitterSource) handleResponse(res *http.Response) ([]models.Post, bool, error) {
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, false, &FetchError{Kind: FetchErrNetwork, Err: err}
		}
		posts, err := ParseTimeline(data)
		if err != nil {
			return nil, false, &FetchError{Kind: FetchErrNetwork, Err: err}
		}
		slog.Info("[TwitterSource] Fetched timeline", slog.Int("posts", len(posts)))
		return posts, false, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		io.Copy(io.Discard, res.Body)
		return nil, false, &FetchError{Kind: FetchErrAuth, Err: fmt.Errorf("status %d", res.StatusCode)}
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, res.Body)
		return nil, true, &FetchError{Kind: FetchErrRateLimited, Err: fmt.Errorf("status %d", res.StatusCode)}
	default:
		io.Copy(io.Discard, res.Body)
		retry := res.StatusCode >= 500
		return nil, retry, &FetchError{Kind: FetchErrNetwork, Err: fmt.Errorf("status %d", res.StatusCode)}
	}
}

func (s *TwitterSource) Ping(ctx context.Context) error {
	if s.cfg.APIURL == "" {
		return &FetchError{Kind: FetchErrAuth, Err: fmt.Errorf("api_url not configured")}
	}
	if s.bearerToken() == "" {
		return &FetchError{Kind: FetchErrAuth, Err: fmt.Errorf("TWITTER_READ_BEARER_TOKEN not set")}
	}
	return nil
}

func (s *TwitterSource) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.bearerToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	if cookie := os.Getenv("TWITTER_READ_COOKIE"); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	if csrf := os.Getenv("TWITTER_READ_CSRF_TOKEN"); csrf != "" {
		req.Header.Set("X-Csrf-Token", csrf)
	}
	req.Header.Set("Referer", "https://x.com/home")
}

func (s *TwitterSource) bearerToken() string {
	if s.cfg.BearerToken != "" {
		return s.cfg.BearerToken
	}
	return os.Getenv("TWITTER_READ_BEARER_TOKEN")
}

// Timeline response shapes, trimmed to the fields the bot reads.
type timelineResponse struct {
	Data struct {
		Home struct {
			HomeTimelineURT struct {
				Instructions []timelineInstruction `json:"instructions"`
			} `json:"home_timeline_urt"`
		} `json:"home"`
	} `json:"data"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
}

type timelineEntry struct {
	EntryID string `json:"entryId"`
	Content struct {
		PromotedMetadata json.RawMessage `json:"promotedMetadata"`
		ItemContent      struct {
			TweetResults struct {
				Result tweetResult `json:"result"`
			} `json:"tweet_results"`
		} `json:"itemContent"`
	} `json:"content"`
}

type tweetResult struct {
	Typename string `json:"__typename"`
	RestID   string `json:"rest_id"`
	Legacy   struct {
		FullText        string          `json:"full_text"`
		CreatedAt       string          `json:"created_at"`
		Lang            string          `json:"lang"`
		FavoriteCount   int             `json:"favorite_count"`
		RetweetCount    int             `json:"retweet_count"`
		ReplyCount      int             `json:"reply_count"`
		RetweetedStatus json.RawMessage `json:"retweeted_status"`
	} `json:"legacy"`
	Core struct {
		UserResults struct {
			Result struct {
				RestID string `json:"rest_id"`
				Legacy struct {
					ScreenName string `json:"screen_name"`
					Verified   bool   `json:"verified"`
				} `json:"legacy"`
				IsBlueVerified bool `json:"is_blue_verified"`
			} `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
}

// twitterTimeFormat is the legacy created_at layout, e.g.
// "Wed Oct 10 20:19:24 +0000 2018".
const twitterTimeFormat = "Mon Jan 02 15:04:05 -0700 2006"

// ParseTimeline extracts posts from a raw timeline response, skipping
// promoted entries and retweets.
func ParseTimeline(data []byte) ([]models.Post, error) {
	var resp timelineResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing timeline response: %w", err)
	}

	var posts []models.Post
	for _, instruction := range resp.Data.Home.HomeTimelineURT.Instructions {
		if instruction.Type != "TimelineAddEntries" {
			continue
		}
		for _, entry := range instruction.Entries {
			if len(entry.Content.PromotedMetadata) > 0 {
				continue
			}
			if strings.Contains(strings.ToLower(entry.EntryID), "promoted") {
				continue
			}

			tweet := entry.Content.ItemContent.TweetResults.Result
			if tweet.Typename != "Tweet" || tweet.RestID == "" || tweet.Legacy.FullText == "" {
				continue
			}
			if len(tweet.Legacy.RetweetedStatus) > 0 {
				continue
			}

			createdAt, _ := time.Parse(twitterTimeFormat, tweet.Legacy.CreatedAt)

			user := tweet.Core.UserResults.Result
			posts = append(posts, models.Post{
				ID:         tweet.RestID,
				AuthorID:   user.RestID,
				AuthorName: user.Legacy.ScreenName,
				Text:       tweet.Legacy.FullText,
				Likes:      tweet.Legacy.FavoriteCount,
				Reposts:    tweet.Legacy.RetweetCount,
				Replies:    tweet.Legacy.ReplyCount,
				CreatedAt:  createdAt,
				Verified:   user.Legacy.Verified || user.IsBlueVerified,
				Lang:       tweet.Legacy.Lang,
				Source:     "twitter",
			})
		}
	}
	return posts, nil
}
