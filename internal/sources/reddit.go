package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

const (
	redditAuthURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIURL  = "https://oauth.reddit.com"
)

// RedditSource fetches new posts from the configured subreddits using the
// client-credentials OAuth flow.
type RedditSource struct {
	cfg    config.SourceConfig
	oauth  *clientcredentials.Config
	client *http.Client
}

func NewRedditSource(cfg config.SourceConfig) *RedditSource {
	oauthConf := &clientcredentials.Config{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		TokenURL:     redditAuthURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return &RedditSource{
		cfg:    cfg,
		oauth:  oauthConf,
		client: oauthConf.Client(context.Background()),
	}
}

func (s *RedditSource) Name() string { return "reddit" }

func (s *RedditSource) Fetch(ctx context.Context) ([]models.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new", redditAPIURL, url.PathEscape(s.subreddits()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("limit", "50")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	res, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrNetwork, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &FetchError{Kind: FetchErrAuth, Err: fmt.Errorf("status %d", res.StatusCode)}
	case http.StatusTooManyRequests:
		return nil, &FetchError{Kind: FetchErrRateLimited, Err: fmt.Errorf("status %d", res.StatusCode)}
	default:
		return nil, &FetchError{Kind: FetchErrNetwork, Err: fmt.Errorf("status %d", res.StatusCode)}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrNetwork, Err: err}
	}

	posts, err := parseListing(body)
	if err != nil {
		return nil, &FetchError{Kind: FetchErrNetwork, Err: err}
	}

	slog.Info("[RedditSource] Fetched listing",
		slog.String("subreddits", s.subreddits()),
		slog.Int("posts", len(posts)))
	return posts, nil
}

func (s *RedditSource) Ping(ctx context.Context) error {
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return &FetchError{Kind: FetchErrAuth, Err: fmt.Errorf("REDDIT_CLIENT_ID / REDDIT_CLIENT_SECRET not set")}
	}
	if _, err := s.oauth.Token(ctx); err != nil {
		return &FetchError{Kind: FetchErrAuth, Err: err}
	}
	return nil
}

func (s *RedditSource) subreddits() string {
	if s.cfg.Subreddits != "" {
		return s.cfg.Subreddits
	}
	return "all"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Name        string  `json:"name"`
				Subreddit   string  `json:"subreddit"`
				Author      string  `json:"author"`
				AuthorID    string  `json:"author_fullname"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Ups         int     `json:"ups"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func parseListing(data []byte) ([]models.Post, error) {
	var listing redditListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("parsing reddit listing: %w", err)
	}

	var posts []models.Post
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.ID == "" {
			continue
		}
		text := d.Title
		if d.Selftext != "" {
			text = d.Title + "\n\n" + d.Selftext
		}
		posts = append(posts, models.Post{
			ID:         d.Name,
			AuthorID:   d.AuthorID,
			AuthorName: d.Author,
			Text:       text,
			Likes:      d.Ups,
			Replies:    d.NumComments,
			CreatedAt:  time.Unix(int64(d.CreatedUTC), 0).UTC(),
			Lang:       "en",
			Source:     "reddit",
		})
	}
	return posts, nil
}
