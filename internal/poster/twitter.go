package poster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const createTweetURL = "https://api.twitter.com/2/tweets"

// TwitterPoster creates replies and quote tweets through the v2 API using a
// write-scoped bearer token from the environment.
type TwitterPoster struct {
	client *http.Client
	token  string
}

func NewTwitterPoster(timeout time.Duration) *TwitterPoster {
	return &TwitterPoster{
		client: &http.Client{Timeout: timeout},
		token:  os.Getenv("TWITTER_WRITE_BEARER_TOKEN"),
	}
}

type createTweetRequest struct {
	Text  string `json:"text"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
	QuoteTweetID string `json:"quote_tweet_id,omitempty"`
}

type createTweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (p *TwitterPoster) PostReply(ctx context.Context, postID, text string) (PostResult, error) {
	req := createTweetRequest{Text: text}
	req.Reply = &struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	}{InReplyToTweetID: postID}
	return p.create(ctx, req)
}

func (p *TwitterPoster) Quote(ctx context.Context, postID, text string) (PostResult, error) {
	return p.create(ctx, createTweetRequest{Text: text, QuoteTweetID: postID})
}

func (p *TwitterPoster) Post(ctx context.Context, text string) (PostResult, error) {
	return p.create(ctx, createTweetRequest{Text: text})
}

func (p *TwitterPoster) Ping(_ context.Context) error {
	if p.token == "" {
		return &PostError{Kind: PostErrAuth, Err: fmt.Errorf("TWITTER_WRITE_BEARER_TOKEN not set")}
	}
	return nil
}

func (p *TwitterPoster) create(ctx context.Context, payload createTweetRequest) (PostResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return PostResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, createTweetURL, bytes.NewReader(body))
	if err != nil {
		return PostResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return PostResult{}, &PostError{Kind: PostErrRejected, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusCreated, http.StatusOK:
		var created createTweetResponse
		if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
			return PostResult{}, &PostError{Kind: PostErrRejected, Err: err}
		}
		slog.Info("[TwitterPoster] Created reply", slog.String("id", created.Data.ID))
		return PostResult{ID: created.Data.ID}, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		io.Copy(io.Discard, res.Body)
		return PostResult{}, &PostError{Kind: PostErrAuth, Err: fmt.Errorf("status %d", res.StatusCode)}
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, res.Body)
		return PostResult{}, &PostError{Kind: PostErrRateLimited, Err: fmt.Errorf("status %d", res.StatusCode)}
	default:
		detail, _ := io.ReadAll(res.Body)
		return PostResult{}, &PostError{Kind: PostErrRejected, Err: fmt.Errorf("status %d: %s", res.StatusCode, detail)}
	}
}
