package generator

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

// ChatClient is the slice of the OpenAI client the generator needs; tests
// substitute a stub.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Generator builds prompts, calls the model backend, and sanitizes the
// output. A failed generation never aborts the cycle; it is reported with a
// reason code and the orchestrator skips posting. There is no retry within a
// cycle; the next scheduled cycle retries naturally.
type Generator struct {
	client  ChatClient
	cfg     config.LLMConfig
	prompts PromptBuilder
	maxLen  int
	now     func() time.Time
}

// New wires a generator against the configured backend. An empty base URL
// targets the OpenAI API; pointing it at a local OpenAI-compatible server
// (Ollama, llama.cpp) works the same way.
func New(llm config.LLMConfig, maxLen int) *Generator {
	clientCfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if llm.BaseURL != "" {
		clientCfg.BaseURL = llm.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout(llm)}

	return &Generator{
		client:  openai.NewClientWithConfig(clientCfg),
		cfg:     llm,
		prompts: PromptBuilder{SystemPrompt: llm.SystemPrompt, MaxLength: maxLen},
		maxLen:  maxLen,
		now:     time.Now,
	}
}

// NewWithClient is the test constructor.
func NewWithClient(client ChatClient, llm config.LLMConfig, maxLen int) *Generator {
	return &Generator{
		client:  client,
		cfg:     llm,
		prompts: PromptBuilder{SystemPrompt: llm.SystemPrompt, MaxLength: maxLen},
		maxLen:  maxLen,
		now:     time.Now,
	}
}

// GenerateReply produces a sanitized reply for the post.
func (g *Generator) GenerateReply(ctx context.Context, post models.Post) models.GeneratedResponse {
	return g.generate(ctx, post, g.prompts.BuildReplyPrompt(post))
}

// GenerateQuote produces a sanitized quote text for the post.
func (g *Generator) GenerateQuote(ctx context.Context, post models.Post) models.GeneratedResponse {
	return g.generate(ctx, post, g.prompts.BuildQuotePrompt(post))
}

func (g *Generator) generate(ctx context.Context, post models.Post, prompt string) models.GeneratedResponse {
	resp := models.GeneratedResponse{PostID: post.ID, GeneratedAt: g.now()}

	callCtx, cancel := context.WithTimeout(ctx, timeout(g.cfg))
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if g.cfg.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.cfg.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	start := g.now()
	completion, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		resp.Failure = classifyGenError(err)
		slog.Warn("[Generator] Model call failed",
			slog.String("post_id", post.ID),
			slog.String("reason", string(resp.Failure)),
			slog.Duration("elapsed", g.now().Sub(start)),
			slog.String("error", err.Error()))
		return resp
	}

	if len(completion.Choices) == 0 {
		resp.Failure = models.GenFailureEmpty
		return resp
	}

	text, failure := Sanitize(completion.Choices[0].Message.Content, post.Text, g.maxLen)
	if failure != "" {
		resp.Failure = failure
		slog.Warn("[Generator] Output rejected by sanitizer",
			slog.String("post_id", post.ID),
			slog.String("reason", string(failure)))
		return resp
	}

	if failure := CheckQuality(text); failure != "" {
		resp.Failure = failure
		slog.Warn("[Generator] Output rejected by quality gate",
			slog.String("post_id", post.ID),
			slog.String("reason", string(failure)))
		return resp
	}

	resp.Text = text
	return resp
}

func classifyGenError(err error) models.GenFailure {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.GenFailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.GenFailureTimeout
	}
	return models.GenFailureConnection
}

func timeout(llm config.LLMConfig) time.Duration {
	if llm.Timeout > 0 {
		return time.Duration(llm.Timeout) * time.Second
	}
	return 60 * time.Second
}
