package generator

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/replyflow/config"
	"github.com/spacesedan/replyflow/internal/models"
)

type stubChatClient struct {
	reply string
	err   error

	lastReq openai.ChatCompletionRequest
	calls   int
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

func testLLMConfig() config.LLMConfig {
	return config.LLMConfig{
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		MaxTokens:    150,
		SystemPrompt: "You write short replies.",
		Timeout:      5,
	}
}

func TestGenerateReply(t *testing.T) {
	stub := &stubChatClient{reply: `"Love this take on Go."`}
	g := NewWithClient(stub, testLLMConfig(), 280)

	post := models.Post{ID: "p1", AuthorName: "dev", Text: "Generics finally landed"}
	got := g.GenerateReply(context.Background(), post)

	if !got.OK() {
		t.Fatalf("GenerateReply() failure = %q", got.Failure)
	}
	if got.Text != "Love this take on Go." {
		t.Errorf("GenerateReply() text = %q, not sanitized", got.Text)
	}
	if got.PostID != "p1" {
		t.Errorf("GenerateReply() post id = %q, want p1", got.PostID)
	}

	if stub.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("request model = %q", stub.lastReq.Model)
	}
	if len(stub.lastReq.Messages) != 2 {
		t.Fatalf("request carried %d messages, want system + user", len(stub.lastReq.Messages))
	}
	if stub.lastReq.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %q, want system", stub.lastReq.Messages[0].Role)
	}
}

func TestGenerateReplyOmitsEmptySystemPrompt(t *testing.T) {
	cfg := testLLMConfig()
	cfg.SystemPrompt = ""
	stub := &stubChatClient{reply: "fair point about the scheduler"}
	g := NewWithClient(stub, cfg, 280)

	g.GenerateReply(context.Background(), models.Post{ID: "p1", Text: "hello"})

	if len(stub.lastReq.Messages) != 1 {
		t.Fatalf("request carried %d messages, want user only", len(stub.lastReq.Messages))
	}
}

func TestGenerateReplyClassifiesErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.GenFailure
	}{
		{"deadline", context.DeadlineExceeded, models.GenFailureTimeout},
		{"connection", errors.New("dial tcp: connection refused"), models.GenFailureConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithClient(&stubChatClient{err: tt.err}, testLLMConfig(), 280)
			got := g.GenerateReply(context.Background(), models.Post{ID: "p1", Text: "x"})
			if got.Failure != tt.want {
				t.Errorf("failure = %q, want %q", got.Failure, tt.want)
			}
			if got.Text != "" {
				t.Errorf("text = %q, want empty on failure", got.Text)
			}
		})
	}
}

func TestGenerateReplyRejectsEcho(t *testing.T) {
	stub := &stubChatClient{reply: "Generics finally landed"}
	g := NewWithClient(stub, testLLMConfig(), 280)

	got := g.GenerateReply(context.Background(), models.Post{ID: "p1", Text: "Generics finally landed"})
	if got.Failure != models.GenFailureEcho {
		t.Errorf("failure = %q, want echo", got.Failure)
	}
}

func TestGenerateReplyRejectsGenericOutput(t *testing.T) {
	stub := &stubChatClient{reply: "awesome, thanks!"}
	g := NewWithClient(stub, testLLMConfig(), 280)

	got := g.GenerateReply(context.Background(), models.Post{ID: "p1", Text: "shipped the migration"})
	if got.Failure != models.GenFailureGeneric {
		t.Errorf("failure = %q, want generic", got.Failure)
	}
}

func TestGenerateQuoteUsesQuotePrompt(t *testing.T) {
	stub := &stubChatClient{reply: "worth a careful read"}
	g := NewWithClient(stub, testLLMConfig(), 280)

	got := g.GenerateQuote(context.Background(), models.Post{ID: "p1", Text: "deep dive on channels"})
	if !got.OK() {
		t.Fatalf("GenerateQuote() failure = %q", got.Failure)
	}
	if stub.lastReq.Messages[len(stub.lastReq.Messages)-1].Content == "" {
		t.Error("quote prompt was empty")
	}
}
