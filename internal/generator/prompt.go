package generator

import (
	"fmt"
	"strings"

	"github.com/spacesedan/replyflow/internal/models"
)

// PromptBuilder assembles chat prompts for reply generation. The system
// prompt comes from configuration; the per-post user prompt frames the post
// with a few fixed guidelines so the model output needs minimal cleanup.
type PromptBuilder struct {
	SystemPrompt string
	MaxLength    int
}

// BuildReplyPrompt produces the user message for a reply to the given post.
func (b PromptBuilder) BuildReplyPrompt(post models.Post) string {
	var sb strings.Builder

	sb.WriteString("Write a reply to the following social media post.\n\n")
	fmt.Fprintf(&sb, "Post by @%s: %q\n", post.AuthorName, post.Text)

	sb.WriteString("\nGuidelines:\n")
	fmt.Fprintf(&sb, "- Keep it under %d characters\n", b.maxLen())
	sb.WriteString("- Sound natural and conversational, use contractions\n")
	sb.WriteString("- React to something specific in the post\n")
	sb.WriteString("- No hashtags, no emojis, no generic openers like \"Wow\" or \"Amazing\"\n")
	sb.WriteString("- Do not repeat the post text\n")
	sb.WriteString("\nReply:")

	return sb.String()
}

// BuildQuotePrompt produces the user message for a quote of the given post.
func (b PromptBuilder) BuildQuotePrompt(post models.Post) string {
	var sb strings.Builder

	sb.WriteString("Add your own take on the following social media post, as a quote.\n\n")
	fmt.Fprintf(&sb, "Post by @%s: %q\n", post.AuthorName, post.Text)

	sb.WriteString("\nGuidelines:\n")
	fmt.Fprintf(&sb, "- Keep it under %d characters\n", b.maxLen())
	sb.WriteString("- Show you understood the main point, then add a fresh angle\n")
	sb.WriteString("- No hashtags, no emojis, no generic commentary\n")
	sb.WriteString("\nYour take:")

	return sb.String()
}

func (b PromptBuilder) maxLen() int {
	if b.MaxLength > 0 {
		return b.MaxLength
	}
	return 280
}
