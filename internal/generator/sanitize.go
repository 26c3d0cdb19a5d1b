package generator

import (
	"regexp"
	"strings"

	"github.com/spacesedan/replyflow/internal/models"
)

const MIN_RESPONSE_LEN = 10

// genericPhrases mark low-effort one-liners; a short response built around
// one of these adds nothing to the conversation.
var genericPhrases = []string{
	"thanks",
	"great",
	"nice",
	"cool",
	"awesome",
}

var replyPrefixes = []string{
	"Response:",
	"Reply:",
	"Answer:",
	"Tweet:",
	"Here's a reply:",
	"Here's my reply:",
	"I would respond with:",
	"I would say:",
	"My response:",
	"Your take:",
}

var (
	boldPattern    = regexp.MustCompile(`\*([^*]+)\*`)
	italicPattern  = regexp.MustCompile(`_([^_]+)_`)
	codePattern    = regexp.MustCompile("`([^`]+)`")
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
)

// Sanitize cleans a raw model output into something postable: strips
// boilerplate prefixes and surrounding quotes, flattens markdown, collapses
// whitespace, and truncates at a whitespace boundary to maxLen. Outputs that
// end up empty, or that merely echo the original post, are rejected as
// generation failures.
func Sanitize(raw, original string, maxLen int) (string, models.GenFailure) {
	text := strings.TrimSpace(raw)

	for _, prefix := range replyPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(text[len(prefix):])
			break
		}
	}

	text = stripSurroundingQuotes(text)

	text = boldPattern.ReplaceAllString(text, "$1")
	text = italicPattern.ReplaceAllString(text, "$1")
	text = codePattern.ReplaceAllString(text, "$1")
	text = hashtagPattern.ReplaceAllString(text, "$1")

	text = strings.Join(strings.Fields(text), " ")

	if maxLen > 0 && len(text) > maxLen {
		text = truncateAtWhitespace(text, maxLen)
	}

	if text == "" {
		return "", models.GenFailureEmpty
	}
	if normalizeForEcho(text) == normalizeForEcho(original) {
		return "", models.GenFailureEcho
	}
	return text, ""
}

func stripSurroundingQuotes(text string) string {
	for {
		trimmed := text
		if len(trimmed) >= 2 {
			first, last := trimmed[0], trimmed[len(trimmed)-1]
			if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
				trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			}
		}
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

// truncateAtWhitespace cuts text down to at most maxLen bytes without ever
// splitting a word. When no whitespace exists inside the limit the whole
// first word is dropped rather than cut mid-word.
func truncateAtWhitespace(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	if idx := strings.LastIndexAny(cut, " \t"); idx > 0 {
		cut = cut[:idx]
	} else {
		return ""
	}
	return strings.TrimSpace(cut)
}

func normalizeForEcho(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// CheckQuality rejects sanitized output that reads as filler: too short to
// carry meaning, mostly repeated words, or a short generic one-liner.
func CheckQuality(text string) models.GenFailure {
	if len(text) < MIN_RESPONSE_LEN {
		return models.GenFailureTooShort
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) >= 4 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if len(unique)*2 < len(words) {
			return models.GenFailureGeneric
		}
	}

	if len(text) < 20 {
		lower := strings.ToLower(text)
		for _, phrase := range genericPhrases {
			if strings.Contains(lower, phrase) {
				return models.GenFailureGeneric
			}
		}
	}
	return ""
}
