package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

var (
	mdLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// StripLinks removes markdown links (keeping their text) and bare URLs so
// link noise does not skew polarity scores.
func StripLinks(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// NormalizeText flattens markdown formatting to plain text. Reddit bodies are
// markdown; other sources pass through unchanged.
func NormalizeText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plain := strings.Join(strings.Fields(string(output)), " ")
	return StripLinks(plain)
}

// AnalyzeWithVADER scores a post body and classifies it as positive, negative
// or neutral on the compound score.
func AnalyzeWithVADER(text string) (float64, string) {
	plain := NormalizeText(text)

	scores := analyzer.PolarityScores(plain)
	score := scores.Compound

	var label string
	switch {
	case score >= 0.20:
		label = "positive"
	case score <= -0.20:
		label = "negative"
	default:
		label = "neutral"
	}

	return score, label
}
