package script

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/samaahar/podcast-gateway/internal/wiki"
)

// PromptOptions are the tunable constants of prompt construction
type PromptOptions struct {
	HindiRatio     float64 // Instructed Hindi share of the dialogue (0..1)
	WordsPerSecond float64 // Speaking-rate constant used for the word budget
	CharBudget     int     // Max article characters embedded in the prompt
}

// DefaultPromptOptions returns the prompt constants used in production
func DefaultPromptOptions() PromptOptions {
	return PromptOptions{
		HindiRatio:     0.6,
		WordsPerSecond: 2.5,
		CharBudget:     2000,
	}
}

// SystemInstruction is the fixed system message sent with every generation
// request.
const SystemInstruction = "You are an expert Hinglish podcast script writer. " +
	"Follow the output format exactly and write nothing outside it."

// WordBudget converts a target spoken duration into an approximate word count
func WordBudget(durationSeconds int, wordsPerSecond float64) int {
	if durationSeconds <= 0 || wordsPerSecond <= 0 {
		return 0
	}
	return int(math.Round(float64(durationSeconds) * wordsPerSecond))
}

// BuildPrompt assembles the script-generation prompt. Pure function of its
// inputs; the same arguments always produce the same prompt.
func BuildPrompt(article *wiki.Article, audience Audience, tone Tone, durationSeconds int, opts PromptOptions) string {
	profile := ProfileFor(audience)
	modifier := ToneModifierFor(tone, audience)

	body := article.Body
	if opts.CharBudget > 0 && len(body) > opts.CharBudget {
		// Never split a multi-byte rune at the cut point
		cut := opts.CharBudget
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}

	words := WordBudget(durationSeconds, opts.WordsPerSecond)
	hindiPct := int(math.Round(opts.HindiRatio * 100))
	englishPct := 100 - hindiPct

	nameA := SpeakerA.DisplayName()
	nameB := SpeakerB.DisplayName()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a natural 2-person Hinglish radio conversation about: %s\n\n", article.Title)

	fmt.Fprintf(&sb, "WIKIPEDIA SOURCE CONTENT:\n%s\n\n", body)

	fmt.Fprintf(&sb, "TARGET AUDIENCE: %s\n", audience)
	fmt.Fprintf(&sb, "- Vocabulary: %s\n", profile.Vocabulary)
	fmt.Fprintf(&sb, "- Expression examples: %s\n", profile.Expressions)
	fmt.Fprintf(&sb, "- Tone: %s\n", profile.Tone)
	fmt.Fprintf(&sb, "- Complexity: %s\n", profile.Complexity)
	fmt.Fprintf(&sb, "- Content angle: %s\n\n", profile.Emphasis)

	fmt.Fprintf(&sb, "TONE (%s): %s\n\n", strings.ToUpper(string(tone)), modifier)

	sb.WriteString("LANGUAGE RULES:\n")
	fmt.Fprintf(&sb, "- Natural Hinglish: roughly %d%% Hindi and %d%% English, all in Latin script\n", hindiPct, englishPct)
	sb.WriteString("- Technical terms in English (satellite, technology, mission)\n")
	sb.WriteString("- Common words in Hindi (aur, ke baad, kya, hai)\n")
	sb.WriteString("- Include natural fillers (umm, toh, achha, haan, arre, matlab) and reactions (*laughs*, *excited*, *sighs*)\n\n")

	fmt.Fprintf(&sb, "LENGTH: approximately %d words total, about %d seconds when spoken.\n\n", words, durationSeconds)

	sb.WriteString("OUTPUT FORMAT (STRICT):\n")
	fmt.Fprintf(&sb, "- One line per utterance, exactly \"%s: utterance\" or \"%s: utterance\"\n", nameA, nameB)
	fmt.Fprintf(&sb, "- %s (male host) speaks first, then strictly alternate with %s (female co-host)\n", nameA, nameB)
	sb.WriteString("- Each utterance is 2-4 sentences\n")
	sb.WriteString("- No headings, no markdown, no text outside the dialogue lines\n\n")

	sb.WriteString("Write the dialogue now:")

	return sb.String()
}
