package script

import (
	"fmt"
	"strings"
)

// FormatError reports the first line of generated text that violates the
// expected "Speaker: utterance" format
type FormatError struct {
	Line   int    // 1-based line number in the raw input, 0 when whole-input
	Text   string // The offending line, empty when whole-input
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("script format error at line %d (%q): %s", e.Line, e.Text, e.Reason)
	}
	return fmt.Sprintf("script format error: %s", e.Reason)
}

// speakerLabels maps normalized label variants to speakers. The generator is
// instructed to use the display names, but models drift; tolerate the common
// variants instead of failing the run.
var speakerLabels = map[string]Speaker{
	"speakera":  SpeakerA,
	"speaker a": SpeakerA,
	"speaker 1": SpeakerA,
	"speaker1":  SpeakerA,
	"host 1":    SpeakerA,
	"host a":    SpeakerA,
	"rajesh":    SpeakerA,
	"speakerb":  SpeakerB,
	"speaker b": SpeakerB,
	"speaker 2": SpeakerB,
	"speaker2":  SpeakerB,
	"host 2":    SpeakerB,
	"host b":    SpeakerB,
	"priya":     SpeakerB,
}

// Parse validates raw generated text into an ordered, alternating sequence of
// turns.
//
// Rules, applied in order per non-empty trimmed line:
//   - the line must be "label: utterance" with a recognized speaker label
//     (case-insensitive, small synonym table); anything else fails
//   - a recognized label with an empty utterance is dropped
//   - consecutive turns by the same speaker are merged into one turn
//     (merge, never drop)
//
// Fewer than 2 resulting turns is an error: a podcast needs a back-and-forth.
func Parse(raw string) (*Script, error) {
	lines := strings.Split(raw, "\n")

	turns := make([]Turn, 0, len(lines))
	sawLabeledLine := false

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		speaker, text, err := parseLine(i+1, line)
		if err != nil {
			return nil, err
		}

		sawLabeledLine = true
		if text == "" {
			// Labeled but empty utterance: dropped, not an error
			continue
		}

		if n := len(turns); n > 0 && turns[n-1].Speaker == speaker {
			turns[n-1].Text = turns[n-1].Text + " " + text
			continue
		}

		turns = append(turns, Turn{
			Index:   len(turns),
			Speaker: speaker,
			Text:    text,
		})
	}

	if len(turns) < 2 {
		reason := "script has no dialogue lines"
		if sawLabeledLine {
			reason = fmt.Sprintf("script has %d turn(s), need at least 2 for a back-and-forth", len(turns))
		}
		return nil, &FormatError{Reason: reason}
	}

	return &Script{Turns: turns}, nil
}

// parseLine splits one line into speaker and utterance text
func parseLine(lineNo int, line string) (Speaker, string, error) {
	label, text, found := strings.Cut(line, ":")
	if !found {
		return "", "", &FormatError{Line: lineNo, Text: line, Reason: "missing 'Speaker:' prefix"}
	}

	speaker, ok := speakerLabels[normalizeLabel(label)]
	if !ok {
		return "", "", &FormatError{Line: lineNo, Text: line, Reason: fmt.Sprintf("unrecognized speaker label %q", strings.TrimSpace(label))}
	}

	return speaker, strings.TrimSpace(text), nil
}

// normalizeLabel lowercases a label and strips markdown decoration the model
// sometimes adds around speaker names
func normalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.Trim(label, "*_#->• \t")
	return strings.Join(strings.Fields(label), " ")
}
