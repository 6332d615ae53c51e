package script

import (
	"fmt"
	"strings"
)

// Speaker identifies one of the two podcast hosts
type Speaker string

const (
	SpeakerA Speaker = "SpeakerA"
	SpeakerB Speaker = "SpeakerB"
)

// DisplayName returns the host name used in prompts and transcripts
func (s Speaker) DisplayName() string {
	if s == SpeakerB {
		return "Priya"
	}
	return "Rajesh"
}

// Other returns the opposite speaker
func (s Speaker) Other() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// Turn is one contiguous utterance by a single speaker.
// Index matches the turn's position in its Script.
type Turn struct {
	Index   int     `json:"index"`
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Script is an ordered, speaker-alternating sequence of turns.
// Immutable once produced by Parse.
type Script struct {
	Turns []Turn `json:"turns"`
}

// Render returns the canonical transcript form, one "Name: text" line per
// turn. Parsing the rendered form yields an equal sequence of turns.
func (s *Script) Render() string {
	var sb strings.Builder
	for i, turn := range s.Turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", turn.Speaker.DisplayName(), turn.Text)
	}
	return sb.String()
}

// WordCount returns the total number of words across all turns
func (s *Script) WordCount() int {
	count := 0
	for _, turn := range s.Turns {
		count += len(strings.Fields(turn.Text))
	}
	return count
}
