package tts

import (
	"strings"

	"github.com/samaahar/podcast-gateway/internal/script"
)

// audienceVoices maps each audience to age-appropriate Indian English neural
// voices with rate/pitch bias. Speaker A is the male host, B the female
// co-host.
var audienceVoices = map[script.Audience]VoiceAssignment{
	script.AudienceKids: {
		script.SpeakerA: {Name: "en-IN-PrabhatNeural", RatePct: 15, PitchHz: 10},
		script.SpeakerB: {Name: "en-IN-NeerjaNeural", RatePct: 15, PitchHz: 10},
	},
	script.AudienceTeenagers: {
		script.SpeakerA: {Name: "en-IN-AaravNeural", RatePct: 10, PitchHz: 5},
		script.SpeakerB: {Name: "en-IN-AashiNeural", RatePct: 10, PitchHz: 5},
	},
	script.AudienceAdults: {
		script.SpeakerA: {Name: "en-IN-PrabhatNeural", RatePct: 5, PitchHz: 0},
		script.SpeakerB: {Name: "en-IN-NeerjaNeural", RatePct: 5, PitchHz: 0},
	},
	script.AudienceElderly: {
		script.SpeakerA: {Name: "en-IN-PrabhatNeural", RatePct: -10, PitchHz: -5},
		script.SpeakerB: {Name: "en-IN-NeerjaNeural", RatePct: -10, PitchHz: -5},
	},
}

// AssignmentFor derives the speaker-to-voice mapping for an audience.
// Deterministic: the same audience always yields the same assignment.
// Non-empty overrides replace the voice name but keep the audience prosody.
func AssignmentFor(audience script.Audience, overrideA, overrideB string) VoiceAssignment {
	base, ok := audienceVoices[audience]
	if !ok {
		base = audienceVoices[script.AudienceAdults]
	}

	assignment := VoiceAssignment{
		script.SpeakerA: base[script.SpeakerA],
		script.SpeakerB: base[script.SpeakerB],
	}

	if overrideA != "" {
		v := assignment[script.SpeakerA]
		v.Name = overrideA
		assignment[script.SpeakerA] = v
	}
	if overrideB != "" {
		v := assignment[script.SpeakerB]
		v.Name = overrideB
		assignment[script.SpeakerB] = v
	}

	return assignment
}

// audienceGapBiasMs widens the inter-turn pause for audiences that need
// slower pacing
var audienceGapBiasMs = map[script.Audience]int{
	script.AudienceElderly: 200,
}

// TurnGapFor returns the inter-turn gap in milliseconds for an audience,
// biasing the configured base gap. With the 500 ms default, Elderly runs
// get 700 ms pauses.
func TurnGapFor(audience script.Audience, baseMs int) int {
	return baseMs + audienceGapBiasMs[audience]
}

// emotion cues the generator is asked to include. They never reach the TTS
// provider as literal text; instead they bias prosody.
var emotionCues = []string{
	"*excited*", "*laughs*", "*chuckles*", "*giggles*", "*sighs*", "*thoughtful*",
	"[excited]", "[laughs]", "[chuckles]", "[giggles]", "[sighs]", "[thoughtful]",
	"[umm]", "[pause]", "[curious]", "[surprised]",
}

// PrepareUtterance strips emotion cue markers from an utterance and adjusts
// the voice prosody to match: excitement speeds up and raises pitch, a sigh
// slows down.
func PrepareUtterance(text string, voice Voice) (string, Voice) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "*excited*") || strings.Contains(lower, "[excited]"),
		strings.Contains(lower, "*laughs*") || strings.Contains(lower, "[laughs]"):
		voice.RatePct += 5
		voice.PitchHz += 10
	case strings.Contains(lower, "*sighs*") || strings.Contains(lower, "[sighs]"):
		voice.RatePct -= 5
	}

	for _, cue := range emotionCues {
		text = removeFold(text, cue)
	}

	return strings.Join(strings.Fields(text), " "), voice
}

// removeFold removes every case-insensitive occurrence of cue from s
func removeFold(s, cue string) string {
	for {
		idx := indexFold(s, cue)
		if idx < 0 {
			return s
		}
		s = s[:idx] + s[idx+len(cue):]
	}
}

func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
