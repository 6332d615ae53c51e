package script

import (
	"fmt"
	"strings"
)

// Audience is a fixed category controlling tone, vocabulary and voice of the
// generated dialogue
type Audience string

const (
	AudienceKids      Audience = "Kids"
	AudienceTeenagers Audience = "Teenagers"
	AudienceAdults    Audience = "Adults"
	AudienceElderly   Audience = "Elderly"
)

// Audiences lists every supported audience profile
func Audiences() []Audience {
	return []Audience{AudienceKids, AudienceTeenagers, AudienceAdults, AudienceElderly}
}

// ParseAudience maps a user-supplied string to an Audience
func ParseAudience(s string) (Audience, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kids", "kid", "children":
		return AudienceKids, nil
	case "teenagers", "teens", "teen":
		return AudienceTeenagers, nil
	case "adults", "adult", "":
		return AudienceAdults, nil
	case "elderly", "elders", "seniors":
		return AudienceElderly, nil
	}
	return "", fmt.Errorf("unknown audience %q", s)
}

// Profile describes how dialogue should be written for one audience
type Profile struct {
	Vocabulary  string // Target vocabulary complexity
	Expressions string // Example Hinglish expressions to weave in
	Tone        string // Overall delivery tone
	Complexity  string // Content depth guidance
	Emphasis    string // Age-appropriate content angles
}

var profiles = map[Audience]Profile{
	AudienceKids: {
		Vocabulary:  "Simple words, short sentences",
		Expressions: "jaise, achha, dekho, suno",
		Tone:        "Energetic, playful, lots of examples",
		Complexity:  "Very basic concepts only",
		Emphasis:    "Relate to school, games, cartoons, simple facts, 'did you know?'",
	},
	AudienceTeenagers: {
		Vocabulary:  "Modern slang, trendy words",
		Expressions: "matlab, basically, literally, cool hai",
		Tone:        "Casual, relatable, fast-paced",
		Complexity:  "Moderate depth with pop culture refs",
		Emphasis:    "Pop culture, social media, trends, memes, aspirations",
	},
	AudienceAdults: {
		Vocabulary:  "Professional yet conversational",
		Expressions: "actually, technically, samajh rahe ho",
		Tone:        "Informative but friendly",
		Complexity:  "Detailed explanations with context",
		Emphasis:    "Career implications, real-world applications, economic and social context",
	},
	AudienceElderly: {
		Vocabulary:  "Clear, respectful, traditional",
		Expressions: "aap samajh rahe hain, dhyaan se suniye",
		Tone:        "Slow-paced, respectful, storytelling",
		Complexity:  "Simple with life experience connections",
		Emphasis:    "Historical context, cultural significance, life lessons",
	},
}

// ProfileFor returns the writing profile for an audience.
// Unknown audiences fall back to the Adults profile.
func ProfileFor(audience Audience) Profile {
	if p, ok := profiles[audience]; ok {
		return p
	}
	return profiles[AudienceAdults]
}

// Tone selects the conversational register of the dialogue
type Tone string

const (
	ToneFunny        Tone = "funny"
	ToneWitty        Tone = "witty"
	ToneProfessional Tone = "professional"
	ToneEducational  Tone = "educational"
	ToneCasual       Tone = "casual"
)

// ParseTone maps a user-supplied string to a Tone, defaulting to casual
func ParseTone(s string) (Tone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "funny":
		return ToneFunny, nil
	case "witty":
		return ToneWitty, nil
	case "professional":
		return ToneProfessional, nil
	case "educational":
		return ToneEducational, nil
	case "casual", "conversational", "":
		return ToneCasual, nil
	}
	return "", fmt.Errorf("unknown tone %q", s)
}

var toneModifiers = map[Tone]map[Audience]string{
	ToneFunny: {
		AudienceKids:      "Make silly jokes, use fun sound effects, compare to cartoons and games. Keep it light and playful.",
		AudienceTeenagers: "Use sarcastic humor, meme references, witty comebacks. Make it savage but fun.",
		AudienceAdults:    "Clever wordplay, situational humor, irony and subtle jokes. Keep it sophisticated.",
		AudienceElderly:   "Light-hearted anecdotes, gentle humor from life experiences. Keep it warm and relatable.",
	},
	ToneWitty: {
		AudienceKids:      "Smart observations, 'aha!' moments, clever questions that make them think.",
		AudienceTeenagers: "Quick comebacks, pop culture burns, sarcastic remarks.",
		AudienceAdults:    "Intellectual humor, wordplay, sharp observations, dry wit.",
		AudienceElderly:   "Wise quips, proverbs with a twist, subtle cleverness.",
	},
	ToneProfessional: {
		AudienceKids:      "Like a cool teacher explaining things clearly and simply.",
		AudienceTeenagers: "Like a mentor or coach, direct but relatable.",
		AudienceAdults:    "Colleague-to-colleague informed discussion with analytical depth.",
		AudienceElderly:   "Respectful expertise with seasoned perspective and balance.",
	},
	ToneEducational: {
		AudienceKids:      "Step-by-step like story time, with lots of 'why?' and 'how?' questions.",
		AudienceTeenagers: "Engaging lecture style with real-world examples and career relevance.",
		AudienceAdults:    "In-depth analysis with nuanced perspectives and practical implications.",
		AudienceElderly:   "Contextual history, connecting to past experiences, wisdom sharing.",
	},
	ToneCasual: {
		AudienceKids:      "Like chatting with a friend during recess, fun and easy.",
		AudienceTeenagers: "Chill conversation like hanging out with friends, relaxed vibes.",
		AudienceAdults:    "Friendly professional chat, like coffee break discussions.",
		AudienceElderly:   "Warm conversation like a family gathering, comfortable and respectful.",
	},
}

// ToneModifierFor returns the tone instruction for a tone and audience pair
func ToneModifierFor(tone Tone, audience Audience) string {
	if m, ok := toneModifiers[tone]; ok {
		if s, ok := m[audience]; ok {
			return s
		}
	}
	return toneModifiers[ToneCasual][AudienceAdults]
}
