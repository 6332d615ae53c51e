package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/samaahar/podcast-gateway/internal/script"
)

// pcmOfDuration builds silent PCM of the given duration at sampleRate
func pcmOfDuration(d time.Duration, sampleRate int) []byte {
	samples := int(d.Seconds() * float64(sampleRate))
	return make([]byte, samples*2)
}

func altSegments(durations []time.Duration, sampleRate int) []Segment {
	segments := make([]Segment, len(durations))
	speaker := script.SpeakerA
	for i, d := range durations {
		segments[i] = Segment{
			Index:      i,
			Speaker:    speaker,
			PCM:        pcmOfDuration(d, sampleRate),
			SampleRate: sampleRate,
		}
		speaker = speaker.Other()
	}
	return segments
}

func TestAssemble_TotalDuration(t *testing.T) {
	// 3.0s + 2.5s with a 0.3s gap yields 5.8s
	segments := altSegments([]time.Duration{3 * time.Second, 2500 * time.Millisecond}, 24000)

	artifact, err := Assemble(segments, AssembleOptions{GapMs: 300})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	expected := 5800 * time.Millisecond
	if artifact.Duration != expected {
		t.Errorf("Expected duration %v, got %v", expected, artifact.Duration)
	}
}

func TestAssemble_GapPerBoundary(t *testing.T) {
	// N segments get exactly N-1 gaps
	segments := altSegments([]time.Duration{time.Second, time.Second, time.Second, time.Second}, 24000)

	artifact, err := Assemble(segments, AssembleOptions{GapMs: 500})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	expected := 4*time.Second + 3*500*time.Millisecond
	if artifact.Duration != expected {
		t.Errorf("Expected duration %v, got %v", expected, artifact.Duration)
	}
}

func TestAssemble_NoGap(t *testing.T) {
	segments := altSegments([]time.Duration{time.Second, time.Second}, 24000)

	artifact, err := Assemble(segments, AssembleOptions{GapMs: 0})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	if artifact.Duration != 2*time.Second {
		t.Errorf("Expected 2s, got %v", artifact.Duration)
	}
}

func TestAssemble_SameSpeakerBoundarySkipsGap(t *testing.T) {
	segments := []Segment{
		{Index: 0, Speaker: script.SpeakerA, PCM: pcmOfDuration(time.Second, 24000), SampleRate: 24000},
		{Index: 1, Speaker: script.SpeakerA, PCM: pcmOfDuration(time.Second, 24000), SampleRate: 24000},
	}

	artifact, err := Assemble(segments, AssembleOptions{GapMs: 500})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	// Gap policy: only between different speakers by default
	if artifact.Duration != 2*time.Second {
		t.Errorf("Expected no gap for same-speaker boundary, got %v", artifact.Duration)
	}

	artifact, err = Assemble(segments, AssembleOptions{GapMs: 500, GapSameSpeaker: true})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	if artifact.Duration != 2500*time.Millisecond {
		t.Errorf("Expected gap with GapSameSpeaker, got %v", artifact.Duration)
	}
}

func TestAssemble_WAVContainer(t *testing.T) {
	segments := altSegments([]time.Duration{time.Second, time.Second}, 24000)

	artifact, err := Assemble(segments, AssembleOptions{GapMs: 300})
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}

	if string(artifact.WAV[:4]) != "RIFF" || string(artifact.WAV[8:12]) != "WAVE" {
		t.Error("Expected a RIFF/WAVE container")
	}

	if artifact.SampleRate != 24000 {
		t.Errorf("Expected sample rate 24000, got %d", artifact.SampleRate)
	}

	if artifact.TurnCount != 2 {
		t.Errorf("Expected 2 turns, got %d", artifact.TurnCount)
	}

	// Data size: 2s of audio plus a 0.3s gap, 2 bytes per sample, plus headers
	expectedPCM := (24000*2 + 24000*3/10) * 2
	if len(artifact.WAV) != 44+expectedPCM {
		t.Errorf("Expected %d WAV bytes, got %d", 44+expectedPCM, len(artifact.WAV))
	}
}

func TestAssemble_Preconditions(t *testing.T) {
	valid := func() []Segment {
		return altSegments([]time.Duration{time.Second, time.Second}, 24000)
	}

	cases := []struct {
		name   string
		mutate func([]Segment) []Segment
	}{
		{"empty input", func(s []Segment) []Segment { return nil }},
		{"index gap", func(s []Segment) []Segment { s[1].Index = 2; return s }},
		{"out of order", func(s []Segment) []Segment { s[0].Index, s[1].Index = 1, 0; return s }},
		{"empty segment", func(s []Segment) []Segment { s[0].PCM = nil; return s }},
		{"odd byte count", func(s []Segment) []Segment { s[0].PCM = s[0].PCM[:len(s[0].PCM)-1]; return s }},
		{"mixed sample rates", func(s []Segment) []Segment { s[1].SampleRate = 16000; return s }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Assemble(tc.mutate(valid()), DefaultAssembleOptions())

			var precondErr *PrecondError
			if !errors.As(err, &precondErr) {
				t.Errorf("Expected *PrecondError, got %v", err)
			}
		})
	}
}

func TestSegmentDuration(t *testing.T) {
	seg := Segment{PCM: make([]byte, 48000), SampleRate: 24000}

	if seg.Duration() != time.Second {
		t.Errorf("Expected 1s for 24000 samples at 24kHz, got %v", seg.Duration())
	}
}
