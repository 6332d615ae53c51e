package audio

import (
	"fmt"
	"time"

	"github.com/samaahar/podcast-gateway/internal/script"
)

// Segment is the synthesized audio for one dialogue turn
type Segment struct {
	Index      int            // Source turn index
	Speaker    script.Speaker // Source turn speaker
	PCM        []byte         // Raw 16-bit little-endian mono PCM
	SampleRate int            // Sample rate in Hz
}

// Duration returns the playback duration of the segment
func (s Segment) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	samples := len(s.PCM) / 2
	return time.Duration(samples) * time.Second / time.Duration(s.SampleRate)
}

// PrecondError signals a pipeline bug: the assembler was handed segments that
// violate its input contract. Not a recoverable runtime condition.
type PrecondError struct {
	Reason string
}

func (e *PrecondError) Error() string {
	return fmt.Sprintf("assembly precondition violated: %s", e.Reason)
}

// AssembleOptions control gap insertion and loudness of the final track
type AssembleOptions struct {
	GapMs          int  // Silence between adjacent segments in milliseconds
	GapSameSpeaker bool // Insert the gap even when adjacent segments share a speaker
	Normalize      bool // Peak-normalize the final track
}

// DefaultAssembleOptions returns the production assembly settings
func DefaultAssembleOptions() AssembleOptions {
	return AssembleOptions{
		GapMs:     500,
		Normalize: true,
	}
}

// Artifact is the finished podcast audio plus its metadata
type Artifact struct {
	WAV        []byte        // Complete RIFF/WAVE file
	Duration   time.Duration // Total playback time including gaps
	SampleRate int
	TurnCount  int
}

// Assemble concatenates per-turn segments in index order into one WAV track.
//
// Preconditions (violations return *PrecondError): at least one segment,
// indices exactly 0..N-1 in order, a single shared sample rate, and whole
// 16-bit frames in every segment. The gap is inserted between adjacent
// segments from different speakers; since turns alternate, that is every
// boundary unless GapSameSpeaker relaxes it.
func Assemble(segments []Segment, opts AssembleOptions) (*Artifact, error) {
	if err := checkPreconditions(segments); err != nil {
		return nil, err
	}

	sampleRate := segments[0].SampleRate
	gapBytes := 0
	if opts.GapMs > 0 {
		// One sample is two bytes; keep frame alignment
		gapBytes = sampleRate * opts.GapMs / 1000 * 2
	}

	total := 0
	for _, seg := range segments {
		total += len(seg.PCM)
	}

	pcm := make([]byte, 0, total+gapBytes*(len(segments)-1))
	gapCount := 0

	for i, seg := range segments {
		if i > 0 && gapBytes > 0 {
			if opts.GapSameSpeaker || seg.Speaker != segments[i-1].Speaker {
				pcm = append(pcm, make([]byte, gapBytes)...)
				gapCount++
			}
		}
		pcm = append(pcm, seg.PCM...)
	}

	if opts.Normalize {
		pcm = BytesFromSamples(NormalizePeak(SamplesFromBytes(pcm), 32000))
	}

	wav, err := EncodeWAV(pcm, sampleRate, 1, 16)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	for _, seg := range segments {
		duration += seg.Duration()
	}
	duration += time.Duration(gapCount) * time.Duration(opts.GapMs) * time.Millisecond

	return &Artifact{
		WAV:        wav,
		Duration:   duration,
		SampleRate: sampleRate,
		TurnCount:  len(segments),
	}, nil
}

func checkPreconditions(segments []Segment) error {
	if len(segments) == 0 {
		return &PrecondError{Reason: "no segments"}
	}

	sampleRate := segments[0].SampleRate
	for i, seg := range segments {
		if seg.Index != i {
			return &PrecondError{Reason: fmt.Sprintf("segment at position %d has index %d, want %d", i, seg.Index, i)}
		}
		if len(seg.PCM) == 0 {
			return &PrecondError{Reason: fmt.Sprintf("segment %d has no audio", i)}
		}
		if len(seg.PCM)%2 != 0 {
			return &PrecondError{Reason: fmt.Sprintf("segment %d has a partial 16-bit frame", i)}
		}
		if seg.SampleRate != sampleRate {
			return &PrecondError{Reason: fmt.Sprintf("segment %d sample rate %d differs from %d", i, seg.SampleRate, sampleRate)}
		}
	}

	return nil
}
