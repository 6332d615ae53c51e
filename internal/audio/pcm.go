package audio

import "math"

// SamplesFromBytes converts little-endian 16-bit PCM bytes to samples.
// The byte slice must have even length.
func SamplesFromBytes(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples
}

// BytesFromSamples converts samples back to little-endian 16-bit PCM bytes
func BytesFromSamples(samples []int16) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, sample := range samples {
		pcm[i*2] = byte(sample)
		pcm[i*2+1] = byte(sample >> 8)
	}
	return pcm
}

// NormalizePeak scales samples so the loudest peak sits at maxAmplitude.
// Samples already within range are returned unchanged; silence is left alone.
func NormalizePeak(samples []int16, maxAmplitude int16) []int16 {
	if len(samples) == 0 {
		return samples
	}

	maxVal := int16(0)
	for _, sample := range samples {
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > maxVal {
			maxVal = abs
		}
	}

	if maxVal == 0 || maxVal == maxAmplitude {
		return samples
	}

	ratio := float64(maxAmplitude) / float64(maxVal)
	normalized := make([]int16, len(samples))
	for i, sample := range samples {
		normalized[i] = int16(float64(sample) * ratio)
	}

	return normalized
}

// CalculateRMS returns the root mean square of the samples.
// Useful for level checks and silence detection in tests.
func CalculateRMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}

	return math.Sqrt(sum / float64(len(samples)))
}
