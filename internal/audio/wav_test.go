package audio

import (
	"encoding/binary"
	"testing"
)

func TestEncodeWAV_Header(t *testing.T) {
	pcm := make([]byte, 48000)

	wav, err := EncodeWAV(pcm, 24000, 1, 16)
	if err != nil {
		t.Fatalf("EncodeWAV() failed: %v", err)
	}

	if len(wav) != 44+len(pcm) {
		t.Fatalf("Expected %d bytes, got %d", 44+len(pcm), len(wav))
	}

	if string(wav[:4]) != "RIFF" {
		t.Error("Expected RIFF chunk ID")
	}
	if binary.LittleEndian.Uint32(wav[4:8]) != uint32(36+len(pcm)) {
		t.Errorf("Wrong RIFF chunk size: %d", binary.LittleEndian.Uint32(wav[4:8]))
	}
	if string(wav[8:12]) != "WAVE" {
		t.Error("Expected WAVE format")
	}
	if string(wav[12:16]) != "fmt " {
		t.Error("Expected fmt subchunk")
	}
	if binary.LittleEndian.Uint16(wav[20:22]) != 1 {
		t.Error("Expected PCM audio format")
	}
	if binary.LittleEndian.Uint16(wav[22:24]) != 1 {
		t.Error("Expected mono channel count")
	}
	if binary.LittleEndian.Uint32(wav[24:28]) != 24000 {
		t.Errorf("Wrong sample rate: %d", binary.LittleEndian.Uint32(wav[24:28]))
	}
	if binary.LittleEndian.Uint32(wav[28:32]) != 48000 {
		t.Errorf("Wrong byte rate: %d", binary.LittleEndian.Uint32(wav[28:32]))
	}
	if binary.LittleEndian.Uint16(wav[32:34]) != 2 {
		t.Errorf("Wrong block align: %d", binary.LittleEndian.Uint16(wav[32:34]))
	}
	if binary.LittleEndian.Uint16(wav[34:36]) != 16 {
		t.Errorf("Wrong bits per sample: %d", binary.LittleEndian.Uint16(wav[34:36]))
	}
	if string(wav[36:40]) != "data" {
		t.Error("Expected data subchunk")
	}
	if binary.LittleEndian.Uint32(wav[40:44]) != uint32(len(pcm)) {
		t.Errorf("Wrong data size: %d", binary.LittleEndian.Uint32(wav[40:44]))
	}
}

func TestEncodeWAV_InvalidParams(t *testing.T) {
	if _, err := EncodeWAV(nil, 0, 1, 16); err == nil {
		t.Error("Expected error for zero sample rate")
	}
	if _, err := EncodeWAV(nil, 24000, 0, 16); err == nil {
		t.Error("Expected error for zero channels")
	}
	if _, err := EncodeWAV(nil, 24000, 1, 12); err == nil {
		t.Error("Expected error for non-byte-aligned sample width")
	}
}

func TestPCMRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345}

	got := SamplesFromBytes(BytesFromSamples(samples))

	if len(got) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(got))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("Sample %d: expected %d, got %d", i, samples[i], got[i])
		}
	}
}

func TestNormalizePeak(t *testing.T) {
	samples := []int16{8000, -16000, 4000}

	normalized := NormalizePeak(samples, 32000)

	if normalized[1] != -32000 {
		t.Errorf("Expected peak at -32000, got %d", normalized[1])
	}
	if normalized[0] != 16000 {
		t.Errorf("Expected 16000 after scaling, got %d", normalized[0])
	}
}

func TestNormalizePeak_Silence(t *testing.T) {
	samples := []int16{0, 0, 0}

	normalized := NormalizePeak(samples, 32000)

	for i, sample := range normalized {
		if sample != 0 {
			t.Errorf("Expected silence to stay silent, got %d at %d", sample, i)
		}
	}
}

func TestCalculateRMS(t *testing.T) {
	if rms := CalculateRMS([]int16{100, 100, 100}); rms != 100.0 {
		t.Errorf("Expected RMS 100.0, got %f", rms)
	}
	if rms := CalculateRMS(nil); rms != 0.0 {
		t.Errorf("Expected RMS 0.0 for empty input, got %f", rms)
	}
}
