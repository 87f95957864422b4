// wave_bank_test.go - Tests for the wavetable and drum bank loader

package main

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildTestWav assembles a canonical 16-bit PCM RIFF/WAV file.
func buildTestWav(rate, channels int, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))     // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))             // bits per sample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	return buf.Bytes()
}

func testWavetableBytes() []byte {
	raw := make([]byte, WAVE_COUNT*WAVE_SIZE)
	for i := range raw {
		raw[i] = byte(i) // wraps, giving each wave a known ramp
	}
	return raw
}

// TestLoadSoundBank_WavetableOnly tests loading a bank with no drum section
func TestLoadSoundBank_WavetableOnly(t *testing.T) {
	bank, err := LoadSoundBank(bytes.NewReader(testWavetableBytes()))
	if err != nil {
		t.Fatalf("LoadSoundBank failed: %v", err)
	}

	if bank.Wave100[0][5] != 5 {
		t.Errorf("Wave 0 sample 5 should be 5, got %d", bank.Wave100[0][5])
	}
	if bank.Wave100[1][0] != 0 {
		t.Errorf("Wave 1 sample 0 should wrap back to 0, got %d", bank.Wave100[1][0])
	}
	if bank.Wave100[0][200] != -56 {
		t.Errorf("Wavetable bytes should be reinterpreted as signed, got %d", bank.Wave100[0][200])
	}
	if len(bank.Samples) != 0 {
		t.Errorf("Bank without a drum section should have no samples, got %d", len(bank.Samples))
	}
}

// TestLoadSoundBank_DecodesDrums tests the RIFF drum section
func TestLoadSoundBank_DecodesDrums(t *testing.T) {
	pcm := []int16{0, 8000, -8000, 16000}
	data := append(testWavetableBytes(), buildTestWav(22050, 1, pcm)...)

	bank, err := LoadSoundBank(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadSoundBank failed: %v", err)
	}

	if len(bank.Samples) != 1 {
		t.Fatalf("Bank should hold 1 drum sample, got %d", len(bank.Samples))
	}
	drum := bank.Samples[0]
	if drum.Rate != 22050 || drum.Channels != 1 {
		t.Errorf("Drum format should be 22050/mono, got %d/%d", drum.Rate, drum.Channels)
	}
	if len(drum.Data) != len(pcm) {
		t.Fatalf("Drum should decode %d samples, got %d", len(pcm), len(drum.Data))
	}
	for i, want := range pcm {
		if drum.Data[i] != want {
			t.Errorf("Drum sample %d should be %d, got %d", i, want, drum.Data[i])
		}
	}
}

// TestLoadSoundBank_MultipleDrums tests concatenated RIFF chunks
func TestLoadSoundBank_MultipleDrums(t *testing.T) {
	data := testWavetableBytes()
	data = append(data, buildTestWav(22050, 1, []int16{100, 200})...)
	data = append(data, buildTestWav(44100, 2, []int16{1, 2, 3, 4})...)

	bank, err := LoadSoundBank(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadSoundBank failed: %v", err)
	}

	if len(bank.Samples) != 2 {
		t.Fatalf("Bank should hold 2 drum samples, got %d", len(bank.Samples))
	}
	if bank.Samples[1].Rate != 44100 || bank.Samples[1].Channels != 2 {
		t.Errorf("Second drum format should be 44100/stereo, got %d/%d",
			bank.Samples[1].Rate, bank.Samples[1].Channels)
	}
}

// TestLoadSoundBank_ShortWavetable tests rejection of a truncated bank
func TestLoadSoundBank_ShortWavetable(t *testing.T) {
	if _, err := LoadSoundBank(bytes.NewReader(make([]byte, 100))); err == nil {
		t.Error("LoadSoundBank should reject a short wavetable")
	}
}

// TestLoadSoundBank_SkipsJunkBeforeDrums tests the RIFF scan over padding
func TestLoadSoundBank_SkipsJunkBeforeDrums(t *testing.T) {
	data := testWavetableBytes()
	data = append(data, []byte{0, 1, 2, 3, 4, 5, 6, 7}...)
	data = append(data, buildTestWav(22050, 1, []int16{100})...)

	bank, err := LoadSoundBank(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadSoundBank failed: %v", err)
	}
	if len(bank.Samples) != 1 {
		t.Errorf("Scan should skip junk and find the drum, got %d samples", len(bank.Samples))
	}
}
