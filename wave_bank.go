// wave_bank.go - Wavetable and drum sample bank shared by the renderers

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	WAVE_COUNT = 100
	WAVE_SIZE  = 256
)

// DrumSample is one percussion sample decoded from the RIFF section that
// follows the wavetable in the bank resource.
type DrumSample struct {
	Rate     int
	Channels int
	Data     []int16
}

// SoundBank is the read-only waveform table used by the sequenced renderer
// and the tone synthesizer. It is loaded once before the audio goroutine
// starts and never mutated afterwards, so no synchronization is needed.
type SoundBank struct {
	Wave100 [WAVE_COUNT][WAVE_SIZE]int8
	Samples []DrumSample
}

// LoadSoundBank reads a bank resource: a 100x256 signed-byte wavetable
// followed by zero or more concatenated RIFF/WAV drum samples.
func LoadSoundBank(r io.Reader) (*SoundBank, error) {
	raw := make([]byte, WAVE_COUNT*WAVE_SIZE)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("wave bank: short wavetable: %w", err)
	}

	bank := &SoundBank{}
	for i := 0; i < WAVE_COUNT; i++ {
		for j := 0; j < WAVE_SIZE; j++ {
			bank.Wave100[i][j] = int8(raw[i*WAVE_SIZE+j])
		}
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wave bank: reading drum section: %w", err)
	}

	for off := 0; off+8 <= len(rest); {
		if !bytes.Equal(rest[off:off+4], []byte("RIFF")) {
			off++
			continue
		}
		size := int(binary.LittleEndian.Uint32(rest[off+4:off+8])) + 8
		if size < 8 || off+size > len(rest) {
			size = len(rest) - off
		}
		sample, err := decodeDrumSample(rest[off : off+size])
		if err != nil {
			return nil, fmt.Errorf("wave bank: drum %d: %w", len(bank.Samples), err)
		}
		bank.Samples = append(bank.Samples, sample)
		off += size
	}

	return bank, nil
}

// decodeDrumSample parses a single RIFF chunk into 16-bit PCM.
func decodeDrumSample(chunk []byte) (DrumSample, error) {
	dec := wav.NewDecoder(bytes.NewReader(chunk))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return DrumSample{}, err
	}
	return DrumSample{
		Rate:     buf.Format.SampleRate,
		Channels: buf.Format.NumChannels,
		Data:     pcmToInt16(buf),
	}, nil
}

// pcmToInt16 widens decoded PCM to signed 16-bit. 8-bit WAV data is
// unsigned with the zero amplitude at 128.
func pcmToInt16(buf *audio.IntBuffer) []int16 {
	out := make([]int16, len(buf.Data))
	switch buf.SourceBitDepth {
	case 8:
		for i, v := range buf.Data {
			out[i] = int16((v - 0x80) << 8)
		}
	default:
		for i, v := range buf.Data {
			out[i] = int16(clampSample(int32(v)))
		}
	}
	return out
}
