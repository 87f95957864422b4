// audio_test_helpers_test.go - Shared fixtures for the audio engine tests

package main

import "io"

// testBank builds a bank whose first few waveforms are audible squares, plus
// one loud drum sample, so renders are trivially distinguishable from
// silence.
func testBank() *SoundBank {
	bank := &SoundBank{}
	for w := 0; w < 6; w++ {
		for j := 0; j < WAVE_SIZE; j++ {
			if j < WAVE_SIZE/2 {
				bank.Wave100[w][j] = 100
			} else {
				bank.Wave100[w][j] = -100
			}
		}
	}

	drum := make([]int16, 2000)
	for i := range drum {
		drum[i] = 0x4000
	}
	bank.Samples = []DrumSample{{Rate: 22050, Channels: 1, Data: drum}}
	return bank
}

// testSong builds a one-note melody score: key 48 on track 0 at tick 0.
func testSong() *OrgSong {
	song := &OrgSong{Wait: 20, StepsPerBar: 4, NotesPerStep: 4, RepeatX: 0, EndX: 200}
	for i := range song.Tracks {
		song.Tracks[i].Inst = OrgInstrument{Pitch: 1000}
	}
	song.Tracks[0].Notes = []OrgNote{
		{Pos: 0, Key: 48, Length: 100, Volume: 254, Pan: 6},
	}
	return song
}

// fakeStream is an in-memory pcmStream with fully deterministic contents.
type fakeStream struct {
	rate     int
	channels int
	data     []float32 // interleaved frames
	pos      int64
	closed   bool
}

func (f *fakeStream) SampleRate() int { return f.rate }
func (f *fakeStream) Channels() int   { return f.channels }
func (f *fakeStream) Close() error    { f.closed = true; return nil }

func (f *fakeStream) frames() int64 { return int64(len(f.data) / f.channels) }

func (f *fakeStream) ReadFrames(dst []float32) (int, error) {
	want := len(dst) / f.channels
	left := int(f.frames() - f.pos)
	if left <= 0 {
		return 0, nil
	}
	if want > left {
		want = left
	}
	start := int(f.pos) * f.channels
	copy(dst, f.data[start:start+want*f.channels])
	f.pos += int64(want)
	return want, nil
}

func (f *fakeStream) Position() int64 { return f.pos }

func (f *fakeStream) SetPosition(pos int64) error {
	if pos < 0 || pos > f.frames() {
		return io.ErrUnexpectedEOF
	}
	f.pos = pos
	return nil
}

// constStream builds a fake stereo stream holding the same L/R pair in
// every frame.
func constStream(rate, frames int, l, r float32) *fakeStream {
	data := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		data[i*2] = l
		data[i*2+1] = r
	}
	return &fakeStream{rate: rate, channels: 2, data: data}
}

// rampStream builds a fake stereo stream whose frame i carries (i, -i)
// scaled into the unit range, so every frame is unique.
func rampStream(rate, frames int) *fakeStream {
	data := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(i%2000)/2000 - 0.5
		data[i*2] = v
		data[i*2+1] = -v
	}
	return &fakeStream{rate: rate, channels: 2, data: data}
}
