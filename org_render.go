// org_render.go - Sequenced (Organya) playback engine

package main

import "math"

// orgFreqTable holds the equal-tempered octave-4 frequencies the score keys
// index into. Key layout is octave*12 + note, octave 4 at keys 48..59.
var orgFreqTable = [12]float64{
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23,
	369.99, 392.00, 415.30, 440.00, 466.16, 493.88,
}

// orgTrackState is the live voice of one track. It contains only values and
// indices so a snapshot is a plain struct copy.
type orgTrackState struct {
	eventIdx int // next score event to apply

	playing bool
	key     uint8
	length  int     // remaining ticks of the current note
	volume  float64 // 0..1
	panL    float64
	panR    float64
	phase   float64 // wavetable position, 0..WAVE_SIZE
	step    float64 // wavetable advance per output sample

	// percussion voice
	drumIdx  int
	drumPos  float64
	drumStep float64
	drumOn   bool
}

// OrgPlaybackState is an opaque snapshot of an in-flight sequenced playback.
// Applying it and rendering continues byte-identically with an uninterrupted
// run at the same sample rate.
type OrgPlaybackState struct {
	song          *OrgSong
	tick          int32
	tickSamplePos int
	tracks        [ORG_TRACK_COUNT]orgTrackState
}

func (OrgPlaybackState) savedState() {}

// OrgPlaybackEngine advances a parsed score at a configurable sample rate,
// producing two bias-128 byte lanes per 16-bit output word.
type OrgPlaybackEngine struct {
	bank *SoundBank
	song *OrgSong

	outRate        int
	samplesPerTick int
	tick           int32
	tickSamplePos  int
	tracks         [ORG_TRACK_COUNT]orgTrackState
}

// NewOrgPlaybackEngine creates an engine bound to the shared wavetable bank.
func NewOrgPlaybackEngine(bank *SoundBank) *OrgPlaybackEngine {
	return &OrgPlaybackEngine{bank: bank, outRate: SAMPLE_RATE, samplesPerTick: 1}
}

// SetSampleRate retargets the engine to rate output samples per second.
// Active voices are re-pitched so playback continues at the new rate.
func (e *OrgPlaybackEngine) SetSampleRate(rate int) {
	if rate <= 0 {
		return
	}
	e.outRate = rate
	e.recalcTiming()
}

func (e *OrgPlaybackEngine) recalcTiming() {
	if e.song == nil {
		e.samplesPerTick = 1
		return
	}
	e.samplesPerTick = e.outRate * int(e.song.Wait) / 1000
	if e.samplesPerTick < 1 {
		e.samplesPerTick = 1
	}
	for i := range e.tracks {
		ts := &e.tracks[i]
		if ts.playing {
			ts.step = e.noteStep(i, ts.key)
		}
		if ts.drumOn {
			ts.drumStep = e.drumStep(ts.key)
		}
	}
}

// StartSong adopts a new score and rewinds to tick zero.
func (e *OrgPlaybackEngine) StartSong(song *OrgSong, bank *SoundBank) {
	e.bank = bank
	e.song = song
	e.Rewind()
}

// Rewind resets playback to the start of the score.
func (e *OrgPlaybackEngine) Rewind() {
	e.tick = 0
	e.tickSamplePos = 0
	for i := range e.tracks {
		e.tracks[i] = orgTrackState{volume: 200.0 / 254, panL: 1, panR: 1}
	}
	e.recalcTiming()
}

// GetState captures an opaque snapshot of the current playback position.
func (e *OrgPlaybackEngine) GetState() OrgPlaybackState {
	return OrgPlaybackState{
		song:          e.song,
		tick:          e.tick,
		tickSamplePos: e.tickSamplePos,
		tracks:        e.tracks,
	}
}

// SetState resumes playback from a snapshot.
func (e *OrgPlaybackEngine) SetState(state OrgPlaybackState, bank *SoundBank) {
	e.bank = bank
	e.song = state.song
	e.tick = state.tick
	e.tickSamplePos = state.tickSamplePos
	e.tracks = state.tracks
	e.recalcTiming()
}

// noteStep converts a score key plus the track's fine detune into a
// wavetable phase increment per output sample.
func (e *OrgPlaybackEngine) noteStep(track int, key uint8) float64 {
	inst := e.song.Tracks[track].Inst
	freq := orgFreqTable[key%12] * math.Exp2(float64(key/12)-4)
	freq *= 1 + (float64(inst.Pitch)-1000)/10000
	return freq * WAVE_SIZE / float64(e.outRate)
}

// drumStep maps a percussion key to sample-data consumption per output
// sample; higher keys replay the drum sample faster and thus higher.
func (e *OrgPlaybackEngine) drumStep(key uint8) float64 {
	return (float64(key)*800 + 100) / float64(e.outRate)
}

// orgPan converts a 0..12 panpot (6 = centre) to left/right gains.
func orgPan(pan uint8) (float64, float64) {
	if pan > 12 {
		pan = 6
	}
	l := 1.0
	r := 1.0
	if pan > 6 {
		l = float64(12-pan) / 6
	} else if pan < 6 {
		r = float64(pan) / 6
	}
	return l, r
}

// processTick applies every score event at the current tick.
func (e *OrgPlaybackEngine) processTick() {
	for i := 0; i < ORG_TRACK_COUNT; i++ {
		track := &e.song.Tracks[i]
		ts := &e.tracks[i]

		for ts.eventIdx < len(track.Notes) && track.Notes[ts.eventIdx].Pos == e.tick {
			note := track.Notes[ts.eventIdx]
			ts.eventIdx++

			if note.Volume != orgNoChange {
				ts.volume = float64(note.Volume) / 254
			}
			if note.Pan != orgNoChange {
				ts.panL, ts.panR = orgPan(note.Pan)
			}
			if note.Key == orgNoChange {
				continue
			}

			if i < ORG_MELODY_COUNT {
				if !ts.playing {
					ts.phase = 0
				}
				ts.playing = true
				ts.key = note.Key
				ts.step = e.noteStep(i, note.Key)
				ts.length = int(note.Length)
				if track.Inst.Pi != 0 {
					ts.length = 1
				}
			} else {
				ts.drumOn = true
				ts.key = note.Key
				ts.drumIdx = int(track.Inst.Instrument)
				ts.drumPos = 0
				ts.drumStep = e.drumStep(note.Key)
			}
		}

		if i < ORG_MELODY_COUNT && ts.playing {
			ts.length--
			if ts.length <= 0 {
				ts.playing = false
			}
		}
	}
}

// seekEvents repositions every track's event cursor at the first event at or
// after the given tick. Used on loop jumps.
func (e *OrgPlaybackEngine) seekEvents(tick int32) {
	for i := 0; i < ORG_TRACK_COUNT; i++ {
		notes := e.song.Tracks[i].Notes
		idx := 0
		for idx < len(notes) && notes[idx].Pos < tick {
			idx++
		}
		e.tracks[i].eventIdx = idx
	}
}

// mixSample renders one stereo sample from all active voices.
func (e *OrgPlaybackEngine) mixSample() (float64, float64) {
	var left, right float64

	for i := 0; i < ORG_TRACK_COUNT; i++ {
		ts := &e.tracks[i]

		if i < ORG_MELODY_COUNT {
			if !ts.playing {
				continue
			}
			wave := &e.bank.Wave100[int(e.song.Tracks[i].Inst.Instrument)%WAVE_COUNT]
			v := float64(wave[int(ts.phase)%WAVE_SIZE]) / 128 * ts.volume
			left += v * ts.panL
			right += v * ts.panR
			ts.phase += ts.step
			for ts.phase >= WAVE_SIZE {
				ts.phase -= WAVE_SIZE
			}
			continue
		}

		if !ts.drumOn || ts.drumIdx >= len(e.bank.Samples) {
			ts.drumOn = false
			continue
		}
		drum := e.bank.Samples[ts.drumIdx]
		pos := int(ts.drumPos) * drum.Channels
		if pos >= len(drum.Data) {
			ts.drumOn = false
			continue
		}
		v := float64(drum.Data[pos]) / 32768 * ts.volume
		left += v * ts.panL
		right += v * ts.panR
		ts.drumPos += ts.drumStep
	}

	return left, right
}

// RenderTo fills buf with two-byte-lane samples and returns the number of
// valid words, which is always the full buffer: a loaded score loops forever
// and an unloaded engine renders silence.
func (e *OrgPlaybackEngine) RenderTo(buf []uint16) int {
	for i := range buf {
		if e.song == nil {
			buf[i] = ORG_SILENCE
			continue
		}

		if e.tickSamplePos == 0 {
			e.processTick()
		}

		l, r := e.mixSample()
		buf[i] = packOrgSample(l, r)

		e.tickSamplePos++
		if e.tickSamplePos >= e.samplesPerTick {
			e.tickSamplePos = 0
			e.tick++
			if e.tick >= e.song.EndX && e.song.EndX > 0 {
				e.tick = e.song.RepeatX
				e.seekEvents(e.tick)
			}
		}
	}
	return len(buf)
}

// packOrgSample folds a stereo sample into the two bias-128 byte lanes of
// one 16-bit word: low byte left, high byte right.
func packOrgSample(l, r float64) uint16 {
	return uint16(orgLane(l)) | uint16(orgLane(r))<<8
}

func orgLane(v float64) uint8 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return uint8(int(v*127) + 0x80)
}
