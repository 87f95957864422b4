// pixtone.go - Procedural tone synthesizer for sound effects

package main

// PIXTONE_RATE is the native rate the effect buffers are synthesized at.
const PIXTONE_RATE = 22050

// PixToneOscillator drives one of a channel's three modulation stages. Model
// indexes the shared wavetable bank; the first few bank entries hold the
// classic oscillator shapes.
type PixToneOscillator struct {
	Model  int     // wavetable index
	Pitch  float64 // frequency in Hz (carrier) or cycles over the effect (modulators)
	Level  int32   // 0..63
	Offset float64 // initial phase, 0..1
}

// PixToneEnvelope is an initial level plus three linear segments over the
// normalized duration of the effect.
type PixToneEnvelope struct {
	Initial int32 // 0..63
	TimeA   int32 // 0..256 position of segment ends
	ValueA  int32
	TimeB   int32
	ValueB  int32
	TimeC   int32
	ValueC  int32
}

// PixToneChannel is one voice of an effect descriptor.
type PixToneChannel struct {
	Enabled   bool
	Length    int // samples at PIXTONE_RATE
	Carrier   PixToneOscillator
	Frequency PixToneOscillator
	Amplitude PixToneOscillator
	Envelope  PixToneEnvelope
}

// PixToneParameter describes one triggered sound effect.
type PixToneParameter struct {
	Channels [4]PixToneChannel
}

// pixToneSample is a rendered effect: a fixed-length mono bias-128 buffer
// plus its live trigger state. Trigger state is only touched from the audio
// goroutine.
type pixToneSample struct {
	data    []uint8
	pos     float64
	playing bool
}

// PixTonePlayback owns every rendered effect and mixes the active ones into
// a caller-provided scratch buffer on a fixed cadence.
type PixTonePlayback struct {
	bank    *SoundBank
	samples [256]*pixToneSample
}

// NewPixTonePlayback binds the synthesizer to the shared wavetable bank.
func NewPixTonePlayback(bank *SoundBank) *PixTonePlayback {
	return &PixTonePlayback{bank: bank}
}

// CreateSamples renders every preset effect up front so triggering is just a
// cursor reset inside the audio callback.
func (p *PixTonePlayback) CreateSamples() {
	for id, params := range pixToneTable {
		p.samples[id] = &pixToneSample{data: p.renderEffect(params)}
	}
}

// PlaySFX restarts the given effect. Unknown ids are ignored.
func (p *PixTonePlayback) PlaySFX(id uint8) {
	s := p.samples[id]
	if s == nil {
		return
	}
	s.pos = 0
	s.playing = true
}

// Mix adds every active effect into dst (bias-32768 mono) with saturation.
// rate is the effective output rate; the speed factor scales it so effects
// stay in step with the music.
func (p *PixTonePlayback) Mix(dst []uint16, rate float64) {
	if rate <= 0 {
		return
	}
	for _, s := range p.samples {
		if s == nil || !s.playing {
			continue
		}
		step := PIXTONE_RATE / rate
		for i := range dst {
			idx := int(s.pos)
			if idx >= len(s.data) {
				s.playing = false
				break
			}
			v := (int32(s.data[idx]) - 0x80) << 8
			sum := clampSample(centerSample(dst[i]) + v)
			dst[i] = biasSample(sum)
			s.pos += step
		}
	}
}

// waveAt looks a model waveform up at an arbitrary phase.
func (p *PixTonePlayback) waveAt(model int, phase float64) float64 {
	wave := &p.bank.Wave100[model%WAVE_COUNT]
	idx := int(phase) % WAVE_SIZE
	if idx < 0 {
		idx += WAVE_SIZE
	}
	return float64(wave[idx]) / 128
}

// envelopeAt evaluates the three-segment envelope at normalized time t.
func envelopeAt(env PixToneEnvelope, t float64) float64 {
	pos := t * 256
	points := [4][2]float64{
		{0, float64(env.Initial)},
		{float64(env.TimeA), float64(env.ValueA)},
		{float64(env.TimeB), float64(env.ValueB)},
		{float64(env.TimeC), float64(env.ValueC)},
	}
	for i := 1; i < len(points); i++ {
		if pos <= points[i][0] {
			span := points[i][0] - points[i-1][0]
			if span <= 0 {
				return points[i][1] / 63
			}
			f := (pos - points[i-1][0]) / span
			return (points[i-1][1] + (points[i][1]-points[i-1][1])*f) / 63
		}
	}
	return points[3][1] / 63
}

// renderEffect synthesizes one descriptor into a bias-128 mono buffer.
func (p *PixTonePlayback) renderEffect(params PixToneParameter) []uint8 {
	length := 0
	for _, ch := range params.Channels {
		if ch.Enabled && ch.Length > length {
			length = ch.Length
		}
	}
	if length == 0 {
		return nil
	}

	acc := make([]float64, length)
	for _, ch := range params.Channels {
		if !ch.Enabled || ch.Length == 0 {
			continue
		}
		phase := ch.Carrier.Offset * WAVE_SIZE
		for i := 0; i < ch.Length; i++ {
			t := float64(i) / float64(ch.Length)

			fm := p.waveAt(ch.Frequency.Model, ch.Frequency.Offset*WAVE_SIZE+t*ch.Frequency.Pitch*WAVE_SIZE)
			am := p.waveAt(ch.Amplitude.Model, ch.Amplitude.Offset*WAVE_SIZE+t*ch.Amplitude.Pitch*WAVE_SIZE)

			v := p.waveAt(ch.Carrier.Model, phase) * float64(ch.Carrier.Level) / 63
			v *= 1 + am*float64(ch.Amplitude.Level)/63
			v *= envelopeAt(ch.Envelope, t)
			acc[i] += v

			freq := ch.Carrier.Pitch * (1 + fm*float64(ch.Frequency.Level)/63)
			phase += freq * WAVE_SIZE / PIXTONE_RATE
		}
	}

	out := make([]uint8, length)
	for i, v := range acc {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = uint8(int(v*127) + 0x80)
	}
	return out
}
