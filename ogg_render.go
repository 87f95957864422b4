// ogg_render.go - Streaming playback engine for compressed music sources

package main

// OggPlaybackState is an opaque snapshot of an in-flight streamed playback.
// It owns the stream handles it references; applying it re-seeks each source
// to the captured frame position and restores the sub-frame resampler phase.
type OggPlaybackState struct {
	intro        pcmStream
	loopStream   pcmStream
	playingIntro bool
	posIntro     int64
	posLoop      int64
	frac         float64
}

func (OggPlaybackState) savedState() {}

// OggPlaybackEngine plays one or two ordered compressed sources: a lone
// source loops on itself, an intro+loop pair plays the intro once and then
// loops the second source forever. Output is interleaved bias-32768 stereo
// resampled to the configured rate.
type OggPlaybackEngine struct {
	intro        pcmStream // nil for single-part songs
	loopStream   pcmStream
	playingIntro bool

	outRate int

	// zero-order-hold resample state
	frac     float64
	curL     float32
	curR     float32
	primed   bool
	frameBuf [8]float32
}

// NewOggPlaybackEngine creates an idle streaming engine.
func NewOggPlaybackEngine() *OggPlaybackEngine {
	return &OggPlaybackEngine{outRate: SAMPLE_RATE}
}

// SetSampleRate retargets the engine's output rate. The source keeps its own
// native rate; the resampler ratio changes.
func (e *OggPlaybackEngine) SetSampleRate(rate int) {
	if rate <= 0 {
		return
	}
	e.outRate = rate
}

// StartSingle adopts a lone source that loops on itself.
func (e *OggPlaybackEngine) StartSingle(music pcmStream) {
	e.intro = nil
	e.loopStream = music
	e.playingIntro = false
	e.resetResampler()
}

// StartMulti adopts an intro + loop pair.
func (e *OggPlaybackEngine) StartMulti(intro, loopStream pcmStream) {
	e.intro = intro
	e.loopStream = loopStream
	e.playingIntro = true
	e.resetResampler()
}

func (e *OggPlaybackEngine) resetResampler() {
	e.frac = 0
	e.curL = 0
	e.curR = 0
	e.primed = false
}

// Rewind restarts playback from the very beginning of the song.
func (e *OggPlaybackEngine) Rewind() {
	if e.intro != nil {
		_ = e.intro.SetPosition(0)
		e.playingIntro = true
	}
	if e.loopStream != nil {
		_ = e.loopStream.SetPosition(0)
	}
	e.resetResampler()
}

// GetState captures an opaque snapshot: the stream handles plus their exact
// frame positions.
func (e *OggPlaybackEngine) GetState() OggPlaybackState {
	state := OggPlaybackState{
		intro:        e.intro,
		loopStream:   e.loopStream,
		playingIntro: e.playingIntro,
		frac:         e.frac,
	}
	if e.intro != nil {
		state.posIntro = e.intro.Position()
	}
	if e.loopStream != nil {
		state.posLoop = e.loopStream.Position()
	}
	// the resampler holds one decoded frame of lookahead that must replay
	// when the snapshot is applied
	if e.primed {
		if e.playingIntro && state.posIntro > 0 {
			state.posIntro--
		} else if !e.playingIntro && state.posLoop > 0 {
			state.posLoop--
		}
	}
	return state
}

// SetState resumes playback from a snapshot. A source that fails to seek is
// restarted from its beginning rather than left at an arbitrary position.
func (e *OggPlaybackEngine) SetState(state OggPlaybackState) {
	e.intro = state.intro
	e.loopStream = state.loopStream
	e.playingIntro = state.playingIntro
	seeked := true
	if e.intro != nil {
		if err := e.intro.SetPosition(state.posIntro); err != nil {
			_ = e.intro.SetPosition(0)
			seeked = false
		}
	}
	if e.loopStream != nil {
		if err := e.loopStream.SetPosition(state.posLoop); err != nil {
			_ = e.loopStream.SetPosition(0)
			seeked = false
		}
	}
	e.resetResampler()
	if seeked {
		e.frac = state.frac
	}
}

// current returns the stream frames are being pulled from.
func (e *OggPlaybackEngine) current() pcmStream {
	if e.playingIntro {
		return e.intro
	}
	return e.loopStream
}

// readFrame pulls one stereo frame from the active source, handling the
// intro-to-loop handover and the loop wraparound. Mono sources are expanded
// to both channels. A dead source yields silence.
func (e *OggPlaybackEngine) readFrame() (float32, float32) {
	for attempt := 0; attempt < 3; attempt++ {
		src := e.current()
		if src == nil {
			return 0, 0
		}
		ch := src.Channels()
		if ch > len(e.frameBuf) {
			ch = len(e.frameBuf)
		}
		n, err := src.ReadFrames(e.frameBuf[:ch])
		if n > 0 {
			if ch == 1 {
				return e.frameBuf[0], e.frameBuf[0]
			}
			return e.frameBuf[0], e.frameBuf[1]
		}
		if err != nil {
			return 0, 0
		}
		// end of stream: hand over to the loop part, or wrap it
		if e.playingIntro {
			e.playingIntro = false
			if e.loopStream != nil {
				_ = e.loopStream.SetPosition(0)
			}
			continue
		}
		if err := src.SetPosition(0); err != nil {
			return 0, 0
		}
	}
	return 0, 0
}

// RenderTo fills buf with interleaved bias-32768 stereo samples at the
// output rate and returns the number of valid values, always the full
// buffer: the renderer itself is responsible for looping and advancing.
func (e *OggPlaybackEngine) RenderTo(buf []uint16) int {
	frames := len(buf) / 2
	src := e.current()
	if src == nil {
		for i := range buf {
			buf[i] = PCM_SILENCE
		}
		return len(buf)
	}

	step := float64(src.SampleRate()) / float64(e.outRate)
	if !e.primed {
		e.curL, e.curR = e.readFrame()
		e.primed = true
	}

	for i := 0; i < frames; i++ {
		buf[i*2] = biasFloatSample(e.curL)
		buf[i*2+1] = biasFloatSample(e.curR)

		e.frac += step
		for e.frac >= 1 {
			e.frac--
			e.curL, e.curR = e.readFrame()
			// the handover between sources may change the ratio
			if cur := e.current(); cur != nil {
				step = float64(cur.SampleRate()) / float64(e.outRate)
			}
		}
	}
	return frames * 2
}

// biasFloatSample converts a [-1, 1] sample to bias-32768 16-bit.
func biasFloatSample(v float32) uint16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return uint16(int16(v*32767)) ^ 0x8000
}
