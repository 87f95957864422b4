// playback.go - Playback state machine and real-time mixing loop

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/EchoEngine
License: GPLv3 or later
*/

package main

// playbackMessage is the closed command union sent from the control
// goroutine to the audio goroutine. Every message owns the data it carries;
// the sender never touches it again after a successful send.
type playbackMessage interface {
	playbackMessage()
}

type playOrganyaMessage struct{ song *OrgSong }
type playStreamSingleMessage struct{ music pcmStream }
type playStreamMultiMessage struct{ intro, loopStream pcmStream }
type playSampleMessage struct{ id uint8 }
type stopMessage struct{}
type setSpeedMessage struct{ speed float32 }
type saveStateMessage struct{}
type restoreStateMessage struct{}

func (playOrganyaMessage) playbackMessage()      {}
func (playStreamSingleMessage) playbackMessage() {}
func (playStreamMultiMessage) playbackMessage()  {}
func (playSampleMessage) playbackMessage()       {}
func (stopMessage) playbackMessage()             {}
func (setSpeedMessage) playbackMessage()         {}
func (saveStateMessage) playbackMessage()        {}
func (restoreStateMessage) playbackMessage()     {}

// savedState is the snapshot union: nil means no snapshot is held.
type savedState interface {
	savedState()
}

// PlaybackEngine owns all renderer and mixing state. It is driven entirely
// from the output backend's pull callback via FillSamples; nothing else may
// touch it after construction.
type PlaybackEngine struct {
	rx   <-chan playbackMessage
	bank *SoundBank

	state int
	saved savedState
	speed float32

	sampleRate int
	channels   int

	orgEngine *OrgPlaybackEngine
	oggEngine *OggPlaybackEngine
	pixtone   *PixTonePlayback

	bgmBuf   []uint16
	pxtBuf   []uint16
	bgmIndex int
	pxtIndex int
	samples  int // count of currently valid words in bgmBuf
}

// NewPlaybackEngine wires the renderers to the command channel. The bank
// must be fully loaded before this point; it is never mutated afterwards.
func NewPlaybackEngine(rx <-chan playbackMessage, bank *SoundBank, sampleRate, channels int) *PlaybackEngine {
	bufFrames := sampleRate * BGM_BUFFER_MS / 1000
	e := &PlaybackEngine{
		rx:         rx,
		bank:       bank,
		state:      PLAYBACK_STOPPED,
		speed:      1,
		sampleRate: sampleRate,
		channels:   channels,
		orgEngine:  NewOrgPlaybackEngine(bank),
		oggEngine:  NewOggPlaybackEngine(),
		pixtone:    NewPixTonePlayback(bank),
		bgmBuf:     make([]uint16, bufFrames*2),
		pxtBuf:     make([]uint16, bufFrames),
	}

	e.orgEngine.SetSampleRate(sampleRate)
	e.oggEngine.SetSampleRate(sampleRate)
	e.pixtone.CreateSamples()

	for i := range e.pxtBuf {
		e.pxtBuf[i] = PCM_SILENCE
	}
	e.pixtone.Mix(e.pxtBuf, float64(sampleRate))

	return e
}

// snapshotStreams lists the stream handles a snapshot owns, if any.
func snapshotStreams(s savedState) []pcmStream {
	if st, ok := s.(OggPlaybackState); ok {
		return []pcmStream{st.intro, st.loopStream}
	}
	return nil
}

// streamInUse reports whether the live streaming renderer or the held
// snapshot still references the handle.
func (e *PlaybackEngine) streamInUse(s pcmStream) bool {
	if e.oggEngine.intro == s || e.oggEngine.loopStream == s {
		return true
	}
	if st, ok := e.saved.(OggPlaybackState); ok && (st.intro == s || st.loopStream == s) {
		return true
	}
	return false
}

// closeStaleStreams closes superseded handles that nothing references any
// more, so decoder files are released as soon as a command orphans them.
func (e *PlaybackEngine) closeStaleStreams(old ...pcmStream) {
	for i, s := range old {
		if s == nil || e.streamInUse(s) {
			continue
		}
		dup := false
		for _, prev := range old[:i] {
			if prev == s {
				dup = true
				break
			}
		}
		if !dup {
			_ = s.Close()
		}
	}
}

// rerenderOrg refreshes the music buffer from the sequenced renderer,
// clearing only the previously valid words first.
func (e *PlaybackEngine) rerenderOrg() {
	for i := 0; i < e.samples; i++ {
		e.bgmBuf[i] = ORG_SILENCE
	}
	e.samples = e.orgEngine.RenderTo(e.bgmBuf)
	e.bgmIndex = 0
}

// rerenderStream refreshes the music buffer from the streaming renderer.
func (e *PlaybackEngine) rerenderStream() {
	for i := 0; i < e.samples; i++ {
		e.bgmBuf[i] = PCM_SILENCE
	}
	e.samples = e.oggEngine.RenderTo(e.bgmBuf)
	e.bgmIndex = 0
}

// handleMessage runs one command to completion. State transitions and the
// snapshot are only ever mutated here, between buffer fills.
func (e *PlaybackEngine) handleMessage(msg playbackMessage) {
	switch m := msg.(type) {
	case playOrganyaMessage:
		var stale []pcmStream
		if e.state == PLAYBACK_STOPPED {
			stale = snapshotStreams(e.saved)
			e.saved = nil
		}
		e.orgEngine.StartSong(m.song, e.bank)
		e.rerenderOrg()
		e.state = PLAYBACK_PLAYING_ORG
		e.closeStaleStreams(stale...)

	case playStreamSingleMessage:
		stale := []pcmStream{e.oggEngine.intro, e.oggEngine.loopStream}
		if e.state == PLAYBACK_STOPPED {
			stale = append(stale, snapshotStreams(e.saved)...)
			e.saved = nil
		}
		e.oggEngine.StartSingle(m.music)
		e.rerenderStream()
		e.state = PLAYBACK_PLAYING_STREAM
		e.closeStaleStreams(stale...)

	case playStreamMultiMessage:
		stale := []pcmStream{e.oggEngine.intro, e.oggEngine.loopStream}
		if e.state == PLAYBACK_STOPPED {
			stale = append(stale, snapshotStreams(e.saved)...)
			e.saved = nil
		}
		e.oggEngine.StartMulti(m.intro, m.loopStream)
		e.rerenderStream()
		e.state = PLAYBACK_PLAYING_STREAM
		e.closeStaleStreams(stale...)

	case playSampleMessage:
		e.pixtone.PlaySFX(m.id)

	case stopMessage:
		if e.state == PLAYBACK_STOPPED {
			stale := snapshotStreams(e.saved)
			e.saved = nil
			e.closeStaleStreams(stale...)
		}
		e.state = PLAYBACK_STOPPED

	case setSpeedMessage:
		if m.speed <= 0 {
			// guarded at the facade; an invalid factor never gets this far
			return
		}
		e.speed = m.speed
		rate := int(float32(e.sampleRate) / m.speed)
		e.orgEngine.SetSampleRate(rate)
		e.oggEngine.SetSampleRate(rate)

	case saveStateMessage:
		stale := snapshotStreams(e.saved)
		switch e.state {
		case PLAYBACK_STOPPED:
			e.saved = nil
		case PLAYBACK_PLAYING_ORG:
			e.saved = e.orgEngine.GetState()
		case PLAYBACK_PLAYING_STREAM:
			e.saved = e.oggEngine.GetState()
		}
		e.closeStaleStreams(stale...)

	case restoreStateMessage:
		saved := e.saved
		e.saved = nil

		switch s := saved.(type) {
		case nil:
		case OrgPlaybackState:
			e.orgEngine.SetState(s, e.bank)
			if e.state == PLAYBACK_STOPPED {
				e.orgEngine.Rewind()
			}
			e.rerenderOrg()
			e.state = PLAYBACK_PLAYING_ORG
		case OggPlaybackState:
			stale := []pcmStream{e.oggEngine.intro, e.oggEngine.loopStream}
			e.oggEngine.SetState(s)
			if e.state == PLAYBACK_STOPPED {
				e.oggEngine.Rewind()
			}
			e.rerenderStream()
			e.state = PLAYBACK_PLAYING_STREAM
			e.closeStaleStreams(stale...)
		}
	}
}

// drainCommands empties the queue without blocking. The loop is bounded by
// the number of commands already queued, so it always fits the callback's
// deadline.
func (e *PlaybackEngine) drainCommands() {
	for {
		select {
		case msg, ok := <-e.rx:
			if !ok {
				return
			}
			e.handleMessage(msg)
		default:
			return
		}
	}
}

// bgmSample produces the next background-music sample pair. Sequenced words
// split into their two byte lanes; streamed words already carry independent
// left/right samples.
func (e *PlaybackEngine) bgmSample() (uint16, uint16) {
	if e.state == PLAYBACK_STOPPED {
		return PCM_SILENCE, PCM_SILENCE
	}

	if e.bgmIndex >= e.samples {
		switch e.state {
		case PLAYBACK_PLAYING_ORG:
			e.rerenderOrg()
		case PLAYBACK_PLAYING_STREAM:
			e.rerenderStream()
		}
	}

	switch e.state {
	case PLAYBACK_PLAYING_ORG:
		s := e.bgmBuf[e.bgmIndex]
		e.bgmIndex++
		return (s & 0xff) << 8, s & 0xff00
	default: // PLAYBACK_PLAYING_STREAM
		l, r := e.bgmBuf[e.bgmIndex], e.bgmBuf[e.bgmIndex+1]
		e.bgmIndex += 2
		return l, r
	}
}

// sfxSample produces the next synthesized-effects sample, re-mixing the
// cyclic effects buffer whenever it wraps.
func (e *PlaybackEngine) sfxSample() uint16 {
	s := e.pxtBuf[e.pxtIndex]
	if e.pxtIndex < len(e.pxtBuf)-1 {
		e.pxtIndex++
	} else {
		e.pxtIndex = 0
		for i := range e.pxtBuf {
			e.pxtBuf[i] = PCM_SILENCE
		}
		e.pixtone.Mix(e.pxtBuf, float64(e.sampleRate)/float64(e.speed))
	}
	return s
}

// FillSamples is the pull callback body: drain every pending command, then
// produce interleaved float32 frames. Mono output averages the two music
// channels before the effects are summed in.
func (e *PlaybackEngine) FillSamples(out []float32) {
	e.drainCommands()

	frames := len(out) / e.channels
	for f := 0; f < frames; f++ {
		bgmL, bgmR := e.bgmSample()
		pxt := e.sfxSample()

		if e.channels >= 2 {
			l := biasSample(clampSample(centerSample(bgmL) + centerSample(pxt)))
			r := biasSample(clampSample(centerSample(bgmR) + centerSample(pxt)))
			out[f*e.channels] = sampleToFloat(l)
			out[f*e.channels+1] = sampleToFloat(r)
			for c := 2; c < e.channels; c++ {
				out[f*e.channels+c] = 0
			}
		} else {
			avg := (centerSample(bgmL) + centerSample(bgmR)) / 2
			m := biasSample(clampSample(avg + centerSample(pxt)))
			out[f] = sampleToFloat(m)
		}
	}
}

// sampleToFloat converts a bias-32768 sample to the backend float range.
func sampleToFloat(v uint16) float32 {
	return float32(int16(v^0x8000)) / 32768
}
