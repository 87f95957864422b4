//go:build !headless

// audio_backend_oto.go - OTO v3 audio output implementation

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/EchoEngine
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput is the default backend: the oto player pulls samples through
// Read on its own goroutine, which makes Read the audio callback.
type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	src       SampleSource
	channels  int
	sampleBuf []float32 // pre-allocated sample buffer
	started   bool
	mutex     sync.Mutex // only for setup/control operations
}

// NewOtoOutput opens the default output device.
func NewOtoOutput(sampleRate, channels int, src SampleSource) (*OtoOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   10 * time.Millisecond,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	o := &OtoOutput{
		ctx:       ctx,
		src:       src,
		channels:  channels,
		sampleBuf: make([]float32, 4096),
	}
	o.player = ctx.NewPlayer(o)
	return o, nil
}

func (o *OtoOutput) Read(p []byte) (n int, err error) {
	// whole frames only; oto requests multiples of the frame size but a
	// short tail costs nothing to guard against
	numSamples := len(p) / 4 / o.channels * o.channels
	if numSamples == 0 {
		return 0, nil
	}

	if len(o.sampleBuf) < numSamples {
		o.sampleBuf = make([]float32, numSamples)
	}
	samples := o.sampleBuf[:numSamples]

	o.src.FillSamples(samples)

	n = numSamples * 4
	copy(p[:n], (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:n])
	return n, nil
}

func (o *OtoOutput) Start() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if !o.started && o.player != nil {
		o.player.Play()
		o.started = true
	}
}

func (o *OtoOutput) Pause() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.started && o.player != nil {
		o.player.Pause()
	}
}

func (o *OtoOutput) Resume() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.started && o.player != nil {
		o.player.Play()
	}
}

func (o *OtoOutput) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player != nil {
		o.player.Close()
		o.player = nil
		o.started = false
	}
}
