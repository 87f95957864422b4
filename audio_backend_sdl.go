//go:build !headless

// audio_backend_sdl.go - SDL2 audio output implementation

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░           ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/EchoEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

// SDLOutput queues rendered blocks onto an SDL audio device. A feed
// goroutine keeps the device queue topped up to roughly three render
// blocks; beyond that it sleeps so latency stays bounded.
type SDLOutput struct {
	id       sdl.AudioDeviceID
	spec     *sdl.AudioSpec
	src      SampleSource
	channels int
	samples  []float32
	started  bool
	paused   bool
	done     chan struct{}
	mutex    sync.Mutex
}

// NewSDLOutput opens the default SDL audio device at the given format.
func NewSDLOutput(sampleRate, channels int, src SampleSource) (*SDLOutput, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("failed to init SDL audio: %w", err)
	}

	frames := sampleRate * BGM_BUFFER_MS / 1000
	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_F32SYS,
		Channels: uint8(channels),
		Samples:  uint16(frames),
	}

	var obtained sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &obtained, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open SDL audio device: %w", err)
	}

	return &SDLOutput{
		id:       id,
		spec:     spec,
		src:      src,
		channels: channels,
		samples:  make([]float32, frames*channels),
		done:     make(chan struct{}),
	}, nil
}

func (s *SDLOutput) feed() {
	// keep up to three blocks queued on the device
	target := uint32(len(s.samples) * 4 * 3)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.mutex.Lock()
		if s.paused || sdl.GetQueuedAudioSize(s.id) >= target {
			s.mutex.Unlock()
			time.Sleep(time.Millisecond)
			continue
		}

		s.src.FillSamples(s.samples)
		n := len(s.samples) * 4
		buf := (*[1 << 30]byte)(unsafe.Pointer(&s.samples[0]))[:n:n]
		err := sdl.QueueAudio(s.id, buf)
		s.mutex.Unlock()

		if err != nil {
			fmt.Printf("SDL queue failed: %v\n", err)
			return
		}
	}
}

func (s *SDLOutput) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started {
		s.started = true
		sdl.PauseAudioDevice(s.id, false)
		go s.feed()
	}
}

func (s *SDLOutput) Pause() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started && !s.paused {
		s.paused = true
		sdl.PauseAudioDevice(s.id, true)
	}
}

func (s *SDLOutput) Resume() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started && s.paused {
		s.paused = false
		sdl.PauseAudioDevice(s.id, false)
	}
}

func (s *SDLOutput) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started {
		close(s.done)
		s.started = false
	}
	sdl.CloseAudioDevice(s.id)
}
