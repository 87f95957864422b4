//go:build !headless

// audio_backend_alsa.go - ALSA audio output implementation

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

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate, unsigned int channels) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, channels);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"time"
	"unsafe"
)

// ALSAOutput writes directly to the default ALSA PCM device. Unlike the
// oto backend it is push-based: a feed goroutine renders a block at a time
// and blocks inside snd_pcm_writei until the device has room.
type ALSAOutput struct {
	handle   *C.snd_pcm_t
	src      SampleSource
	channels int
	samples  []float32
	started  bool
	playing  bool
	done     chan struct{}
	mutex    sync.Mutex
}

// NewALSAOutput opens the default PCM device at the given format.
func NewALSAOutput(sampleRate, channels int, src SampleSource) (*ALSAOutput, error) {
	var cerr C.int
	device := C.CString("default")
	defer C.free(unsafe.Pointer(device))

	handle := C.openPCM(device, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(cerr)))
	}

	if cerr = C.setupPCM(handle, C.uint(sampleRate), C.uint(channels)); cerr < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(cerr)))
	}

	frames := sampleRate * BGM_BUFFER_MS / 1000
	return &ALSAOutput{
		handle:   handle,
		src:      src,
		channels: channels,
		samples:  make([]float32, frames*channels),
		done:     make(chan struct{}),
	}, nil
}

func (a *ALSAOutput) feed() {
	for {
		select {
		case <-a.done:
			return
		default:
		}

		a.mutex.Lock()
		if !a.playing || a.handle == nil {
			a.mutex.Unlock()
			time.Sleep(time.Millisecond)
			continue
		}

		a.src.FillSamples(a.samples)
		frames := C.writePCM(a.handle, (*C.float)(unsafe.Pointer(&a.samples[0])), C.int(len(a.samples)/a.channels))
		if frames == -C.EPIPE {
			// underrun, recover and retry the block
			C.snd_pcm_prepare(a.handle)
			frames = C.writePCM(a.handle, (*C.float)(unsafe.Pointer(&a.samples[0])), C.int(len(a.samples)/a.channels))
		}
		a.mutex.Unlock()

		if frames < 0 {
			fmt.Printf("ALSA write failed: %s\n", C.GoString(C.snd_strerror(C.int(frames))))
			return
		}
	}
}

func (a *ALSAOutput) Start() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if !a.started {
		a.started = true
		a.playing = true
		go a.feed()
	}
}

func (a *ALSAOutput) Pause() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.playing = false
}

func (a *ALSAOutput) Resume() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.started {
		a.playing = true
	}
}

func (a *ALSAOutput) Close() {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.started {
		close(a.done)
		a.started = false
	}
	a.playing = false

	if a.handle != nil {
		C.closePCM(a.handle)
		a.handle = nil
	}
}
