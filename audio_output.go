// audio_output.go - Audio output backend interface and factory

package main

import "fmt"

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_SDL
	AUDIO_BACKEND_ALSA
)

// SampleSource produces interleaved float32 frames for an output backend.
// Backends pull from it on their own schedule; the source must never block.
type SampleSource interface {
	FillSamples(out []float32)
}

// AudioOutput is the surface every output backend exposes. Pause and Resume
// halt and restart the hardware stream without touching the source, so the
// suspend watcher can freeze playback without state loss.
type AudioOutput interface {
	Start()
	Pause()
	Resume()
	Close()
}

// NewAudioOutput opens the requested backend at the given format.
func NewAudioOutput(backend int, sampleRate, channels int, src SampleSource) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		return NewOtoOutput(sampleRate, channels, src)
	case AUDIO_BACKEND_SDL:
		return NewSDLOutput(sampleRate, channels, src)
	case AUDIO_BACKEND_ALSA:
		return NewALSAOutput(sampleRate, channels, src)
	default:
		return nil, fmt.Errorf("unknown audio backend: %d", backend)
	}
}
