//go:build headless

// audio_backend_headless.go - no-op audio backends for headless builds

package main

// NullOutput discards everything. It satisfies AudioOutput so the engine
// and tests can run on machines with no audio device.
type NullOutput struct{}

func (n *NullOutput) Start()  {}
func (n *NullOutput) Pause()  {}
func (n *NullOutput) Resume() {}
func (n *NullOutput) Close()  {}

func NewOtoOutput(sampleRate, channels int, src SampleSource) (*NullOutput, error) {
	return &NullOutput{}, nil
}

func NewSDLOutput(sampleRate, channels int, src SampleSource) (*NullOutput, error) {
	return &NullOutput{}, nil
}

func NewALSAOutput(sampleRate, channels int, src SampleSource) (*NullOutput, error) {
	return &NullOutput{}, nil
}
