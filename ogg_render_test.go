// ogg_render_test.go - Tests for the streaming playback engine

package main

import "testing"

// TestOggPlaybackEngine_SilenceWithoutSource tests the idle render contract
func TestOggPlaybackEngine_SilenceWithoutSource(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)

	buf := make([]uint16, 512)
	n := engine.RenderTo(buf)

	if n != len(buf) {
		t.Errorf("RenderTo should fill the whole buffer, got %d of %d", n, len(buf))
	}
	for i, s := range buf {
		if s != PCM_SILENCE {
			t.Fatalf("Idle engine should render silence, got %#04x at %d", s, i)
		}
	}
}

// TestOggPlaybackEngine_SingleLoops tests that a lone source wraps onto
// itself seamlessly
func TestOggPlaybackEngine_SingleLoops(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(rampStream(44100, 50))

	buf := make([]uint16, 200) // 100 frames over a 50-frame loop
	engine.RenderTo(buf)

	for i := 0; i < 100; i++ {
		if buf[i] != buf[i+100] {
			t.Fatalf("Loop wrap should repeat the source, diverged at value %d", i)
		}
	}
}

// TestOggPlaybackEngine_IntroHandover tests the one-shot intro followed by
// the looping part
func TestOggPlaybackEngine_IntroHandover(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartMulti(constStream(44100, 10, 0.25, 0.25), constStream(44100, 1000, -0.5, -0.5))

	buf := make([]uint16, 60) // 30 frames
	engine.RenderTo(buf)

	introSample := biasFloatSample(0.25)
	loopSample := biasFloatSample(-0.5)

	for f := 0; f < 30; f++ {
		want := loopSample
		if f < 10 {
			want = introSample
		}
		if buf[f*2] != want {
			t.Fatalf("Frame %d should be %#04x, got %#04x", f, want, buf[f*2])
		}
	}
}

// TestOggPlaybackEngine_SnapshotResumes tests sample-exact continuation
// after a snapshot round-trip
func TestOggPlaybackEngine_SnapshotResumes(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(rampStream(44100, 5000))

	warmup := make([]uint16, 400)
	engine.RenderTo(warmup)

	state := engine.GetState()

	ahead := make([]uint16, 400)
	engine.RenderTo(ahead)

	engine.SetState(state)
	resumed := make([]uint16, 400)
	engine.RenderTo(resumed)

	for i := range ahead {
		if ahead[i] != resumed[i] {
			t.Fatalf("Resumed render diverged at value %d: %#04x != %#04x", i, ahead[i], resumed[i])
		}
	}
}

// TestOggPlaybackEngine_SnapshotResumesDuringIntro tests that a snapshot
// taken inside the intro replays the rest of the intro before looping
func TestOggPlaybackEngine_SnapshotResumesDuringIntro(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartMulti(rampStream(44100, 300), constStream(44100, 1000, -0.5, -0.5))

	warmup := make([]uint16, 200) // 100 frames, still inside the intro
	engine.RenderTo(warmup)

	state := engine.GetState()
	if !state.playingIntro {
		t.Fatal("Snapshot should still be inside the intro")
	}

	ahead := make([]uint16, 600)
	engine.RenderTo(ahead)

	engine.SetState(state)
	resumed := make([]uint16, 600)
	engine.RenderTo(resumed)

	for i := range ahead {
		if ahead[i] != resumed[i] {
			t.Fatalf("Resumed render diverged at value %d", i)
		}
	}
}

// TestOggPlaybackEngine_RewindRestarts tests Rewind against a fresh start
func TestOggPlaybackEngine_RewindRestarts(t *testing.T) {
	intro := rampStream(44100, 100)
	loop := rampStream(44100, 200)

	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartMulti(intro, loop)

	first := make([]uint16, 500)
	engine.RenderTo(first)

	engine.Rewind()
	again := make([]uint16, 500)
	engine.RenderTo(again)

	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("Rewound render diverged at value %d", i)
		}
	}
}

// TestOggPlaybackEngine_MonoExpansion tests that mono sources drive both
// output channels
func TestOggPlaybackEngine_MonoExpansion(t *testing.T) {
	data := make([]float32, 100)
	for i := range data {
		data[i] = float32(i)/200 - 0.25
	}
	mono := &fakeStream{rate: 44100, channels: 1, data: data}

	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(mono)

	buf := make([]uint16, 120)
	engine.RenderTo(buf)

	for f := 0; f < 60; f++ {
		if buf[f*2] != buf[f*2+1] {
			t.Fatalf("Mono frame %d should be equal on both channels", f)
		}
	}
}

// TestOggPlaybackEngine_ResamplesLowRateSource tests the zero-order-hold
// upsampling of a half-rate source
func TestOggPlaybackEngine_ResamplesLowRateSource(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(rampStream(22050, 500))

	buf := make([]uint16, 80) // 40 output frames = 20 source frames
	engine.RenderTo(buf)

	for f := 0; f+1 < 40; f += 2 {
		if buf[f*2] != buf[(f+1)*2] {
			t.Fatalf("Half-rate source should hold each frame twice, diverged at frame %d", f)
		}
	}
}

// TestOggPlaybackEngine_SetStateSeekFailureRestarts tests the fallback to
// the start of a source that refuses to seek
func TestOggPlaybackEngine_SetStateSeekFailureRestarts(t *testing.T) {
	loop := rampStream(44100, 100)

	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(loop)

	state := engine.GetState()
	state.posLoop = 5000 // beyond the stream, seek will fail

	engine.SetState(state)
	if loop.Position() != 0 {
		t.Errorf("Failed seek should rewind the source, position is %d", loop.Position())
	}
}

// TestOggPlaybackEngine_SnapshotResumesLowRateSource tests that a snapshot
// of a resampled source keeps the sub-frame phase across the round-trip
func TestOggPlaybackEngine_SnapshotResumesLowRateSource(t *testing.T) {
	engine := NewOggPlaybackEngine()
	engine.SetSampleRate(44100)
	engine.StartSingle(rampStream(22050, 5000))

	warmup := make([]uint16, 402) // 201 frames, halfway into a held source frame
	engine.RenderTo(warmup)

	state := engine.GetState()

	ahead := make([]uint16, 400)
	engine.RenderTo(ahead)

	engine.SetState(state)
	resumed := make([]uint16, 400)
	engine.RenderTo(resumed)

	for i := range ahead {
		if ahead[i] != resumed[i] {
			t.Fatalf("Resumed render diverged at value %d: %#04x != %#04x", i, ahead[i], resumed[i])
		}
	}
}
