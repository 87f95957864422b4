// sound_constants.go - Shared constants for the audio runtime

package main

const (
	// SAMPLE_RATE is the hardware output rate requested from the backends.
	SAMPLE_RATE = 44100

	// BGM_BUFFER_MS is the render granularity of the background-music buffer.
	BGM_BUFFER_MS = 10
)

const (
	// ORG_SILENCE is the resting value of the sequenced render buffer: each
	// 16-bit word carries two bias-128 byte lanes (low = left, high = right).
	ORG_SILENCE = 0x8080

	// PCM_SILENCE is the resting value of a bias-32768 16-bit sample.
	PCM_SILENCE = 0x8000
)

// Playback thread states. Exactly one holds at any instant and it is the
// sole discriminator for which renderer owns the background-music buffer.
const (
	PLAYBACK_STOPPED = iota
	PLAYBACK_PLAYING_ORG
	PLAYBACK_PLAYING_STREAM
)

// clampSample folds a widened sample sum back into the signed 16-bit range.
func clampSample(v int32) int32 {
	if v > 0x7fff {
		return 0x7fff
	}
	if v < -0x7fff {
		return -0x7fff
	}
	return v
}

// centerSample reinterprets a bias-32768 sample as a centred-at-zero value.
func centerSample(v uint16) int32 {
	return int32(int16(v ^ 0x8000))
}

// biasSample converts a clamped centred value back to bias-32768.
func biasSample(v int32) uint16 {
	return uint16(int16(v)) ^ 0x8000
}
