// pixtone_presets.go - Built-in sound effect descriptors

package main

// Wavetable model indices used by the presets. The first entries of the
// shared bank hold the classic oscillator shapes.
const (
	pxSine = iota
	pxTriangle
	pxSawUp
	pxSawDown
	pxSquare
	pxNoise
)

// flatOsc is a neutral modulator: zero level leaves the stage untouched.
func flatOsc() PixToneOscillator {
	return PixToneOscillator{Model: pxSine, Pitch: 0, Level: 0, Offset: 0}
}

// holdEnv is a full-level envelope with a linear tail-off.
func holdEnv() PixToneEnvelope {
	return PixToneEnvelope{Initial: 63, TimeA: 64, ValueA: 63, TimeB: 192, ValueB: 63, TimeC: 256, ValueC: 0}
}

// decayEnv decays from full level immediately.
func decayEnv() PixToneEnvelope {
	return PixToneEnvelope{Initial: 63, TimeA: 64, ValueA: 32, TimeB: 128, ValueB: 12, TimeC: 256, ValueC: 0}
}

func tone(model int, pitch float64, length int, env PixToneEnvelope) PixToneChannel {
	return PixToneChannel{
		Enabled:   true,
		Length:    length,
		Carrier:   PixToneOscillator{Model: model, Pitch: pitch, Level: 63},
		Frequency: flatOsc(),
		Amplitude: flatOsc(),
		Envelope:  env,
	}
}

func sweep(model int, pitch, sweepDepth float64, length int, env PixToneEnvelope) PixToneChannel {
	ch := tone(model, pitch, length, env)
	// a single down-saw cycle over the effect bends the pitch downwards
	ch.Frequency = PixToneOscillator{Model: pxSawDown, Pitch: 1, Level: int32(sweepDepth * 63)}
	return ch
}

// pixToneTable maps effect ids to their descriptors. Ids line up with the
// score-triggerable effect numbers used by the host application.
var pixToneTable = map[uint8]PixToneParameter{
	// UI blips
	1: {Channels: [4]PixToneChannel{tone(pxSquare, 880, 1500, decayEnv())}},
	2: {Channels: [4]PixToneChannel{tone(pxSquare, 1320, 1200, decayEnv())}},
	4: {Channels: [4]PixToneChannel{tone(pxTriangle, 660, 2000, holdEnv())}},
	5: {Channels: [4]PixToneChannel{tone(pxSquare, 440, 900, decayEnv())}},

	// movement
	11: {Channels: [4]PixToneChannel{sweep(pxTriangle, 520, 0.4, 2400, decayEnv())}},
	12: {Channels: [4]PixToneChannel{sweep(pxSquare, 340, 0.5, 3200, decayEnv())}},
	14: {Channels: [4]PixToneChannel{
		tone(pxNoise, 1100, 2600, decayEnv()),
		sweep(pxTriangle, 180, 0.7, 2600, decayEnv()),
	}},
	15: {Channels: [4]PixToneChannel{sweep(pxSine, 740, 0.3, 1800, decayEnv())}},
	16: {Channels: [4]PixToneChannel{sweep(pxSawDown, 640, 0.6, 4200, decayEnv())}},

	// impacts and explosions
	17: {Channels: [4]PixToneChannel{
		tone(pxNoise, 700, 8000, decayEnv()),
		sweep(pxNoise, 300, 0.8, 8000, decayEnv()),
	}},
	18: {Channels: [4]PixToneChannel{tone(pxSquare, 980, 600, decayEnv())}},
	20: {Channels: [4]PixToneChannel{
		tone(pxNoise, 480, 5200, decayEnv()),
		tone(pxSawDown, 120, 5200, decayEnv()),
	}},
	21: {Channels: [4]PixToneChannel{sweep(pxNoise, 820, 0.5, 3000, decayEnv())}},
	22: {Channels: [4]PixToneChannel{tone(pxNoise, 260, 9600, decayEnv())}},
	23: {Channels: [4]PixToneChannel{sweep(pxSquare, 220, 0.9, 4000, decayEnv())}},

	// weapons
	31: {Channels: [4]PixToneChannel{sweep(pxSquare, 1560, 0.6, 1400, decayEnv())}},
	32: {Channels: [4]PixToneChannel{
		sweep(pxSquare, 1160, 0.5, 2200, decayEnv()),
		tone(pxNoise, 900, 2200, decayEnv()),
	}},
	33: {Channels: [4]PixToneChannel{sweep(pxSawUp, 720, 0.4, 2600, decayEnv())}},
	34: {Channels: [4]PixToneChannel{
		tone(pxNoise, 1500, 6000, decayEnv()),
		sweep(pxSine, 90, 0.6, 6000, decayEnv()),
	}},

	// pickups and jingles
	42: {Channels: [4]PixToneChannel{tone(pxSquare, 1760, 1800, holdEnv())}},
	43: {Channels: [4]PixToneChannel{
		tone(pxTriangle, 1320, 2400, holdEnv()),
		tone(pxTriangle, 1980, 2400, decayEnv()),
	}},
	45: {Channels: [4]PixToneChannel{tone(pxSine, 2200, 1000, decayEnv())}},

	// alerts
	52: {Channels: [4]PixToneChannel{sweep(pxSquare, 560, 0.2, 5200, holdEnv())}},
	70: {Channels: [4]PixToneChannel{tone(pxSine, 330, 3600, holdEnv())}},
	71: {Channels: [4]PixToneChannel{sweep(pxTriangle, 470, 0.3, 3000, decayEnv())}},
}
