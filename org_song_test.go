// org_song_test.go - Tests for the Organya score parser

package main

import (
	"bytes"
	"encoding/binary"
	"testing"
)

type testOrgNote struct {
	pos                    int32
	key, length, vol, pan8 uint8
}

// buildOrgFile assembles a syntactically valid score with the given notes
// per track index.
func buildOrgFile(wait uint16, repeatX, endX int32, notes map[int][]testOrgNote) []byte {
	var buf bytes.Buffer
	buf.WriteString("Org-02")
	binary.Write(&buf, binary.LittleEndian, wait)
	buf.WriteByte(4) // steps per bar
	buf.WriteByte(4) // notes per step
	binary.Write(&buf, binary.LittleEndian, repeatX)
	binary.Write(&buf, binary.LittleEndian, endX)

	for i := 0; i < ORG_TRACK_COUNT; i++ {
		binary.Write(&buf, binary.LittleEndian, uint16(1000)) // pitch
		buf.WriteByte(0)                                      // instrument
		buf.WriteByte(0)                                      // pi
		binary.Write(&buf, binary.LittleEndian, uint16(len(notes[i])))
	}

	for i := 0; i < ORG_TRACK_COUNT; i++ {
		for _, n := range notes[i] {
			binary.Write(&buf, binary.LittleEndian, n.pos)
		}
		for _, n := range notes[i] {
			buf.WriteByte(n.key)
		}
		for _, n := range notes[i] {
			buf.WriteByte(n.length)
		}
		for _, n := range notes[i] {
			buf.WriteByte(n.vol)
		}
		for _, n := range notes[i] {
			buf.WriteByte(n.pan8)
		}
	}

	return buf.Bytes()
}

// TestLoadOrgSong_ParsesScore tests parsing a minimal two-track score
func TestLoadOrgSong_ParsesScore(t *testing.T) {
	data := buildOrgFile(20, 0, 64, map[int][]testOrgNote{
		0: {{pos: 0, key: 48, length: 8, vol: 254, pan8: 6}, {pos: 16, key: 50, length: 4, vol: 200, pan8: 0}},
		8: {{pos: 0, key: 36, length: 1, vol: 254, pan8: 6}},
	})

	song, err := LoadOrgSong(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadOrgSong failed: %v", err)
	}

	if song.Wait != 20 {
		t.Errorf("Wait should be 20, got %d", song.Wait)
	}
	if song.RepeatX != 0 || song.EndX != 64 {
		t.Errorf("Loop points should be 0..64, got %d..%d", song.RepeatX, song.EndX)
	}
	if len(song.Tracks[0].Notes) != 2 {
		t.Fatalf("Track 0 should have 2 notes, got %d", len(song.Tracks[0].Notes))
	}
	n := song.Tracks[0].Notes[1]
	if n.Pos != 16 || n.Key != 50 || n.Length != 4 || n.Volume != 200 || n.Pan != 0 {
		t.Errorf("Track 0 note 1 parsed wrong: %+v", n)
	}
	if len(song.Tracks[8].Notes) != 1 {
		t.Errorf("Track 8 should have 1 note, got %d", len(song.Tracks[8].Notes))
	}
	if song.Tracks[0].Inst.Pitch != 1000 {
		t.Errorf("Pitch should be 1000, got %d", song.Tracks[0].Inst.Pitch)
	}
}

// TestLoadOrgSong_BadMagic tests rejection of non-Organya data
func TestLoadOrgSong_BadMagic(t *testing.T) {
	data := buildOrgFile(20, 0, 64, nil)
	copy(data, "Mod-99")

	if _, err := LoadOrgSong(bytes.NewReader(data)); err == nil {
		t.Error("LoadOrgSong should reject bad magic")
	}
}

// TestLoadOrgSong_ZeroWait tests rejection of a zero tick duration
func TestLoadOrgSong_ZeroWait(t *testing.T) {
	data := buildOrgFile(0, 0, 64, nil)

	if _, err := LoadOrgSong(bytes.NewReader(data)); err == nil {
		t.Error("LoadOrgSong should reject Wait == 0")
	}
}

// TestLoadOrgSong_BadLoopPoints tests rejection of inverted loop points
func TestLoadOrgSong_BadLoopPoints(t *testing.T) {
	data := buildOrgFile(20, 64, 32, nil)

	if _, err := LoadOrgSong(bytes.NewReader(data)); err == nil {
		t.Error("LoadOrgSong should reject EndX < RepeatX")
	}
}

// TestLoadOrgSong_Truncated tests rejection of files cut at various points
func TestLoadOrgSong_Truncated(t *testing.T) {
	data := buildOrgFile(20, 0, 64, map[int][]testOrgNote{
		0: {{pos: 0, key: 48, length: 8, vol: 254, pan8: 6}},
	})

	for _, cut := range []int{3, 10, 20, len(data) - 1} {
		if _, err := LoadOrgSong(bytes.NewReader(data[:cut])); err == nil {
			t.Errorf("LoadOrgSong should fail on file truncated to %d bytes", cut)
		}
	}
}

// TestLoadOrgSong_ExcessiveEventCount tests the corrupt-count guard
func TestLoadOrgSong_ExcessiveEventCount(t *testing.T) {
	data := buildOrgFile(20, 0, 64, nil)
	// patch track 0's event count past the sanity bound
	countOff := 6 + 2 + 1 + 1 + 4 + 4 + 4
	binary.LittleEndian.PutUint16(data[countOff:], orgMaxNotes+1)

	if _, err := LoadOrgSong(bytes.NewReader(data)); err == nil {
		t.Error("LoadOrgSong should reject oversized event counts")
	}
}

// TestLoadOrgSong_Org03Magic tests that the newer score revision is accepted
func TestLoadOrgSong_Org03Magic(t *testing.T) {
	data := buildOrgFile(20, 0, 64, nil)
	copy(data, "Org-03")

	if _, err := LoadOrgSong(bytes.NewReader(data)); err != nil {
		t.Errorf("LoadOrgSong should accept Org-03, got: %v", err)
	}
}
