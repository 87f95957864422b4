// org_song.go - Organya score parser

package main

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	ORG_TRACK_COUNT  = 16 // 8 melody + 8 percussion
	ORG_MELODY_COUNT = 8

	// orgNoChange marks an event field that leaves the previous value alone.
	orgNoChange = 0xff

	// orgMaxNotes bounds per-track event counts against corrupt files.
	orgMaxNotes = 4096
)

// OrgInstrument describes one track's voice.
type OrgInstrument struct {
	Pitch      uint16 // fine detune, 1000 = neutral
	Instrument uint8  // wavetable index (melody) or drum sample index
	Pi         uint8  // pizzicato: non-zero cuts notes to a single tick
}

// OrgNote is one score event. Key, Length, Volume and Pan may each be
// orgNoChange, meaning the field carries no new value at this position.
type OrgNote struct {
	Pos    int32
	Key    uint8
	Length uint8
	Volume uint8
	Pan    uint8
}

// OrgTrack is an instrument plus its ordered event list.
type OrgTrack struct {
	Inst  OrgInstrument
	Notes []OrgNote
}

// OrgSong is a parsed sequenced score.
type OrgSong struct {
	Wait         uint16 // milliseconds per tick
	StepsPerBar  uint8
	NotesPerStep uint8
	RepeatX      int32 // tick the song loops back to
	EndX         int32 // tick the loop jump happens at
	Tracks       [ORG_TRACK_COUNT]OrgTrack
}

type orgCursor struct {
	data []byte
	off  int
}

func (c *orgCursor) bytes(n int) ([]byte, error) {
	if c.off+n > len(c.data) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *orgCursor) u8() (uint8, error) {
	b, err := c.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *orgCursor) u16() (uint16, error) {
	b, err := c.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *orgCursor) i32() (int32, error) {
	b, err := c.bytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// LoadOrgSong parses an Org-02/Org-03 score from r.
func LoadOrgSong(r io.Reader) (*OrgSong, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("org: %w", err)
	}
	c := &orgCursor{data: data}

	magic, err := c.bytes(6)
	if err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if string(magic) != "Org-02" && string(magic) != "Org-03" {
		return nil, fmt.Errorf("org: bad magic %q", magic)
	}

	song := &OrgSong{}
	if song.Wait, err = c.u16(); err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if song.StepsPerBar, err = c.u8(); err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if song.NotesPerStep, err = c.u8(); err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if song.RepeatX, err = c.i32(); err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if song.EndX, err = c.i32(); err != nil {
		return nil, fmt.Errorf("org: truncated header")
	}
	if song.Wait == 0 {
		return nil, fmt.Errorf("org: zero tick duration")
	}
	if song.RepeatX < 0 || song.EndX < song.RepeatX {
		return nil, fmt.Errorf("org: bad loop points %d..%d", song.RepeatX, song.EndX)
	}

	counts := [ORG_TRACK_COUNT]int{}
	for i := 0; i < ORG_TRACK_COUNT; i++ {
		inst := &song.Tracks[i].Inst
		if inst.Pitch, err = c.u16(); err != nil {
			return nil, fmt.Errorf("org: truncated instrument table")
		}
		if inst.Instrument, err = c.u8(); err != nil {
			return nil, fmt.Errorf("org: truncated instrument table")
		}
		if inst.Pi, err = c.u8(); err != nil {
			return nil, fmt.Errorf("org: truncated instrument table")
		}
		n, err := c.u16()
		if err != nil {
			return nil, fmt.Errorf("org: truncated instrument table")
		}
		if int(n) > orgMaxNotes {
			return nil, fmt.Errorf("org: track %d has %d events", i, n)
		}
		counts[i] = int(n)
	}

	for i := 0; i < ORG_TRACK_COUNT; i++ {
		n := counts[i]
		notes := make([]OrgNote, n)
		for j := 0; j < n; j++ {
			if notes[j].Pos, err = c.i32(); err != nil {
				return nil, fmt.Errorf("org: track %d: truncated positions", i)
			}
		}
		for j := 0; j < n; j++ {
			if notes[j].Key, err = c.u8(); err != nil {
				return nil, fmt.Errorf("org: track %d: truncated keys", i)
			}
		}
		for j := 0; j < n; j++ {
			if notes[j].Length, err = c.u8(); err != nil {
				return nil, fmt.Errorf("org: track %d: truncated lengths", i)
			}
		}
		for j := 0; j < n; j++ {
			if notes[j].Volume, err = c.u8(); err != nil {
				return nil, fmt.Errorf("org: track %d: truncated volumes", i)
			}
		}
		for j := 0; j < n; j++ {
			if notes[j].Pan, err = c.u8(); err != nil {
				return nil, fmt.Errorf("org: track %d: truncated pans", i)
			}
		}
		song.Tracks[i].Notes = notes
	}

	return song, nil
}
