// ogg_stream.go - Seekable PCM streams over the compressed bitstream decoders

package main

import (
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// pcmStream is the decoder surface the streaming renderer drives. Frames are
// interleaved float32 in [-1, 1]. Positions are counted in frames so a
// snapshot can resume at the exact sample the capture happened on.
type pcmStream interface {
	SampleRate() int
	Channels() int
	// ReadFrames fills dst with interleaved samples and returns the number
	// of whole frames read. A (0, nil) return means end of stream.
	ReadFrames(dst []float32) (int, error)
	Position() int64
	SetPosition(pos int64) error
	Close() error
}

// OggStream adapts an Ogg Vorbis bitstream to pcmStream.
type OggStream struct {
	r   *oggvorbis.Reader
	src File
}

// NewOggStream decodes the Vorbis headers of f and prepares for streaming.
func NewOggStream(f File) (*OggStream, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("ogg: %w", err)
	}
	return &OggStream{r: r, src: f}, nil
}

func (s *OggStream) SampleRate() int { return s.r.SampleRate() }
func (s *OggStream) Channels() int   { return s.r.Channels() }
func (s *OggStream) Close() error    { return s.src.Close() }

func (s *OggStream) ReadFrames(dst []float32) (int, error) {
	ch := s.r.Channels()
	want := (len(dst) / ch) * ch
	if want == 0 {
		return 0, nil
	}
	n, err := s.r.Read(dst[:want])
	if err == io.EOF {
		err = nil
	}
	return n / ch, err
}

func (s *OggStream) Position() int64 { return s.r.Position() }

func (s *OggStream) SetPosition(pos int64) error {
	return s.r.SetPosition(pos)
}

// Mp3Stream adapts an MP3 bitstream to pcmStream. The decoder always
// produces 16-bit little-endian stereo, four bytes per frame.
type Mp3Stream struct {
	d       *mp3.Decoder
	src     File
	frame   int64
	scratch []byte
}

// NewMp3Stream decodes the MP3 headers of f and prepares for streaming.
func NewMp3Stream(f File) (*Mp3Stream, error) {
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return &Mp3Stream{d: d, src: f}, nil
}

func (s *Mp3Stream) SampleRate() int { return s.d.SampleRate() }
func (s *Mp3Stream) Channels() int   { return 2 }
func (s *Mp3Stream) Close() error    { return s.src.Close() }

func (s *Mp3Stream) ReadFrames(dst []float32) (int, error) {
	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}
	need := frames * 4
	if cap(s.scratch) < need {
		s.scratch = make([]byte, need)
	}
	raw := s.scratch[:need]

	read := 0
	for read < need {
		n, err := s.d.Read(raw[read:])
		read += n
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
	}

	got := read / 4
	for i := 0; i < got; i++ {
		l := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		r := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		dst[i*2] = float32(l) / 32768
		dst[i*2+1] = float32(r) / 32768
	}
	s.frame += int64(got)
	return got, nil
}

func (s *Mp3Stream) Position() int64 { return s.frame }

func (s *Mp3Stream) SetPosition(pos int64) error {
	if _, err := s.d.Seek(pos*4, io.SeekStart); err != nil {
		return err
	}
	s.frame = pos
	return nil
}
