// sound_manager.go - control-thread facade: song resolution and command dispatch

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

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

const COMMAND_QUEUE_DEPTH = 64

var (
	ErrCommandDropped = errors.New("playback command queue full")
	ErrInvalidSpeed   = errors.New("speed factor must be positive")
)

// gameSuspended freezes the output device while set. The watcher goroutine
// polls it so the host can flip it from any thread without holding a lock.
var gameSuspended atomic.Bool

// SetGameSuspended pauses or resumes audio output for every live manager.
func SetGameSuspended(suspended bool) {
	gameSuspended.Store(suspended)
}

// MusicContext carries the song lookup tables owned by the host's asset
// layer: id -> name, candidate directory prefixes, and named soundtrack
// directories.
type MusicContext struct {
	MusicTable  []string
	MusicPaths  []string
	Soundtracks map[string]string
}

// Settings is the slice of host configuration the manager consults.
type Settings struct {
	Soundtrack string
}

// SoundManager is the control-thread facade. It resolves song ids to files,
// decodes them, and posts commands to the playback engine. All methods are
// non-blocking: when the command queue is full the command is dropped and
// reported, never waited on.
type SoundManager struct {
	tx     chan playbackMessage
	fsys   FileSystem
	engine *PlaybackEngine
	output AudioOutput

	prevSongID    int
	currentSongID int

	watcherStop chan struct{}
	watcherDone chan struct{}
}

// NewSoundManager loads the wavetable bank, spins up the playback engine on
// the requested backend and starts the suspend watcher.
func NewSoundManager(fsys FileSystem, wavetablePath string, backend, channels int) (*SoundManager, error) {
	f, err := fsys.Open(wavetablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wavetable: %w", err)
	}
	defer f.Close()

	bank, err := LoadSoundBank(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load wavetable: %w", err)
	}

	tx := make(chan playbackMessage, COMMAND_QUEUE_DEPTH)
	engine := NewPlaybackEngine(tx, bank, SAMPLE_RATE, channels)

	output, err := NewAudioOutput(backend, SAMPLE_RATE, channels, engine)
	if err != nil {
		return nil, err
	}
	output.Start()

	m := &SoundManager{
		tx:          tx,
		fsys:        fsys,
		engine:      engine,
		output:      output,
		watcherStop: make(chan struct{}),
		watcherDone: make(chan struct{}),
	}
	go m.suspendWatcher()
	return m, nil
}

// newSoundManagerForQueue wires a manager directly to a command channel with
// no output device attached.
func newSoundManagerForQueue(fsys FileSystem, tx chan playbackMessage) *SoundManager {
	return &SoundManager{tx: tx, fsys: fsys}
}

// suspendWatcher polls the suspend flag every 10ms and pauses or resumes the
// device stream to match. Pausing the device keeps the engine's state intact
// so playback continues exactly where it left off.
func (m *SoundManager) suspendWatcher() {
	defer close(m.watcherDone)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	suspended := false
	for {
		select {
		case <-m.watcherStop:
			return
		case <-ticker.C:
			now := gameSuspended.Load()
			if now != suspended {
				suspended = now
				if suspended {
					m.output.Pause()
				} else {
					m.output.Resume()
				}
			}
		}
	}
}

// Close stops the watcher, waits for it to exit, then releases the output
// device. The wait guarantees the watcher never touches the output after
// this returns.
func (m *SoundManager) Close() {
	if m.watcherStop != nil {
		close(m.watcherStop)
		<-m.watcherDone
		m.watcherStop = nil
	}
	if m.output != nil {
		m.output.Close()
		m.output = nil
	}
}

func (m *SoundManager) send(msg playbackMessage) error {
	select {
	case m.tx <- msg:
		return nil
	default:
		return ErrCommandDropped
	}
}

// CurrentSong reports the id most recently accepted by PlaySong.
func (m *SoundManager) CurrentSong() int {
	return m.currentSongID
}

// PlaySFX triggers the prerendered effect with the given id. Effects are
// fire-and-forget: a full queue drops the trigger silently.
func (m *SoundManager) PlaySFX(id uint8) {
	_ = m.send(playSampleMessage{id: id})
}

// SaveState tells the playback thread to snapshot its position and records
// the current song id so RestoreState can bring it back.
func (m *SoundManager) SaveState() error {
	if err := m.send(saveStateMessage{}); err != nil {
		return err
	}
	m.prevSongID = m.currentSongID
	return nil
}

// RestoreState resumes the last saved position and mirrors the id swap.
func (m *SoundManager) RestoreState() error {
	if err := m.send(restoreStateMessage{}); err != nil {
		return err
	}
	m.currentSongID = m.prevSongID
	return nil
}

// SetSpeed rescales playback. The factor must be positive; invalid values
// are rejected here and never reach the playback thread.
func (m *SoundManager) SetSpeed(speed float32) error {
	if speed <= 0 {
		return fmt.Errorf("%w: %f", ErrInvalidSpeed, speed)
	}
	return m.send(setSpeedMessage{speed: speed})
}

// songCandidate is one (files, start-message) pairing tried during
// resolution. Every listed file must exist before decode is attempted.
type songCandidate struct {
	files []string
	start func() (playbackMessage, error)
}

// PlaySong switches music to the given song id. Id 0 stops the music after
// saving the current position. Requesting the id already playing is a no-op.
// When no candidate file combination exists, or every existing combination
// fails to decode, the request is dropped without touching current state.
func (m *SoundManager) PlaySong(songID int, mctx *MusicContext, settings *Settings) error {
	if songID == m.currentSongID {
		return nil
	}

	if songID == 0 {
		if err := m.send(saveStateMessage{}); err != nil {
			return err
		}
		if err := m.send(stopMessage{}); err != nil {
			return err
		}
		m.prevSongID = m.currentSongID
		m.currentSongID = 0
		return nil
	}

	if songID < 0 || songID >= len(mctx.MusicTable) {
		fmt.Printf("No music table entry for song id %d\n", songID)
		return nil
	}
	name := mctx.MusicTable[songID]

	for _, prefix := range m.songPrefixes(mctx, settings) {
		for _, cand := range m.songCandidates(prefix, name) {
			if !m.filesExist(cand.files) {
				continue
			}

			msg, err := cand.start()
			if err != nil {
				fmt.Printf("Failed to load song %s: %v\n", cand.files[0], err)
				continue
			}

			fmt.Printf("Playing song: %s\n", cand.files[0])
			if err := m.send(saveStateMessage{}); err != nil {
				return err
			}
			if err := m.send(msg); err != nil {
				return err
			}
			m.prevSongID = m.currentSongID
			m.currentSongID = songID
			return nil
		}
	}

	fmt.Printf("No files found for song %s (id %d)\n", name, songID)
	return nil
}

// songPrefixes builds the ordered directory list: the active soundtrack's
// own directory when one is configured, then the conventional soundtrack
// location, then the built-in fallbacks.
func (m *SoundManager) songPrefixes(mctx *MusicContext, settings *Settings) []string {
	var prefixes []string
	if dir, ok := mctx.Soundtracks[settings.Soundtrack]; ok {
		prefixes = append(prefixes, dir)
	}
	if settings.Soundtrack != "" {
		prefixes = append(prefixes, "/Soundtracks/"+settings.Soundtrack+"/")
	}
	return append(prefixes, mctx.MusicPaths...)
}

// songCandidates lists the format attempts for one prefix, in preference
// order: dual-part stream, single-part stream (ogg then mp3), sequenced.
func (m *SoundManager) songCandidates(prefix, name string) []songCandidate {
	intro := prefix + name + "_intro.ogg"
	loop := prefix + name + "_loop.ogg"
	single := prefix + name + ".ogg"
	mp3Single := prefix + name + ".mp3"
	org := prefix + name + ".org"

	return []songCandidate{
		{files: []string{intro, loop}, start: func() (playbackMessage, error) {
			return m.openStreamMulti(intro, loop)
		}},
		{files: []string{single}, start: func() (playbackMessage, error) {
			return m.openStreamSingle(single, func(f File) (pcmStream, error) { return NewOggStream(f) })
		}},
		{files: []string{mp3Single}, start: func() (playbackMessage, error) {
			return m.openStreamSingle(mp3Single, func(f File) (pcmStream, error) { return NewMp3Stream(f) })
		}},
		{files: []string{org}, start: func() (playbackMessage, error) {
			return m.openOrganya(org)
		}},
	}
}

func (m *SoundManager) filesExist(files []string) bool {
	for _, f := range files {
		if !m.fsys.Exists(f) {
			return false
		}
	}
	return true
}

func (m *SoundManager) openOrganya(path string) (playbackMessage, error) {
	f, err := m.fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	song, err := LoadOrgSong(f)
	if err != nil {
		return nil, err
	}
	return playOrganyaMessage{song: song}, nil
}

func (m *SoundManager) openStreamSingle(path string, decode func(File) (pcmStream, error)) (playbackMessage, error) {
	f, err := m.fsys.Open(path)
	if err != nil {
		return nil, err
	}

	music, err := decode(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return playStreamSingleMessage{music: music}, nil
}

func (m *SoundManager) openStreamMulti(introPath, loopPath string) (playbackMessage, error) {
	introFile, err := m.fsys.Open(introPath)
	if err != nil {
		return nil, err
	}
	intro, err := NewOggStream(introFile)
	if err != nil {
		introFile.Close()
		return nil, err
	}

	loopFile, err := m.fsys.Open(loopPath)
	if err != nil {
		intro.Close()
		return nil, err
	}
	loopStream, err := NewOggStream(loopFile)
	if err != nil {
		intro.Close()
		loopFile.Close()
		return nil, err
	}
	return playStreamMultiMessage{intro: intro, loopStream: loopStream}, nil
}
