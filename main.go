// main.go - Main entry point for the EchoEngine demo player

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░           ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/EchoEngine
License: GPLv3 or later
*/

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147m ▓█████  ▄████▄   ██░ ██  ▒█████      ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████\033[0m")
	fmt.Println("\nA real-time game audio engine: sequenced music, streamed music and procedural sound effects.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/EchoEngine")
	fmt.Println("License: GPLv3 or later")
}

func parseBackendFlag(value string) (int, error) {
	switch strings.ToLower(value) {
	case "oto":
		return AUDIO_BACKEND_OTO, nil
	case "sdl":
		return AUDIO_BACKEND_SDL, nil
	case "alsa":
		return AUDIO_BACKEND_ALSA, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want oto, sdl or alsa)", value)
	}
}

func main() {
	boilerPlate()

	var (
		dataDir     string
		wavetable   string
		backendName string
		channels    int
		soundtrack  string
		songTable   string
		musicPaths  string
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&dataDir, "data", "data", "Asset directory root")
	flagSet.StringVar(&wavetable, "wavetable", "/wavetable.dat", "Wavetable path inside the asset root")
	flagSet.StringVar(&backendName, "backend", "oto", "Audio backend: oto, sdl or alsa")
	flagSet.IntVar(&channels, "channels", 2, "Output channels: 1 or 2")
	flagSet.StringVar(&soundtrack, "soundtrack", "", "Named soundtrack directory override")
	flagSet.StringVar(&songTable, "songs", "", "Comma-separated song names for ids 1..n")
	flagSet.StringVar(&musicPaths, "paths", "/Org/,/Ogg/,/", "Comma-separated candidate music directories")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./echo_engine -data DIR [-wavetable PATH] [-backend oto|sdl|alsa] [-channels 1|2] [-songs a,b,c]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if channels != 1 && channels != 2 {
		fmt.Println("Error: -channels must be 1 or 2")
		os.Exit(1)
	}

	backend, err := parseBackendFlag(backendName)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fsys := NewDirFS(dataDir)
	manager, err := NewSoundManager(fsys, wavetable, backend, channels)
	if err != nil {
		fmt.Printf("Failed to initialize sound: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	mctx := &MusicContext{
		MusicTable:  append([]string{""}, strings.Split(songTable, ",")...),
		MusicPaths:  strings.Split(musicPaths, ","),
		Soundtracks: map[string]string{},
	}
	settings := &Settings{Soundtrack: soundtrack}

	fmt.Println("\nKeys: 1-9 play song, 0 stop, s save position, r restore, +/- speed, p pause/resume, x/c/v effects, q quit")

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Printf("Failed to enter raw mode: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	speed := float32(1.0)
	suspended := false
	key := make([]byte, 1)

	for {
		if _, err := os.Stdin.Read(key); err != nil {
			return
		}

		switch {
		case key[0] >= '0' && key[0] <= '9':
			if err := manager.PlaySong(int(key[0]-'0'), mctx, settings); err != nil {
				fmt.Printf("play_song failed: %v\r\n", err)
			}
		case key[0] == 's':
			if err := manager.SaveState(); err != nil {
				fmt.Printf("save_state failed: %v\r\n", err)
			}
		case key[0] == 'r':
			if err := manager.RestoreState(); err != nil {
				fmt.Printf("restore_state failed: %v\r\n", err)
			}
		case key[0] == '+':
			speed += 0.1
			if err := manager.SetSpeed(speed); err != nil {
				fmt.Printf("set_speed failed: %v\r\n", err)
			}
		case key[0] == '-':
			if speed > 0.2 {
				speed -= 0.1
			}
			if err := manager.SetSpeed(speed); err != nil {
				fmt.Printf("set_speed failed: %v\r\n", err)
			}
		case key[0] == 'p':
			suspended = !suspended
			SetGameSuspended(suspended)
		case key[0] == 'x':
			manager.PlaySFX(1)
		case key[0] == 'c':
			manager.PlaySFX(2)
		case key[0] == 'v':
			manager.PlaySFX(5)
		case key[0] == 'q':
			return
		}
	}
}
