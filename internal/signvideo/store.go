package signvideo

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// Store writes videos into a directory, one file per session.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir is ~/.cache/aslbridge/videos.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aslbridge", "videos"), nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes video as <sessionID><ext> and returns its path.
func (s *Store) Save(sessionID string, video *Video) (string, error) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("create video dir: %w", err)
	}
	path := filepath.Join(s.dir, sessionID+video.Extension())
	if err := os.WriteFile(path, video.Data, 0o600); err != nil {
		return "", fmt.Errorf("write video: %w", err)
	}
	log.Printf("signvideo: saved %s", path)
	return path, nil
}

// Player opens saved videos with an external command.
type Player struct {
	command string
}

func NewPlayer(command string) *Player {
	return &Player{command: command}
}

// Enabled reports whether a player command is configured.
func (p *Player) Enabled() bool {
	return p != nil && p.command != ""
}

// Open starts the player on path without waiting for playback to end.
func (p *Player) Open(path string) error {
	if !p.Enabled() {
		return nil
	}
	bin, err := exec.LookPath(p.command)
	if err != nil {
		return fmt.Errorf("player %q not found: %w", p.command, err)
	}

	cmd := exec.Command(bin, path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	// Reap the child in the background; openers like xdg-open exit quickly.
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("signvideo: player exited: %v", err)
		}
	}()
	return nil
}
