// Package media plays random files from the configured local directory.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/rishavshrivastavarxll-jpg/jervis/internal/launcher"
)

// ErrNoDirectory signals that the configured media directory does not
// exist.
var ErrNoDirectory = errors.New("media: directory not found")

// ErrEmpty signals that the directory holds no playable files.
var ErrEmpty = errors.New("media: no files in directory")

// Player picks files from a directory and opens them with the desktop
// launcher.
type Player struct {
	dir    string
	opener launcher.Opener
	strict bool
	pick   func(n int) int
}

// NewPlayer builds a player over dir. With strict=false (the historical
// behaviour) a failed launch is swallowed and playback is still reported
// as started; strict=true surfaces the launch failure instead.
func NewPlayer(dir string, opener launcher.Opener, strict bool) *Player {
	return &Player{
		dir:    dir,
		opener: opener,
		strict: strict,
		pick:   rand.IntN,
	}
}

// Dir returns the configured media directory.
func (p *Player) Dir() string { return p.dir }

// PlayRandom picks a regular, non-hidden file uniformly at random and
// opens it. It returns the chosen file name, or ErrNoDirectory /
// ErrEmpty when there is nothing to play.
func (p *Player) PlayRandom() (string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoDirectory
		}
		return "", fmt.Errorf("media: reading directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && !strings.HasPrefix(entry.Name(), ".") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return "", ErrEmpty
	}

	chosen := files[p.pick(len(files))]
	if err := p.opener.Open(filepath.Join(p.dir, chosen)); err != nil {
		if p.strict {
			return chosen, fmt.Errorf("media: opening %s: %w", chosen, err)
		}
		// Launch failure is dropped and the caller still reports
		// playback.
		slog.Warn("media launch failed, reporting playback anyway", "file", chosen, "error", err)
	}
	return chosen, nil
}
