package skill

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FailureResponse is returned when a skill errors or panics while
// handling an utterance. The failure is terminal for that utterance: no
// later skill or built-in intent gets to see it.
const FailureResponse = "Sorry, a skill errored while processing your request."

// DefaultExecTimeout bounds a command-backed skill invocation.
const DefaultExecTimeout = 10 * time.Second

// manifestExts are the recognized skill file extensions.
var manifestExts = map[string]bool{".yaml": true, ".yml": true}

// Registry owns the loaded skill set. Load rebuilds the set and
// publishes it atomically, so it is safe to call repeatedly (hot reload)
// while Dispatch runs on other goroutines.
type Registry struct {
	mu          sync.RWMutex
	skills      []Skill
	execTimeout time.Duration
}

// NewRegistry returns an empty registry.
func NewRegistry(execTimeout time.Duration) *Registry {
	if execTimeout <= 0 {
		execTimeout = DefaultExecTimeout
	}
	return &Registry{execTimeout: execTimeout}
}

// Load scans dir for skill manifests and replaces the active set with
// the result. A missing directory is not an error — it just yields an
// empty set. Entries are considered in lexicographic filename order,
// which is the dispatch priority. Files whose name starts with '_' and
// files without a manifest extension are ignored; units that fail to
// parse or validate are logged and skipped, never aborting the load.
func (r *Registry) Load(dir string) {
	loaded := make([]Skill, 0)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("no skills directory found", "dir", dir)
		} else {
			slog.Warn("reading skills directory failed", "dir", dir, "error", err)
		}
		r.publish(loaded)
		return
	}

	// os.ReadDir returns entries sorted by filename.
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") || !manifestExts[filepath.Ext(name)] {
			continue
		}

		s, err := loadManifest(filepath.Join(dir, name), r.execTimeout)
		if err != nil {
			slog.Warn("skill skipped", "file", name, "error", err)
			continue
		}

		loaded = append(loaded, s)
		slog.Info("loaded skill", "name", s.Name(), "file", name)
	}

	r.publish(loaded)
}

// Register appends a compiled-in skill to the active set. A subsequent
// Load replaces registered skills along with everything else.
func (r *Registry) Register(s Skill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skills = append(r.skills, s)
}

// Count returns the number of active skills.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.skills)
}

// Dispatch offers the utterance to each skill in order. The first skill
// whose CanHandle returns true handles it — handled is true and response
// holds its output. A skill that panics or returns an error yields
// handled=true with the fixed failure message. When no skill claims the
// utterance, handled is false.
func (r *Registry) Dispatch(utterance, contextSnapshot string) (handled bool, response string) {
	r.mu.RLock()
	skills := r.skills
	r.mu.RUnlock()

	for _, s := range skills {
		ok, err := safeCanHandle(s, utterance)
		if err != nil {
			slog.Error("skill failed during matching", "skill", s.Name(), "error", err)
			return true, FailureResponse
		}
		if !ok {
			continue
		}

		slog.Info("dispatching to skill", "skill", s.Name())
		resp, err := safeHandle(s, utterance, contextSnapshot)
		if err != nil {
			slog.Error("skill failed while handling utterance", "skill", s.Name(), "error", err)
			return true, FailureResponse
		}
		return true, resp
	}

	return false, ""
}

func (r *Registry) publish(skills []Skill) {
	r.mu.Lock()
	r.skills = skills
	r.mu.Unlock()
}

func safeCanHandle(s Skill, utterance string) (ok bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("canHandle panic: %v", p)
		}
	}()
	return s.CanHandle(utterance), nil
}

func safeHandle(s Skill, utterance, contextSnapshot string) (resp string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handle panic: %v", p)
		}
	}()
	return s.Handle(utterance, contextSnapshot)
}
