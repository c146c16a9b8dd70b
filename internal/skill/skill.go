// Package skill implements the pluggable interpreter units and their
// registry.
//
// A skill is an independently authored unit with a two-method capability
// contract: it is asked whether it wants an utterance, and if so it
// produces the response. Skills are consulted before any built-in
// intent, in discovery order.
package skill

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Skill is one interpreter unit. The context snapshot is always passed;
// implementations that don't need it simply ignore it.
type Skill interface {
	// Name identifies the skill in logs.
	Name() string

	// CanHandle reports whether the skill wants the (lower-cased,
	// trimmed) utterance.
	CanHandle(utterance string) bool

	// Handle produces the response text for an utterance the skill
	// claimed.
	Handle(utterance, contextSnapshot string) (string, error)
}

// manifest mirrors the on-disk YAML definition of a skill.
type manifest struct {
	Name         string   `yaml:"name"`
	Triggers     []string `yaml:"triggers"`
	WantsContext bool     `yaml:"wants_context"`
	Reply        string   `yaml:"reply"`
	Command      []string `yaml:"command"`
}

// fileSkill is a Skill backed by a manifest file. It answers either with
// a reply template or by running an external command with the utterance
// (and, when requested, the context snapshot) as trailing arguments.
type fileSkill struct {
	manifest
	timeout time.Duration
}

func (s *fileSkill) Name() string { return s.manifest.Name }

func (s *fileSkill) CanHandle(utterance string) bool {
	for _, trigger := range s.Triggers {
		if trigger != "" && strings.Contains(utterance, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}

func (s *fileSkill) Handle(utterance, contextSnapshot string) (string, error) {
	if len(s.Command) > 0 {
		return s.run(utterance, contextSnapshot)
	}

	out := strings.ReplaceAll(s.Reply, "{{utterance}}", utterance)
	ctxText := ""
	if s.WantsContext {
		ctxText = contextSnapshot
	}
	return strings.ReplaceAll(out, "{{context}}", ctxText), nil
}

func (s *fileSkill) run(utterance, contextSnapshot string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	args := append([]string(nil), s.Command[1:]...)
	args = append(args, utterance)
	if s.WantsContext {
		args = append(args, contextSnapshot)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Command[0], args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("skill %q: %w: %s", s.Name(), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// loadManifest parses and validates a single skill manifest. A unit
// missing either capability (triggers, or a reply/command handler) is
// rejected here so that partially valid skills never reach the registry.
func loadManifest(path string, timeout time.Duration) (Skill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if m.Name == "" {
		m.Name = baseName(path)
	}
	if len(m.Triggers) == 0 {
		return nil, fmt.Errorf("missing 'triggers'")
	}
	if m.Reply == "" && len(m.Command) == 0 {
		return nil, fmt.Errorf("missing 'reply' or 'command'")
	}
	if m.Reply != "" && len(m.Command) > 0 {
		return nil, fmt.Errorf("'reply' and 'command' are mutually exclusive")
	}

	return &fileSkill{manifest: m, timeout: timeout}, nil
}

func baseName(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
