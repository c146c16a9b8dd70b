package skill

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadMissingDirectoryYieldsEmptySet(t *testing.T) {
	r := NewRegistry(0)
	r.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Equal(t, 0, r.Count())
}

func TestLoadSkipsInvalidAndIgnoredFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "greet.yaml", "name: greet\ntriggers: [hello]\nreply: Hi!\n")
	writeManifest(t, dir, "_disabled.yaml", "name: off\ntriggers: [x]\nreply: y\n")
	writeManifest(t, dir, "broken.yaml", "triggers: [\n")                   // syntax error
	writeManifest(t, dir, "no-handler.yaml", "triggers: [abc]\n")           // missing handler
	writeManifest(t, dir, "no-triggers.yaml", "reply: orphan\n")            // missing canHandle
	writeManifest(t, dir, "notes.txt", "not a skill\n")                     // wrong extension
	writeManifest(t, dir, "both.yaml", "triggers: [z]\nreply: a\ncommand: [/bin/true]\n")

	r := NewRegistry(0)
	r.Load(dir)

	assert.Equal(t, 1, r.Count())
	handled, resp := r.Dispatch("hello there", "")
	assert.True(t, handled)
	assert.Equal(t, "Hi!", resp)
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", "triggers: [ping]\nreply: pong\n")

	r := NewRegistry(0)
	r.Load(dir)
	r.Load(dir)
	assert.Equal(t, 1, r.Count())

	// Reload after the manifest is removed clears the set.
	require.NoError(t, os.Remove(filepath.Join(dir, "a.yaml")))
	r.Load(dir)
	assert.Equal(t, 0, r.Count())
}

func TestDispatchFirstMatchWinsInLexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	// Both trigger on the same word; "alpha.yaml" sorts first.
	writeManifest(t, dir, "beta.yaml", "triggers: [joke]\nreply: from beta\n")
	writeManifest(t, dir, "alpha.yaml", "triggers: [joke]\nreply: from alpha\n")

	r := NewRegistry(0)
	r.Load(dir)
	require.Equal(t, 2, r.Count())

	handled, resp := r.Dispatch("tell me a joke", "")
	assert.True(t, handled)
	assert.Equal(t, "from alpha", resp)
}

func TestDispatchUnmatchedReportsUnhandled(t *testing.T) {
	r := NewRegistry(0)
	handled, resp := r.Dispatch("anything", "")
	assert.False(t, handled)
	assert.Empty(t, resp)
}

type stubSkill struct {
	name     string
	matches  bool
	panicOn  string
	err      error
	response string
	handled  int
}

func (s *stubSkill) Name() string { return s.name }

func (s *stubSkill) CanHandle(string) bool {
	if s.panicOn == "canHandle" {
		panic("boom")
	}
	return s.matches
}

func (s *stubSkill) Handle(string, string) (string, error) {
	s.handled++
	if s.panicOn == "handle" {
		panic("boom")
	}
	return s.response, s.err
}

func TestDispatchSkillErrorIsTerminal(t *testing.T) {
	failing := &stubSkill{name: "failing", matches: true, err: errors.New("exploded")}
	later := &stubSkill{name: "later", matches: true, response: "should not run"}

	r := NewRegistry(0)
	r.Register(failing)
	r.Register(later)

	handled, resp := r.Dispatch("whatever", "ctx")
	assert.True(t, handled)
	assert.Equal(t, FailureResponse, resp)
	assert.Equal(t, 0, later.handled, "no fallthrough to later skills")
}

func TestDispatchSkillPanicIsRecovered(t *testing.T) {
	r := NewRegistry(0)
	r.Register(&stubSkill{name: "panicky", matches: true, panicOn: "handle"})

	handled, resp := r.Dispatch("whatever", "")
	assert.True(t, handled)
	assert.Equal(t, FailureResponse, resp)
}

func TestDispatchCanHandlePanicIsRecovered(t *testing.T) {
	r := NewRegistry(0)
	r.Register(&stubSkill{name: "panicky", panicOn: "canHandle"})

	handled, resp := r.Dispatch("whatever", "")
	assert.True(t, handled)
	assert.Equal(t, FailureResponse, resp)
}

func TestContextTemplateOnlyWhenRequested(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "ctx.yaml",
		"triggers: [recap]\nwants_context: true\nreply: \"so far: {{context}}\"\n")
	writeManifest(t, dir, "noctx.yaml",
		"triggers: [plain]\nreply: \"ctx=[{{context}}]\"\n")

	r := NewRegistry(0)
	r.Load(dir)

	_, resp := r.Dispatch("recap please", "user: hi")
	assert.Equal(t, "so far: user: hi", resp)

	_, resp = r.Dispatch("plain please", "user: hi")
	assert.Equal(t, "ctx=[]", resp, "context withheld from skills that don't want it")
}
