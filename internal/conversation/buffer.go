// Package conversation keeps the bounded short-term history of the dialogue.
//
// A single Buffer instance is shared by every request handler in the
// process. There is no per-conversation identity: concurrent callers
// interleave into one history. That is an accepted limitation of the
// design — the internal lock only makes individual mutations safe, it
// does not isolate conversations.
package conversation

import (
	"strings"
	"sync"
)

// Window is the number of turns kept before the oldest is evicted.
const Window = 8

// delimiter separates turns in a snapshot.
const delimiter = " | "

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in the short-term history. Turns are
// never mutated after creation; they only leave the buffer by eviction.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Buffer is a fixed-capacity FIFO of conversation turns.
type Buffer struct {
	mu       sync.Mutex
	capacity int
	turns    []Turn
}

// New returns an empty buffer with the default window size.
func New() *Buffer {
	return NewWithCapacity(Window)
}

// NewWithCapacity returns an empty buffer holding at most capacity turns.
func NewWithCapacity(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = Window
	}
	return &Buffer{capacity: capacity}
}

// Push appends a turn, evicting the oldest when the window is full.
// Empty text is ignored.
func (b *Buffer) Push(role, text string) {
	if text == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, Turn{Role: role, Text: text})
	if len(b.turns) > b.capacity {
		b.turns = b.turns[len(b.turns)-b.capacity:]
	}
}

// Snapshot renders the history oldest-first as "role: text" entries
// joined by " | ". An empty buffer yields the empty string.
func (b *Buffer) Snapshot() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	parts := make([]string, len(b.turns))
	for i, t := range b.turns {
		parts[i] = t.Role + ": " + t.Text
	}
	return strings.Join(parts, delimiter)
}

// Len returns the number of turns currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}

// Turns returns a copy of the current history, oldest first.
func (b *Buffer) Turns() []Turn {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Turn, len(b.turns))
	copy(out, b.turns)
	return out
}
