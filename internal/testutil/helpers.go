package testutil

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestRNG creates a deterministic random number generator for tests
func NewTestRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NopLogger returns a no-op logger for tests
func NopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// IntPtr returns a pointer to n, for optional command fields.
func IntPtr(n int) *int {
	return &n
}

// AssertPanic asserts that the given function panics
func AssertPanic(t *testing.T, f func(), msgAndArgs ...interface{}) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic but none occurred: %v", msgAndArgs)
		}
	}()
	f()
}

// ScriptedDice hands out queued die faces in order. Rolling past the end of
// the script panics so a test never silently consumes random dice.
type ScriptedDice struct {
	mu    sync.Mutex
	faces []int
}

// NewScriptedDice queues faces to be returned by later rolls.
func NewScriptedDice(faces ...int) *ScriptedDice {
	return &ScriptedDice{faces: append([]int(nil), faces...)}
}

// Queue appends more faces to the script.
func (d *ScriptedDice) Queue(faces ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faces = append(d.faces, faces...)
}

// Remaining reports how many faces are still queued.
func (d *ScriptedDice) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.faces)
}

func (d *ScriptedDice) Roll(n int) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n > len(d.faces) {
		panic(fmt.Sprintf("scripted dice: asked for %d dice, %d queued", n, len(d.faces)))
	}
	out := append([]int(nil), d.faces[:n]...)
	d.faces = d.faces[n:]
	return out
}
