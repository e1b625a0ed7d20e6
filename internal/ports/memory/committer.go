package memory

import (
	"sync"

	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

// Committer is the local-play commit channel: patches are recorded
// in-process so the presentation layer (or a test) can observe the state
// mirror without any sync backend.
type Committer struct {
	mu      sync.Mutex
	patches []ports.Patch
}

// NewCommitter creates an empty in-memory committer.
func NewCommitter() *Committer {
	return &Committer{}
}

// ApplyPatch records the mutation.
func (c *Committer) ApplyPatch(path string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patches = append(c.patches, ports.Patch{Path: path, Value: value})
	return nil
}

// Patches returns a copy of everything committed so far.
func (c *Committer) Patches() []ports.Patch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ports.Patch, len(c.patches))
	copy(out, c.patches)
	return out
}

// Reset clears the recorded patches.
func (c *Committer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patches = nil
}
