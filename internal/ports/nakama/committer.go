package nakama

import (
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

// Committer mirrors engine state to connected clients through the match
// dispatcher. Patches accumulate while a command runs and go out as one
// message on Flush, so clients never observe a half-applied command.
type Committer struct {
	pending []ports.Patch
}

func NewCommitter() *Committer {
	return &Committer{}
}

// ApplyPatch buffers one state mutation.
func (c *Committer) ApplyPatch(path string, value interface{}) error {
	c.pending = append(c.pending, ports.Patch{Path: path, Value: value})
	return nil
}

// Flush broadcasts the buffered patches and clears the buffer. A nil
// dispatcher (local play, tests) just drops them.
func (c *Committer) Flush(dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if len(c.pending) == 0 {
		return
	}
	patches := c.pending
	c.pending = nil

	if dispatcher == nil {
		return
	}
	data, err := json.Marshal(patches)
	if err != nil {
		logger.Error("Committer: failed to marshal %d patches: %v", len(patches), err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpStatePatch, data, nil, nil, true); err != nil {
		logger.Error("Committer: broadcast failed: %v", err)
	}
}

var _ ports.Committer = (*Committer)(nil)
