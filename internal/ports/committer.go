package ports

// Patch is one state mutation expressed as a dotted path and its new value,
// e.g. "phase", "round.bid", "players.p1.score". The engine emits patches
// after every command so a sync adapter can mirror state to other clients.
type Patch struct {
	Path  string
	Value interface{}
}

// Committer is the abstract commit channel for engine state mutations. The
// engine never depends on a concrete sync technology; local play uses an
// in-memory committer, online play a dispatcher-backed one.
type Committer interface {
	// ApplyPatch records or transmits a single state mutation.
	ApplyPatch(path string, value interface{}) error
}
