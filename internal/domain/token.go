package domain

// TokenValue is a wager-token denomination. The numeric value is the number
// of points a successful block is worth.
type TokenValue int

const (
	TokenLow    TokenValue = 2
	TokenMedium TokenValue = 4
	TokenHigh   TokenValue = 6
)

// TokenValues lists every denomination in ascending order.
var TokenValues = []TokenValue{TokenLow, TokenMedium, TokenHigh}

// Ledger tracks one player's wager tokens. Counts only change through
// explicit transfers at scoring time; the used marks flag tokens spent on a
// block in the current round without moving them yet.
type Ledger struct {
	counts map[TokenValue]int
	used   map[TokenValue]int
}

// NewLedger creates a ledger holding the given starting counts.
func NewLedger(starting map[TokenValue]int) *Ledger {
	l := &Ledger{
		counts: make(map[TokenValue]int, len(TokenValues)),
		used:   make(map[TokenValue]int, len(TokenValues)),
	}
	for v, n := range starting {
		l.counts[v] = n
	}
	return l
}

// Count returns how many tokens of a denomination the player holds,
// including any marked used this round.
func (l *Ledger) Count(v TokenValue) int {
	return l.counts[v]
}

// Available returns how many tokens of a denomination can still be spent
// this round.
func (l *Ledger) Available(v TokenValue) int {
	return l.counts[v] - l.used[v]
}

// MarkUsed flags one token of the denomination as spent this round. The
// token stays in the ledger; its fate is settled at scoring.
func (l *Ledger) MarkUsed(v TokenValue) error {
	if l.Available(v) <= 0 {
		return ErrTokenUnavailable
	}
	l.used[v]++
	return nil
}

// Unmark reverses a MarkUsed, e.g. when a staged block is abandoned.
func (l *Ledger) Unmark(v TokenValue) {
	if l.used[v] > 0 {
		l.used[v]--
	}
}

// ClearUsed resets the per-round used marks at round end.
func (l *Ledger) ClearUsed() {
	for v := range l.used {
		delete(l.used, v)
	}
}

// Remove takes one token of the denomination out of the ledger. It also
// drops a matching used mark so a transferred wager does not leave a stale
// mark behind.
func (l *Ledger) Remove(v TokenValue) error {
	if l.counts[v] <= 0 {
		return ErrTokenUnavailable
	}
	l.counts[v]--
	if l.used[v] > 0 {
		l.used[v]--
	}
	return nil
}

// Add puts one token of the denomination into the ledger.
func (l *Ledger) Add(v TokenValue) {
	l.counts[v]++
}

// Total returns the number of tokens held across all denominations.
func (l *Ledger) Total() int {
	n := 0
	for _, c := range l.counts {
		n += c
	}
	return n
}

// Counts returns a copy of the per-denomination counts.
func (l *Ledger) Counts() map[TokenValue]int {
	out := make(map[TokenValue]int, len(l.counts))
	for v, n := range l.counts {
		out[v] = n
	}
	return out
}
