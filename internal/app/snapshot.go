package app

import "github.com/prcass/outrank-v5-sub000/internal/domain"

// RoundSnapshot is a read-only copy of the round state for rendering.
type RoundSnapshot struct {
	Number     int
	Category   string
	Challenge  domain.Challenge
	Drawn      []string
	Blocked    map[string]string
	HighBid    int
	HighBidder string
	BidderID   string
	Bid        int
	BlockOrder []string
	BlockTurn  int
	Selected   []string
	Order      []string
	Outcome    domain.Outcome
	Scored     bool
}

// PlayerSnapshot is a read-only copy of one player's aggregates.
type PlayerSnapshot struct {
	ID     string
	Name   string
	Seat   int
	Score  int
	Tokens map[domain.TokenValue]int
	Owned  map[string][]string
	Stats  domain.Stats
}

// Phase reports the current phase, or Idle when no game exists.
func (s *Service) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return domain.PhaseIdle
	}
	return s.game.Phase
}

// RoundSnapshot copies the active round, or returns false when no round is
// in flight.
func (s *Service) RoundSnapshot() (RoundSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.Round == nil {
		return RoundSnapshot{}, false
	}
	r := s.game.Round
	snap := RoundSnapshot{
		Number:     r.Number,
		Category:   r.Category,
		Challenge:  r.Challenge,
		Drawn:      append([]string(nil), r.Drawn...),
		Blocked:    make(map[string]string, len(r.Blocked)),
		HighBid:    r.Auction.HighBid,
		HighBidder: r.Auction.HighBidder,
		BidderID:   r.BidderID,
		Bid:        r.Bid,
		BlockOrder: append([]string(nil), r.BlockOrder...),
		BlockTurn:  r.BlockTurn,
		Selected:   append([]string(nil), r.Selected...),
		Order:      append([]string(nil), r.Order...),
		Outcome:    r.Outcome,
		Scored:     r.Scored,
	}
	for item, blocker := range r.Blocked {
		snap.Blocked[item] = blocker
	}
	return snap, true
}

// PlayerSnapshot copies one player's visible state.
func (s *Service) PlayerSnapshot(playerID string) (PlayerSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return PlayerSnapshot{}, false
	}
	p, ok := s.game.Player(playerID)
	if !ok {
		return PlayerSnapshot{}, false
	}
	snap := PlayerSnapshot{
		ID:     p.ID,
		Name:   p.Name,
		Seat:   p.Seat,
		Score:  p.Score,
		Tokens: p.Tokens.Counts(),
		Owned:  make(map[string][]string),
		Stats:  p.Stats,
	}
	for category := range p.Owned {
		if ids := p.OwnedIn(category); len(ids) > 0 {
			snap.Owned[category] = ids
		}
	}
	return snap, true
}

// BlockingTurn reports whose turn it is to block, or false outside the
// blocking phase.
func (s *Service) BlockingTurn() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.Phase != domain.PhaseBlocking || s.game.Round == nil {
		return "", false
	}
	return s.game.Round.CurrentBlocker()
}

// RevealProgress reports the reveal position, or false outside the reveal.
func (s *Service) RevealProgress() (revealed, total, breakIndex int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.Round == nil || len(s.game.Round.Order) == 0 {
		return 0, 0, -1, false
	}
	revealed, total, breakIndex = s.game.RevealProgress()
	return revealed, total, breakIndex, true
}

// Standings returns the current score table, best first.
func (s *Service) Standings() []domain.Standing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	return s.game.Standings()
}
