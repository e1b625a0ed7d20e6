package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/prcass/outrank-v5-sub000/internal/domain"
	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

var (
	ErrNoActiveGame   = errors.New("no active game")
	ErrGameInProgress = errors.New("game already in progress")
)

// Service runs the use-cases on the single authoritative Game. Commands are
// serialized by the mutex: one command fully validates, mutates and commits
// before the next begins, whether it came from a local player, a bot or a
// remote patch fed back through Dispatch.
type Service struct {
	mu        sync.Mutex
	rng       *rand.Rand
	catalog   *domain.Catalog
	rules     domain.RuleConfig
	committer ports.Committer
	game      *domain.Game

	// Stake is the per-player gold ante for online play. Zero means free
	// play and no balance changes are reported at game end.
	Stake int64
}

// NewService constructs a Service. committer may be nil for callers that do
// not mirror state; rng may be nil to use a time-seeded default.
func NewService(catalog *domain.Catalog, rules domain.RuleConfig, committer ports.Committer, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		rng:       rng,
		catalog:   catalog,
		rules:     rules,
		committer: committer,
	}
}

// Game exposes the current game for read-only inspection. Callers must not
// mutate it; all writes go through commands.
func (s *Service) Game() *domain.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game
}

// StartNewGame discards any finished game and starts a fresh one with the
// given players in seat order. A game still in progress is not replaced.
func (s *Service) StartNewGame(playerIDs []string, names map[string]string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game != nil && s.game.Phase != domain.PhaseGameEnd {
		return nil, ErrGameInProgress
	}

	g, err := domain.NewGame(s.catalog, s.rules, playerIDs, names)
	if err != nil {
		return nil, err
	}
	if err := g.Begin(); err != nil {
		return nil, err
	}
	s.game = g

	events := []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:   g.Phase,
			Players: append([]string(nil), g.Seats...),
			Rules:   s.rules.Name,
		},
	}}
	s.patch("phase", string(g.Phase))
	s.patch("round.number", g.RoundNum)
	return events, nil
}

// SelectCategory starts the round: picks a challenge for the category,
// draws the hand and opens the auction.
func (s *Service) SelectCategory(category string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.SelectCategory(category, s.rng); err != nil {
		return nil, err
	}

	ch := g.Round.Challenge
	events := []Event{
		{
			Kind: EventCategoryChosen,
			Payload: CategoryChosenPayload{
				Category:  ch.Category,
				Metric:    ch.Metric,
				Direction: ch.Direction,
				Label:     ch.Label,
			},
		},
		{
			Kind: EventHandDrawn,
			Payload: HandDrawnPayload{
				Round: g.Round.Number,
				Items: append([]string(nil), g.Round.Drawn...),
			},
		},
	}
	s.patch("phase", string(g.Phase))
	s.patch("round.category", category)
	s.patch("round.drawn", g.Round.Drawn)
	return events, nil
}

// PlaceBid raises the current bid by one on behalf of playerID. If the
// auction ends as a result, the blocking phase (and possibly further
// automatic phases) follow in the same command.
func (s *Service) PlaceBid(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.PlaceBid(playerID); err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventBidPlaced,
		Payload: BidPlacedPayload{UserID: playerID, Bid: g.Round.Auction.HighBid},
	}}
	s.patch("round.highBid", g.Round.Auction.HighBid)
	s.patch("round.highBidder", g.Round.Auction.HighBidder)
	return s.afterAuction(g, events), nil
}

// Pass withdraws playerID from the auction.
func (s *Service) Pass(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	restarts := 0
	if g.Round != nil {
		restarts = g.BiddingRestarted()
	}
	if err := g.PassBid(playerID); err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventBidPassed,
		Payload: BidPassedPayload{UserID: playerID},
	}}
	if g.Phase == domain.PhaseBidding && g.BiddingRestarted() > restarts {
		events = append(events, Event{
			Kind:    EventBiddingRestart,
			Payload: BiddingRestartPayload{Restarts: g.BiddingRestarted()},
		})
	}
	return s.afterAuction(g, events), nil
}

// SelectBlockingToken stages the denomination the current blocker will
// wager.
func (s *Service) SelectBlockingToken(playerID string, v domain.TokenValue) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.SelectBlockingToken(playerID, v); err != nil {
		return nil, err
	}
	return []Event{{
		Kind:    EventTokenStaged,
		Payload: TokenStagedPayload{UserID: playerID, Token: v},
	}}, nil
}

// BlockItem wagers the staged token on itemID and advances the blocking
// turn.
func (s *Service) BlockItem(playerID, itemID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	var token domain.TokenValue
	if g.Round != nil {
		token = g.Round.StagedToken
	}
	if err := g.BlockItem(playerID, itemID); err != nil {
		return nil, err
	}

	next, _ := g.Round.CurrentBlocker()
	events := []Event{{
		Kind: EventItemBlocked,
		Payload: ItemBlockedPayload{
			UserID:      playerID,
			ItemID:      itemID,
			Token:       token,
			NextBlocker: next,
		},
	}}
	s.patch("round.blocked."+itemID, playerID)
	return s.afterBlocking(g, events), nil
}

// SkipBlock passes the current blocker's turn without a wager.
func (s *Service) SkipBlock(playerID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.SkipBlock(playerID); err != nil {
		return nil, err
	}

	next, _ := g.Round.CurrentBlocker()
	events := []Event{{
		Kind:    EventBlockSkipped,
		Payload: BlockSkippedPayload{UserID: playerID, NextBlocker: next},
	}}
	return s.afterBlocking(g, events), nil
}

// SelectRankingItem adds an item to the bidder's ranking material. When the
// selection reaches the bid the game moves to ranking on its own.
func (s *Service) SelectRankingItem(playerID, itemID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.SelectRankingItem(playerID, itemID); err != nil {
		return nil, err
	}

	s.patch("round.selected", g.Round.Selected)
	s.patch("phase", string(g.Phase))
	return []Event{{
		Kind: EventItemSelected,
		Payload: ItemSelectedPayload{
			ItemID:   itemID,
			Selected: append([]string(nil), g.Round.Selected...),
		},
	}}, nil
}

// DeselectRankingItem removes a previously selected item, reopening the
// selection when it was already full.
func (s *Service) DeselectRankingItem(playerID, itemID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.DeselectRankingItem(playerID, itemID); err != nil {
		return nil, err
	}

	s.patch("round.selected", g.Round.Selected)
	s.patch("phase", string(g.Phase))
	return []Event{{
		Kind: EventItemDeselected,
		Payload: ItemDeselectedPayload{
			ItemID:   itemID,
			Selected: append([]string(nil), g.Round.Selected...),
		},
	}}, nil
}

// SubmitRanking locks the bidder's candidate order and moves to the reveal.
func (s *Service) SubmitRanking(playerID string, order []string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.SubmitRanking(playerID, order); err != nil {
		return nil, err
	}

	s.patch("phase", string(g.Phase))
	s.patch("round.order", g.Round.Order)
	return []Event{{
		Kind:    EventRankingLocked,
		Payload: RankingLockedPayload{BidderID: playerID, Order: append([]string(nil), order...)},
	}}, nil
}

// RevealNext discloses the next item of the candidate order. When the last
// item is revealed the round is scored in the same command.
func (s *Service) RevealNext() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	step, err := g.RevealNext()
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventItemRevealed,
		Payload: ItemRevealedPayload{Step: step},
	}}
	s.patch("round.revealIndex", g.Round.RevealIndex)
	if g.Phase == domain.PhaseScoring {
		events = s.score(g, events)
	}
	return events, nil
}

// ContinueToNextRound leaves the round-end screen, either into the next
// round's category selection or into the end of the game.
func (s *Service) ContinueToNextRound() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := g.ContinueRound(); err != nil {
		return nil, err
	}

	s.patch("phase", string(g.Phase))
	if g.Phase == domain.PhaseGameEnd {
		return []Event{s.gameEndedEvent(g)}, nil
	}
	s.patch("round.number", g.RoundNum)
	return []Event{{
		Kind: EventRoundContinued,
		Payload: RoundContinuedPayload{
			Round:     g.RoundNum,
			Phase:     g.Phase,
			Standings: g.Standings(),
		},
	}}, nil
}

// afterAuction emits the follow-up events when a bid or pass closed the
// auction. Blocking can resolve instantly when there are no blockers, so
// the phase may already be past Blocking here.
func (s *Service) afterAuction(g *domain.Game, events []Event) []Event {
	if g.Phase == domain.PhaseBidding {
		return events
	}
	events = append(events, Event{
		Kind: EventAuctionWon,
		Payload: AuctionWonPayload{
			BidderID:   g.Round.BidderID,
			Bid:        g.Round.Bid,
			BlockOrder: append([]string(nil), g.Round.BlockOrder...),
		},
	})
	s.patch("phase", string(g.Phase))
	s.patch("round.bidder", g.Round.BidderID)
	s.patch("round.bid", g.Round.Bid)
	return s.afterBlocking(g, events)
}

// afterBlocking emits the follow-up events once the blocking phase is over:
// the selection opening, or the forced-failure settlement.
func (s *Service) afterBlocking(g *domain.Game, events []Event) []Event {
	switch g.Phase {
	case domain.PhaseCardSelection:
		events = append(events, Event{
			Kind: EventSelectionOpen,
			Payload: SelectionOpenPayload{
				BidderID:  g.Round.BidderID,
				Bid:       g.Round.Bid,
				Available: g.AvailableForRanking(),
			},
		})
		s.patch("phase", string(g.Phase))
	case domain.PhaseScoring:
		events = s.score(g, events)
	}
	return events
}

// score settles the round and appends the settlement event. Integrity
// violations surface as their own event so the adapter can halt the match
// instead of playing on with a corrupt economy.
func (s *Service) score(g *domain.Game, events []Event) []Event {
	settlement, err := g.Score()
	if err != nil {
		var ie *domain.IntegrityError
		if errors.As(err, &ie) {
			return append(events, Event{
				Kind:    EventIntegrityFailed,
				Payload: IntegrityFailedPayload{Check: ie.Check, Detail: ie.Detail},
			})
		}
		return append(events, Event{
			Kind:    EventIntegrityFailed,
			Payload: IntegrityFailedPayload{Check: "scoring", Detail: err.Error()},
		})
	}

	events = append(events, Event{
		Kind:    EventRoundScored,
		Payload: RoundScoredPayload{Settlement: settlement, Standings: g.Standings()},
	})
	s.patch("phase", string(g.Phase))
	for id, p := range g.Players {
		s.patch("players."+id+".score", p.Score)
		s.patch("players."+id+".tokens", p.Tokens.Counts())
	}
	return events
}

func (s *Service) gameEndedEvent(g *domain.Game) Event {
	payload := GameEndedPayload{
		WinnerID:  g.Winner(),
		Standings: g.Standings(),
	}
	if s.Stake > 0 {
		payload.BalanceChanges = make(map[string]int64, len(g.Seats))
		for _, id := range g.Seats {
			if id == payload.WinnerID {
				payload.BalanceChanges[id] = s.Stake * int64(len(g.Seats)-1)
			} else {
				payload.BalanceChanges[id] = -s.Stake
			}
		}
	}
	for id, p := range g.Players {
		s.patch("players."+id+".score", p.Score)
	}
	return Event{Kind: EventGameEnded, Payload: payload}
}

func (s *Service) active() (*domain.Game, error) {
	if s.game == nil {
		return nil, ErrNoActiveGame
	}
	return s.game, nil
}

func (s *Service) patch(path string, value interface{}) {
	if s.committer == nil {
		return
	}
	// Commit failures are a sync-layer concern; the authoritative state
	// has already advanced and must not roll back.
	_ = s.committer.ApplyPatch(path, value)
}
