package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/prcass/outrank-v5-sub000/internal/domain"
	"github.com/prcass/outrank-v5-sub000/internal/ports/memory"
)

func testCatalog() *domain.Catalog {
	var items []domain.Item
	for i := 1; i <= 12; i++ {
		items = append(items, domain.Item{
			ID:       fmt.Sprintf("country-%02d", i),
			Name:     fmt.Sprintf("Country %02d", i),
			Category: "countries",
			Metrics:  map[string]float64{"population": float64(i) * 1e6},
		})
	}
	challenges := []domain.Challenge{
		{ID: "pop-asc", Category: "countries", Metric: "population", Direction: domain.Ascending, Label: "Population, smallest first"},
	}
	return domain.NewCatalog(items, challenges)
}

func testRules() domain.RuleConfig {
	r := domain.DefaultRules()
	r.MaxRounds = 3
	return r
}

// testService starts a game for the given players on a recorded committer.
func testService(t *testing.T, playerIDs ...string) (*Service, *memory.Committer) {
	t.Helper()
	committer := memory.NewCommitter()
	svc := NewService(testCatalog(), testRules(), committer, rand.New(rand.NewSource(7)))
	if _, err := svc.StartNewGame(playerIDs, nil); err != nil {
		t.Fatalf("StartNewGame: %v", err)
	}
	if _, err := svc.SelectCategory("countries"); err != nil {
		t.Fatalf("SelectCategory: %v", err)
	}
	return svc, committer
}

// winAuction raises on behalf of bidder and passes everyone else.
func winAuction(t *testing.T, svc *Service, bidder string, bid int) {
	t.Helper()
	for i := 0; i < bid; i++ {
		if _, err := svc.PlaceBid(bidder); err != nil {
			t.Fatalf("PlaceBid %d: %v", i+1, err)
		}
	}
	for _, id := range svc.Game().Seats {
		if id == bidder {
			continue
		}
		if _, err := svc.Pass(id); err != nil {
			t.Fatalf("Pass %s: %v", id, err)
		}
	}
}

func skipAllBlocks(t *testing.T, svc *Service) {
	t.Helper()
	for {
		blocker, ok := svc.BlockingTurn()
		if !ok {
			return
		}
		if _, err := svc.SkipBlock(blocker); err != nil {
			t.Fatalf("SkipBlock %s: %v", blocker, err)
		}
	}
}

// canonical sorts ids ascending by population, the test challenge order.
func canonical(svc *Service, ids []string) []string {
	g := svc.Game()
	items := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		it, _ := g.Catalog.Item(id)
		items = append(items, it)
	}
	ordered := domain.CanonicalOrder(items, g.Round.Challenge)
	out := make([]string, len(ordered))
	for i, it := range ordered {
		out[i] = it.ID
	}
	return out
}

func selectAndSubmit(t *testing.T, svc *Service, order []string) []Event {
	t.Helper()
	bidder := svc.Game().Round.BidderID
	for _, id := range order {
		if _, err := svc.SelectRankingItem(bidder, id); err != nil {
			t.Fatalf("SelectRankingItem %s: %v", id, err)
		}
	}
	evs, err := svc.SubmitRanking(bidder, order)
	if err != nil {
		t.Fatalf("SubmitRanking: %v", err)
	}
	return evs
}

func revealAll(t *testing.T, svc *Service) []Event {
	t.Helper()
	var all []Event
	for svc.Phase() == domain.PhaseReveal {
		evs, err := svc.RevealNext()
		if err != nil {
			t.Fatalf("RevealNext: %v", err)
		}
		all = append(all, evs...)
	}
	return all
}

func findEvent(evs []Event, kind EventKind) (Event, bool) {
	for _, ev := range evs {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

func TestSuccessfulRoundTransfersWager(t *testing.T) {
	svc, _ := testService(t, "p1", "p2", "p3", "p4")
	winAuction(t, svc, "p1", 3)
	g := svc.Game()
	if g.Phase != domain.PhaseBlocking {
		t.Fatalf("phase = %s, want blocking", g.Phase)
	}

	// First blocker wagers a medium token on a drawn item.
	blocker, _ := svc.BlockingTurn()
	if _, err := svc.SelectBlockingToken(blocker, domain.TokenMedium); err != nil {
		t.Fatalf("SelectBlockingToken: %v", err)
	}
	target := g.Round.Drawn[0]
	evs, err := svc.BlockItem(blocker, target)
	if err != nil {
		t.Fatalf("BlockItem: %v", err)
	}
	if _, ok := findEvent(evs, EventItemBlocked); !ok {
		t.Fatal("expected item_blocked event")
	}
	skipAllBlocks(t, svc)

	order := canonical(svc, g.AvailableForRanking())[:3]
	selectAndSubmit(t, svc, order)
	evs = revealAll(t, svc)

	scored, ok := findEvent(evs, EventRoundScored)
	if !ok {
		t.Fatal("expected round_scored event")
	}
	settlement := scored.Payload.(RoundScoredPayload).Settlement
	if settlement.Outcome != domain.OutcomeSuccess {
		t.Fatalf("outcome = %s, want success", settlement.Outcome)
	}
	if settlement.PointsToBid != 3 {
		t.Fatalf("bidder points = %d, want 3", settlement.PointsToBid)
	}
	if len(settlement.Transfers) != 1 {
		t.Fatalf("transfers = %d, want 1", len(settlement.Transfers))
	}

	// The wagered token moved blocker -> bidder.
	bidderSnap, _ := svc.PlayerSnapshot("p1")
	if bidderSnap.Tokens[domain.TokenMedium] != 2 {
		t.Fatalf("bidder medium tokens = %d, want 2", bidderSnap.Tokens[domain.TokenMedium])
	}
	blockerSnap, _ := svc.PlayerSnapshot(blocker)
	if blockerSnap.Tokens[domain.TokenMedium] != 0 {
		t.Fatalf("blocker medium tokens = %d, want 0", blockerSnap.Tokens[domain.TokenMedium])
	}
	if svc.Phase() != domain.PhaseRoundEnd {
		t.Fatalf("phase = %s, want round_end", svc.Phase())
	}
}

func TestFailedRoundPaysBlocker(t *testing.T) {
	svc, _ := testService(t, "p1", "p2", "p3", "p4")
	winAuction(t, svc, "p1", 3)
	g := svc.Game()

	blocker, _ := svc.BlockingTurn()
	if _, err := svc.SelectBlockingToken(blocker, domain.TokenMedium); err != nil {
		t.Fatalf("SelectBlockingToken: %v", err)
	}
	target := g.Round.Drawn[0]
	if _, err := svc.BlockItem(blocker, target); err != nil {
		t.Fatalf("BlockItem: %v", err)
	}
	skipAllBlocks(t, svc)

	// Submit the canonical order reversed so the reveal breaks.
	order := canonical(svc, g.AvailableForRanking())[:3]
	order[0], order[2] = order[2], order[0]
	selectAndSubmit(t, svc, order)
	evs := revealAll(t, svc)

	scored, ok := findEvent(evs, EventRoundScored)
	if !ok {
		t.Fatal("expected round_scored event")
	}
	settlement := scored.Payload.(RoundScoredPayload).Settlement
	if settlement.Outcome != domain.OutcomeFailure {
		t.Fatalf("outcome = %s, want failure", settlement.Outcome)
	}
	if settlement.PointsToBid != 0 {
		t.Fatalf("bidder points = %d, want 0", settlement.PointsToBid)
	}
	if got := settlement.BlockerPoints[blocker]; got != int(domain.TokenMedium) {
		t.Fatalf("blocker points = %d, want %d", got, int(domain.TokenMedium))
	}

	// Blocker keeps the token and owns the blocked item.
	blockerSnap, _ := svc.PlayerSnapshot(blocker)
	if blockerSnap.Tokens[domain.TokenMedium] != 1 {
		t.Fatalf("blocker medium tokens = %d, want 1", blockerSnap.Tokens[domain.TokenMedium])
	}
	if owner, _ := g.ItemOwner(target); owner != blocker {
		t.Fatalf("item owner = %s, want %s", owner, blocker)
	}
}

func TestCommandsBeforeStartRejected(t *testing.T) {
	svc := NewService(testCatalog(), testRules(), nil, rand.New(rand.NewSource(1)))
	if _, err := svc.PlaceBid("p1"); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("PlaceBid err = %v, want ErrNoActiveGame", err)
	}
	if _, err := svc.SelectCategory("countries"); !errors.Is(err, ErrNoActiveGame) {
		t.Fatalf("SelectCategory err = %v, want ErrNoActiveGame", err)
	}
}

func TestStartNewGameWhileRunningRejected(t *testing.T) {
	svc, _ := testService(t, "p1", "p2")
	if _, err := svc.StartNewGame([]string{"p1", "p2"}, nil); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("err = %v, want ErrGameInProgress", err)
	}
}

func TestRejectedCommandLeavesStateUntouched(t *testing.T) {
	svc, committer := testService(t, "p1", "p2", "p3")
	committer.Reset()

	before, _ := svc.RoundSnapshot()
	if _, err := svc.SkipBlock("p2"); !errors.Is(err, domain.ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
	after, _ := svc.RoundSnapshot()
	if before.HighBid != after.HighBid || before.Number != after.Number {
		t.Fatal("rejected command mutated round state")
	}
	if len(committer.Patches()) != 0 {
		t.Fatalf("rejected command committed %d patches", len(committer.Patches()))
	}
}

func TestPhasePatchesCommitted(t *testing.T) {
	svc, committer := testService(t, "p1", "p2", "p3")
	winAuction(t, svc, "p1", 2)

	var phases []string
	for _, p := range committer.Patches() {
		if p.Path == "phase" {
			phases = append(phases, p.Value.(string))
		}
	}
	if len(phases) == 0 {
		t.Fatal("no phase patches committed")
	}
	if last := phases[len(phases)-1]; last != string(svc.Phase()) {
		t.Fatalf("last phase patch = %s, engine phase = %s", last, svc.Phase())
	}
}

func TestAuctionRestartEventEmitted(t *testing.T) {
	svc, _ := testService(t, "p1", "p2")
	if _, err := svc.Pass("p1"); err != nil {
		t.Fatalf("Pass p1: %v", err)
	}
	evs, err := svc.Pass("p2")
	if err != nil {
		t.Fatalf("Pass p2: %v", err)
	}
	if _, ok := findEvent(evs, EventBiddingRestart); !ok {
		t.Fatal("expected bidding_restarted event after all-pass at zero")
	}
	if svc.Phase() != domain.PhaseBidding {
		t.Fatalf("phase = %s, want bidding", svc.Phase())
	}
}

func TestGameEndReportsBalanceChanges(t *testing.T) {
	svc, _ := testService(t, "p1", "p2")
	svc.Stake = 100

	// One scored round per game round until MaxRounds trips.
	for round := 1; ; round++ {
		winAuction(t, svc, "p1", 2)
		skipAllBlocks(t, svc)
		order := canonical(svc, svc.Game().AvailableForRanking())[:2]
		selectAndSubmit(t, svc, order)
		revealAll(t, svc)

		evs, err := svc.ContinueToNextRound()
		if err != nil {
			t.Fatalf("ContinueToNextRound: %v", err)
		}
		if ended, ok := findEvent(evs, EventGameEnded); ok {
			payload := ended.Payload.(GameEndedPayload)
			if payload.WinnerID != "p1" {
				t.Fatalf("winner = %s, want p1", payload.WinnerID)
			}
			if payload.BalanceChanges["p1"] != 100 || payload.BalanceChanges["p2"] != -100 {
				t.Fatalf("balance changes = %v", payload.BalanceChanges)
			}
			return
		}
		if _, err := svc.SelectCategory("countries"); err != nil {
			t.Fatalf("SelectCategory round %d: %v", round+1, err)
		}
	}
}

func TestQueuePreservesOrder(t *testing.T) {
	q := NewQueue(16)
	defer q.Close()

	results := make(chan int, 3)
	for i := 1; i <= 3; i++ {
		i := i
		if err := q.Dispatch(func() { results <- i }); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}
	for want := 1; want <= 3; want++ {
		if got := <-results; got != want {
			t.Fatalf("command order %d, want %d", got, want)
		}
	}
}

func TestQueueRejectsAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	if err := q.Dispatch(func() {}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}
