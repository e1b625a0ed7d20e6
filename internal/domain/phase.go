package domain

// Phase is the lifecycle stage of a game. Transitions only happen through
// completion signals from the engines, never directly by callers.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseCategorySelect Phase = "category_select"
	PhaseBidding        Phase = "bidding"
	PhaseBlocking       Phase = "blocking"
	PhaseCardSelection  Phase = "card_selection"
	PhaseRanking        Phase = "ranking"
	PhaseReveal         Phase = "reveal"
	PhaseScoring        Phase = "scoring"
	PhaseRoundEnd       Phase = "round_end"
	PhaseGameEnd        Phase = "game_end"
)

// phaseTransitions is the legal transition table. The Blocking and
// CardSelection edges into Scoring cover the forced-failure case where too
// few unblocked items remain to satisfy the bid. Ranking backs off to
// CardSelection when the bidder deselects an item.
var phaseTransitions = map[Phase][]Phase{
	PhaseIdle:           {PhaseCategorySelect},
	PhaseCategorySelect: {PhaseBidding},
	PhaseBidding:        {PhaseBlocking},
	PhaseBlocking:       {PhaseCardSelection, PhaseScoring},
	PhaseCardSelection:  {PhaseRanking, PhaseScoring},
	PhaseRanking:        {PhaseReveal, PhaseCardSelection},
	PhaseReveal:         {PhaseScoring},
	PhaseScoring:        {PhaseRoundEnd},
	PhaseRoundEnd:       {PhaseCategorySelect, PhaseGameEnd},
	PhaseGameEnd:        {},
}

// canTransition reports whether from -> to is a legal phase transition.
func canTransition(from, to Phase) bool {
	for _, next := range phaseTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the game to the next phase, failing loudly on an illegal
// edge. Illegal transitions indicate a controller bug, not caller error.
func (g *Game) transition(to Phase) error {
	if !canTransition(g.Phase, to) {
		return &IntegrityError{
			Check:  "phase_transition",
			Detail: "illegal transition " + string(g.Phase) + " -> " + string(to),
		}
	}
	g.Phase = to
	return nil
}
