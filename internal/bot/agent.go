package bot

import (
	"github.com/prcass/outrank-v5-sub000/internal/app"
)

// Agent is an autonomous player. It only ever goes through the public
// command API, so it exercises exactly the surface a human client does.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Act asks the strategy for a decision and issues the corresponding
// command. It returns the emitted events, or nil when the strategy had
// nothing to do. Rejected commands surface as errors so drivers can spot a
// misbehaving strategy.
func (a *Agent) Act(svc *app.Service) ([]app.Event, error) {
	action, err := a.Strategy.Decide(svc.Game(), a.ID)
	if err != nil {
		return nil, err
	}

	switch action.Kind {
	case ActNone:
		return nil, nil
	case ActSelectCategory:
		return svc.SelectCategory(action.Category)
	case ActBid:
		return svc.PlaceBid(a.ID)
	case ActPass:
		return svc.Pass(a.ID)
	case ActStageToken:
		return svc.SelectBlockingToken(a.ID, action.Token)
	case ActBlock:
		return svc.BlockItem(a.ID, action.ItemID)
	case ActSkipBlock:
		return svc.SkipBlock(a.ID)
	case ActSelectItem:
		return svc.SelectRankingItem(a.ID, action.ItemID)
	case ActSubmitRanking:
		return svc.SubmitRanking(a.ID, action.Order)
	case ActReveal:
		return svc.RevealNext()
	case ActContinue:
		return svc.ContinueToNextRound()
	default:
		return nil, nil
	}
}
