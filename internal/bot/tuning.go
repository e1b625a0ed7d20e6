package bot

// Tuning holds the knobs a StandardBrain plays by. All probabilities are in
// [0, 1].
type Tuning struct {
	// BidProbability is the chance of raising over an existing high bid
	// the brain could still beat.
	BidProbability float64
	// BidCap is the personal auction ceiling, further capped by the rules.
	BidCap int
	// BlockProbability is the chance of wagering a token on a blocking
	// turn instead of skipping.
	BlockProbability float64
	// PreferHighToken wagers the most valuable available token instead of
	// the cheapest.
	PreferHighToken bool
	// MistakeRate is the chance of swapping two adjacent items in an
	// otherwise correct ranking.
	MistakeRate float64
}

// DefaultTuning is the medium difficulty: engages with the auction, blocks
// about half its turns, and misranks occasionally.
var DefaultTuning = Tuning{
	BidProbability:   0.5,
	BidCap:           4,
	BlockProbability: 0.5,
	PreferHighToken:  false,
	MistakeRate:      0.15,
}

// CautiousTuning underbids and rarely blocks; it also misranks often.
var CautiousTuning = Tuning{
	BidProbability:   0.25,
	BidCap:           2,
	BlockProbability: 0.2,
	PreferHighToken:  false,
	MistakeRate:      0.35,
}

// AggressiveTuning bids deep, blocks with the big tokens and almost never
// misranks.
var AggressiveTuning = Tuning{
	BidProbability:   0.75,
	BidCap:           6,
	BlockProbability: 0.8,
	PreferHighToken:  true,
	MistakeRate:      0.02,
}
