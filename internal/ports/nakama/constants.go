package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcChannelToken is the Nakama RPC id clients call for a realtime channel token.
	RpcChannelToken = "channel_token"

	// MatchNameOutrank is the authoritative match handler name registered with Nakama.
	MatchNameOutrank = "outrank_match"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server commands
	OpStartGame      int64 = 1
	OpSelectCategory int64 = 2
	OpPlaceBid       int64 = 3
	OpPassBid        int64 = 4
	OpSelectToken    int64 = 5
	OpBlockItem      int64 = 6
	OpSkipBlock      int64 = 7
	OpSelectItem     int64 = 8
	OpDeselectItem   int64 = 9
	OpSubmitRanking  int64 = 10
	OpRevealNext     int64 = 11
	OpContinueRound  int64 = 12

	// Server -> Client
	OpGameEvent  int64 = 101 // envelope carrying an app event
	OpStatePatch int64 = 102 // batched state mirror patches
	OpLobbyState int64 = 103 // seat/owner snapshot
	OpGameError  int64 = 104 // rejected command, sent to the actor only
)
