package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prcass/outrank-v5-sub000/internal/app"
	"github.com/prcass/outrank-v5-sub000/internal/bot"
	"github.com/prcass/outrank-v5-sub000/internal/config"
	"github.com/prcass/outrank-v5-sub000/internal/domain"
	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

// MatchLabel is the JSON label clients query through MatchList.
type MatchLabel struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats          [app.MaxPlayersPerMatch]string `json:"seats"`       // user IDs, empty string means seat is empty
	OwnerSeat      int                            `json:"owner_seat"`  // seat index of the match owner
	Tick           int64                          `json:"tick"`        // current tick for timed logic
	GameID         string                         `json:"game_id"`     // record id of the running game
	StartedAt      time.Time                      `json:"started_at"`  // when the running game began
	RulePreset     string                         `json:"rule_preset"` // preset name of the running game
	Stake          int64                          `json:"stake"`       // gold ante of the running game

	Presences map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"` // rules engine behind the command API
	Committer *Committer                  `json:"-"` // dispatcher-backed state mirror

	BotsEnabled          bool  `json:"bots_enabled"`
	BotMinDelay          int   `json:"bot_min_delay"`           // min seconds a bot waits
	BotMaxDelay          int   `json:"bot_max_delay"`           // max seconds a bot waits
	BotAutoFillDelay     int   `json:"bot_auto_fill_delay"`     // seconds before filling a solo lobby
	BotWaitUntil         int64 `json:"bot_wait_until"`          // tick when the bots act next
	LastSinglePlayerTick int64 `json:"last_single_player_tick"` // tick when a single player started waiting

	Bots    map[string]*bot.Agent `json:"-"` // active bot agents
	Economy ports.EconomyPort     `json:"-"` // Nakama wallet adapter
	Stats   ports.StatsPort       `json:"-"` // optional game-history recorder

	rng *rand.Rand
}

// InPlay reports whether a game is currently running.
func (ms *MatchState) InPlay() bool {
	if ms.App == nil {
		return false
	}
	phase := ms.App.Phase()
	return phase != domain.PhaseIdle && phase != domain.PhaseGameEnd
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, id := range ms.Seats {
		if id == userID {
			return i
		}
	}
	return -1
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// Wire payloads, all JSON.

type startGameRequest struct {
	Preset string `json:"preset"`
	Tier   string `json:"tier"`
}

type selectCategoryRequest struct {
	Category string `json:"category"`
}

type selectTokenRequest struct {
	Token int `json:"token"`
}

type itemRequest struct {
	ItemID string `json:"item_id"`
}

type submitRankingRequest struct {
	Order []string `json:"order"`
}

type eventEnvelope struct {
	Kind    app.EventKind `json:"kind"`
	Payload interface{}   `json:"payload,omitempty"`
}

type lobbyPlayer struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	IsOwner     bool   `json:"is_owner"`
	IsBot       bool   `json:"is_bot"`
}

type lobbyState struct {
	Seats     []string      `json:"seats"`
	OwnerSeat int           `json:"owner_seat"`
	Players   []lobbyPlayer `json:"players"`
}

type gameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load static data; each loader is a once and cheap to repeat.
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	if err := config.LoadRulePresets("data/rule_presets.json"); err != nil {
		logger.Warn("MatchInit: Could not load rule presets: %v", err)
	}
	if err := config.LoadCatalog("data/catalog.json"); err != nil {
		logger.Error("MatchInit: Could not load item catalog: %v", err)
	}

	presetName := ""
	if gc := config.GetGameConfig(); gc != nil {
		presetName = gc.DefaultPreset
	}
	rules := config.GetRulePreset(presetName)

	committer := NewCommitter()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := &MatchState{
		OwnerSeat:  -1,
		Tick:       time.Now().Unix(),
		RulePreset: rules.Name,
		Presences:  make(map[string]runtime.Presence),
		App:        app.NewService(config.GetCatalog(), rules, committer, rng),
		Committer:  committer,
		Bots:       make(map[string]*bot.Agent),
		Economy:    NewNakamaEconomyAdapter(nk),
		rng:        rng,
	}
	state.Stats = newStatsRecorder(logger)

	// Bot behavior from runtime environment.
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["outrank_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["outrank_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["outrank_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["outrank_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 3
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
		if gc := config.GetGameConfig(); gc != nil && gc.BotAutoFillDelaySeconds > 0 {
			state.BotAutoFillDelay = gc.BotAutoFillDelaySeconds
		}
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "outrank",
		Phase: "lobby",
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace (if the game hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if !matchState.InPlay() {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// Assign seat: empty seats first, then bots (lobby only).
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && !matchState.InPlay() {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Owner seat must belong to a human.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	ownerLeft := false
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)

				if matchState.OwnerSeat == i {
					ownerLeft = true
				}
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		} else if ownerLeft {
			logger.Debug("MatchLeave: Owner left and no human owner is available.")
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		if msg.GetOpCode() == OpStartGame {
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
			continue
		}
		mh.handleCommand(ctx, matchState, dispatcher, logger, msg)
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

// handleCommand translates one client message into a command API call.
func (mh *matchHandler) handleCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) < 0 {
		logger.Warn("handleCommand: user %s is not seated", senderID)
		return
	}
	if !state.InPlay() {
		mh.sendError(state, dispatcher, logger, senderID, 400, "no game in progress")
		return
	}

	var events []app.Event
	var err error

	switch msg.GetOpCode() {
	case OpSelectCategory:
		var req selectCategoryRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SelectCategory(req.Category)
		}
	case OpPlaceBid:
		events, err = state.App.PlaceBid(senderID)
	case OpPassBid:
		events, err = state.App.Pass(senderID)
	case OpSelectToken:
		var req selectTokenRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SelectBlockingToken(senderID, domain.TokenValue(req.Token))
		}
	case OpBlockItem:
		var req itemRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.BlockItem(senderID, req.ItemID)
		}
	case OpSkipBlock:
		events, err = state.App.SkipBlock(senderID)
	case OpSelectItem:
		var req itemRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SelectRankingItem(senderID, req.ItemID)
		}
	case OpDeselectItem:
		var req itemRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.DeselectRankingItem(senderID, req.ItemID)
		}
	case OpSubmitRanking:
		var req submitRankingRequest
		if err = json.Unmarshal(msg.GetData(), &req); err == nil {
			events, err = state.App.SubmitRanking(senderID, req.Order)
		}
	case OpRevealNext:
		events, err = state.App.RevealNext()
	case OpContinueRound:
		events, err = state.App.ContinueToNextRound()
	default:
		logger.Warn("handleCommand: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("handleCommand: op %d from %s rejected: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	var request startGameRequest
	if len(msg.GetData()) > 0 {
		if err := json.Unmarshal(msg.GetData(), &request); err != nil {
			logger.Warn("StartGame: invalid request from %s: %v", senderID, err)
			return
		}
	}

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, app.MinPlayersToStartGame)
		return
	}

	var playerIDs []string
	names := make(map[string]string)
	for _, userID := range state.Seats {
		if userID == "" {
			continue
		}
		playerIDs = append(playerIDs, userID)
		if p, ok := state.Presences[userID]; ok {
			names[userID] = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			names[userID] = name
		}
	}

	state.Stake = config.GetBaseStake(request.Tier)
	state.App.Stake = state.Stake

	events, err := state.App.StartNewGame(playerIDs, names)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.GameID = uuid.NewString()
	state.StartedAt = time.Now().UTC()

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Game %s started with %d players.", state.GameID, activeCount)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill lobby with bots when a single human waited long enough.
	if !state.InPlay() {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					identity := bot.GetBotIdentity(i)
					if identity.UserID == "" {
						logger.Warn("processBots: Bot identity %s has no account, was ProvisionBots run?", identity.Username)
						continue
					}
					agent, err := bot.NewAgent(identity, rand.New(rand.NewSource(state.rng.Int63())))
					if err != nil {
						logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
						continue
					}
					state.Seats[i] = identity.UserID
					state.Bots[identity.UserID] = agent
					logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastLobbyState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. In-game bot turns. One pass over the agents per delay window; each
	// agent issues at most one command, so humans see the table move at a
	// believable pace.
	if len(state.Bots) == 0 {
		return
	}
	if state.BotWaitUntil == 0 {
		delay := state.rng.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	for _, userID := range state.Seats {
		agent, ok := state.Bots[userID]
		if !ok {
			continue
		}
		events, err := agent.Act(state.App)
		if err != nil {
			logger.Error("processBots: Bot %s command rejected: %v", userID, err)
			continue
		}
		if len(events) > 0 {
			mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		}
	}
}

// dispatchEvents sends each event to its recipients and flushes the state
// mirror afterwards so patches always trail their events.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	state.Committer.Flush(dispatcher, logger)
}

// broadcastEvent serializes one app event and handles end-of-game side
// effects (wallet settlement, history record, label reset).
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	data, err := json.Marshal(eventEnvelope{Kind: ev.Kind, Payload: ev.Payload})
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// If the intended recipients are all disconnected (or bots), do
		// not fall through to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if dispatcher != nil {
		if err := dispatcher.BroadcastMessage(OpGameEvent, data, recipients, nil, true); err != nil {
			logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
		}
	}

	switch ev.Kind {
	case app.EventGameEnded:
		mh.settleGame(ctx, state, logger, ev)
		mh.updateLabel(state, dispatcher, logger)
	case app.EventIntegrityFailed:
		// A corrupt economy must not keep settling rounds; freeze the
		// table and surface the check to the logs.
		p, _ := ev.Payload.(app.IntegrityFailedPayload)
		logger.Error("Integrity check %s failed: %s", p.Check, p.Detail)
	}
}

// settleGame applies wallet changes and records the game history.
func (mh *matchHandler) settleGame(ctx context.Context, state *MatchState, logger runtime.Logger, ev app.Event) {
	payload, ok := ev.Payload.(app.GameEndedPayload)
	if !ok {
		return
	}

	if state.Economy != nil && len(payload.BalanceChanges) > 0 {
		updates := make([]ports.WalletUpdate, 0, len(payload.BalanceChanges))
		for userID, amount := range payload.BalanceChanges {
			if isBotUserId(userID) {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: userID,
				Amount: amount,
				Metadata: map[string]interface{}{
					"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
					"reason":   "game_settlement",
				},
			})
		}
		if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("Failed to update balances: %v", err)
		}
	}

	if state.Stats != nil {
		if rec, ok := buildGameRecord(state); ok {
			if err := state.Stats.RecordGame(ctx, rec); err != nil {
				logger.Warn("Failed to record game %s: %v", state.GameID, err)
			}
		}
	}
}

// buildGameRecord snapshots the finished game for the history recorder.
func buildGameRecord(state *MatchState) (ports.GameRecord, bool) {
	g := state.App.Game()
	if g == nil || g.Phase != domain.PhaseGameEnd {
		return ports.GameRecord{}, false
	}
	winner := g.Winner()
	rec := ports.GameRecord{
		GameID:     state.GameID,
		RulePreset: state.RulePreset,
		Rounds:     g.RoundNum,
		StartedAt:  state.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
	for _, id := range g.Seats {
		p, ok := g.Player(id)
		if !ok {
			continue
		}
		rec.Players = append(rec.Players, ports.PlayerGameStats{
			PlayerID:     p.ID,
			Name:         p.Name,
			Score:        p.Score,
			TokensHeld:   p.Tokens.Total(),
			ItemsOwned:   p.OwnedCount(),
			BidsWon:      p.Stats.BidsWon,
			RankingsWon:  p.Stats.RankingsWon,
			RankingsLost: p.Stats.RankingsLost,
			BlocksWon:    p.Stats.BlocksWon,
			BlocksLost:   p.Stats.BlocksLost,
			Winner:       p.ID == winner,
		})
	}
	return rec, true
}

// sendError sends a gameError to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	if isBotUserId(userID) {
		return
	}
	data, err := json.Marshal(gameError{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal gameError: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	if dispatcher == nil {
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) broadcastLobbyState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	snapshot := lobbyState{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
	}
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		displayName := userID
		if p, exists := state.Presences[userID]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userID); name != "" {
			displayName = name
		}
		snapshot.Players = append(snapshot.Players, lobbyPlayer{
			UserID:      userID,
			Seat:        i,
			DisplayName: displayName,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
		})
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("Failed to marshal lobby state: %v", err)
		return
	}
	if dispatcher == nil {
		return
	}
	if err := dispatcher.BroadcastMessage(OpLobbyState, data, nil, nil, true); err != nil {
		logger.Error("Failed to broadcast lobby state: %v", err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	phase := "lobby"
	if state.InPlay() {
		phase = string(state.App.Phase())
	}

	labelBytes, err := json.Marshal(MatchLabel{
		Open:  state.GetOpenSeatsCount(),
		Game:  "outrank",
		Phase: phase,
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if dispatcher == nil {
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
