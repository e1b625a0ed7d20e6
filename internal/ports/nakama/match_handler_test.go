package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/prcass/outrank-v5-sub000/internal/app"
	"github.com/prcass/outrank-v5-sub000/internal/bot"
	"github.com/prcass/outrank-v5-sub000/internal/domain"
	"github.com/prcass/outrank-v5-sub000/internal/ports"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	opCodes        []int64
	lastData       []byte
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.opCodes = append(md.opCodes, opCode)
	md.lastData = append([]byte(nil), data...)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	return nil
}

func (md *mockDispatcher) sawOpCode(op int64) bool {
	for _, code := range md.opCodes {
		if code == op {
			return true
		}
	}
	return false
}

// mockPresence is a minimal runtime.Presence for seat bookkeeping.
type mockPresence struct {
	userID   string
	username string
}

func (p mockPresence) GetUserId() string                  { return p.userID }
func (p mockPresence) GetSessionId() string               { return p.userID + "-session" }
func (p mockPresence) GetNodeId() string                  { return "node-1" }
func (p mockPresence) GetHidden() bool                    { return false }
func (p mockPresence) GetPersistence() bool               { return true }
func (p mockPresence) GetUsername() string                { return p.username }
func (p mockPresence) GetStatus() string                  { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason  { return runtime.PresenceReasonJoin }

// mockMatchData wraps a client command for the loop handlers.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

type mockEconomy struct {
	updates []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

func init() {
	// Load bot identities for testing.
	if err := bot.LoadIdentities("test_bot_identities.json"); err != nil {
		panic("Failed to load bot identities for tests: " + err.Error())
	}
}

func handlerCatalog() *domain.Catalog {
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

// testMatchState builds a lobby-phase state with the given humans seated.
func testMatchState(humans ...string) *MatchState {
	committer := NewCommitter()
	rng := rand.New(rand.NewSource(11))
	state := &MatchState{
		OwnerSeat: -1,
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(handlerCatalog(), domain.DefaultRules(), committer, rng),
		Committer: committer,
		Bots:      make(map[string]*bot.Agent),
		rng:       rng,
	}
	for i, id := range humans {
		state.Seats[i] = id
		state.Presences[id] = mockPresence{userID: id, username: id}
	}
	if len(humans) > 0 {
		state.OwnerSeat = 0
	}
	return state
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2, "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1, "user-2", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  bool
	}{
		{
			name:  "BotsOnly",
			seats: []string{bot1, bot2, "", ""},
			want:  true,
		},
		{
			name:  "HumansPresent",
			seats: []string{bot1, "user-1", "", ""},
			want:  false,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := shouldTerminateNoHumans(test.seats); got != test.want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	label := MatchLabel{Open: 3, Game: "outrank", Phase: "lobby"}
	payload, err := json.Marshal(label)
	if err != nil {
		t.Fatalf("Failed to marshal label: %v", err)
	}
	want := `{"open":3,"game":"outrank","phase":"lobby"}`
	if string(payload) != want {
		t.Errorf("Got %s, want %s", payload, want)
	}
}

func TestProcessBotsFillsSoloLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1")
	state.BotAutoFillDelay = 2
	state.LastSinglePlayerTick = 8
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}
	if botCount != len(state.Seats)-1 {
		t.Fatalf("Expected %d bots, got %d", len(state.Seats)-1, botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected 0 open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if len(state.Bots) != botCount {
		t.Fatalf("Expected %d bot agents, got %d", botCount, len(state.Bots))
	}
	if dispatcher.broadcastCount == 0 || dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected lobby broadcast and label update after auto-fill")
	}
}

func TestProcessBotsWaitsForAutoFillDelay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1")
	state.BotAutoFillDelay = 10
	state.Tick = 5

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.LastSinglePlayerTick != 5 {
		t.Fatalf("Expected timer start at tick 5, got %d", state.LastSinglePlayerTick)
	}
	for _, seat := range state.Seats[1:] {
		if seat != "" {
			t.Fatalf("No bot should join before the delay elapses")
		}
	}
}

func TestMatchJoinAssignsOwnerToFirstHuman(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState()

	next := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{mockPresence{userID: "user-1", username: "Alice"}})

	got, ok := next.(*MatchState)
	if !ok {
		t.Fatalf("MatchJoin returned %T", next)
	}
	if got.Seats[0] != "user-1" {
		t.Fatalf("Seat 0 = %q, want user-1", got.Seats[0])
	}
	if got.OwnerSeat != 0 {
		t.Fatalf("OwnerSeat = %d, want 0", got.OwnerSeat)
	}
	if !dispatcher.sawOpCode(OpLobbyState) {
		t.Fatal("Expected lobby state broadcast after join")
	}
}

func TestMatchJoinReplacesBotInLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1")
	for i := 1; i < len(state.Seats); i++ {
		identity := bot.GetBotIdentity(i - 1)
		agent, err := bot.NewAgent(identity, rand.New(rand.NewSource(int64(i))))
		if err != nil {
			t.Fatalf("NewAgent: %v", err)
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = agent
	}
	firstBot := bot.GetBotIdentity(0).UserID

	next := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{mockPresence{userID: "user-2", username: "Bob"}})

	got := next.(*MatchState)
	if got.seatOf("user-2") != 1 {
		t.Fatalf("Human seat = %d, want 1 (first bot seat)", got.seatOf("user-2"))
	}
	if got.seatOf(firstBot) >= 0 {
		t.Fatal("Replaced bot still holds a seat")
	}
	if _, stillThere := got.Bots[firstBot]; stillThere {
		t.Fatal("Replaced bot agent was not removed")
	}
}

func TestMatchLeaveTerminatesWithoutHumans(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1")

	next := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state,
		[]runtime.Presence{mockPresence{userID: "user-1"}})

	if next != nil {
		t.Fatalf("Expected match termination, got %T", next)
	}
}

func TestStartGameByOwner(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1", "user-2")

	msg := mockMatchData{
		mockPresence: mockPresence{userID: "user-1"},
		opCode:       OpStartGame,
	}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, msg)

	if phase := state.App.Phase(); phase != domain.PhaseCategorySelect {
		t.Fatalf("Phase = %v, want %v", phase, domain.PhaseCategorySelect)
	}
	if state.GameID == "" {
		t.Fatal("Expected a game id after start")
	}
	if !dispatcher.sawOpCode(OpGameEvent) {
		t.Fatal("Expected game events to be broadcast")
	}
	if dispatcher.labelUpdates == 0 {
		t.Fatal("Expected label update after start")
	}
}

func TestStartGameRejectedForNonOwner(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1", "user-2")

	msg := mockMatchData{
		mockPresence: mockPresence{userID: "user-2"},
		opCode:       OpStartGame,
	}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, msg)

	if phase := state.App.Phase(); phase != domain.PhaseIdle {
		t.Fatalf("Phase = %v, want idle", phase)
	}
}

func TestHandleCommandDrivesEngineAndFlushesPatches(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1", "user-2")
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{},
		mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame})

	body, _ := json.Marshal(selectCategoryRequest{Category: "countries"})
	handler.handleCommand(context.Background(), state, dispatcher, noopLogger{},
		mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpSelectCategory, data: body})

	if phase := state.App.Phase(); phase != domain.PhaseBidding {
		t.Fatalf("Phase = %v, want %v", phase, domain.PhaseBidding)
	}
	if !dispatcher.sawOpCode(OpStatePatch) {
		t.Fatal("Expected state patches to be flushed")
	}
}

func TestHandleCommandRejectionSendsError(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := testMatchState("user-1", "user-2")
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{},
		mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame})

	// Bidding has not opened yet, so a bid must be rejected.
	handler.handleCommand(context.Background(), state, dispatcher, noopLogger{},
		mockMatchData{mockPresence: mockPresence{userID: "user-2"}, opCode: OpPlaceBid})

	if !dispatcher.sawOpCode(OpGameError) {
		t.Fatal("Expected a game error for the out-of-phase command")
	}
}

func TestSettleGameSkipsBotWallets(t *testing.T) {
	handler := &matchHandler{}
	economy := &mockEconomy{}
	botID := bot.GetBotIdentity(0).UserID
	state := testMatchState("user-1")
	state.Economy = economy
	state.GameID = "game-1"

	ev := app.Event{
		Kind: app.EventGameEnded,
		Payload: app.GameEndedPayload{
			WinnerID: "user-1",
			BalanceChanges: map[string]int64{
				"user-1": 100,
				botID:    -100,
			},
		},
	}
	handler.settleGame(context.Background(), state, noopLogger{}, ev)

	if len(economy.updates) != 1 {
		t.Fatalf("Expected 1 wallet update, got %d", len(economy.updates))
	}
	if economy.updates[0].UserID != "user-1" || economy.updates[0].Amount != 100 {
		t.Fatalf("Unexpected update %+v", economy.updates[0])
	}
}
