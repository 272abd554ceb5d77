package multiplayer

import (
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/protocol"
	"github.com/vovakirdan/tui-connect4/internal/relay"
)

// Relay is the connection the coordinator plays remote games over.
// *relay.Session satisfies it.
type Relay interface {
	Connect(lobbyID string) bool
	Disconnect()
	PickPlayer(msg protocol.LobbyPickPlayer) bool
	EndTurn(turn int, col *int) bool
	RestartGame(cfg *game.Config) bool
	SelectStartingPlayer(wantsToStart bool) bool
	RespondToRestartRequest(accepted bool) bool
}

var _ Relay = (*relay.Session)(nil)

// Options configures a Coordinator.
type Options struct {
	Config game.Config
	Clock  clock.Clock
	Logger *log.Logger
	// BufferSize is the capacity of each subscription.
	BufferSize int
}

type pendingRestart struct {
	request RestartRequest
	timer   *clock.Timer
	gen     uint64
}

// Coordinator owns one client's game. Its fields are only touched by the
// message loop; readers get published snapshots.
type Coordinator struct {
	clock       clock.Clock
	logger      *log.Logger
	relay       Relay
	resultSaver MatchResultSaver // Optional, can be nil
	configSaver ConfigSaver      // Optional, can be nil
	bufferSize  int

	game        *game.Game
	config      game.Config
	localConfig *game.Config
	lobby       *Lobby
	connected   bool
	role        *game.Player

	disconnectReason   relay.DisconnectReason
	disconnectedByUser bool

	round         int
	remoteRound   int
	wasGameSynced bool
	selection     PlayerSelection

	turn           turnTimer
	remoteDeadline *time.Time

	restarts   [2]*pendingRestart
	restartGen uint64

	delay  time.Duration
	offset time.Duration

	matchID     string
	recordedFor string

	snapMu   sync.RWMutex
	snapshot State
	subs     subscriptions

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a coordinator with a fresh local game started by
// player 1.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	c := &Coordinator{
		clock:       opts.Clock,
		logger:      opts.Logger,
		bufferSize:  opts.BufferSize,
		config:      opts.Config,
		remoteRound: -1,
		msgChan:     make(chan CoordinatorMessage, 256),
		done:        make(chan struct{}),
	}
	c.turn.clock = opts.Clock
	c.newGame(game.Player1)
	c.publish()
	return c
}

// SetRelay sets the relay used for remote play. Without one, Connect fails.
func (c *Coordinator) SetRelay(r Relay) {
	c.relay = r
}

// SetResultSaver sets the optional match result saver.
func (c *Coordinator) SetResultSaver(saver MatchResultSaver) {
	c.resultSaver = saver
}

// SetConfigSaver sets the optional store for configuration changes.
func (c *Coordinator) SetConfigSaver(saver ConfigSaver) {
	c.configSaver = saver
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
}

// Stop shuts down the coordinator and closes all subscriptions.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.subs.closeAll()
	})
}

// Send sends a message to the coordinator for async processing.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

// HandleRelayEvent queues a relay event. It makes the coordinator a
// relay.Handler.
func (c *Coordinator) HandleRelayEvent(ev relay.Event) {
	c.Send(RelayEventMsg{Event: ev})
}

// Snapshot returns the latest published state.
func (c *Coordinator) Snapshot() State {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snapshot
}

// Subscribe returns a feed of snapshots, starting with the current one.
func (c *Coordinator) Subscribe() *Subscription {
	s := newSubscription(c.bufferSize)
	s.send(c.Snapshot())
	c.subs.add(s)
	return s
}

// Connect hosts a new lobby, or joins lobbyID when it is not empty.
func (c *Coordinator) Connect(lobbyID string) { c.Send(ConnectMsg{LobbyID: lobbyID}) }

// Disconnect leaves the lobby or the remote game.
func (c *Coordinator) Disconnect() { c.Send(DisconnectMsg{}) }

// AcceptPlayer seats the waiting player with code as role. Host only.
func (c *Coordinator) AcceptPlayer(code int, role game.Player) {
	c.Send(AcceptPlayerMsg{Code: code, Role: role})
}

// SetPlayerCode sets the code shown by a joining player.
func (c *Coordinator) SetPlayerCode(code *int) { c.Send(SetPlayerCodeMsg{Code: code}) }

// EndTurn drops a piece into col.
func (c *Coordinator) EndTurn(col int) { c.Send(EndTurnMsg{Col: &col}) }

// Pass ends the turn without a move.
func (c *Coordinator) Pass() { c.Send(EndTurnMsg{}) }

// RestartGame asks for a new game, with cfg when it is not nil.
func (c *Coordinator) RestartGame(cfg *game.Config) { c.Send(RestartGameMsg{Config: cfg}) }

// SelectStartingPlayer starts a local game with p moving first.
func (c *Coordinator) SelectStartingPlayer(p game.Player) {
	c.Send(SelectStartingPlayerMsg{Player: p})
}

// VoteStartingPlayer votes on whether this client starts the remote game.
func (c *Coordinator) VoteStartingPlayer(wantsToStart bool) {
	c.Send(VoteStartingPlayerMsg{WantsToStart: wantsToStart})
}

// DismissPlayerSelection closes the starting player dialog of a local game.
func (c *Coordinator) DismissPlayerSelection() { c.Send(DismissPlayerSelectionMsg{}) }

// RespondToRestartRequest answers the opponent's restart request.
func (c *Coordinator) RespondToRestartRequest(accepted bool) {
	c.Send(RespondToRestartRequestMsg{Accepted: accepted})
}

// DismissDisconnectReason hides the last disconnect reason.
func (c *Coordinator) DismissDisconnectReason() { c.Send(DismissDisconnectReasonMsg{}) }

// PauseTurnTimer pauses or resumes the local turn timer.
func (c *Coordinator) PauseTurnTimer(paused bool) { c.Send(PauseTurnTimerMsg{Paused: paused}) }

// processMessages handles incoming messages.
func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			c.teardown()
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	switch m := msg.(type) {
	case ConnectMsg:
		c.handleConnect(m)
	case DisconnectMsg:
		c.handleDisconnect()
	case AcceptPlayerMsg:
		c.handleAcceptPlayer(m)
	case SetPlayerCodeMsg:
		c.setPlayerCode(m.Code)
	case EndTurnMsg:
		c.handleEndTurn(m)
	case RestartGameMsg:
		c.handleRestartGame(m)
	case SelectStartingPlayerMsg:
		c.handleSelectStartingPlayer(m)
	case VoteStartingPlayerMsg:
		c.handleVote(m)
	case DismissPlayerSelectionMsg:
		c.dismissPlayerSelection()
	case RespondToRestartRequestMsg:
		c.handleRestartResponse(m)
	case DismissDisconnectReasonMsg:
		c.disconnectReason = ""
	case PauseTurnTimerMsg:
		// The lobby and a live connection own the pause.
		if m.Paused || (c.lobby == nil && !c.connected) {
			c.pauseLocalTurnTimer(m.Paused)
		}
	case turnTimeoutMsg:
		if c.turn.expired(m.gen) && c.lobby == nil && !c.connected && !c.game.Resolved() {
			c.logger.Debug("turn timed out", "player", c.game.State.Player, "turn", c.game.State.Turn)
			c.endTurn(nil)
		}
	case restartExpiredMsg:
		if r := c.restarts[m.player]; r != nil && r.gen == m.gen {
			c.restarts[m.player] = nil
		}
	case RelayEventMsg:
		c.handleRelayEvent(m.Event)
	}
	c.publish()
}

func (c *Coordinator) handleConnect(msg ConnectMsg) {
	if c.connected || c.relay == nil {
		return
	}
	if !c.relay.Connect(msg.LobbyID) {
		return
	}
	c.logger.Info("connecting to relay", "lobby", msg.LobbyID)
	c.setLobby(newLobby(msg.LobbyID))
	c.disconnectReason = ""
	c.disconnectedByUser = false
}

func (c *Coordinator) handleDisconnect() {
	if !c.connected && c.lobby == nil {
		return
	}
	c.disconnectedByUser = true
	if c.relay != nil {
		c.relay.Disconnect()
	}
}

func (c *Coordinator) handleAcceptPlayer(msg AcceptPlayerMsg) {
	if c.lobby == nil || !c.lobby.IsHost || c.relay == nil {
		return
	}
	pick := protocol.LobbyPickPlayer{
		Code:   msg.Code,
		Role:   msg.Role,
		Config: c.config,
		Round:  c.round,
	}
	// A game waiting for its starting player is not handed over.
	if c.selection != SelectionVoting {
		pick.Game = c.game.Clone()
	}
	if c.config.Timed() {
		pick.ExtraTime = &[2]protocol.Millis{
			protocol.ToMillis(c.turn.extra[game.Player1]),
			protocol.ToMillis(c.turn.extra[game.Player2]),
		}
	}
	if !c.relay.PickPlayer(pick) {
		return
	}
	role := msg.Role.Other()
	c.role = &role
}

func (c *Coordinator) setPlayerCode(code *int) {
	if c.lobby == nil || c.lobby.IsHost {
		return
	}
	c.lobby.Code = code
}

func (c *Coordinator) handleEndTurn(msg EndTurnMsg) {
	if c.lobby != nil || c.game.Resolved() {
		return
	}
	if c.connected {
		if c.relay != nil {
			c.relay.EndTurn(c.game.State.Turn, msg.Col)
		}
		return
	}
	c.endTurn(msg.Col)
}

// endTurn plays a local turn and starts the clock of the next player.
func (c *Coordinator) endTurn(col *int) {
	last := c.game.State.Player
	var ok bool
	if col == nil {
		ok = c.game.Pass()
	} else {
		ok = c.game.EndTurn(*col)
	}
	if !ok {
		return
	}

	c.turn.bank(last, c.turn.clear())
	if c.game.Resolved() {
		c.recordResult(ModeLocal)
		return
	}
	if d, timed := c.config.TurnDuration(c.turn.extra[c.game.State.Player]); timed {
		c.turn.arm(d, c.postTurnTimeout)
	}
}

func (c *Coordinator) postTurnTimeout(gen uint64) {
	c.Send(turnTimeoutMsg{gen: gen})
}

func (c *Coordinator) handleRestartGame(msg RestartGameMsg) {
	if c.lobby != nil {
		return
	}
	if c.connected {
		if c.relay != nil {
			c.relay.RestartGame(msg.Config)
		}
		return
	}
	c.selection = SelectionVoting
	c.localConfig = nil
	if msg.Config != nil {
		cfg := *msg.Config
		c.localConfig = &cfg
	}
}

func (c *Coordinator) handleSelectStartingPlayer(msg SelectStartingPlayerMsg) {
	if c.lobby != nil || c.selection == SelectionHidden || c.connected {
		return
	}
	if c.localConfig != nil {
		c.setConfig(*c.localConfig)
		c.localConfig = nil
	}
	c.startLocalGame(msg.Player)
	c.selection = SelectionHidden
}

func (c *Coordinator) handleVote(msg VoteStartingPlayerMsg) {
	if c.lobby != nil || c.selection == SelectionHidden || !c.connected || c.relay == nil {
		return
	}
	c.relay.SelectStartingPlayer(msg.WantsToStart)
}

func (c *Coordinator) dismissPlayerSelection() {
	if c.connected {
		return
	}
	c.selection = SelectionHidden
	c.localConfig = nil
}

func (c *Coordinator) handleRestartResponse(msg RespondToRestartRequestMsg) {
	if c.role == nil || c.restarts[c.role.Other()] == nil || c.relay == nil {
		return
	}
	c.relay.RespondToRestartRequest(msg.Accepted)
}

// startLocalGame begins a new round with untimed first turn.
func (c *Coordinator) startLocalGame(p game.Player) {
	c.round++
	c.newGame(p)
}

func (c *Coordinator) newGame(p game.Player) {
	c.game = game.New(c.config.Rules(p))
	c.turn.reset()
	c.matchID = uuid.NewString()
}

func (c *Coordinator) setConfig(cfg game.Config) {
	if cfg == c.config {
		return
	}
	c.config = cfg
	if c.configSaver == nil {
		return
	}
	// Best effort save, don't block the loop
	go func() {
		if err := c.configSaver.SaveGameConfig(cfg); err != nil {
			c.logger.Warn("failed to save game config", "err", err)
		}
	}()
}

// setLobby replaces the lobby. An open lobby holds the clock of a game that
// was never synced with the relay.
func (c *Coordinator) setLobby(l *Lobby) {
	c.lobby = l
	if !c.wasGameSynced {
		c.pauseLocalTurnTimer(l != nil)
	}
}

func (c *Coordinator) pauseLocalTurnTimer(paused bool) {
	if c.remoteDeadline != nil {
		return
	}
	if paused {
		c.turn.pause()
	} else {
		c.turn.resume(c.postTurnTimeout)
	}
}

func (c *Coordinator) handleRelayEvent(ev relay.Event) {
	switch e := ev.(type) {
	case relay.Connected:
		c.connected = true
	case relay.Disconnected:
		c.handleRelayDisconnected(e)
	case relay.LobbyLinked:
		if c.lobby != nil && c.lobby.IsHost {
			c.lobby.ID = e.Lobby
			c.lobby.QR = e.QR
		}
	case relay.LobbySynced:
		if c.lobby != nil && c.lobby.IsHost {
			c.lobby.Codes = e.Players
		}
	case relay.PlayerCodeAssigned:
		code := e.Code
		c.setPlayerCode(&code)
	case relay.GameSetup:
		if e.Role != nil && e.Role.Valid() {
			role := *e.Role
			c.role = &role
		}
		if e.Config != nil {
			c.setConfig(*e.Config)
		}
	case relay.GameSynced:
		c.handleGameSynced(e)
	case relay.PlayerSelectionUpdated:
		c.wasGameSynced = true
		if c.role != nil && e.Voted(*c.role) {
			c.selection = SelectionWaiting
		} else {
			c.selection = SelectionVoting
		}
		c.setLobby(nil)
	case relay.RestartRequested:
		c.handleRestartRequested(e)
	case relay.LatencyUpdated:
		c.delay = e.Delay
		c.offset = e.ClockOffset
	}
}

func (c *Coordinator) handleRelayDisconnected(e relay.Disconnected) {
	c.logger.Info("disconnected from relay", "reason", e.Reason, "by_user", c.disconnectedByUser)
	if c.disconnectReason == "" {
		c.disconnectReason = e.Reason
	}

	role := c.role
	c.connected = false
	c.role = nil
	c.remoteDeadline = nil
	c.setLobby(nil)
	c.clearRestartRequest(game.Player1)
	c.clearRestartRequest(game.Player2)

	// The last synced game carries on locally.
	if c.wasGameSynced {
		p := game.Player1
		if role != nil && role.Valid() {
			p = *role
		}
		c.startLocalGame(p)
		c.dismissPlayerSelection()
	}
	c.wasGameSynced = false
}

func (c *Coordinator) handleGameSynced(e relay.GameSynced) {
	c.wasGameSynced = true
	c.game = e.Game
	if c.game == nil {
		c.game = game.New(c.config.Rules(game.Player1))
	}
	c.round = e.Round
	c.remoteRound = e.Round
	c.setLobby(nil)
	c.selection = SelectionHidden
	c.turn.reset()

	c.remoteDeadline = nil
	if e.Timeout != nil {
		deadline := e.Timeout.Add(-c.delay - c.offset)
		c.remoteDeadline = &deadline
	}

	if c.game.Resolved() {
		c.recordResult(ModeRemote)
	}
}

func (c *Coordinator) handleRestartRequested(e relay.RestartRequested) {
	if !e.Player.Valid() {
		return
	}
	c.clearRestartRequest(e.Player)
	if e.Request == nil {
		return
	}

	now := c.clock.Now()
	expires := e.Request.Timeout.Add(-c.delay - c.offset)
	c.restartGen++
	gen, player := c.restartGen, e.Player
	pending := &pendingRestart{
		request: RestartRequest{Config: e.Request.Config, Received: now, Expires: expires},
		gen:     gen,
	}
	pending.timer = c.clock.AfterFunc(max(expires.Sub(now), 0), func() {
		c.Send(restartExpiredMsg{player: player, gen: gen})
	})
	c.restarts[player] = pending
}

func (c *Coordinator) clearRestartRequest(p game.Player) {
	if r := c.restarts[p]; r != nil {
		r.timer.Stop()
		c.restarts[p] = nil
	}
}

// recordResult saves a finished game once per match.
func (c *Coordinator) recordResult(mode Mode) {
	key := c.matchID
	if mode == ModeRemote {
		key = remoteMatchKey(c.round)
	}
	if c.recordedFor == key || c.game.State.Result == nil {
		return
	}
	c.recordedFor = key

	data := MatchResultData{
		MatchID:    uuid.NewString(),
		Mode:       mode,
		Round:      c.round,
		Winner:     c.game.State.Result.Winner,
		Turns:      c.game.State.Turn,
		AllowDraws: c.game.Rules.AllowDraws,
		Timed:      c.config.Timed(),
	}
	c.logger.Info("game finished", "mode", mode, "round", data.Round, "winner", data.Winner, "turns", data.Turns)

	if c.resultSaver == nil {
		return
	}
	// Best effort save, don't block on error
	go func() {
		if err := c.resultSaver.SaveMatchResult(data); err != nil {
			c.logger.Warn("failed to save match result", "err", err)
		}
	}()
}

func remoteMatchKey(round int) string {
	return "remote-" + strconv.Itoa(round)
}

// publish stores a snapshot of the current state and hands it to subscribers.
func (c *Coordinator) publish() {
	st := State{
		Game:               c.game.Clone(),
		Config:             c.config,
		Mode:               ModeLocal,
		Lobby:              c.lobby.clone(),
		Connected:          c.connected,
		DisconnectReason:   c.disconnectReason,
		DisconnectedByUser: c.disconnectedByUser,
		Round:              c.round,
		RemoteRound:        c.remoteRound,
		PlayerSelection:    c.selection,
		TimerPaused:        c.turn.paused(),
		ExtraTime:          c.turn.extra,
		Delay:              c.delay,
		ClockOffset:        c.offset,
	}
	if c.connected {
		st.Mode = ModeRemote
	}
	if c.role != nil {
		role := *c.role
		st.Role = &role
	}
	for p, r := range c.restarts {
		if r != nil {
			req := r.request
			st.RestartRequests[p] = &req
		}
	}
	switch {
	case c.turn.running():
		deadline := c.turn.deadline
		st.TurnDeadline = &deadline
	case c.remoteDeadline != nil:
		deadline := *c.remoteDeadline
		st.TurnDeadline = &deadline
	}

	c.snapMu.Lock()
	c.snapshot = st
	c.snapMu.Unlock()
	c.subs.broadcast(st)
}

func (c *Coordinator) teardown() {
	c.turn.reset()
	c.clearRestartRequest(game.Player1)
	c.clearRestartRequest(game.Player2)
}
