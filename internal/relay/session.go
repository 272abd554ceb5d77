// Package relay manages the connection to the relay server that pairs
// remote players. A Session owns at most one websocket connection at a
// time, turns commands into protocol messages and inbound messages into
// events, and estimates latency and clock offset from a ping loop.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/protocol"
)

const (
	// DefaultConnectTimeout bounds the opening handshake.
	DefaultConnectTimeout = 10 * time.Second
	// DefaultHeartbeatInterval is the ping period.
	DefaultHeartbeatInterval = 2 * time.Second

	writeTimeout = 5 * time.Second
)

// Options configure a Session.
type Options struct {
	URL               string
	ProtocolVersion   int
	ConnectTimeout    time.Duration
	HeartbeatInterval time.Duration

	Clock  clock.Clock
	Logger *log.Logger
	Dialer *websocket.Dialer
	// Online reports whether the host has network connectivity. It is
	// consulted only to classify failed connections.
	Online func() bool
}

func (o *Options) setDefaults() {
	if o.ProtocolVersion == 0 {
		o.ProtocolVersion = protocol.Version
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.Online == nil {
		o.Online = SystemOnline
	}
}

// SystemOnline reports whether any non-loopback interface is up.
func SystemOnline() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return true
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp != 0 && ifc.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}

// connection is the state of one connection attempt. It is never reused.
type connection struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// guarded by Session.mu
	ws           *websocket.Conn
	raw          net.Conn
	established  bool
	inGame       bool
	closedByUser bool
	timedOut     bool
	connectTimer *clock.Timer

	writeMu sync.Mutex
}

// Session is the client side of the relay connection.
type Session struct {
	opts      Options
	clock     clock.Clock
	logger    *log.Logger
	estimator *Estimator

	mu      sync.Mutex
	handler Handler
	conn    *connection
}

// NewSession creates a disconnected session.
func NewSession(opts Options) *Session {
	opts.setDefaults()
	return &Session{
		opts:      opts,
		clock:     opts.Clock,
		logger:    opts.Logger,
		estimator: NewEstimator(),
	}
}

// SetHandler sets the receiver of session events.
func (s *Session) SetHandler(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		h.HandleRelayEvent(ev)
	}
}

// Endpoint builds the connection URL for a lobby. An empty id asks the
// relay to create a new lobby.
func (s *Session) Endpoint(lobbyID string) (string, error) {
	u, err := url.Parse(s.opts.URL)
	if err != nil {
		return "", fmt.Errorf("relay: parse url: %w", err)
	}
	q := u.Query()
	q.Set("v", strconv.Itoa(s.opts.ProtocolVersion))
	if lobbyID != "" {
		q.Set("lobby", lobbyID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Connect starts connecting in the background. It returns false when a
// connection already exists or the URL is invalid.
func (s *Session) Connect(lobbyID string) bool {
	endpoint, err := s.Endpoint(lobbyID)
	if err != nil {
		s.logger.Error("cannot connect", "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &connection{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.connectTimer = s.clock.AfterFunc(s.opts.ConnectTimeout, func() {
		s.connectTimedOut(c)
	})
	s.conn = c
	s.estimator.Reset()

	s.logger.Info("connecting", "url", endpoint)
	go s.run(ctx, c, endpoint)
	return true
}

// Disconnect closes the active connection, if any.
func (s *Session) Disconnect() {
	s.mu.Lock()
	c := s.conn
	if c == nil {
		s.mu.Unlock()
		return
	}
	c.closedByUser = true
	ws, raw := c.ws, c.raw
	s.mu.Unlock()

	if ws == nil {
		// still dialing
		c.cancel()
		if raw != nil {
			raw.Close()
		}
		return
	}

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout)); err != nil {
		s.logger.Debug("close frame not sent", "error", err)
	}
	c.writeMu.Unlock()
	ws.Close()
}

// Connected reports whether a connection is open.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.conn.established
}

// InGame reports whether the relay has put the connection into a game.
func (s *Session) InGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && s.conn.inGame
}

// Delay is the estimated one-way network delay.
func (s *Session) Delay() time.Duration {
	return s.estimator.Delay()
}

// ClockOffset is the estimated amount the relay clock runs ahead.
func (s *Session) ClockOffset() time.Duration {
	return s.estimator.Offset()
}

// PickPlayer seats a waiting player in the hosted lobby. Dropped unless
// connected and not yet in a game.
func (s *Session) PickPlayer(msg protocol.LobbyPickPlayer) bool {
	return s.send(msg, func(c *connection) bool { return !c.inGame })
}

// EndTurn ends turn with a move in col, or a pass when col is nil.
func (s *Session) EndTurn(turn int, col *int) bool {
	return s.send(protocol.GameEndTurn{Turn: turn, Col: col}, inGame)
}

// RestartGame asks for a new game, proposing cfg when it is non-nil.
func (s *Session) RestartGame(cfg *game.Config) bool {
	return s.send(protocol.GameRestart{Config: cfg}, inGame)
}

// SelectStartingPlayer votes on who starts the game.
func (s *Session) SelectStartingPlayer(wantsToStart bool) bool {
	return s.send(protocol.GamePlayerSelectionVote{WantsToStart: wantsToStart}, inGame)
}

// RespondToRestartRequest answers the opponent's restart request.
func (s *Session) RespondToRestartRequest(accepted bool) bool {
	return s.send(protocol.GameRestartResponse{Accepted: accepted}, inGame)
}

func inGame(c *connection) bool { return c.inGame }

// send writes msg when the connection is open and allowed says so.
// Otherwise the message is dropped.
func (s *Session) send(msg protocol.Message, allowed func(*connection) bool) bool {
	s.mu.Lock()
	c := s.conn
	ok := c != nil && c.established && allowed(c)
	var ws *websocket.Conn
	if ok {
		ws = c.ws
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("dropping message", "type", msg.MessageType())
		return false
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		s.logger.Error("cannot encode message", "error", err)
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	ws.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck // surfaced by WriteMessage
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Warn("write failed", "type", msg.MessageType(), "error", err)
		return false
	}
	return true
}

// dialer wraps the configured dialer so the raw connection can be closed
// when the handshake takes too long.
func (s *Session) dialer(c *connection) *websocket.Dialer {
	d := *s.opts.Dialer
	next := d.NetDialContext
	if next == nil {
		var nd net.Dialer
		next = nd.DialContext
	}
	d.NetDialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		c.raw = conn
		aborted := c.timedOut || c.closedByUser
		s.mu.Unlock()
		if aborted {
			conn.Close()
			return nil, context.Canceled
		}
		return conn, nil
	}
	return &d
}

func (s *Session) connectTimedOut(c *connection) {
	s.mu.Lock()
	if c.established || s.conn != c {
		s.mu.Unlock()
		return
	}
	c.timedOut = true
	raw := c.raw
	s.mu.Unlock()

	s.logger.Warn("connection timed out")
	c.cancel()
	if raw != nil {
		raw.Close()
	}
}

func (s *Session) run(ctx context.Context, c *connection, endpoint string) {
	ws, resp, err := s.dialer(c).DialContext(ctx, endpoint, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		s.logger.Warn("dial failed", "error", err)
		s.finish(c, err)
		return
	}

	s.mu.Lock()
	if c.timedOut || c.closedByUser {
		s.mu.Unlock()
		ws.Close()
		s.finish(c, nil)
		return
	}
	c.ws = ws
	c.established = true
	c.connectTimer.Stop()
	s.mu.Unlock()

	s.logger.Info("connected")
	s.emit(Connected{})

	go s.heartbeat(c)
	s.finish(c, s.readLoop(c, ws))
}

func (s *Session) heartbeat(c *connection) {
	ticker := s.clock.Ticker(s.opts.HeartbeatInterval)
	defer ticker.Stop()

	s.ping(c)
	for {
		select {
		case <-ticker.C:
			s.ping(c)
		case <-c.done:
			return
		}
	}
}

func (s *Session) ping(c *connection) {
	sent := protocol.UnixMillis(s.clock.Now())
	s.send(protocol.Ping{Sent: sent}, func(cur *connection) bool { return cur == c })
}

func (s *Session) readLoop(c *connection, ws *websocket.Conn) error {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("connection lost", "error", err)
			}
			return err
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			s.logger.Debug("dropping malformed message", "error", err)
			continue
		}
		s.dispatch(c, msg)
	}
}

func (s *Session) dispatch(c *connection, msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Pong:
		now := s.clock.Now()
		s.estimator.Observe(time.UnixMilli(m.Sent), time.UnixMilli(m.Received), now)
		s.emit(LatencyUpdated{Delay: s.estimator.Delay(), ClockOffset: s.estimator.Offset()})
	case protocol.LobbyLink:
		s.emit(LobbyLinked{Lobby: m.Lobby, QR: m.QRCode})
	case protocol.LobbySync:
		s.emit(LobbySynced{Players: m.Players})
	case protocol.LobbyCode:
		s.emit(PlayerCodeAssigned{Code: m.Code})
	case protocol.GameSetup:
		s.emit(GameSetup{Role: m.Role, Config: m.Config})
	case protocol.GameSync:
		s.enterGame(c)
		g := m.Game
		s.emit(GameSynced{Game: &g, Round: m.Round, Timeout: m.Timeout})
	case protocol.GamePlayerSelection:
		s.enterGame(c)
		s.emit(PlayerSelectionUpdated{P1Voted: m.P1Voted, P2Voted: m.P2Voted})
	case protocol.GameRestartRequest:
		ev := RestartRequested{Player: m.Player}
		if m.Request != nil {
			ev.Request = &RestartRequest{Config: m.Request.Config, Timeout: m.Request.Timeout}
		}
		s.emit(ev)
	default:
		s.logger.Debug("ignoring message", "type", msg.MessageType())
	}
}

func (s *Session) enterGame(c *connection) {
	s.mu.Lock()
	c.inGame = true
	s.mu.Unlock()
}

// finish tears down c and reports why it ended. Only the first call for a
// connection has any effect.
func (s *Session) finish(c *connection, err error) {
	c.once.Do(func() {
		s.mu.Lock()
		info := closeInfo{
			clean:       c.closedByUser,
			timedOut:    c.timedOut,
			established: c.established,
		}
		var ce *websocket.CloseError
		if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
			info.clean = true
			info.serverReason = ce.Text
		}
		if s.conn == c {
			s.conn = nil
		}
		c.connectTimer.Stop()
		ws := c.ws
		s.mu.Unlock()

		close(c.done)
		c.cancel()
		if ws != nil {
			ws.Close()
		}

		if !info.clean && info.serverReason == "" {
			info.online = s.opts.Online()
		}
		reason := classify(info)
		s.logger.Info("disconnected", "reason", string(reason))
		s.emit(Disconnected{Reason: reason})
	})
}
