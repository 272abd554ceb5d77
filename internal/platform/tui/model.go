package tui

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-connect4/internal/config"
	"github.com/vovakirdan/tui-connect4/internal/core"
	"github.com/vovakirdan/tui-connect4/internal/game"
	"github.com/vovakirdan/tui-connect4/internal/multiplayer"
	"github.com/vovakirdan/tui-connect4/internal/storage"
)

// headerLines is the number of lines above the board.
const headerLines = 2

type view int

const (
	viewBoard view = iota
	viewJoin
	viewHistory
)

// Options configures a board Model.
type Options struct {
	Coordinator *multiplayer.Coordinator
	Store       *storage.Store // Optional, enables the history view
	Clock       clock.Clock
	// InviteLink turns a lobby ID into a link for the opponent.
	InviteLink func(lobbyID string) string
	// Online enables hosting and joining games over the relay.
	Online bool
	Width  int
	Height int
}

// Model is the Bubble Tea model of the board. It never changes the game
// itself; keys become coordinator intents and the view follows the
// published snapshots.
type Model struct {
	coord      *multiplayer.Coordinator
	sub        *multiplayer.Subscription
	store      *storage.Store
	clock      clock.Clock
	inviteLink func(string) string
	online     bool

	state   multiplayer.State
	screen  *core.Screen
	layout  core.BoardLayout
	keys    KeyMap
	help    help.Model
	input   textinput.Model
	history HistoryModel

	view       view
	cursor     int
	codeCursor int
	preset     int
	notice     string
	width      int
	height     int
	quitting   bool
}

// NewModel creates a board model subscribed to the coordinator.
func NewModel(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 80, 24
	}

	input := textinput.New()
	input.Placeholder = "lobby ID or invite link"
	input.CharLimit = 256
	input.Width = 40

	m := Model{
		coord:      opts.Coordinator,
		sub:        opts.Coordinator.Subscribe(),
		store:      opts.Store,
		clock:      opts.Clock,
		inviteLink: opts.InviteLink,
		online:     opts.Online,
		state:      opts.Coordinator.Snapshot(),
		keys:       DefaultKeyMap(opts.Online),
		help:       help.New(),
		input:      input,
		cursor:     game.FieldSize / 2,
	}
	m.resize(opts.Width, opts.Height)
	return m
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	// One row for the drop marker, the field and its frame.
	h := game.FieldSize + 3
	m.screen = core.NewScreen(width, h)
	m.layout = core.NewBoardLayout(game.FieldSize, game.FieldSize, width, h, 1)
	m.help.Width = width
}

// Init starts listening for snapshots and the countdown refresh.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.sub), tickCmd(countdownRefresh))
}

// Update handles messages and turns keys into coordinator intents.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.setState(multiplayer.State(msg))
		return m, waitForState(m.sub)

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case TickMsg:
		return m, tickCmd(countdownRefresh)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.view == viewHistory {
			h, _ := m.history.Update(msg)
			m.history = h.(HistoryModel)
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		switch m.view {
		case viewJoin:
			return m.handleJoinKey(msg)
		case viewHistory:
			return m.handleHistoryKey(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) setState(st multiplayer.State) {
	m.state = st
	if st.Lobby == nil || len(st.Lobby.Codes) == 0 {
		m.codeCursor = 0
		return
	}
	m.codeCursor = core.Clamp(m.codeCursor, 0, len(st.Lobby.Codes)-1)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.sub.Close()
	return m, tea.Quit
}

// handleKey processes keyboard input on the board.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action := m.keys.Action(msg)
	switch action {
	case core.ActionQuit:
		return m.quit()
	case core.ActionHelp:
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	st := m.state
	switch {
	case st.Lobby != nil:
		return m.handleLobbyKey(msg, action)

	case st.OpponentRequest() != nil && (action == core.ActionAccept || action == core.ActionDecline):
		m.coord.RespondToRestartRequest(action == core.ActionAccept)
		return m, nil

	case st.PlayerSelection == multiplayer.SelectionVoting && !st.Connected:
		if col, ok := m.keys.Column(msg); ok && col < 2 {
			m.coord.SelectStartingPlayer(game.Player(col))
			return m, nil
		}
		if action == core.ActionBack {
			m.coord.DismissPlayerSelection()
			return m, nil
		}

	case st.PlayerSelection == multiplayer.SelectionVoting && st.Connected:
		if action == core.ActionAccept || action == core.ActionDecline {
			m.coord.VoteStartingPlayer(action == core.ActionAccept)
			return m, nil
		}
	}

	if col, ok := m.keys.Column(msg); ok {
		m.cursor = col
		return m.drop()
	}

	switch action {
	case core.ActionLeft:
		m.cursor = core.Wrap(m.cursor-1, game.FieldSize)
	case core.ActionRight:
		m.cursor = core.Wrap(m.cursor+1, game.FieldSize)
	case core.ActionDrop:
		return m.drop()
	case core.ActionRestart:
		m.notice = ""
		m.coord.RestartGame(nil)
	case core.ActionPreset:
		m.nextPreset()
	case core.ActionHost:
		m.notice = ""
		m.coord.Connect("")
	case core.ActionJoin:
		m.view = viewJoin
		m.input.SetValue("")
		return m, m.input.Focus()
	case core.ActionDisconnect:
		m.coord.Disconnect()
	case core.ActionHistory:
		m.history = NewHistoryModel(m.store, m.width, m.height)
		m.view = viewHistory
	case core.ActionBack:
		switch {
		case st.DisconnectReason != "":
			m.coord.DismissDisconnectReason()
		case m.notice != "":
			m.notice = ""
		default:
			m.help.ShowAll = false
		}
	}
	return m, nil
}

// handleLobbyKey lets the host seat a waiting player. Either side may
// leave the lobby.
func (m Model) handleLobbyKey(msg tea.KeyMsg, action core.Action) (tea.Model, tea.Cmd) {
	lobby := m.state.Lobby
	switch action {
	case core.ActionDisconnect, core.ActionBack:
		m.coord.Disconnect()
		return m, nil
	}
	if !lobby.IsHost || len(lobby.Codes) == 0 {
		return m, nil
	}

	switch action {
	case core.ActionLeft:
		m.codeCursor = core.Wrap(m.codeCursor-1, len(lobby.Codes))
	case core.ActionRight:
		m.codeCursor = core.Wrap(m.codeCursor+1, len(lobby.Codes))
	}
	if col, ok := m.keys.Column(msg); ok && col < 2 {
		m.coord.AcceptPlayer(lobby.Codes[m.codeCursor], game.Player(col))
	}
	return m, nil
}

// nextPreset restarts with the next named rule set.
func (m *Model) nextPreset() {
	presets := config.Presets()
	m.preset = (m.preset + 1) % len(presets)
	rules, _ := config.PresetRules(presets[m.preset])
	cfg := rules.Rules()
	m.coord.RestartGame(&cfg)
	m.notice = fmt.Sprintf("Next game: %s (%s)", presets[m.preset], rules.Describe())
}

func (m Model) drop() (tea.Model, tea.Cmd) {
	if m.state.MyTurn() && m.state.Game.CanDrop(m.cursor) {
		m.coord.EndTurn(m.cursor)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view != viewBoard || m.state.Lobby != nil {
		return m, nil
	}
	col, ok := m.layout.ColumnAt(msg.X, msg.Y-headerLines)
	if !ok {
		return m, nil
	}
	m.cursor = col
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		return m.drop()
	}
	return m, nil
}

func (m Model) handleJoinKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.view = viewBoard
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		if id := ParseLobbyID(m.input.Value()); id != "" {
			m.coord.Connect(id)
		}
		m.view = viewBoard
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.history.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.history.keys.Back):
		m.view = viewBoard
		return m, nil
	}
	h, cmd := m.history.Update(msg)
	m.history = h.(HistoryModel)
	return m, cmd
}

// ParseLobbyID accepts a bare lobby ID or an invite link.
func ParseLobbyID(s string) string {
	s = strings.TrimSpace(s)
	if u, err := url.Parse(s); err == nil {
		if id := u.Query().Get("lobby"); id != "" {
			return id
		}
	}
	return s
}

// saveScreenshot saves the current board to a file.
func (m *Model) saveScreenshot() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".connect4", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	filename := fmt.Sprintf("connect4_%s.txt", m.clock.Now().Format("20060102_150405"))
	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.view == viewHistory {
		return m.history.render()
	}

	now := m.clock.Now()
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteString("\n")
	b.WriteString(m.statusLine(now))
	b.WriteString("\n")

	if g := m.state.Game; g != nil {
		cursor := -1
		if m.state.MyTurn() {
			cursor = m.cursor
		}
		drawBoard(m.screen, m.layout, g, cursor)
	} else {
		m.screen.Clear()
		m.screen.DrawBox(m.layout.Origin, core.ColorGray)
		m.screen.DrawTextCentered(m.layout.Origin.Y+game.FieldSize/2+1, "waiting for the game", core.ColorGray)
	}
	b.WriteString(RenderScreen(m.screen))

	for _, line := range panel(m.state, now, m.inviteLink, m.codeCursor) {
		b.WriteString("\n")
		b.WriteString(centerText(line, m.width))
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(dim.Render(centerText(m.notice, m.width)))
	}
	if m.view == viewJoin {
		b.WriteString("\n\n")
		b.WriteString(centerText("Join lobby: "+m.input.View(), m.width))
	}

	b.WriteString("\n\n")
	b.WriteString(dim.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) titleLine() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Render("CONNECT FOUR")
	mode := m.state.Mode.String()
	if m.state.Lobby != nil {
		mode = "lobby"
	}
	rules := config.FromRules(m.state.Config).Describe()
	info := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).
		Render(fmt.Sprintf(" · %s · round %d · %s", mode, m.state.Round, rules))
	return centerText(title+info, m.width)
}

func (m Model) statusLine(now time.Time) string {
	text := status(m.state, now)
	style := lipgloss.NewStyle().Bold(true)
	if g := m.state.Game; g != nil {
		switch {
		case g.State.Result == nil:
			style = playerStyle(g.State.Player)
		case g.State.Result.Winner != game.WinnerDraw:
			style = playerStyle(game.Player(g.State.Result.Winner))
		}
	}
	return centerText(style.Render(text), m.width)
}

// status describes whose turn it is or how the game ended.
func status(st multiplayer.State, now time.Time) string {
	g := st.Game
	switch {
	case st.Lobby != nil:
		return "Waiting in the lobby"
	case g == nil:
		return "Waiting for the game to start"
	case g.State.Result != nil:
		if g.State.Result.Winner == game.WinnerDraw {
			return "Draw! Press r to play again"
		}
		return fmt.Sprintf("%s wins! Press r to play again", winnerName(g.State.Result.Winner))
	}

	text := playerName(g.State.Player) + " to move"
	if st.Mode == multiplayer.ModeRemote && st.Role != nil {
		if st.MyTurn() {
			text = "Your turn"
		} else {
			text = "Opponent's turn"
		}
	}
	switch {
	case st.TimerPaused:
		text += " · timer paused"
	case st.TurnDeadline != nil:
		text += " · " + formatCountdown(st.TurnDeadline.Sub(now))
	}
	return text
}

// panel lists the dialogs that apply to the snapshot, most urgent first.
func panel(st multiplayer.State, now time.Time, inviteLink func(string) string, selected int) []string {
	var lines []string

	if st.DisconnectReason != "" {
		if st.DisconnectedByUser {
			lines = append(lines, "You left the online game. (esc)")
		} else {
			lines = append(lines, fmt.Sprintf("Disconnected: %s. (esc)", st.DisconnectReason))
		}
	}

	if l := st.Lobby; l != nil {
		return append(lines, lobbyPanel(l, inviteLink, selected)...)
	}

	switch st.PlayerSelection {
	case multiplayer.SelectionVoting:
		if st.Connected {
			lines = append(lines, "Do you want to start? y / n")
		} else {
			lines = append(lines, "Who starts? 1 Red · 2 Yellow · esc cancels")
		}
	case multiplayer.SelectionWaiting:
		lines = append(lines, "Waiting for the opponent to vote...")
	}

	if req := st.OpponentRequest(); req != nil {
		text := "Your opponent wants to restart"
		if req.Config != nil {
			text += " with " + config.FromRules(*req.Config).Describe()
		}
		lines = append(lines, fmt.Sprintf("%s. Accept? y / n (%s)", text, formatCountdown(req.Expires.Sub(now))))
	}
	if st.Role != nil && st.RestartRequests[*st.Role] != nil {
		lines = append(lines, "Restart requested, waiting for the opponent...")
	}

	if st.Connected && st.Role != nil {
		lines = append(lines, fmt.Sprintf("Online as %s · ping %dms · x to leave",
			playerName(*st.Role), st.Delay.Milliseconds()))
	}
	return lines
}

func lobbyPanel(l *multiplayer.Lobby, inviteLink func(string) string, selected int) []string {
	if !l.IsHost {
		if l.Code == nil {
			return []string{fmt.Sprintf("Joining lobby %s...", l.ID), "x to leave"}
		}
		return []string{
			fmt.Sprintf("Your code is %04d. Tell it to the host.", *l.Code),
			"x to leave",
		}
	}

	if l.ID == "" {
		return []string{"Opening a lobby...", "x to cancel"}
	}
	invite := l.ID
	if inviteLink != nil {
		invite = inviteLink(l.ID)
	}
	lines := []string{"Invite: " + invite}
	if len(l.Codes) == 0 {
		return append(lines, "Waiting for a player to join...", "x to close the lobby")
	}
	return append(lines,
		fmt.Sprintf("Players waiting: %s", codeList(l.Codes, selected)),
		"←/→ choose · 1 they play Red · 2 they play Yellow · x to close the lobby",
	)
}

// codeList shows the waiting players' codes with the selected one in brackets.
func codeList(codes []int, selected int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		if i == selected {
			parts[i] = fmt.Sprintf("[%04d]", c)
		} else {
			parts[i] = fmt.Sprintf(" %04d ", c)
		}
	}
	return strings.Join(parts, " ")
}

// formatCountdown renders the time left, rounded up to whole seconds.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Run starts the Bubble Tea program with the given options.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Click a column to drop
	)

	_, err := p.Run()
	return err
}
