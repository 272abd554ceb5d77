package relay

// DisconnectReason explains why a connection ended. Server reasons arrive
// as the close frame text; client reasons are derived locally.
type DisconnectReason string

// Reasons supplied by the relay.
const (
	ReasonServerMaxLobbies DisconnectReason = "serverMaxLobbies"
	ReasonInviteInvalid    DisconnectReason = "inviteInvalid"
	ReasonLobbyJoinError   DisconnectReason = "lobbyJoinError"
	ReasonLobbyFull        DisconnectReason = "lobbyFull"
	ReasonLobbyClosed      DisconnectReason = "lobbyClosed"
	ReasonGameStarted      DisconnectReason = "gameStarted"
	ReasonGameEnded        DisconnectReason = "gameEnded"
	ReasonLobbyOverloaded  DisconnectReason = "lobbyOverloaded"
	ReasonServerOverloaded DisconnectReason = "serverOverloaded"
	ReasonShuttingDown     DisconnectReason = "shuttingDown"
)

// Reasons determined by the client.
const (
	ReasonCouldNotConnect  DisconnectReason = "couldNotConnect"
	ReasonConnectionError  DisconnectReason = "connectionError"
	ReasonConnectionClosed DisconnectReason = "connectionClosed"
	ReasonNoResponse       DisconnectReason = "noResponse"
	ReasonOffline          DisconnectReason = "offline"
)

var reasonText = map[DisconnectReason]string{
	ReasonServerMaxLobbies: "The server has reached its lobby limit",
	ReasonInviteInvalid:    "The invite is invalid",
	ReasonLobbyJoinError:   "Could not join the lobby",
	ReasonLobbyFull:        "The lobby is full",
	ReasonLobbyClosed:      "The lobby was closed",
	ReasonGameStarted:      "The game has already started",
	ReasonGameEnded:        "The game has ended",
	ReasonLobbyOverloaded:  "The lobby is overloaded",
	ReasonServerOverloaded: "The server is overloaded",
	ReasonShuttingDown:     "The server is shutting down",
	ReasonCouldNotConnect:  "Could not connect to the server",
	ReasonConnectionError:  "Connection error",
	ReasonConnectionClosed: "Connection closed",
	ReasonNoResponse:       "The server did not respond",
	ReasonOffline:          "You are offline",
}

// String returns a displayable description.
func (r DisconnectReason) String() string {
	if s, ok := reasonText[r]; ok {
		return s
	}
	return string(r)
}

// closeInfo collects what is known about a finished connection.
type closeInfo struct {
	serverReason string
	clean        bool
	timedOut     bool
	established  bool
	online       bool
}

// classify picks the reason by priority: the relay's own reason, a clean
// close, an unanswered connection attempt, then errors while online and
// finally being offline.
func classify(ci closeInfo) DisconnectReason {
	switch {
	case ci.serverReason != "":
		return DisconnectReason(ci.serverReason)
	case ci.clean:
		return ReasonConnectionClosed
	case ci.timedOut:
		return ReasonNoResponse
	case !ci.online:
		return ReasonOffline
	case ci.established:
		return ReasonConnectionError
	default:
		return ReasonCouldNotConnect
	}
}
