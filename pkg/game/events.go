package game

import "github.com/PurinNyova/LLM-Chess-Arena/pkg/board"

// EventKind names the type of an emitted Game event.
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventBoard    EventKind = "board"
	EventClock    EventKind = "clock"
	EventThinking EventKind = "thinking"
	EventChat     EventKind = "chat"
	EventMove     EventKind = "move"
	EventError    EventKind = "error"
	EventGameOver EventKind = "gameOver"
)

// Event is one item of a Game's emitted stream. Payload is one of the
// Payload structs below, chosen by Kind.
type Event struct {
	Kind    EventKind `json:"-"`
	Payload any       `json:"payload"`
}

// Emit is the sink a Game reports events to. The caller (httpapi's
// broadcaster, by way of the registry) owns delivery to subscribers; the
// Game never blocks waiting for a slow subscriber.
type Emit func(Event)

// StatusPayload is a human-readable phase announcement.
type StatusPayload struct {
	Message string `json:"message"`
}

// BoardPayload is a full board snapshot.
type BoardPayload struct {
	Squares  board.Snapshot `json:"squares"`
	Turn     string         `json:"turn"`
	LastMove *MoveInfo      `json:"lastMove,omitempty"`
	Captured CapturedLists  `json:"captured"`
}

// MoveInfo describes a single executed move for board/move payloads.
type MoveInfo struct {
	From string `json:"from"`
	To   string `json:"to"`
	SAN  string `json:"san"`
}

// CapturedLists reports the pieces captured by each side, by type name.
type CapturedLists struct {
	ByWhite []string `json:"byWhite"`
	ByBlack []string `json:"byBlack"`
}

// ClockPayload reports millisecond remainders. Fields are omitted entirely
// by the caller (not just zeroed) when the game is unlimited.
type ClockPayload struct {
	WhiteTime int64 `json:"whiteTime"`
	BlackTime int64 `json:"blackTime"`
}

// ThinkingPayload is incremental reasoning text for the side to move.
type ThinkingPayload struct {
	Color       string `json:"color"`
	Model       string `json:"model"`
	Text        string `json:"text"`
	Accumulated string `json:"accumulated"`
}

// ChatPayload reports one LLM attempt, legal or not.
type ChatPayload struct {
	Color      string  `json:"color"`
	Model      string  `json:"model"`
	Raw        string  `json:"raw"`
	Move       string  `json:"move"`
	Dialogue   *string `json:"dialogue,omitempty"`
	Thinking   string  `json:"thinking,omitempty"`
	Attempt    int     `json:"attempt"`
	MoveNumber int     `json:"moveNumber"`
}

// MovePayload reports an accepted move.
type MovePayload struct {
	Color      string  `json:"color"`
	Model      string  `json:"model"`
	Notation   string  `json:"notation"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	MoveNumber int     `json:"moveNumber"`
	Dialogue   *string `json:"dialogue,omitempty"`
}

// ErrorPayload reports a transient turn failure.
type ErrorPayload struct {
	Color      string `json:"color"`
	Model      string `json:"model"`
	Message    string `json:"message"`
	Attempt    int    `json:"attempt"`
	MaxRetries int    `json:"maxRetries"`
}

// GameOverPayload is the terminal event; it is always the last emitted.
type GameOverPayload struct {
	Result string `json:"result"`
	PGN    string `json:"pgn"`
}
