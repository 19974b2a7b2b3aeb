package core

import "chessduel/internal/server/rules"

type State int

const (
	StateWaiting State = iota // Seats still open
	StateOngoing
	StateWhiteWins
	StateBlackWins
	StateStalemate
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateOngoing:
		return "ongoing"
	case StateWhiteWins:
		return "white wins"
	case StateBlackWins:
		return "black wins"
	case StateStalemate:
		return "stalemate"
	default:
		return "unknown"
	}
}

// IsOver reports a terminal state
func (s State) IsOver() bool {
	return s == StateWhiteWins || s == StateBlackWins || s == StateStalemate
}

// DeriveState computes the session state of a position
func DeriveState(gs rules.GameState) State {
	if gs.IsGameOver() {
		switch gs.Winner() {
		case rules.White:
			return StateWhiteWins
		case rules.Black:
			return StateBlackWins
		default:
			return StateStalemate
		}
	}
	if !gs.ReadyToStart() {
		return StateWaiting
	}
	return StateOngoing
}
