package rules

import "errors"

// Rule violations. The text of each error is the message shown to players.
var (
	ErrNotParticipant = errors.New("Player is not a participant.")
	ErrNotYourTurn    = errors.New("It is not your turn.")

	ErrNotOwned           = errors.New("You do not own a piece at this position.")
	ErrIllegalDestination = errors.New("Cannot move to this position.")
	ErrInvalidPromotion   = errors.New("Invalid pawn promotion.")

	ErrCastlingRights       = errors.New("Rook or king has moved, cannot castle.")
	ErrCastlingBlocked      = errors.New("Pieces in the way, cannot castle.")
	ErrCastlingThroughCheck = errors.New("Cannot castle from, through, or into check.")
	ErrInvalidCastleSide    = errors.New("Side must be one of K, Q.")

	ErrInCheck       = errors.New("You are in check.")
	ErrMoveIntoCheck = errors.New("You cannot move into check.")

	ErrSeatTaken    = errors.New("is already assigned.")
	ErrInvalidColor = errors.New("Invalid color")
	ErrNoPlayer     = errors.New("Player id is required.")

	ErrNilMove = errors.New("Move is required.")
)

// MoveResult is the wire outcome of a move attempt
type MoveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Result converts an Execute error into a MoveResult
func Result(err error) MoveResult {
	if err == nil {
		return MoveResult{Success: true}
	}
	return MoveResult{Success: false, Message: err.Error()}
}
