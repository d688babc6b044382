package errors

import "errors"

// Rules engine
var (
	ErrIllegalMove           = errors.New("illegal move")
	ErrNotSeatTurn           = errors.New("not this seat's turn")
	ErrNoActiveHand          = errors.New("no active hand")
	ErrHandInProgress        = errors.New("hand already in progress")
	ErrMatchAlreadyOver      = errors.New("match already over")
	ErrVoluntaryPassRejected = errors.New("pass rejected: legal moves available")
	ErrInvalidConfig         = errors.New("invalid match config")
	ErrInteractiveSeat       = errors.New("seat requires interactive input")
	ErrStrategyFault         = errors.New("strategy fault")
)

// Boundary layer
var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrUnknownStrategy   = errors.New("unknown strategy")
	ErrArenaRunNotFound  = errors.New("arena run not found")
	ErrArenaValidation   = errors.New("invalid arena request")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMatchAccessDenied = errors.New("match access denied")
	ErrMatchBusy         = errors.New("match is being updated")
)
