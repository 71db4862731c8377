package game

import "errors"

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game is over")
	ErrAIThinking    = errors.New("ai move pending")
	ErrNotYourTurn   = errors.New("not the human player's turn")
	ErrInvalidMode   = errors.New("invalid mode")
	ErrInvalidColor  = errors.New("invalid color")
)
