package game

import "github.com/notnil/chess"

// Winner is the side that won, "draw", or empty while the game continues.
type Winner string

const (
	WinnerNone  Winner = ""
	WinnerWhite Winner = "w"
	WinnerBlack Winner = "b"
	WinnerDraw  Winner = "draw"
)

// Status is the overlay snapshot. It is always derived, never stored.
type Status struct {
	IsCheck     bool   `json:"is_check"`
	IsCheckmate bool   `json:"is_checkmate"`
	IsDraw      bool   `json:"is_draw"`
	Turn        Color  `json:"turn"`
	Winner      Winner `json:"winner,omitempty"`
	Mode        Mode   `json:"mode,omitempty"`
	AIThinking  bool   `json:"ai_thinking"`
	RoomID      string `json:"room_id,omitempty"`
}

func (s Status) Over() bool {
	return s.IsCheckmate || s.IsDraw
}

// DeriveStatus computes the position part of the status.
func DeriveStatus(p Position) Status {
	st := Status{Turn: p.Turn()}
	if m := p.lastMove(); m != nil && m.HasTag(chess.Check) {
		st.IsCheck = true
	}
	switch p.g.Outcome() {
	case chess.WhiteWon, chess.BlackWon:
		st.IsCheckmate = p.g.Method() == chess.Checkmate
	case chess.Draw:
		st.IsDraw = true
	default:
		st.IsDraw = p.claimableDraw() != chess.NoMethod
	}
	switch {
	case st.IsCheckmate:
		// the side to move is the one mated
		st.Winner = Winner(st.Turn.Other())
	case st.IsDraw:
		st.Winner = WinnerDraw
	}
	return st
}
