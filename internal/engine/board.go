package engine

import (
	"strings"

	"github.com/notnil/chess"

	"grandmaster/internal/game"
)

// SquareView is one cell of the flat 2D board, rank 8 first.
type SquareView struct {
	Glyph  string `json:"glyph,omitempty"`
	Class  string `json:"class"`
	Square string `json:"square"`
	Piece  string `json:"piece,omitempty"`
}

func boardFromState(s game.State) [][]SquareView {
	valid := make(map[chess.Square]bool)
	for _, sq := range s.ValidTargets() {
		valid[sq] = true
	}

	board := make([][]SquareView, 0, 8)
	for r := chess.Rank8; r >= chess.Rank1; r-- {
		row := make([]SquareView, 0, 8)
		for f := chess.FileA; f <= chess.FileH; f++ {
			sq := chess.NewSquare(f, r)
			p := s.Position.PieceAt(sq)

			// a1 is dark.
			light := (int(f)+int(r))%2 == 1
			class := "sq "
			if light {
				class += "light"
			} else {
				class += "dark"
			}
			switch {
			case s.Selected != nil && *s.Selected == sq:
				class += " selected"
			case valid[sq]:
				class += " valid"
			case s.LastMove != nil && (s.LastMove.From == sq || s.LastMove.To == sq):
				class += " last"
			}

			row = append(row, SquareView{
				Glyph:  pieceGlyph(p),
				Class:  class,
				Square: sq.String(),
				Piece:  pieceCode(p),
			})
		}
		board = append(board, row)
	}
	return board
}

func pieceGlyph(p chess.Piece) string {
	if p == chess.NoPiece {
		return ""
	}

	isWhite := p.Color() == chess.White
	switch p.Type() {
	case chess.King:
		if isWhite {
			return "♔"
		}
		return "♚"
	case chess.Queen:
		if isWhite {
			return "♕"
		}
		return "♛"
	case chess.Rook:
		if isWhite {
			return "♖"
		}
		return "♜"
	case chess.Bishop:
		if isWhite {
			return "♗"
		}
		return "♝"
	case chess.Knight:
		if isWhite {
			return "♘"
		}
		return "♞"
	case chess.Pawn:
		if isWhite {
			return "♙"
		}
		return "♟"
	default:
		return ""
	}
}

// pieceCode is the FEN letter, uppercase for white.
func pieceCode(p chess.Piece) string {
	if p == chess.NoPiece {
		return ""
	}
	letter := p.Type().String()
	if p.Color() == chess.White {
		return strings.ToUpper(letter)
	}
	return letter
}
