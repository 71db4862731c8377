// Package scene builds the placement, color and highlight parameters the 3D
// client renders. Squares carry their algebraic name so click events on a
// square mesh come back as a square name.
package scene

import (
	"math"

	"github.com/notnil/chess"
	"github.com/samber/lo"

	"grandmaster/internal/game"
)

const (
	colorDark      = "#1a202c"
	colorLight     = "#edf2f7"
	colorSelected  = "#f6e05e"
	colorValid     = "#68d391"
	colorLastMove  = "#90cdf4"
	emissiveValid  = "#22543d"
	emissiveSelect = "#744210"
	emissiveNone   = "#000000"

	pieceWhite = "#f7fafc"
	pieceBlack = "#171923"

	pieceLift = 0.05
)

type Highlight string

const (
	HighlightNone     Highlight = ""
	HighlightSelected Highlight = "selected"
	HighlightValid    Highlight = "valid"
	HighlightLastMove Highlight = "last_move"
)

type Vec3 [3]float64

type Square struct {
	Name              string    `json:"name"`
	Position          Vec3      `json:"position"`
	Dark              bool      `json:"dark"`
	Color             string    `json:"color"`
	Highlight         Highlight `json:"highlight,omitempty"`
	Emissive          string    `json:"emissive"`
	EmissiveIntensity float64   `json:"emissive_intensity"`
}

type Piece struct {
	Square   string  `json:"square"`
	Type     string  `json:"type"`
	Color    string  `json:"color"`
	Position Vec3    `json:"position"`
	Material string  `json:"material"`
	Yaw      float64 `json:"yaw"`
}

type Scene struct {
	Squares []Square `json:"squares"`
	Pieces  []Piece  `json:"pieces"`
}

// Build lays out the board from a1 to h8, rank by rank.
func Build(s game.State) Scene {
	valid := lo.Associate(s.ValidTargets(), func(sq chess.Square) (chess.Square, bool) {
		return sq, true
	})

	out := Scene{
		Squares: make([]Square, 0, 64),
		Pieces:  make([]Piece, 0, 32),
	}
	for r := chess.Rank1; r <= chess.Rank8; r++ {
		for f := chess.FileA; f <= chess.FileH; f++ {
			sq := chess.NewSquare(f, r)
			x, z := float64(f)-3.5, 3.5-float64(r)

			// a1 is dark.
			dark := (int(f)+int(r))%2 == 0
			view := Square{
				Name:     sq.String(),
				Position: Vec3{x, 0, z},
				Dark:     dark,
				Color:    colorLight,
				Emissive: emissiveNone,
			}
			if dark {
				view.Color = colorDark
			}
			switch {
			case s.Selected != nil && *s.Selected == sq:
				view.Highlight = HighlightSelected
				view.Color = colorSelected
				view.Emissive = emissiveSelect
				view.EmissiveIntensity = 0.5
			case valid[sq]:
				view.Highlight = HighlightValid
				view.Color = colorValid
				view.Emissive = emissiveValid
				view.EmissiveIntensity = 0.5
			case s.LastMove != nil && (s.LastMove.From == sq || s.LastMove.To == sq):
				view.Highlight = HighlightLastMove
				view.Color = colorLastMove
			}
			out.Squares = append(out.Squares, view)

			p := s.Position.PieceAt(sq)
			if p == chess.NoPiece {
				continue
			}
			out.Pieces = append(out.Pieces, pieceView(sq, p, x, z))
		}
	}
	return out
}

func pieceView(sq chess.Square, p chess.Piece, x, z float64) Piece {
	view := Piece{
		Square:   sq.String(),
		Type:     p.Type().String(),
		Color:    "b",
		Position: Vec3{x, pieceLift, z},
		Material: pieceBlack,
	}
	if p.Color() == chess.White {
		view.Color = "w"
		view.Material = pieceWhite
		if p.Type() == chess.Knight {
			view.Yaw = math.Pi
		}
	}
	return view
}
