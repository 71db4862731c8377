package game

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// LastMove is the from/to pair of the most recent move, kept for highlighting.
type LastMove struct {
	From chess.Square
	To   chess.Square
}

// Position is an immutable chess position with its move history.
// Transitions return a new Position and leave the receiver untouched.
type Position struct {
	g *chess.Game
}

func StartingPosition() Position {
	return Position{g: chess.NewGame()}
}

// PositionFromMoves replays SAN moves from the starting position.
func PositionFromMoves(moves ...string) (Position, error) {
	p := StartingPosition()
	for _, san := range moves {
		next, _, err := p.ApplySAN(san)
		if err != nil {
			return Position{}, err
		}
		p = next
	}
	return p, nil
}

func (p Position) FEN() string {
	return p.g.Position().String()
}

func (p Position) Turn() Color {
	return colorOf(p.g.Position().Turn())
}

// PieceAt returns the piece on sq, or chess.NoPiece.
func (p Position) PieceAt(sq chess.Square) chess.Piece {
	return p.g.Position().Board().Piece(sq)
}

// LegalMoves lists every legal move for the side to move in SAN.
func (p Position) LegalMoves() []string {
	pos := p.g.Position()
	moves := pos.ValidMoves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, chess.AlgebraicNotation{}.Encode(pos, m))
	}
	return out
}

// Targets lists the distinct destination squares of legal moves starting on from.
func (p Position) Targets(from chess.Square) []chess.Square {
	var out []chess.Square
	seen := make(map[chess.Square]bool)
	for _, m := range p.g.Position().ValidMoves() {
		if m.S1() != from || seen[m.S2()] {
			continue
		}
		seen[m.S2()] = true
		out = append(out, m.S2())
	}
	return out
}

// Apply plays from->to. Pawn moves to the last rank promote to a queen.
func (p Position) Apply(from, to chess.Square) (Position, LastMove, error) {
	for _, m := range p.g.Position().ValidMoves() {
		if m.S1() != from || m.S2() != to {
			continue
		}
		if m.Promo() != chess.NoPieceType && m.Promo() != chess.Queen {
			continue
		}
		return p.apply(m)
	}
	return Position{}, LastMove{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
}

// ApplySAN plays a move given in standard algebraic notation.
func (p Position) ApplySAN(san string) (Position, LastMove, error) {
	m, err := chess.AlgebraicNotation{}.Decode(p.g.Position(), san)
	if err != nil {
		return Position{}, LastMove{}, fmt.Errorf("%w: %q: %v", ErrIllegalMove, san, err)
	}
	return p.apply(m)
}

// ApplyText plays a move from loosely written text: SAN with or without
// check marks, "0-0" castling, a "P" pawn prefix, long algebraic ("Nb1c3")
// or coordinate notation ("e2e4", "e7e8q").
func (p Position) ApplyText(text string) (Position, LastMove, error) {
	next, last, err := p.ApplySAN(text)
	if err == nil {
		return next, last, nil
	}
	pos := p.g.Position()
	loose := looseMove(text)
	for _, dec := range []chess.Decoder{chess.AlgebraicNotation{}, chess.LongAlgebraicNotation{}} {
		if m, decErr := dec.Decode(pos, loose); decErr == nil {
			return p.apply(m)
		}
	}
	uci := strings.ToLower(strings.ReplaceAll(loose, "-", ""))
	m, uciErr := chess.UCINotation{}.Decode(pos, uci)
	if uciErr != nil {
		return Position{}, LastMove{}, err
	}
	return p.apply(m)
}

// looseMove strips annotation suffixes and rewrites the spellings the rules
// library does not accept. The decoders add check marks back themselves.
func looseMove(text string) string {
	s := strings.TrimRight(strings.TrimSpace(text), "+#!?")
	switch strings.ToUpper(s) {
	case "0-0", "O-O":
		return "O-O"
	case "0-0-0", "O-O-O":
		return "O-O-O"
	}
	if len(s) > 2 && s[0] == 'P' && s[1] >= 'a' && s[1] <= 'h' {
		s = s[1:]
	}
	return s
}

func (p Position) apply(m *chess.Move) (Position, LastMove, error) {
	next := p.g.Clone()
	if err := next.Move(m); err != nil {
		return Position{}, LastMove{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return Position{g: next}, LastMove{From: m.S1(), To: m.S2()}, nil
}

// MovesSAN returns the game history in SAN.
func (p Position) MovesSAN() []string {
	moves := p.g.Moves()
	positions := p.g.Positions()
	out := make([]string, 0, len(moves))
	for i, m := range moves {
		out = append(out, chess.AlgebraicNotation{}.Encode(positions[i], m))
	}
	return out
}

// Plies counts half-moves played.
func (p Position) Plies() int {
	return len(p.g.Moves())
}

// Result reports the PGN result token and a termination label.
// Ongoing games report "*" and an empty termination.
func (p Position) Result() (result, termination string) {
	st := DeriveStatus(p)
	switch {
	case st.IsCheckmate:
		if st.Winner == WinnerWhite {
			return "1-0", chess.Checkmate.String()
		}
		return "0-1", chess.Checkmate.String()
	case st.IsDraw:
		return "1/2-1/2", p.drawMethod().String()
	default:
		return "*", ""
	}
}

// PGN renders the game. A claimable draw is claimed in the copy so the
// result tag matches Result.
func (p Position) PGN() string {
	g := p.g
	if g.Outcome() == chess.NoOutcome {
		if m := p.claimableDraw(); m != chess.NoMethod {
			g = g.Clone()
			_ = g.Draw(m)
		}
	}
	return g.String()
}

func (p Position) lastMove() *chess.Move {
	moves := p.g.Moves()
	if len(moves) == 0 {
		return nil
	}
	return moves[len(moves)-1]
}

func (p Position) drawMethod() chess.Method {
	if p.g.Outcome() == chess.Draw {
		return p.g.Method()
	}
	return p.claimableDraw()
}

// claimableDraw reports threefold repetition or the fifty-move rule. The rules
// library needs these claimed; the game treats them as drawn.
func (p Position) claimableDraw() chess.Method {
	for _, m := range p.g.EligibleDraws() {
		if m == chess.ThreefoldRepetition || m == chess.FiftyMoveRule {
			return m
		}
	}
	return chess.NoMethod
}
