package game

import (
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

func TestStartingPositionLegalMoves(t *testing.T) {
	p := StartingPosition()
	moves := p.LegalMoves()
	require.Len(t, moves, 20)
	require.Contains(t, moves, "e4")
	require.Contains(t, moves, "Nf3")
	require.Equal(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", p.FEN())
}

func TestApplyText(t *testing.T) {
	tests := []struct {
		text string
		from chess.Square
		to   chess.Square
		ok   bool
	}{
		{text: "e4", from: chess.E2, to: chess.E4, ok: true},
		{text: "Nf3", from: chess.G1, to: chess.F3, ok: true},
		{text: "e2e4", from: chess.E2, to: chess.E4, ok: true},
		{text: "g1-f3", from: chess.G1, to: chess.F3, ok: true},
		{text: "Nc3+", from: chess.B1, to: chess.C3, ok: true},
		{text: "e4!", from: chess.E2, to: chess.E4, ok: true},
		{text: "Nb1c3", from: chess.B1, to: chess.C3, ok: true},
		{text: "Pd3", from: chess.D2, to: chess.D3, ok: true},
		{text: " d4 ", from: chess.D2, to: chess.D4, ok: true},
		{text: "Nb1d2"},
		{text: "0-0"},
		{text: "xyz123"},
		{text: "e5"},
		{text: ""},
		{text: "The best move is e4"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			p := StartingPosition()
			next, last, err := p.ApplyText(tt.text)
			if !tt.ok {
				require.ErrorIs(t, err, ErrIllegalMove)
				return
			}
			require.NoError(t, err)
			require.Equal(t, LastMove{From: tt.from, To: tt.to}, last)
			require.Equal(t, Black, next.Turn())
			require.Equal(t, White, p.Turn())
		})
	}
}

func TestApplyTextCastling(t *testing.T) {
	p, err := PositionFromMoves("e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5")
	require.NoError(t, err)

	for _, text := range []string{"O-O", "0-0", "o-o", "O-O+"} {
		t.Run(text, func(t *testing.T) {
			next, last, err := p.ApplyText(text)
			require.NoError(t, err)
			require.Equal(t, LastMove{From: chess.E1, To: chess.G1}, last)
			require.Equal(t, chess.WhiteRook, next.PieceAt(chess.F1))
		})
	}

	_, _, err = p.ApplyText("0-0-0")
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestMovesSANAndResult(t *testing.T) {
	p, err := PositionFromMoves("f3", "e5", "g4", "Qh4#")
	require.NoError(t, err)
	require.Equal(t, []string{"f3", "e5", "g4", "Qh4#"}, p.MovesSAN())
	require.Equal(t, 4, p.Plies())

	result, termination := p.Result()
	require.Equal(t, "0-1", result)
	require.Equal(t, chess.Checkmate.String(), termination)
	require.True(t, strings.Contains(p.PGN(), "0-1"))
}

func TestResultClaimsRepetition(t *testing.T) {
	p, err := PositionFromMoves("Nf3", "Nf6", "Ng1", "Ng8", "Nf3", "Nf6", "Ng1", "Ng8")
	require.NoError(t, err)

	result, termination := p.Result()
	require.Equal(t, "1/2-1/2", result)
	require.Equal(t, chess.ThreefoldRepetition.String(), termination)
	require.True(t, strings.Contains(p.PGN(), "1/2-1/2"))
}

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare(" E4 ")
	require.NoError(t, err)
	require.Equal(t, chess.E4, sq)

	for _, bad := range []string{"", "e", "e9", "i1", "e44"} {
		_, err := ParseSquare(bad)
		require.ErrorIs(t, err, ErrInvalidSquare, bad)
	}
}

func TestParseModeAndColor(t *testing.T) {
	m, err := ParseMode("AI")
	require.NoError(t, err)
	require.Equal(t, ModeAI, m)
	_, err = ParseMode("online")
	require.ErrorIs(t, err, ErrInvalidMode)

	c, err := ParseColor("")
	require.NoError(t, err)
	require.Equal(t, White, c)
	c, err = ParseColor("black")
	require.NoError(t, err)
	require.Equal(t, Black, c)
	_, err = ParseColor("red")
	require.ErrorIs(t, err, ErrInvalidColor)
}
