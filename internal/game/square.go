package game

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// ParseSquare converts an algebraic square name such as "e4" into a board square.
func ParseSquare(name string) (chess.Square, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if len(name) != 2 {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	file, rank := name[0], name[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	return chess.NewSquare(chess.File(file-'a'), chess.Rank(rank-'1')), nil
}

// SquareNames returns the names of the given squares in order.
func SquareNames(squares []chess.Square) []string {
	out := make([]string, 0, len(squares))
	for _, sq := range squares {
		out = append(out, sq.String())
	}
	return out
}
