package ai

import (
	"fmt"
	"strings"
)

// BuildPrompt asks for a single SAN move for the position, listing the legal
// moves so the model picks from them.
func BuildPrompt(fen string, legal []string) string {
	var b strings.Builder
	b.WriteString("You are a Grandmaster Chess Engine.\n")
	fmt.Fprintf(&b, "Current board FEN: %s\n", fen)
	fmt.Fprintf(&b, "The valid moves are: %s\n", strings.Join(legal, ", "))
	b.WriteString("Think carefully and return only the best move in Standard Algebraic Notation (SAN), e.g., \"Nf3\" or \"e4\".\n")
	b.WriteString("Do not provide any explanation, just the move string.")
	return b.String()
}
