package game

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// Mode selects who plays the second side of a table.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeAI     Mode = "ai"
	ModeRemote Mode = "remote"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeLocal, ModeAI, ModeRemote:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Color is a side in the short form used on the wire: "w" or "b".
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// ParseColor accepts "w"/"b" and "white"/"black". An empty string means white.
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

func colorOf(c chess.Color) Color {
	if c == chess.White {
		return White
	}
	return Black
}
