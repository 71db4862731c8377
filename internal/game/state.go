package game

import (
	"github.com/notnil/chess"
)

// ClickOutcome says how a click was interpreted.
type ClickOutcome string

const (
	ClickMoved    ClickOutcome = "moved"
	ClickSelected ClickOutcome = "selected"
	ClickCleared  ClickOutcome = "cleared"
)

// State is everything a table shows. Methods return modified copies; a State
// value is never changed in place.
type State struct {
	Position   Position
	Selected   *chess.Square
	LastMove   *LastMove
	Mode       Mode
	HumanColor Color
	RoomID     string
	AIThinking bool
}

// NewState starts a game from the initial position.
func NewState(mode Mode, human Color, roomID string) State {
	if human == "" {
		human = White
	}
	if mode != ModeRemote {
		roomID = ""
	}
	return State{
		Position:   StartingPosition(),
		Mode:       mode,
		HumanColor: human,
		RoomID:     roomID,
	}
}

// Status recomputes the overlay snapshot from the position and flags.
func (s State) Status() Status {
	st := DeriveStatus(s.Position)
	st.Mode = s.Mode
	st.AIThinking = s.AIThinking
	st.RoomID = s.RoomID
	return st
}

// AwaitingAI reports whether the computer side is to move.
func (s State) AwaitingAI() bool {
	return s.Mode == ModeAI && s.Position.Turn() != s.HumanColor && !s.Status().Over()
}

// Click resolves a square click into a move, a selection, or a cleared selection.
func (s State) Click(name string) (State, ClickOutcome, error) {
	sq, err := ParseSquare(name)
	if err != nil {
		return s, "", err
	}
	if s.Status().Over() {
		return s, "", ErrGameOver
	}
	if s.AIThinking {
		return s, "", ErrAIThinking
	}
	if s.Mode == ModeAI && s.Position.Turn() != s.HumanColor {
		return s, "", ErrNotYourTurn
	}

	if s.Selected != nil {
		if next, last, err := s.Position.Apply(*s.Selected, sq); err == nil {
			return s.withMove(next, last), ClickMoved, nil
		}
	}

	piece := s.Position.PieceAt(sq)
	if piece != chess.NoPiece && colorOf(piece.Color()) == s.Position.Turn() {
		s.Selected = &sq
		return s, ClickSelected, nil
	}
	s.Selected = nil
	return s, ClickCleared, nil
}

// ValidTargets lists where the selected piece may move.
func (s State) ValidTargets() []chess.Square {
	if s.Selected == nil {
		return nil
	}
	return s.Position.Targets(*s.Selected)
}

// WithAIThinking sets the in-flight flag.
func (s State) WithAIThinking(thinking bool) State {
	s.AIThinking = thinking
	return s
}

// WithMove commits a position reached by a move made outside Click.
func (s State) WithMove(next Position, last LastMove) State {
	return s.withMove(next, last)
}

func (s State) withMove(next Position, last LastMove) State {
	s.Position = next
	s.LastMove = &last
	s.Selected = nil
	return s
}
