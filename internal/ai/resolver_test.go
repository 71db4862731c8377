package ai

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"grandmaster/internal/game"
)

type fakeModel struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []Request
}

func (f *fakeModel) Generate(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.reply, f.err
}

var testSettings = Settings{Model: "gemini-3-flash-preview", Temperature: 0.1}

func afterE4(t *testing.T) game.Position {
	t.Helper()
	p, err := game.PositionFromMoves("e4")
	require.NoError(t, err)
	return p
}

func TestResolveAcceptsModelMove(t *testing.T) {
	model := &fakeModel{reply: "  e5\n"}
	r := NewResolver(model, zaptest.NewLogger(t))

	res, err := r.Resolve(context.Background(), afterE4(t), testSettings)
	require.NoError(t, err)
	require.Equal(t, SourceModel, res.Source)
	require.Equal(t, "e5", res.SAN)
	require.Equal(t, game.LastMove{From: chess.E7, To: chess.E5}, res.LastMove)
	require.Equal(t, game.White, res.Position.Turn())

	require.Len(t, model.calls, 1)
	req := model.calls[0]
	require.Equal(t, "gemini-3-flash-preview", req.Model)
	require.InDelta(t, 0.1, req.Temperature, 1e-6)
	require.Zero(t, req.ThinkingBudget)
	require.Contains(t, req.Prompt, afterE4(t).FEN())
	require.Contains(t, req.Prompt, "Nf6")
}

func TestResolveAcceptsLooseNotation(t *testing.T) {
	tests := []struct {
		reply string
		san   string
	}{
		{reply: "Nf6+", san: "Nf6"},
		{reply: "Ng8f6", san: "Nf6"},
		{reply: "Pd6", san: "d6"},
		{reply: "e7e5", san: "e5"},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			r := NewResolver(&fakeModel{reply: tt.reply}, zaptest.NewLogger(t))
			res, err := r.Resolve(context.Background(), afterE4(t), testSettings)
			require.NoError(t, err)
			require.Equal(t, SourceModel, res.Source)
			require.Equal(t, tt.san, res.SAN)
		})
	}
}

func TestResolveFallsBackOnUnplayableReply(t *testing.T) {
	for _, reply := range []string{"xyz123", "", "Ke2", "I think Nf6 is best.", "e4"} {
		t.Run(reply, func(t *testing.T) {
			pos := afterE4(t)
			r := NewResolver(&fakeModel{reply: reply}, zaptest.NewLogger(t))

			res, err := r.Resolve(context.Background(), pos, testSettings)
			require.NoError(t, err)
			require.Equal(t, SourceFallback, res.Source)
			require.Equal(t, reply, res.Reply)
			require.Contains(t, pos.LegalMoves(), res.SAN)
			require.Equal(t, game.White, res.Position.Turn())
			require.Equal(t, 2, res.Position.Plies())
		})
	}
}

func TestResolveRequestFailureAppliesNothing(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewResolver(&fakeModel{err: boom}, zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), afterE4(t), testSettings)
	require.ErrorIs(t, err, boom)
}

func TestResolveWithoutModel(t *testing.T) {
	r := NewResolver(nil, nil)
	_, err := r.Resolve(context.Background(), afterE4(t), testSettings)
	require.ErrorIs(t, err, ErrModelUnavailable)
}

func TestResolveTerminalPosition(t *testing.T) {
	model := &fakeModel{reply: "e4"}
	r := NewResolver(model, zaptest.NewLogger(t))
	mated, err := game.PositionFromMoves("f3", "e5", "g4", "Qh4#")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), mated, testSettings)
	require.ErrorIs(t, err, ErrNoLegalMoves)
	require.Empty(t, model.calls)

	_, err = r.fallback(mated, mated.LegalMoves())
	require.ErrorIs(t, err, ErrNoLegalMoves)
}

func TestFallbackCoversEveryLegalMove(t *testing.T) {
	pos := game.StartingPosition()
	r := NewResolver(nil, nil)
	r.intn = rand.New(rand.NewPCG(1, 2)).IntN

	seen := make(map[string]int)
	for i := 0; i < 2000; i++ {
		res, err := r.fallback(pos, pos.LegalMoves())
		require.NoError(t, err)
		seen[res.SAN]++
	}
	require.Len(t, seen, len(pos.LegalMoves()))
	for san, n := range seen {
		require.Greater(t, n, 40, san)
	}
}

func TestFallbackAlwaysLegalAcrossGame(t *testing.T) {
	r := NewResolver(nil, nil)
	r.intn = rand.New(rand.NewPCG(7, 7)).IntN
	pos := game.StartingPosition()

	for ply := 0; ply < 120 && !game.DeriveStatus(pos).Over(); ply++ {
		res, err := r.fallback(pos, pos.LegalMoves())
		require.NoError(t, err)
		require.Contains(t, pos.LegalMoves(), res.SAN)
		pos = res.Position
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("8/8/8/8/8/8/8/K6k w - - 0 1", []string{"Ka2", "Kb1"})
	require.True(t, strings.HasPrefix(p, "You are a Grandmaster Chess Engine."))
	require.Contains(t, p, "Current board FEN: 8/8/8/8/8/8/8/K6k w - - 0 1")
	require.Contains(t, p, "The valid moves are: Ka2, Kb1")
	require.Contains(t, p, "just the move string")
}
