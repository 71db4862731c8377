package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"grandmaster/internal/game"
)

// ErrNoLegalMoves means the position is terminal; the resolver must not be
// asked to move in it.
var ErrNoLegalMoves = errors.New("no legal moves")

// Settings are the sampling parameters for one invocation.
type Settings struct {
	Model          string
	Temperature    float32
	ThinkingBudget int32
}

// Source records where an applied move came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Result is an applied AI move.
type Result struct {
	Position game.Position
	LastMove game.LastMove
	SAN      string
	Source   Source
	Reply    string
}

// Resolver turns a model reply into a legal move, falling back to a uniformly
// random legal move when the reply cannot be played.
type Resolver struct {
	model  Model
	log    *zap.Logger
	tracer trace.Tracer
	intn   func(n int) int
}

func NewResolver(model Model, log *zap.Logger) *Resolver {
	if model == nil {
		model = Unavailable{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		model:  model,
		log:    log,
		tracer: otel.Tracer("grandmaster/ai"),
		intn:   rand.IntN,
	}
}

// Resolve asks the model once for a move in pos. A request failure returns an
// error and no move; an unplayable reply falls back to a random legal move.
func (r *Resolver) Resolve(ctx context.Context, pos game.Position, settings Settings) (Result, error) {
	ctx, span := r.tracer.Start(ctx, "ai.resolve", trace.WithAttributes(
		attribute.String("chess.fen", pos.FEN()),
		attribute.String("ai.model", settings.Model),
		attribute.Int("chess.ply", pos.Plies()),
	))
	defer span.End()

	legal := pos.LegalMoves()
	if len(legal) == 0 {
		span.SetStatus(codes.Error, ErrNoLegalMoves.Error())
		return Result{}, ErrNoLegalMoves
	}

	reply, err := r.model.Generate(ctx, Request{
		Model:          settings.Model,
		Prompt:         BuildPrompt(pos.FEN(), legal),
		Temperature:    settings.Temperature,
		ThinkingBudget: settings.ThinkingBudget,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model request failed")
		return Result{}, fmt.Errorf("ai: request move: %w", err)
	}

	candidate := strings.TrimSpace(reply)
	next, last, err := pos.ApplyText(candidate)
	if err == nil {
		span.SetAttributes(attribute.String("ai.source", string(SourceModel)))
		return Result{
			Position: next,
			LastMove: last,
			SAN:      lastSAN(next),
			Source:   SourceModel,
			Reply:    reply,
		}, nil
	}

	r.log.Info("model move rejected, playing random move",
		zap.String("reply", candidate),
		zap.String("fen", pos.FEN()),
		zap.Error(err),
	)
	res, err := r.fallback(pos, legal)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fallback failed")
		return Result{}, err
	}
	res.Reply = reply
	span.SetAttributes(attribute.String("ai.source", string(SourceFallback)))
	return res, nil
}

// fallback plays a uniformly random legal move.
func (r *Resolver) fallback(pos game.Position, legal []string) (Result, error) {
	if len(legal) == 0 {
		return Result{}, ErrNoLegalMoves
	}
	san := legal[r.intn(len(legal))]
	next, last, err := pos.ApplySAN(san)
	if err != nil {
		return Result{}, fmt.Errorf("ai: apply fallback %q: %w", san, err)
	}
	return Result{
		Position: next,
		LastMove: last,
		SAN:      san,
		Source:   SourceFallback,
	}, nil
}

func lastSAN(p game.Position) string {
	moves := p.MovesSAN()
	if len(moves) == 0 {
		return ""
	}
	return moves[len(moves)-1]
}
