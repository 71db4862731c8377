package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"grandmaster/internal/ai"
	"grandmaster/internal/configstore"
	"grandmaster/internal/db"
	"grandmaster/internal/game"
)

// ErrNoAITurn is returned by RetryAI when the computer is not to move.
var ErrNoAITurn = errors.New("not the computer's turn")

// MoveView is a last move as square names.
type MoveView struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Snapshot is the read model a client renders from.
type Snapshot struct {
	GameID       string         `json:"game_id"`
	Epoch        uint64         `json:"epoch"`
	FEN          string         `json:"fen"`
	Status       game.Status    `json:"status"`
	HumanColor   game.Color     `json:"human_color"`
	Selected     string         `json:"selected,omitempty"`
	ValidTargets []string       `json:"valid_targets"`
	LastMove     *MoveView      `json:"last_move,omitempty"`
	MovesSAN     []string       `json:"moves_san"`
	Result       string         `json:"result"`
	Termination  string         `json:"termination,omitempty"`
	AIFailed     bool           `json:"ai_failed,omitempty"`
	Board        [][]SquareView `json:"board"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SettingsSource supplies the AI settings read on every invocation.
type SettingsSource interface {
	GetConfig(ctx context.Context) (configstore.Config, error)
}

// Recorder archives finished games.
type Recorder interface {
	InsertFinishedGame(ctx context.Context, g db.FinishedGame) (int64, error)
}

type RunnerDeps struct {
	Resolver *ai.Resolver
	Settings SettingsSource
	Recorder Recorder
	Log      *zap.Logger
}

// Runner owns one table. The mutex serialises every state transition; the
// model call runs on its own goroutine and at most one is outstanding.
type Runner struct {
	id   string
	deps RunnerDeps
	log  *zap.Logger
	b    *Broadcaster

	mu          sync.Mutex
	state       game.State
	epoch       uint64
	timer       *time.Timer
	aiMoves     int
	aiFallbacks int
	aiFailed    bool
	archived    bool
	updatedAt   time.Time
	closed      bool
}

func NewRunner(id string, st game.State, deps RunnerDeps) *Runner {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Resolver == nil {
		deps.Resolver = ai.NewResolver(nil, deps.Log)
	}
	r := &Runner{
		id:        id,
		deps:      deps,
		log:       deps.Log.With(zap.String("table", id)),
		b:         NewBroadcaster(),
		state:     st,
		updatedAt: time.Now(),
	}
	r.mu.Lock()
	r.maybeScheduleLocked()
	r.mu.Unlock()
	return r
}

func (r *Runner) ID() string { return r.id }

func (r *Runner) Broadcaster() *Broadcaster { return r.b }

func (r *Runner) RoomID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.RoomID
}

// LastActive is the time of the last state change.
func (r *Runner) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updatedAt
}

// State returns the current table state. State values are immutable.
func (r *Runner) State() game.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Click routes a square click through the move-intent rules. A rejected
// click returns the unchanged snapshot with the error.
func (r *Runner) Click(square string) (Snapshot, game.ClickOutcome, error) {
	r.mu.Lock()
	next, outcome, err := r.state.Click(square)
	if err != nil {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, "", err
	}
	r.state = next
	r.touchLocked()
	var rec *db.FinishedGame
	if outcome == game.ClickMoved {
		rec = r.afterMoveLocked()
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.archive(rec)
	r.b.Publish()
	return snap, outcome, nil
}

// Restart begins a new game on the table. Pending timers stop and any
// outstanding model reply is discarded when it arrives.
func (r *Runner) Restart(st game.State) Snapshot {
	r.mu.Lock()
	r.epoch++
	r.stopTimerLocked()
	r.state = st
	r.aiMoves, r.aiFallbacks = 0, 0
	r.aiFailed = false
	r.archived = false
	r.touchLocked()
	r.maybeScheduleLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.b.Publish()
	return snap
}

// RetryAI re-arms a computer turn left unresolved by a failed request.
func (r *Runner) RetryAI() (Snapshot, error) {
	r.mu.Lock()
	if r.state.AIThinking || r.timer != nil {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, game.ErrAIThinking
	}
	if !r.state.AwaitingAI() {
		snap := r.snapshotLocked()
		r.mu.Unlock()
		return snap, ErrNoAITurn
	}
	r.aiFailed = false
	r.maybeScheduleLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	r.b.Publish()
	return snap, nil
}

func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.epoch++
	r.stopTimerLocked()
	r.mu.Unlock()
	r.b.Close()
}

func (r *Runner) maybeScheduleLocked() {
	if r.closed || r.timer != nil || r.state.AIThinking || !r.state.AwaitingAI() {
		return
	}
	delay := configstore.DefaultMoveDelayMS * time.Millisecond
	if r.deps.Settings != nil {
		if cfg, err := r.deps.Settings.GetConfig(context.Background()); err == nil {
			delay = cfg.MoveDelay()
		}
	}
	epoch := r.epoch
	r.timer = time.AfterFunc(delay, func() { r.runAI(epoch) })
}

func (r *Runner) runAI(epoch uint64) {
	r.mu.Lock()
	if epoch != r.epoch || r.closed {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	if r.state.AIThinking || !r.state.AwaitingAI() {
		r.mu.Unlock()
		return
	}
	r.state = r.state.WithAIThinking(true)
	r.touchLocked()
	pos := r.state.Position
	r.mu.Unlock()
	r.b.Publish()

	ctx := context.Background()
	settings := ai.Settings{
		Model:       configstore.DefaultModel,
		Temperature: configstore.DefaultTemperature,
	}
	if r.deps.Settings != nil {
		if cfg, err := r.deps.Settings.GetConfig(ctx); err == nil {
			settings = ai.Settings{
				Model:          cfg.Model,
				Temperature:    cfg.Temperature,
				ThinkingBudget: cfg.ThinkingBudget,
			}
		} else {
			r.log.Warn("ai settings unavailable, using defaults", zap.Error(err))
		}
	}

	res, err := r.deps.Resolver.Resolve(ctx, pos, settings)

	r.mu.Lock()
	if epoch != r.epoch {
		r.mu.Unlock()
		r.log.Info("dropping stale ai reply", zap.Uint64("epoch", epoch))
		return
	}
	r.state = r.state.WithAIThinking(false)
	r.touchLocked()
	var rec *db.FinishedGame
	if err != nil {
		r.aiFailed = true
		r.log.Error("ai move request failed", zap.Error(err))
	} else {
		r.aiFailed = false
		r.aiMoves++
		if res.Source == ai.SourceFallback {
			r.aiFallbacks++
		}
		r.state = r.state.WithMove(res.Position, res.LastMove)
		r.log.Debug("ai moved",
			zap.String("san", res.SAN),
			zap.String("source", string(res.Source)),
		)
		rec = r.afterMoveLocked()
	}
	r.mu.Unlock()

	r.archive(rec)
	r.b.Publish()
}

// afterMoveLocked schedules the reply move or, when the game just ended,
// returns the record to archive.
func (r *Runner) afterMoveLocked() *db.FinishedGame {
	if !r.state.Status().Over() {
		r.maybeScheduleLocked()
		return nil
	}
	if r.archived {
		return nil
	}
	r.archived = true
	result, termination := r.state.Position.Result()
	return &db.FinishedGame{
		TableID:     r.id,
		Mode:        string(r.state.Mode),
		HumanColor:  string(r.state.HumanColor),
		RoomID:      r.state.RoomID,
		Result:      result,
		Termination: termination,
		MovesSAN:    strings.Join(r.state.Position.MovesSAN(), " "),
		AIMoves:     r.aiMoves,
		AIFallbacks: r.aiFallbacks,
		PGN:         r.state.Position.PGN(),
	}
}

func (r *Runner) archive(rec *db.FinishedGame) {
	if rec == nil || r.deps.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	id, err := r.deps.Recorder.InsertFinishedGame(ctx, *rec)
	if err != nil {
		r.log.Error("insert game error", zap.Error(err))
		return
	}
	r.log.Info("game archived",
		zap.Int64("game_id", id),
		zap.String("result", rec.Result),
		zap.String("termination", rec.Termination),
	)
}

func (r *Runner) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Runner) touchLocked() {
	r.updatedAt = time.Now()
}

func (r *Runner) snapshotLocked() Snapshot {
	st := r.state
	snap := Snapshot{
		GameID:       r.id,
		Epoch:        r.epoch,
		FEN:          st.Position.FEN(),
		Status:       st.Status(),
		HumanColor:   st.HumanColor,
		ValidTargets: game.SquareNames(st.ValidTargets()),
		MovesSAN:     st.Position.MovesSAN(),
		AIFailed:     r.aiFailed,
		Board:        boardFromState(st),
		UpdatedAt:    r.updatedAt,
	}
	snap.Result, snap.Termination = st.Position.Result()
	if st.Selected != nil {
		snap.Selected = st.Selected.String()
	}
	if st.LastMove != nil {
		snap.LastMove = &MoveView{From: st.LastMove.From.String(), To: st.LastMove.To.String()}
	}
	return snap
}
