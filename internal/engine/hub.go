package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"grandmaster/internal/game"
	"grandmaster/internal/room"
)

var ErrTableNotFound = errors.New("table not found")

// Hub owns every live table, indexed by id and by room code.
type Hub struct {
	deps    RunnerDeps
	ttl     time.Duration
	log     *zap.Logger
	newCode func() string

	mu     sync.RWMutex
	tables map[string]*Runner
	rooms  map[string]string

	stopOnce sync.Once
	stop     chan struct{}
}

// NewHub creates an empty hub. A zero ttl disables eviction.
func NewHub(deps RunnerDeps, ttl time.Duration) *Hub {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Hub{
		deps:    deps,
		ttl:     ttl,
		log:     deps.Log,
		newCode: room.NewCode,
		tables:  make(map[string]*Runner),
		rooms:   make(map[string]string),
		stop:    make(chan struct{}),
	}
}

// Create opens a table with a fresh game.
func (h *Hub) Create(mode game.Mode, human game.Color) *Runner {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.NewString()
	st := game.NewState(mode, human, h.roomCodeLocked(mode))
	r := NewRunner(id, st, h.deps)
	h.tables[id] = r
	if st.RoomID != "" {
		h.rooms[st.RoomID] = id
	}
	h.log.Info("table created",
		zap.String("table", id),
		zap.String("mode", string(mode)),
		zap.String("room", st.RoomID),
	)
	return r
}

func (h *Hub) Get(id string) (*Runner, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return r, nil
}

func (h *Hub) ByRoom(code string) (*Runner, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	id, ok := h.rooms[room.Normalize(code)]
	if !ok {
		return nil, ErrTableNotFound
	}
	r, ok := h.tables[id]
	if !ok {
		return nil, ErrTableNotFound
	}
	return r, nil
}

// Restart starts a new game on an existing table. Remote games get a new
// room code; the old one stops resolving. The hub lock is held until the
// table has switched so concurrent restarts see each other's codes.
func (h *Hub) Restart(id string, mode game.Mode, human game.Color) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.tables[id]
	if !ok {
		return Snapshot{}, ErrTableNotFound
	}
	st := game.NewState(mode, human, h.roomCodeLocked(mode))
	if old := r.RoomID(); old != "" {
		delete(h.rooms, old)
	}
	if st.RoomID != "" {
		h.rooms[st.RoomID] = id
	}
	return r.Restart(st), nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tables)
}

// Sweep closes tables idle since before now-ttl and returns how many went.
func (h *Hub) Sweep(now time.Time) int {
	if h.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-h.ttl)

	h.mu.Lock()
	var evicted []*Runner
	for id, r := range h.tables {
		if r.LastActive().After(cutoff) || r.Broadcaster().Subscribers() > 0 {
			continue
		}
		delete(h.tables, id)
		if code := r.RoomID(); code != "" {
			delete(h.rooms, code)
		}
		evicted = append(evicted, r)
	}
	h.mu.Unlock()

	for _, r := range evicted {
		r.Close()
		h.log.Info("table evicted", zap.String("table", r.ID()))
	}
	return len(evicted)
}

// Start runs the eviction loop until ctx ends or Stop is called.
func (h *Hub) Start(ctx context.Context) {
	if h.ttl <= 0 {
		return
	}
	interval := h.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stop:
				return
			case now := <-t.C:
				h.Sweep(now)
			}
		}
	}()
}

// Stop ends the eviction loop and closes every table.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)

		h.mu.Lock()
		tables := make([]*Runner, 0, len(h.tables))
		for _, r := range h.tables {
			tables = append(tables, r)
		}
		h.tables = make(map[string]*Runner)
		h.rooms = make(map[string]string)
		h.mu.Unlock()

		for _, r := range tables {
			r.Close()
		}
	})
}

func (h *Hub) roomCodeLocked(mode game.Mode) string {
	if mode != game.ModeRemote {
		return ""
	}
	for {
		code := h.newCode()
		if _, taken := h.rooms[code]; !taken {
			return code
		}
	}
}
