package engine

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
)

type Broadcaster struct {
	mu     sync.Mutex
	next   int
	subs   map[int]chan struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan struct{})}
}

// Subscribe returns a channel that receives a signal after each change. The
// channel is closed when the table goes away.
func (b *Broadcaster) Subscribe() (id int, ch <-chan struct{}, unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.next
	b.next++

	c := make(chan struct{}, 1)
	if b.closed {
		close(c)
		return id, c, func() {}
	}
	b.subs[id] = c

	return id, c, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c2, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c2)
		}
	}
}

func (b *Broadcaster) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// SSEHandler streams the table snapshot as a "state" event on connect and
// after every change.
func SSEHandler(r *Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		_, ch, unsubscribe := r.Broadcaster().Subscribe()
		defer unsubscribe()

		if err := writeSnapshotEvent(w, r.Snapshot()); err != nil {
			return
		}
		flusher.Flush()

		ctx := req.Context()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					_, _ = w.Write([]byte("event: closed\ndata: {}\n\n"))
					flusher.Flush()
					return
				}
				if err := writeSnapshotEvent(w, r.Snapshot()); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSnapshotEvent(w http.ResponseWriter, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
	return err
}
