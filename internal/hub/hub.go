// Package hub streams session events to browsers as Server-Sent Events.
//
// Each bus event becomes one named SSE frame whose event name is the
// EventType and whose data is the JSON payload. A client that falls behind
// loses frames rather than stalling the session.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"fluidnet/internal/service"
)

const (
	DefaultKeepalive = 30 * time.Second
	clientBuffer     = 64
)

// frame is one encoded SSE message
type frame struct {
	name string
	data []byte
}

func (f frame) writeTo(w io.Writer) error {
	var err error
	if f.name != "" {
		_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.name, f.data)
	} else {
		_, err = fmt.Fprintf(w, "data: %s\n\n", f.data)
	}
	return err
}

type subscriber struct {
	id     string
	frames chan frame
}

// Hub owns the set of connected event stream clients
type Hub struct {
	mu      sync.RWMutex
	subs    map[*subscriber]struct{}
	join    chan *subscriber
	leave   chan *subscriber
	outbox  chan frame
	stopped chan struct{}

	keepalive time.Duration
}

// New creates a hub. Call Run before serving clients.
func New() *Hub {
	return &Hub{
		subs:      make(map[*subscriber]struct{}),
		join:      make(chan *subscriber),
		leave:     make(chan *subscriber),
		outbox:    make(chan frame, 256),
		stopped:   make(chan struct{}),
		keepalive: DefaultKeepalive,
	}
}

// Run dispatches frames until ctx is done, then ends every stream
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for s := range h.subs {
				delete(h.subs, s)
				close(s.frames)
			}
			h.mu.Unlock()
			return

		case s := <-h.join:
			h.mu.Lock()
			h.subs[s] = struct{}{}
			n := len(h.subs)
			h.mu.Unlock()
			log.Printf("Event stream %s opened (%d open)", s.id, n)

		case s := <-h.leave:
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.frames)
			}
			n := len(h.subs)
			h.mu.Unlock()
			log.Printf("Event stream %s closed (%d open)", s.id, n)

		case f := <-h.outbox:
			h.mu.RLock()
			for s := range h.subs {
				select {
				case s.frames <- f:
				default:
					log.Printf("Event stream %s is behind, dropping %s", s.id, f.name)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues a session event for every open stream
func (h *Hub) Publish(e service.Event) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", e.Type, err)
		return
	}
	select {
	case h.outbox <- frame{name: string(e.Type), data: data}:
	default:
		log.Printf("Event outbox full, dropping %s", e.Type)
	}
}

// Forward publishes every event received on events until it is closed
func (h *Hub) Forward(events <-chan service.Event) {
	for e := range events {
		h.Publish(e)
	}
}

// ClientCount returns the number of open streams
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ServeHTTP streams events to one client until it disconnects or the hub stops
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	s := &subscriber{id: uuid.NewString(), frames: make(chan frame, clientBuffer)}
	select {
	case h.join <- s:
	case <-h.stopped:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer func() {
		select {
		case h.leave <- s:
		case <-h.stopped:
		}
	}()

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")

	hello, _ := json.Marshal(map[string]string{"client": s.id})
	if err := (frame{name: "hello", data: hello}).writeTo(w); err != nil {
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case f, ok := <-s.frames:
			if !ok {
				return
			}
			if err := f.writeTo(w); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
		flusher.Flush()
	}
}
