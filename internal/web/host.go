package web

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/abhisek/quizarcade/internal/bridge"
)

// Outbound message types pushed to the play page.
const (
	msgPhase    = "phase"
	msgFeedback = "feedback"
)

type outbound struct {
	Type     string           `json:"type"`
	FrameID  string           `json:"frameId"`
	Phase    string           `json:"phase,omitempty"`
	Feedback *bridge.Feedback `json:"feedback,omitempty"`
}

// Host is the bridge.Host for browser pages. A mounted frame is served at
// /frame/:id inside a sandboxed iframe; the page relays the iframe's
// postMessage traffic over a websocket bound to that frame.
type Host struct {
	mu      sync.Mutex
	mounted map[string]bool
	clients map[string]map[*client]struct{}
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{
		mounted: make(map[string]bool),
		clients: make(map[string]map[*client]struct{}),
	}
}

// Mount implements bridge.Host. Pages fetch the document lazily, so mounting
// only records the frame.
func (h *Host) Mount(f *bridge.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mounted[f.ID()] = true
	return nil
}

// Unmount implements bridge.Host. Connected clients notice the frame's
// cancellation and close their sockets.
func (h *Host) Unmount(f *bridge.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.mounted, f.ID())
	delete(h.clients, f.ID())
}

// Mounted reports whether the frame is currently mounted.
func (h *Host) Mounted(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mounted[id]
}

// BridgeEvent is a bridge subscriber forwarding state to the pages that show
// the frame.
func (h *Host) BridgeEvent(ev bridge.Event) {
	var msg outbound
	switch ev.Kind {
	case bridge.EventPhase:
		msg = outbound{Type: msgPhase, FrameID: ev.FrameID, Phase: ev.Phase.String()}
	case bridge.EventFeedback:
		fb := ev.Feedback
		msg = outbound{Type: msgFeedback, FrameID: ev.FrameID, Feedback: &fb}
	default:
		return
	}
	h.broadcast(ev.FrameID, msg)
}

func (h *Host) broadcast(frameID string, msg outbound) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("web: marshal %s: %v", msg.Type, err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients[frameID]))
	for c := range h.clients[frameID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.enqueue(data)
	}
}

func (h *Host) attach(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := c.frame.ID()
	if !h.mounted[id] {
		return false
	}
	set, ok := h.clients[id]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[id] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Host) detach(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := c.frame.ID()
	if set, ok := h.clients[id]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, id)
		}
	}
}
