// Package traceserver streams a running activation's StepRecords to
// connected websocket clients, for a live external trace viewer.
package traceserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mfmvm/elementvm/vm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireStep is the JSON shape sent to clients for one executed
// instruction.
type wireStep struct {
	IP         int    `json:"ip"`
	Opcode     string `json:"opcode"`
	StackDepth int    `json:"stack_depth"`
	Symmetry   string `json:"symmetry"`
}

// Broadcaster fans out StepRecords to every connected websocket client.
// Slow or stalled clients are dropped rather than allowed to back up
// the broadcast.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan wireStep
}

// NewBroadcaster returns an empty Broadcaster ready to accept
// connections and publish steps.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[*client]struct{})}
}

// Publish implements vm's per-step hook shape: call it once per
// StepRecord to fan it out to all current subscribers.
func (b *Broadcaster) Publish(rec vm.StepRecord) {
	msg := wireStep{
		IP:         rec.IP,
		Opcode:     rec.Op.String(),
		StackDepth: rec.StackDepth,
		Symmetry:   rec.Symmetry.String(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		select {
		case c.send <- msg:
		default:
			// Client isn't draining fast enough; drop it rather than
			// block the simulation loop.
			b.removeLocked(c)
		}
	}
}

func (b *Broadcaster) removeLocked(c *client) {
	if _, ok := b.clients[c]; !ok {
		return
	}
	delete(b.clients, c)
	close(c.send)
	_ = c.conn.Close()
}

// ServeHTTP upgrades the request to a websocket and registers it as a
// subscriber until the connection closes.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("traceserver: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan wireStep, 256)}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()

	go b.writePump(c)
	b.readPump(c)
}

func (b *Broadcaster) writePump(c *client) {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump drains and discards client messages purely to detect
// disconnects (this is a one-way broadcast protocol).
func (b *Broadcaster) readPump(c *client) {
	defer func() {
		b.mu.Lock()
		b.removeLocked(c)
		b.mu.Unlock()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// MarshalTrace renders a full captured Trace as a JSON array, for a
// one-shot HTTP fetch rather than a live stream.
func MarshalTrace(t *vm.Trace) ([]byte, error) {
	steps := make([]wireStep, len(t.Records))
	for i, rec := range t.Records {
		steps[i] = wireStep{
			IP:         rec.IP,
			Opcode:     rec.Op.String(),
			StackDepth: rec.StackDepth,
			Symmetry:   rec.Symmetry.String(),
		}
	}
	return json.Marshal(steps)
}
