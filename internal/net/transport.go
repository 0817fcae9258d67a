package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ShapeBoard/internal/state"
)

const (
	WebsocketPath = "/ws"

	writeWait  = 10 * time.Second
	sendBuffer = 64
)

const (
	MsgHello = "hello"
	MsgOp    = "op"
)

// Message is one websocket text frame. A hello carries the full history of
// the host board; every later frame carries one op.
type Message struct {
	Type string     `json:"type"`
	Op   *state.Op  `json:"op,omitempty"`
	Ops  []state.Op `json:"ops,omitempty"`
}

// Replica is the part of a board the transport needs.
type Replica interface {
	Apply(op state.Op) bool
	History() []state.Op
}

type peer struct {
	conn *websocket.Conn
	send chan Message
}

// Hub is run by the host. It greets every peer with the board history and
// relays ops from one peer to all others.
type Hub struct {
	board    Replica
	upgrader websocket.Upgrader
	peers    map[*peer]bool
	mu       sync.RWMutex
}

func NewHub(board Replica) *Hub {
	return &Hub{
		board: board,
		peers: make(map[*peer]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler routes WebsocketPath to the hub.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(WebsocketPath, h)
	return mux
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[HUB] Upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	p := &peer{conn: conn, send: make(chan Message, sendBuffer)}

	// History is taken under the hub lock so no broadcast slips between the
	// hello and the peer joining.
	h.mu.Lock()
	p.send <- Message{Type: MsgHello, Ops: h.board.History()}
	h.peers[p] = true
	h.mu.Unlock()
	log.Printf("[HUB] Peer connected from %s", conn.RemoteAddr())

	go p.writeLoop()
	h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer h.remove(p)
	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[HUB] Peer %s: %v", p.conn.RemoteAddr(), err)
			}
			return
		}
		if msg.Type != MsgOp || msg.Op == nil {
			continue
		}
		if h.board.Apply(*msg.Op) {
			h.Broadcast(*msg.Op, p)
		}
	}
}

func (p *peer) writeLoop() {
	defer p.conn.Close()
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteJSON(msg); err != nil {
			log.Printf("[HUB] Write to %s failed: %v", p.conn.RemoteAddr(), err)
			return
		}
	}
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// Broadcast sends op to every peer but exclude. A peer that cannot keep up
// is dropped.
func (h *Hub) Broadcast(op state.Op, exclude *peer) {
	var slow []*peer
	h.mu.RLock()
	for p := range h.peers {
		if p == exclude {
			continue
		}
		select {
		case p.send <- Message{Type: MsgOp, Op: &op}:
		default:
			slow = append(slow, p)
		}
	}
	h.mu.RUnlock()
	for _, p := range slow {
		log.Printf("[HUB] Dropping slow peer %s", p.conn.RemoteAddr())
		h.remove(p)
	}
}

// BroadcastLocal is the board's local-op hook on the host.
func (h *Hub) BroadcastLocal(op state.Op) {
	h.Broadcast(op, nil)
}

func (h *Hub) remove(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.peers[p] {
		delete(h.peers, p)
		close(p.send)
		log.Printf("[HUB] Peer %s removed", p.conn.RemoteAddr())
	}
}

func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every peer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		delete(h.peers, p)
		close(p.send)
	}
}

// Serve runs the hub on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	log.Printf("[HUB] Listening on %s", addr)

	select {
	case err := <-errc:
		return fmt.Errorf("hub server: %w", err)
	case <-ctx.Done():
	}
	h.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("hub shutdown: %w", err)
	}
	return nil
}
