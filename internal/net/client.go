package net

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"ShapeBoard/internal/state"
)

var ErrProtocol = errors.New("protocol error")

// Client is a joined peer's connection to the host hub.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Dial connects to a host given a share link, ws:// URL or host:port.
func Dial(ctx context.Context, link string) (*Client, error) {
	url, err := WebsocketURL(link)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	log.Printf("[CLIENT] Connected to %s as %s", url, conn.LocalAddr())
	return &Client{conn: conn}, nil
}

func (c *Client) LocalAddr() string {
	return c.conn.LocalAddr().String()
}

// Send pushes one local op to the host. It is the board's local-op hook on
// a client.
func (c *Client) Send(op state.Op) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.WriteJSON(Message{Type: MsgOp, Op: &op}); err != nil {
		return fmt.Errorf("failed to send %s: %w", op.Type, err)
	}
	return nil
}

// Sync waits for the host's hello and applies the board history it carries.
// It returns the number of ops that changed the board.
func (c *Client) Sync(ctx context.Context, board Replica) (int, error) {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	var msg Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("failed to read hello: %w", err)
	}
	if msg.Type != MsgHello {
		return 0, fmt.Errorf("%w: got %q before hello", ErrProtocol, msg.Type)
	}
	applied := applyAll(board, msg.Ops)
	log.Printf("[CLIENT] Synced %d of %d ops from host", applied, len(msg.Ops))
	return applied, nil
}

func applyAll(board Replica, ops []state.Op) int {
	applied := 0
	for _, op := range ops {
		if board.Apply(op) {
			applied++
		}
	}
	return applied
}

// Run applies every op the host sends until the connection closes or ctx is
// done.
func (c *Client) Run(ctx context.Context, board Replica) error {
	stop := context.AfterFunc(ctx, func() { c.conn.Close() })
	defer stop()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("disconnected from host: %w", err)
		}
		switch msg.Type {
		case MsgHello:
			applied := applyAll(board, msg.Ops)
			log.Printf("[CLIENT] Synced %d of %d ops from host", applied, len(msg.Ops))
		case MsgOp:
			if msg.Op != nil {
				board.Apply(*msg.Op)
			}
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
