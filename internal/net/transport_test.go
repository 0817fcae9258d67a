package net

import (
	"context"
	"errors"
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ShapeBoard/internal/state"
)

func testBoard(base int64) *state.Board {
	now := time.UnixMilli(base)
	return state.NewBoard(state.Options{
		Rand: rand.New(rand.NewSource(base)),
		Now:  func() time.Time { return now },
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func join(t *testing.T, ctx context.Context, link string, board *state.Board) *Client {
	t.Helper()
	c, err := Dial(ctx, link)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	board.SetOnLocalOp(func(op state.Op) {
		if err := c.Send(op); err != nil {
			t.Errorf("Send: %v", err)
		}
	})
	go c.Run(ctx, board)
	return c
}

func TestHubSyncsPeers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host := testBoard(1_000_000)
	hub := NewHub(host)
	host.SetOnLocalOp(hub.BroadcastLocal)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()
	link := "ws" + strings.TrimPrefix(srv.URL, "http") + WebsocketPath

	first := host.CreateShape(10, 10)

	alice := testBoard(2_000_000)
	join(t, ctx, link, alice)
	eventually(t, "hello replay", func() bool { return len(alice.Shapes()) == 1 })

	bob := testBoard(3_000_000)
	join(t, ctx, link, bob)
	eventually(t, "second peer replay", func() bool { return len(bob.Shapes()) == 1 })
	eventually(t, "both peers registered", func() bool { return hub.PeerCount() == 2 })

	second := alice.CreateShape(50, 50)
	eventually(t, "host receives peer shape", func() bool { return len(host.Shapes()) == 2 })
	eventually(t, "relay to other peer", func() bool { return len(bob.Shapes()) == 2 })

	bob.ClickShape(first.ID)
	bob.ClickShape(second.ID)
	for name, b := range map[string]*state.Board{"host": host, "alice": alice} {
		eventually(t, name+" receives connector", func() bool { return len(b.Connectors()) == 1 })
	}

	host.BeginDrag(first.ID)
	host.Drop(300, 200)
	eventually(t, "move reaches peers", func() bool {
		a, _ := alice.Shape(first.ID)
		b, _ := bob.Shape(first.ID)
		return a.Pos == (state.Point{X: 300, Y: 200}) && b.Pos == a.Pos
	})
	line := alice.Snapshot().Lines[0]
	if line.ID != "1000000-2000000" || line.Start != (state.Point{X: 300, Y: 200}) {
		t.Errorf("alice line = %+v", line)
	}
}

func TestClientRunStopsOnCancel(t *testing.T) {
	hub := NewHub(testBoard(1))
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+WebsocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, testBoard(2)) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWebsocketURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"shapeboard://192.168.1.4:8888", "ws://192.168.1.4:8888/ws"},
		{"shapeboard://192.168.1.4:8888/", "ws://192.168.1.4:8888/ws"},
		{"10.0.0.2:9000", "ws://10.0.0.2:9000/ws"},
		{"ws://example:1/ws", "ws://example:1/ws"},
	}
	for _, tt := range tests {
		got, err := WebsocketURL(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("WebsocketURL(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	for _, bad := range []string{"", "shapeboard://", "nohost", ":8888"} {
		if _, err := WebsocketURL(bad); !errors.Is(err, ErrBadLink) {
			t.Errorf("WebsocketURL(%q) err = %v", bad, err)
		}
	}
}

func TestShareLink(t *testing.T) {
	if got := ShareLink("10.1.2.3", 8888); got != "shapeboard://10.1.2.3:8888" {
		t.Errorf("ShareLink = %q", got)
	}
	url, err := WebsocketURL(ShareLink("10.1.2.3", 8888))
	if err != nil || url != "ws://10.1.2.3:8888/ws" {
		t.Errorf("round trip = %q, %v", url, err)
	}
}

func TestClientSyncAppliesHello(t *testing.T) {
	host := testBoard(1_000_000)
	host.CreateShape(1, 1)
	host.CreateShape(2, 2)
	hub := NewHub(host)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	c, err := Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+WebsocketPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer c.Close()

	replica := testBoard(2_000_000)
	n, err := c.Sync(ctx, replica)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n != 2 || len(replica.Shapes()) != 2 {
		t.Errorf("synced %d ops, replica has %d shapes", n, len(replica.Shapes()))
	}
}

func TestHostLinkIsDialable(t *testing.T) {
	link := HostLink(8888)
	if !strings.HasPrefix(link, LinkScheme) {
		t.Fatalf("HostLink = %q", link)
	}
	if _, err := WebsocketURL(link); err != nil {
		t.Errorf("WebsocketURL(%q): %v", link, err)
	}
}
