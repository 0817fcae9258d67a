package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"ShapeBoard/internal/config"
	"ShapeBoard/internal/export"
	boardnet "ShapeBoard/internal/net"
	"ShapeBoard/internal/state"
	"ShapeBoard/internal/ui"
)

const appTitle = "ShapeBoard"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.yaml")
	port := flag.Int("port", 0, "port to host the board on (overrides config)")
	join := flag.String("join", "", "share link or host:port of a board to join")
	discover := flag.Bool("discover", false, "join the first board found on the local network")
	verbose := flag.Bool("v", false, "verbose logging")
	exportPath := flag.String("export", "", "with -join or -discover: save the shared board to this .pdf or .png file and exit")
	flag.Parse()

	// Joining by link is also accepted as the first argument, so the
	// shapeboard:// scheme can be registered as a URL handler.
	if *join == "" && flag.NArg() > 0 {
		*join = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	closer, err := setupLogging(cfg)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closer.Close()

	board := state.NewBoard(cfg.BoardOptions())
	board.Debug = cfg.Verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *exportPath != "" {
		if *join == "" && !*discover {
			log.Fatal("-export needs -join or -discover")
		}
		if err := exportRemote(ctx, *join, *exportPath, cfg, board); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		return
	}

	// The app has to exist before any goroutine reports status through it.
	myApp := app.New()
	surface := ui.NewCanvasWidget(board)

	if *join != "" || *discover {
		runClient(ctx, cfg, *join, myApp, surface)
	} else {
		runHost(ctx, cfg, myApp, surface)
	}
}

func setupLogging(cfg *config.Config) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if cfg.LogFile == "" {
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	return f, nil
}

func windowSize(cfg *config.Config) fyne.Size {
	return fyne.NewSize(cfg.Window.Width, cfg.Window.Height)
}

func resolveTarget(ctx context.Context, link string) (string, error) {
	if link != "" {
		return link, nil
	}
	return boardnet.Browse(ctx, 3*time.Second)
}

// exportRemote joins a board without opening a window, waits for its
// history and writes it out.
func exportRemote(ctx context.Context, link, path string, cfg *config.Config, board *state.Board) error {
	target, err := resolveTarget(ctx, link)
	if err != nil {
		return err
	}
	c, err := boardnet.Dial(ctx, target)
	if err != nil {
		return err
	}
	defer c.Close()

	syncCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := c.Sync(syncCtx, board); err != nil {
		return err
	}
	snap := board.Snapshot()
	if err := export.File(path, snap, int(cfg.Window.Width), int(cfg.Window.Height)); err != nil {
		return err
	}
	log.Printf("Exported %d shapes and %d connectors to %s", len(snap.Shapes), len(board.Connectors()), path)
	return nil
}

func runHost(ctx context.Context, cfg *config.Config, myApp fyne.App, surface *ui.CanvasWidget) {
	log.Println("Starting as HOST")
	board := surface.Board()
	hub := boardnet.NewHub(surface.Replica())
	board.SetOnLocalOp(hub.BroadcastLocal)

	shareLink := boardnet.HostLink(cfg.Port)
	log.Printf("Share link: %s", shareLink)
	myWindow := ui.NewMainWindow(myApp, appTitle, windowSize(cfg), shareLink, surface)

	go func() {
		if err := boardnet.Serve(ctx, fmt.Sprintf(":%d", cfg.Port), hub); err != nil {
			log.Printf("Sharing disabled: %v", err)
			surface.SetStatus("Sharing unavailable: " + err.Error())
		}
	}()

	if cfg.Advertise {
		server, err := boardnet.Advertise(cfg.Port)
		if err != nil {
			log.Printf("mDNS advertise failed: %v", err)
		} else {
			defer server.Shutdown()
		}
	}

	myWindow.ShowAndRun()
}

func runClient(ctx context.Context, cfg *config.Config, link string, myApp fyne.App, surface *ui.CanvasWidget) {
	log.Println("Starting as CLIENT")
	board := surface.Board()
	myWindow := ui.NewMainWindow(myApp, appTitle, windowSize(cfg), "", surface)

	var client atomic.Pointer[boardnet.Client]
	board.SetOnLocalOp(func(op state.Op) {
		c := client.Load()
		if c == nil {
			log.Printf("Not connected, %s kept local", op.Type)
			return
		}
		if err := c.Send(op); err != nil {
			log.Printf("Failed to send: %v", err)
		}
	})

	go func() {
		if link == "" {
			surface.SetStatus("Looking for a board on the local network...")
		}
		target, err := resolveTarget(ctx, link)
		if err != nil {
			surface.SetStatus(fmt.Sprintf("Discovery failed: %v", err))
			return
		}

		c, err := boardnet.Dial(ctx, target)
		if err != nil {
			surface.SetStatus(fmt.Sprintf("Connection failed: %v", err))
			return
		}
		defer c.Close()
		client.Store(c)
		surface.SetStatus("Connected to host as " + c.LocalAddr())

		if err := c.Run(ctx, surface.Replica()); err != nil && ctx.Err() == nil {
			client.Store(nil)
			surface.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
		}
	}()

	myWindow.ShowAndRun()
}
