// Probe is a terminal observer for a running board server. It joins the
// room as a regular client, prints the event stream, and renders a
// member table on exit. Useful to eyeball ordering and fanout behavior
// without opening a browser.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"drawboard/client"
	"drawboard/domain"
	"drawboard/domain/event"
)

type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"ws://localhost:3000/ws"`
	// PROBE_COLOURS enables colorized output for better log readability
	Colours     bool          `envconfig:"PROBE_COLOURS" default:"true"`
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"60s"`
}

type probe struct {
	cfg     Config
	mu      sync.Mutex
	self    domain.Session
	members []domain.Session
	cursors *client.CursorTracker
	counts  map[string]int
}

func main() {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &probe{
		cfg:     cfg,
		cursors: client.NewCursorTracker(),
		counts:  make(map[string]int),
	}

	backoff := client.NewBackoff()
	for {
		if err := p.observe(ctx); err == nil {
			break
		}
		delay, ok := backoff.Next()
		if !ok {
			fmt.Println("Max reconnection attempts reached")
			break
		}
		fmt.Printf("Reconnecting in %s... (attempt %d)\n", delay, backoff.Attempts())
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			p.printSummary()
			return
		}
	}

	p.printSummary()
}

// observe dials the server and consumes events until the context is
// cancelled (returns nil) or the connection drops (returns the error so
// the caller can schedule a retry).
func (p *probe) observe(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.cfg.ServerURL, nil)
	if err != nil {
		fmt.Printf("Dial failed: %v\n", err)
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_ = conn.SetReadDeadline(time.Now().Add(p.cfg.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("Connection lost: %v\n", err)
			return err
		}

		evt, err := event.Decode(data)
		if err != nil {
			fmt.Printf("Undecodable frame: %v\n", err)
			continue
		}
		p.handle(evt)
	}
}

func (p *probe) handle(evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[evt.Kind()]++

	switch e := evt.(type) {
	case event.Init:
		p.self = e.Target
		p.members = e.Members
		p.printf(color.FgGreen, "[init] joined as session %d (%s), %d ops in history, %d users online",
			e.Target.ID, e.Target.Color, len(e.History), len(e.Members))
	case event.Draw:
		p.printf(color.FgCyan, "[draw] user %d %s stroke (%.0f,%.0f)->(%.0f,%.0f) %s",
			e.Op.UserID, e.Op.Tool, e.Op.X0, e.Op.Y0, e.Op.X1, e.Op.Y1, e.Op.Color)
	case event.Undo:
		p.printf(color.FgYellow, "[undo] user %d removed operation %s", e.Author, e.OpID)
	case event.Redo:
		p.printf(color.FgYellow, "[redo] user %d restored operation %s", e.Author, e.Op.ID)
	case event.Clear:
		p.printf(color.FgRed, "[clear] user %d wiped the canvas", e.Author)
	case event.Cursor:
		p.cursors.Update(e.Author, e.X, e.Y, e.Color)
	case event.Joined:
		p.members = e.Members
		p.printf(color.FgGreen, "[user-joined] %s (session %d), %d users online",
			e.User.Username, e.User.ID, len(e.Members))
	case event.Left:
		p.members = e.Members
		p.cursors.Remove(e.User)
		p.printf(color.FgMagenta, "[user-left] session %d, %d users online", e.User, len(e.Members))
	}
}

func (p *probe) printf(c color.Color, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if p.cfg.Colours {
		line = c.Render(line)
	}
	fmt.Println(line)
}

func (p *probe) printSummary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Println()
	if p.self.ID != 0 {
		fmt.Printf("Observed as session %d (%s)\n", p.self.ID, p.self.Color)
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Session", "Username", "Color", "Cursor"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	active := p.cursors.Active()
	for _, m := range p.members {
		cursor := "-"
		if c, ok := active[m.ID]; ok {
			cursor = fmt.Sprintf("(%.0f,%.0f)", c.X, c.Y)
		}
		table.Append([]string{
			fmt.Sprintf("%d", m.ID), m.Username, m.Color, cursor,
		})
	}
	table.Render()

	fmt.Println()
	for kind, n := range p.counts {
		fmt.Printf("%-12s %d\n", kind, n)
	}
}
