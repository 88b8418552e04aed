package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cespare/xxhash"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

const DefaultAddr = "localhost:8090"

//go:embed index.html
var indexHTML string

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

// Backend streams frames to browsers over websockets and takes keypad input
// back from them. The interpreter loop only sees the queued events returned
// by Update.
type Backend struct {
	addr     string
	config   backend.BackendConfig
	hub      *hub
	server   *http.Server
	listener net.Listener

	mu      sync.Mutex
	keys    [16]bool
	pending []backend.InputEvent

	lastHash   uint64
	sentFrames int
}

// New creates a web backend listening on addr. An empty addr serves
// nothing by itself; Handler can still be mounted on another server.
func New(addr string) *Backend {
	return &Backend{
		addr: addr,
		hub:  newHub(),
	}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config
	go b.hub.run()

	if b.addr == "" {
		return nil
	}

	listener, err := net.Listen("tcp", b.addr)
	if err != nil {
		b.hub.stop()
		return fmt.Errorf("failed to listen on %s: %w", b.addr, err)
	}
	b.listener = listener
	b.server = &http.Server{
		Handler:           b.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := b.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Web server stopped", "error", err)
		}
	}()

	slog.Info("Web backend listening", "url", "http://"+listener.Addr().String())
	return nil
}

// Addr returns the address the backend is listening on, once initialized.
func (b *Backend) Addr() string {
	if b.listener == nil {
		return ""
	}
	return b.listener.Addr().String()
}

// Handler serves the player page on / and the websocket on /ws.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", b.serveIndex)
	mux.HandleFunc("/ws", b.serveWS)
	return mux
}

type pageData struct {
	Title   string
	Width   int
	Height  int
	Keys    map[string]int
	Actions map[string]int
}

func (b *Backend) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	title := b.config.Title
	if title == "" {
		title = "CHIP-8"
	}

	keys, actions := browserKeyMap()
	data := pageData{
		Title:   title,
		Width:   video.FramebufferWidth,
		Height:  video.FramebufferHeight,
		Keys:    keys,
		Actions: actions,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		slog.Error("Failed to render web page", "error", err)
	}
}

func (b *Backend) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:     b.hub,
		backend: b,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
	if !b.hub.join(c) {
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// browserKeyMap translates the default key map to KeyboardEvent.key names.
// Only actions that make sense from a browser are exposed.
func browserKeyMap() (keys, actions map[string]int) {
	keys = make(map[string]int)
	actions = make(map[string]int)

	for name, act := range input.DefaultKeyMap {
		if name == "Space" {
			name = " "
		}

		if k, ok := action.KeypadIndex(act); ok {
			keys[name] = int(k)
			continue
		}

		switch act {
		case action.EmulatorPauseToggle, action.EmulatorStepFrame,
			action.EmulatorStepInstruction, action.EmulatorReset:
			actions[name] = int(act)
		}
	}

	return keys, actions
}

func (b *Backend) keyEvent(k uint8, down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	act := action.KeypadAction(k)
	switch {
	case down && b.keys[k]:
		b.pending = append(b.pending, backend.InputEvent{Action: act, Type: event.Hold})
	case down:
		b.keys[k] = true
		b.pending = append(b.pending, backend.InputEvent{Action: act, Type: event.Press})
	case b.keys[k]:
		b.keys[k] = false
		b.pending = append(b.pending, backend.InputEvent{Action: act, Type: event.Release})
	}
}

func (b *Backend) actionEvent(act action.Action) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, backend.InputEvent{Action: act, Type: event.Press})
}

// Keys returns the keypad state as reported by the browsers.
func (b *Backend) Keys() [16]bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.keys
}

// Update publishes the frame if it changed and returns the input received
// since the last call.
func (b *Backend) Update(frame *video.FrameBuffer) ([]backend.InputEvent, error) {
	packed := frame.Pack()
	hash := xxhash.Sum64(packed)
	if b.sentFrames == 0 || hash != b.lastHash {
		b.lastHash = hash
		b.sentFrames++
		b.hub.publish(append([]byte{MsgFrame}, packed...))
	}

	b.mu.Lock()
	events := b.pending
	b.pending = nil
	b.mu.Unlock()

	return events, nil
}

// SentFrames returns how many distinct frames were published.
func (b *Backend) SentFrames() int {
	return b.sentFrames
}

func (b *Backend) Cleanup() error {
	slog.Info("Cleaning up web backend")

	var err error
	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err = b.server.Shutdown(ctx)
	}

	select {
	case <-b.hub.done:
	default:
		b.hub.stop()
	}

	return err
}

var _ backend.Backend = (*Backend)(nil)
