// Package inspect serves parse reports of HTML files over HTTP. A websocket
// client receives a fresh report whenever the file changes or the client
// sends new Options.
package inspect

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dpotapov/go-treebuilder"
)

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

// htmlExts are the extensions of the files that get a report. Anything
// else is served as is.
var htmlExts = []string{".html", ".htm", ".xhtml"}

type Handler struct {
	// FileSystem to read HTML files from.
	FileSystem fs.FS

	// Config is the base tree builder configuration. Its OnDiagnostic and
	// OnDocumentMode callbacks are replaced for every report.
	Config treebuilder.Config

	// OnError is a callback that is called when an error occurs while serving a report.
	OnError func(*http.Request, error)

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	// logger is a private logger instance that is used to log internal events.
	logger *slog.Logger

	mu sync.Mutex
	// subscribers are the websocket connections per file path.
	subscribers map[string]map[chan struct{}]struct{}
}

// ServeHTTP implements the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.init.Do(func() {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		if h.Logger != nil {
			h.logger = h.Logger
		}
	})

	if err := h.handleRequest(w, r); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		h.logger.Error("Serve HTTP request", "url", r.URL.Redacted(), "error", err)

		if h.OnError != nil {
			h.OnError(r, err)
		}
	}
}

// Notify tells the websocket clients watching fsPath that it changed.
// fsPath is relative to FileSystem.
func (h *Handler) Notify(fsPath string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.subscribers[path.Clean(fsPath)] {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}

func (h *Handler) subscribe(fsPath string) (chan struct{}, func()) {
	c := make(chan struct{}, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers == nil {
		h.subscribers = make(map[string]map[chan struct{}]struct{})
	}
	if h.subscribers[fsPath] == nil {
		h.subscribers[fsPath] = make(map[chan struct{}]struct{})
	}
	h.subscribers[fsPath][c] = struct{}{}
	return c, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[fsPath], c)
		if len(h.subscribers[fsPath]) == 0 {
			delete(h.subscribers, fsPath)
		}
	}
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) error {
	fsPath := strings.Trim(cleanPath(r.URL.Path), "/")
	if fsPath == "" {
		fsPath = "."
	}

	fi, err := fs.Stat(h.FileSystem, fsPath)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", fsPath, err)
	}

	if fi.IsDir() || !isHTMLFile(fsPath) {
		http.FileServerFS(h.FileSystem).ServeHTTP(w, r)
		return nil
	}

	q := r.URL.Query()
	opts := Options{
		Context:   q.Get("context"),
		Scripting: q.Get("scripting") != "",
		Filter:    q.Get("filter"),
	}
	return h.serveReport(w, r, fsPath, opts)
}

func (h *Handler) report(r *http.Request, fsPath string, opts Options) (*Report, error) {
	content, err := fs.ReadFile(h.FileSystem, fsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fsPath, err)
	}
	cfg := h.Config
	cfg.Logger = h.logger
	return BuildReport(r.Context(), fsPath, content, cfg, opts)
}

func (h *Handler) serveReport(w http.ResponseWriter, r *http.Request, fsPath string, opts Options) error {
	if !websocket.IsWebSocketUpgrade(r) {
		rep, err := h.report(r, fsPath, opts)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, err = io.WriteString(w, rep.String())
		return err
	}

	ws, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	// Send a report on:
	// 1. connection
	// 2. each incoming websocket message, which carries new Options
	// 3. whenever the file changes
	// Stop when the websocket connection is closed.

	rc, unsubscribe := h.subscribe(fsPath) // report event channel
	defer unsubscribe()
	rc <- struct{}{}

	var optsMu sync.Mutex
	done := make(chan error, 1) // the reader may finish after the report loop has returned

	go func() {
		for {
			var next Options
			if err := ws.ReadJSON(&next); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					err = nil
				} else {
					err = fmt.Errorf("read websocket message: %w", err)
				}
				done <- err // stop report loop
				return
			}
			optsMu.Lock()
			opts = next
			optsMu.Unlock()

			select {
			case rc <- struct{}{}:
			default: // If rc is already pending, don't block
			}
		}
	}()

	for {
		select {
		case <-rc:
			optsMu.Lock()
			current := opts
			optsMu.Unlock()

			rep, err := h.report(r, fsPath, current)
			if err != nil {
				return fmt.Errorf("build report: %w", err)
			}

			w, err := ws.NextWriter(websocket.TextMessage)
			if err != nil {
				return fmt.Errorf("get websocket writer: %w", err)
			}
			if err := json.NewEncoder(w).Encode(rep); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("close websocket writer: %w", err)
			}
		case err := <-done:
			return err
		}
	}
}

func isHTMLFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range htmlExts {
		if ext == e {
			return true
		}
	}
	return false
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	// path.Clean removes trailing slash except for root;
	// put the trailing slash back if necessary.
	if p[len(p)-1] == '/' && np != "/" {
		// Fast path for common case of p being the string we want:
		if len(p) == len(np)+1 && strings.HasPrefix(p, np) {
			np = p
		} else {
			np += "/"
		}
	}
	return np
}
