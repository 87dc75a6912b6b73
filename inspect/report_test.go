package inspect

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpotapov/go-treebuilder"
)

func TestBuildReport(t *testing.T) {
	tests := []struct {
		name    string
		content string
		opts    Options
		mode    string
		dump    string
		diags   int
	}{
		{
			name:    "document",
			content: `<!DOCTYPE html><p>x`,
			mode:    "no-quirks",
			dump:    "| <!DOCTYPE html>\n| <html>\n|   <head>\n|   <body>\n|     <p>\n|       \"x\"\n",
		},
		{
			name:    "quirks with diagnostics",
			content: `<p>x</div>`,
			mode:    "quirks",
			diags:   2,
		},
		{
			name:    "filtered diagnostics",
			content: `<p>x</div>`,
			opts:    Options{Filter: `Message contains "div"`},
			mode:    "quirks",
			diags:   1,
		},
		{
			name:    "fragment",
			content: `<td>x`,
			opts:    Options{Context: "tr"},
			dump:    "| <td>\n|   \"x\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := BuildReport(context.Background(), "test.html", []byte(tt.content), treebuilder.Config{}, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "test.html", r.File)
			assert.Equal(t, tt.mode, r.Mode)
			if tt.dump != "" {
				assert.Equal(t, tt.dump, r.Dump)
			}
			assert.Len(t, r.Diagnostics, tt.diags)
			assert.Empty(t, r.Error)
		})
	}
}

func TestBuildReportBadFilter(t *testing.T) {
	_, err := BuildReport(context.Background(), "x.html", nil, treebuilder.Config{}, Options{Filter: "Line +"})
	assert.Error(t, err)
}

func TestReportString(t *testing.T) {
	r := &Report{
		File:        "a.html",
		Mode:        "quirks",
		Dump:        "| <html>\n",
		Diagnostics: []string{"1:1: error: x"},
	}
	assert.Equal(t, "# a.html (quirks)\n| <html>\n# diagnostics\n1:1: error: x\n", r.String())
}

func TestWatchableFilename(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"index.html", true},
		{".index.html.swp", false},
		{"index.html~", false},
		{"#index.html#", false},
		{"dir/#page.html#", false},
		{"dir/page.htm", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, watchableFilename(tt.path))
		})
	}
}

func TestHandlerWebsocketReportError(t *testing.T) {
	h := newTestHandler()
	errs := make(chan error, 1)
	h.OnError = func(_ *http.Request, err error) {
		errs <- err
	}
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/index.html", nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, _, err = ws.ReadMessage()
	require.NoError(t, err)

	// A filter that does not compile ends the stream and closes the connection.
	require.NoError(t, ws.WriteJSON(Options{Filter: "Line +"}))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "build report")
	case <-time.After(5 * time.Second):
		t.Fatal("OnError was not called")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- Watch(ctx, dir, slog.New(slog.NewTextHandler(io.Discard, nil)), func(p string) {
			changed <- filepath.Base(p)
		})
	}()

	// Keep touching the files, slower than the debounce interval, until the
	// watcher is up and reports one.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(4 * DebounceInterval)
	defer tick.Stop()
	for {
		select {
		case name := <-changed:
			assert.Equal(t, "index.html", name)
			cancel()
			require.NoError(t, <-watchErr)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(filepath.Join(dir, "style.css"), []byte("p {}"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "#index.html#"), []byte("<p>"), 0o644))
			require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>"), 0o644))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
}

func TestCleanPath(t *testing.T) {
	assert.Equal(t, "/", cleanPath(""))
	assert.Equal(t, "/a/b", cleanPath("a/../a/b"))
	assert.Equal(t, "/a/", cleanPath("/a/"))
}

func newTestHandler() *Handler {
	return &Handler{
		FileSystem: fstest.MapFS{
			"index.html":     {Data: []byte(`<!DOCTYPE html><p>hello`)},
			"style.css":      {Data: []byte(`p {}`)},
			"sub/frag.html":  {Data: []byte(`<td>x`)},
			"sub/other.html": {Data: []byte(`<p>`)},
		},
	}
}

func TestHandler(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		url    string
		status int
		body   string
	}{
		{"/index.html", http.StatusOK, "# index.html (no-quirks)\n"},
		{"/sub/frag.html?context=tr", http.StatusOK, "| <td>\n|   \"x\"\n"},
		{"/style.css", http.StatusOK, "p {}"},
		{"/missing.html", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestHandlerWebsocket(t *testing.T) {
	h := newTestHandler()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/sub/frag.html", nil)
	require.NoError(t, err)
	defer ws.Close()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	read := func() Report {
		t.Helper()
		_, r, err := ws.NextReader()
		require.NoError(t, err)
		var rep Report
		require.NoError(t, json.NewDecoder(r).Decode(&rep))
		return rep
	}

	// Parsed as a document on connect.
	rep := read()
	assert.Equal(t, "sub/frag.html", rep.File)
	assert.Contains(t, rep.Dump, "| <html>")

	// New options trigger a new report.
	require.NoError(t, ws.WriteJSON(Options{Context: "tr"}))
	rep = read()
	assert.Equal(t, "| <td>\n|   \"x\"\n", rep.Dump)

	// So does a change notification, with the options kept.
	h.Notify("sub/frag.html")
	rep = read()
	assert.Equal(t, "| <td>\n|   \"x\"\n", rep.Dump)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_, _, err = ws.ReadMessage()
	assert.Error(t, err)
}
