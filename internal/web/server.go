package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"

	"lstree/internal/logging"
	"lstree/internal/model"
	"lstree/internal/ratio"
	"lstree/internal/report"
	"lstree/internal/walk"
)

//go:embed static/*
var staticFS embed.FS

//go:embed help.md
var helpMD string

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// lstree serves localhost only
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Options configure the web server.
type Options struct {
	Port      string       // e.g. "8080"
	Root      string       // Default path when a request names none
	Walk      walk.Options // Defaults for every walk; order may be overridden per request
	CacheSize int          // Entries kept by the /api/ls cache
}

// Server serves the lstree web UI and API.
type Server struct {
	opts  Options
	cache *lru.Cache[string, lsCacheEntry]
	mux   *http.ServeMux
}

type lsCacheEntry struct {
	modTime time.Time
	entries []LsEntry
}

// LsEntry is one row of /api/ls.
type LsEntry struct {
	Name    string `json:"Name"`
	IsDir   bool   `json:"IsDir"`
	Size    int64  `json:"Size"`
	Mode    string `json:"Mode"`
	ModTime string `json:"ModTime"`
}

// NewServer builds the handler tree.
func NewServer(opts Options) (*Server, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Root == "" {
		opts.Root = "."
	}
	cache, err := lru.New[string, lsCacheEntry](opts.CacheSize)
	if err != nil {
		return nil, err
	}

	s := &Server{opts: opts, cache: cache, mux: http.NewServeMux()}

	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	s.mux.Handle("/", http.FileServer(http.FS(subFS)))

	// API Endpoints
	s.mux.HandleFunc("/api/walk", s.handleWalk)
	s.mux.HandleFunc("/api/ls", s.handleLs)
	s.mux.HandleFunc("/api/preview", s.handlePreview)
	s.mux.HandleFunc("/api/rule3", handleRule3)
	s.mux.HandleFunc("/api/help", handleHelp)
	s.mux.HandleFunc("/ws/walk", s.handleWalkWS)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// StartServer serves on opts.Port until the listener fails.
func StartServer(opts Options) error {
	s, err := NewServer(opts)
	if err != nil {
		return err
	}
	port := strings.TrimPrefix(opts.Port, ":")
	if port == "" {
		port = "8080"
	}
	logging.Logf("web", "listening on :%s", port)
	return http.ListenAndServe(":"+port, s)
}

// walker builds a walker for the request's path, order and depth
// parameters, returning the resolved path and options with it.
func (s *Server) walker(r *http.Request) (*walk.Walker, string, walk.Options, error) {
	q := r.URL.Query()
	path := strings.TrimSpace(q.Get("path"))
	if path == "" {
		path = s.opts.Root
	}
	path = model.ExpandTilde(path)

	opts := s.opts.Walk
	if raw := q.Get("order"); raw != "" {
		order, err := walk.ParseOrder(raw)
		if err != nil {
			return nil, "", opts, err
		}
		opts.Order = order
	}
	if raw := q.Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil || depth < 0 {
			return nil, "", opts, errors.New("depth must be a non-negative integer")
		}
		opts.MaxDepth = depth
	}
	return walk.NewLocal(path, opts), path, opts, nil
}

func (s *Server) handleWalk(w http.ResponseWriter, r *http.Request) {
	wk, path, opts, err := s.walker(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := report.FormatJSON
	if raw := r.URL.Query().Get("format"); raw != "" {
		if format, err = report.ParseFormat(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	listings, err := walk.Collect(r.Context(), wk)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	doc := report.NewDocument(path, opts.Order.String(), listings)
	if format == report.FormatCBOR {
		w.Header().Set("Content-Type", "application/cbor")
		if err := report.Encode(w, format, doc); err != nil {
			logging.Logf("web", "encode response: %v", err)
		}
		return
	}
	writeJSON(w, doc)
}

func (s *Server) handleLs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	path = model.ExpandTilde(path)

	info, err := os.Stat(path)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if !info.IsDir() {
		http.Error(w, path+": "+walk.ErrNotDir.Error(), http.StatusBadRequest)
		return
	}

	if cached, ok := s.cache.Get(path); ok && cached.modTime.Equal(info.ModTime()) {
		w.Header().Set("X-Cache", "hit")
		writeJSON(w, cached.entries)
		return
	}

	files, err := os.ReadDir(path)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	dir := walk.OSFS(path)
	entries := []LsEntry{}
	for _, f := range files {
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries = append(entries, LsEntry{
			Name:    f.Name(),
			IsDir:   walk.EntryIsDir(dir, ".", f, s.opts.Walk.FollowSymlinks),
			Size:    info.Size(),
			Mode:    info.Mode().String(),
			ModTime: info.ModTime().Format("Jan 02 15:04"),
		})
	}
	s.cache.Add(path, lsCacheEntry{modTime: info.ModTime(), entries: entries})

	w.Header().Set("X-Cache", "miss")
	writeJSON(w, entries)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	lines := 20
	if raw := r.URL.Query().Get("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid line count", http.StatusBadRequest)
			return
		}
		lines = n
	}
	writeJSON(w, model.PreviewFile(path, lines))
}

func handleRule3(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mult1, mult2, div, err := ratio.ParseArgs([]string{q.Get("mult1"), q.Get("mult2"), q.Get("div")})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := ratio.RuleOfThree(mult1, mult2, div)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, struct {
		Mult1  float64 `json:"mult1"`
		Mult2  float64 `json:"mult2"`
		Div    float64 `json:"div"`
		Result float64 `json:"result"`
	}{mult1, mult2, div, result})
}

func handleHelp(w http.ResponseWriter, r *http.Request) {
	text := strings.ReplaceAll(helpMD, "{{VERSION}}", model.Version)

	w.Header().Set("Content-Type", "text/markdown")
	w.Write([]byte(text))
}

// wsMessage is one frame of /ws/walk.
type wsMessage struct {
	Type    string         `json:"type"` // "listing", "done" or "error"
	Listing *model.Listing `json:"listing,omitempty"`
	Summary *model.Summary `json:"summary,omitempty"`
	Message string         `json:"message,omitempty"`
}

func (s *Server) handleWalkWS(w http.ResponseWriter, r *http.Request) {
	wk, _, _, err := s.walker(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The reader only notices a closed peer; clients send nothing.
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg wsMessage) error {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
			return err
		}
		return conn.WriteJSON(msg)
	}

	var listings []model.Listing
	out, errCh := walk.Stream(ctx, wk)
	for l := range out {
		listings = append(listings, l)
		if err := send(wsMessage{Type: "listing", Listing: &l}); err != nil {
			logging.Logf("web", "ws write failed: %v", err)
			cancel()
			for range out {
			}
			<-errCh
			return
		}
	}

	if err := <-errCh; err != nil {
		send(wsMessage{Type: "error", Message: err.Error()})
	} else {
		sum := model.Summarize(listings)
		send(wsMessage{Type: "done", Summary: &sum})
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, walk.ErrNotDir):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logf("web", "encode response: %v", err)
	}
}
