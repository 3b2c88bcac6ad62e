// Package server serves the browser UI: a page with one color control per
// theme slot, backed by a JSON API and a websocket of state changes.
package server

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tliron/commonlog"

	"github.com/jsvensson/pptxpalette/internal/config"
	"github.com/jsvensson/pptxpalette/internal/pipeline"
	"github.com/jsvensson/pptxpalette/internal/script"
)

var log = commonlog.GetLogger("pptxpalette.server")

//go:embed templates/index.html
var templates embed.FS

const (
	pptxContentType  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	maxScriptBytes   = 256 * 1024
	maxColorBodySize = 4 * 1024
	shutdownTimeout  = 5 * time.Second
)

// Server is the HTTP UI.
type Server struct {
	cfg      *config.Config
	sessions *sessionStore
	page     *template.Template
	upgrader websocket.Upgrader
}

// New builds a server for cfg.
func New(cfg *config.Config) (*Server, error) {
	page, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &Server{
		cfg:      cfg,
		sessions: newSessionStore(defaultSessionTTL),
		page:     page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/deck", s.handleDeck)
	mux.HandleFunc("/api/deck/color", s.handleColor)
	mux.HandleFunc("/api/deck/build", s.handleBuild)
	mux.HandleFunc("/api/deck/script", s.handleScript)
	mux.HandleFunc("/ws", s.handleWebsocket)
	if s.cfg.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	return logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Noticef("listening on http://%s", s.cfg.Listen)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	// Issue the cookie before the page opens its websocket.
	s.sessions.fromRequest(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ MaxUploadMB int }{MaxUploadMB: s.cfg.MaxUploadMB}
	if err := s.page.Execute(w, data); err != nil {
		log.Errorf("rendering page: %s", err.Error())
	}
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.fromRequest(w, r)
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, sess.controller.Snapshot())
	case http.MethodPost:
		s.loadDeck(w, r, sess)
	case http.MethodDelete:
		sess.controller.Clear()
		writeJSON(w, http.StatusOK, sess.controller.Snapshot())
	default:
		writeErr(w, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (s *Server) loadDeck(w http.ResponseWriter, r *http.Request, sess *session) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes()+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, "UPLOAD_TOO_LARGE", fmt.Sprintf("file exceeds the %d MB upload limit", s.cfg.MaxUploadMB))
			return
		}
		writeErr(w, "INVALID_REQUEST", "expected a multipart form with a file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, "INVALID_REQUEST", "reading upload: "+err.Error())
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes() {
		writeErr(w, "UPLOAD_TOO_LARGE", fmt.Sprintf("file exceeds the %d MB upload limit", s.cfg.MaxUploadMB))
		return
	}

	name := filepath.Base(header.Filename)
	snap, err := sess.controller.Load(r.Context(), name, data)
	MetricLoadsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		friendly := mapError(err)
		if friendly.Code != "NO_THEME_MEMBERS" {
			friendly.Message = fmt.Sprintf("Error reading %s : %s", name, err.Error())
		}
		writeError(w, friendly)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type colorRequest struct {
	Document int    `json:"document"`
	Scheme   int    `json:"scheme"`
	Slot     int    `json:"slot"`
	Value    string `json:"value"`
}

func (s *Server) handleColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeErr(w, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	sess := s.sessions.fromRequest(w, r)

	var req colorRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxColorBodySize)).Decode(&req); err != nil {
		writeErr(w, "INVALID_REQUEST", "invalid JSON body")
		return
	}
	if err := sess.controller.SetColor(req.Document, req.Scheme, req.Slot, req.Value); err != nil {
		writeError(w, err)
		return
	}
	MetricColorEditsTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	sess := s.sessions.fromRequest(w, r)

	name, data, err := sess.controller.Build()
	MetricBuildsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Debugf("writing %s: %s", name, err.Error())
	}
}

type scriptResponse struct {
	Edits    int                `json:"edits"`
	Snapshot *pipeline.Snapshot `json:"snapshot"`
}

// handleScript exports the current palette as a script (GET) or applies an
// uploaded script to it (POST).
func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.fromRequest(w, r)
	switch r.Method {
	case http.MethodGet:
		var out []byte
		err := sess.controller.Edit(func(d *pipeline.Deck) error {
			out = script.Export(d.Schemes())
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write(out)

	case http.MethodPost:
		src, err := io.ReadAll(io.LimitReader(r.Body, maxScriptBytes))
		if err != nil {
			writeErr(w, "INVALID_REQUEST", "reading script: "+err.Error())
			return
		}
		sc, err := script.Parse("upload.ppal", src)
		if err != nil {
			writeErr(w, "SCRIPT_ERROR", err.Error())
			return
		}
		var edits []script.Edit
		err = sess.controller.Edit(func(d *pipeline.Deck) error {
			var err error
			edits, err = sc.Apply(d.Schemes())
			return err
		})
		if errors.Is(err, pipeline.ErrNotReady) {
			writeError(w, err)
			return
		}
		if err != nil {
			writeErr(w, "SCRIPT_ERROR", err.Error())
			return
		}
		MetricColorEditsTotal.Add(float64(len(edits)))
		writeJSON(w, http.StatusOK, scriptResponse{Edits: len(edits), Snapshot: sess.controller.Snapshot()})

	default:
		writeErr(w, "METHOD_NOT_ALLOWED", "method not allowed")
	}
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.fromRequest(w, r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debugf("websocket upgrade: %s", err.Error())
		return
	}
	defer conn.Close()

	sess.conns.add(conn)
	defer sess.conns.remove(conn)

	snap := sess.controller.Snapshot()
	hello := stateMessage{Type: "state", State: snap.State, Name: snap.Name, CanBuild: snap.CanBuild}
	if err := sess.conns.writeJSON(conn, hello); err != nil {
		return
	}

	// The page never sends anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		observer := &statusObserver{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(observer, r)
		log.Infof("%s %s %d %dms", r.Method, r.URL.Path, observer.status, time.Since(started).Milliseconds())
	})
}

type statusObserver struct {
	http.ResponseWriter
	status int
}

func (o *statusObserver) WriteHeader(status int) {
	o.status = status
	o.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrader take over the connection.
func (o *statusObserver) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := o.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	o.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}
