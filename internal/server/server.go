// Package server serves tables as HTML pages. Each uploaded or served
// document becomes a session; the page's links drive expansion, focus,
// search and exports on the session's viewer.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/jsontable/internal/export"
	"github.com/oakwood-commons/jsontable/internal/paint/htmlview"
	"github.com/oakwood-commons/jsontable/internal/viewer"
	"github.com/oakwood-commons/jsontable/pkg/loader"
	"github.com/oakwood-commons/jsontable/pkg/prefs"
)

// DefaultMaxUpload caps uploaded documents.
const DefaultMaxUpload = 3_000_000

const sweepInterval = time.Minute

// Opener turns raw input into a viewer.
type Opener interface {
	Open(ctx context.Context, data []byte) (*viewer.Viewer, loader.Document, error)
}

// Options configures a Server.
type Options struct {
	Engine Opener
	// Source is served to every visitor of "/" when set; otherwise "/"
	// shows an upload form.
	Source     []byte
	Page       htmlview.Options
	SessionTTL time.Duration
	MaxUpload  int64
	// Sink, when set, keeps a copy of every export.
	Sink export.Sink
	// Prefs receives preference changes made from the page.
	Prefs  prefs.Store
	Logger logr.Logger
	Now    func() time.Time
}

// Server is the HTTP front end.
type Server struct {
	opts     Options
	log      logr.Logger
	sessions *sessions
	router   chi.Router
}

type ctxKey struct{}

// New builds a server.
func New(opts Options) (*Server, error) {
	if opts.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if opts.Logger.GetSink() == nil {
		opts.Logger = logr.Discard()
	}
	s := &Server{
		opts:     opts,
		log:      opts.Logger.WithName("server"),
		sessions: newSessions(opts.SessionTTL, opts.Now),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.index)
	r.Post("/", s.upload)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok\n")
	})

	r.Route("/s/{id}", func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.page)
		r.Get("/help", s.help)
		r.Get("/export/csv", s.exportCSV)
		r.Get("/export/json", s.exportJSON)
		r.Get("/toggle", s.toggle)
		r.Get("/focus", s.focus)
		r.Get("/level/{n}", s.level)
		r.Get("/search", s.search)
		// Toolbar actions are forms; the last two also write preferences.
		r.Post("/expand", s.act(func(v *viewer.Viewer) { v.ExpandAll() }))
		r.Post("/collapse", s.act(func(v *viewer.Viewer) { v.CollapseAll() }))
		r.Post("/view", s.act(func(v *viewer.Viewer) { v.ToggleJSONView() }))
		r.Post("/auto-expand", s.autoExpand)
		r.Post("/delimiter", s.delimiter)
	})
	return r
}

// Run serves on addr until ctx is done, sweeping expired sessions on the
// side.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case <-t.C:
				if n := s.sessions.sweep(); n > 0 {
					s.log.V(1).Info("expired sessions", "count", n)
				}
			}
		}
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.sessions.get(chi.URLParam(r, "id"))
		if !ok {
			http.Error(w, "session not found or expired", http.StatusNotFound)
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func current(r *http.Request) *session {
	return r.Context().Value(ctxKey{}).(*session)
}

func (s *Server) pageOptions(sess *session) htmlview.Options {
	opts := s.opts.Page
	opts.Base = "/s/" + sess.id
	opts.Delimiter = sess.v.Delimiter()
	return opts
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *session) {
	http.Redirect(w, r, "/s/"+sess.id+"/", http.StatusSeeOther)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if len(s.opts.Source) == 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, uploadForm)
		return
	}
	s.open(w, r, s.opts.Source)
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)
	data, err := readUpload(r)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, loader.ErrTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.open(w, r, data)
}

func (s *Server) open(w http.ResponseWriter, r *http.Request, data []byte) {
	v, doc, err := s.opts.Engine.Open(r.Context(), data)
	if err != nil {
		s.log.V(1).Info("open failed", "error", err.Error())
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	sess := s.sessions.add(v)
	s.log.Info("session created", "session", sess.id, "format", string(doc.Format), "records", doc.Count)
	s.redirect(w, r, sess)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, loader.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, loader.ErrEmptyInput), errors.Is(err, loader.ErrNotJSON):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrParseTimeout):
		return http.StatusServiceUnavailable
	}
	return http.StatusUnprocessableEntity
}

// readUpload takes the "file" part of a multipart form, the "json" field of
// any form, or else the raw body.
func readUpload(r *http.Request) ([]byte, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data":
		f, _, err := r.FormFile("file")
		if err == nil {
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}
			if len(strings.TrimSpace(string(data))) > 0 {
				return data, nil
			}
		} else if !errors.Is(err, http.ErrMissingFile) {
			return nil, err
		}
		return []byte(r.FormValue("json")), nil
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return []byte(r.PostForm.Get("json")), nil
	}
	return io.ReadAll(r.Body)
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var err error
	if sess.v.JSONView() {
		err = htmlview.JSON(w, sess.v.View(), sess.v.JSONTokens(), s.pageOptions(sess))
	} else {
		err = htmlview.Table(w, sess.v.View(), s.pageOptions(sess))
	}
	if err != nil {
		s.log.Error(err, "render page", "session", sess.id)
	}
}

func (s *Server) help(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := htmlview.Help(w, sess.v.View(), s.pageOptions(sess)); err != nil {
		s.log.Error(err, "render help", "session", sess.id)
	}
}

// act wraps a state change that always succeeds.
func (s *Server) act(fn func(v *viewer.Viewer)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := current(r)
		fn(sess.v)
		s.redirect(w, r, sess)
	}
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if _, found := sess.v.ToggleKey(r.URL.Query().Get("key")); !found {
		http.Error(w, "no such cell", http.StatusNotFound)
		return
	}
	s.redirect(w, r, sess)
}

func (s *Server) focus(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if !sess.v.FocusByID(r.URL.Query().Get("id")) {
		http.Error(w, "focus target is gone", http.StatusNotFound)
		return
	}
	s.redirect(w, r, sess)
}

func (s *Server) level(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 0 || n > sess.v.Depth() {
		http.Error(w, "invalid level", http.StatusBadRequest)
		return
	}
	if n < sess.v.Depth() {
		sess.v.FocusToLevel(n)
	}
	s.redirect(w, r, sess)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	sess.v.Search(r.URL.Query().Get("q"))
	s.redirect(w, r, sess)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	s.download(w, r, sess.v.ExportCSV())
}

func (s *Server) exportJSON(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	s.download(w, r, sess.v.ExportJSON())
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, a export.Artifact) {
	if s.opts.Sink != nil {
		if _, err := s.opts.Sink.Save(r.Context(), a); err != nil {
			s.log.Error(err, "keep export copy", "file", a.Filename)
		}
	}
	w.Header().Set("Content-Type", a.MIMEType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Content)))
	_, _ = w.Write(a.Content)
}

func (s *Server) autoExpand(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	on := !sess.v.AutoExpand()
	sess.v.SetAutoExpand(on)
	if on {
		sess.v.ExpandAll()
	}
	s.savePrefs(r.Context(), prefs.Record{AutoExpand: &on})
	s.redirect(w, r, sess)
}

func (s *Server) delimiter(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	d := r.FormValue("d")
	if d == "" {
		http.Error(w, "missing delimiter", http.StatusBadRequest)
		return
	}
	sess.v.SetDelimiter(d)
	s.savePrefs(r.Context(), prefs.Record{CSVDelimiter: &d})
	s.redirect(w, r, sess)
}

// savePrefs writes through to the store. Failures only cost persistence.
func (s *Server) savePrefs(ctx context.Context, rec prefs.Record) {
	if s.opts.Prefs == nil {
		return
	}
	if err := s.opts.Prefs.Put(ctx, rec); err != nil {
		s.log.Error(err, "save preferences")
	}
}

const uploadForm = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>JSON Table</title></head>
<body>
<h1>JSON Table</h1>
<form method="post" action="/" enctype="multipart/form-data">
<p><input type="file" name="file"></p>
<p><textarea name="json" rows="16" cols="80" placeholder="or paste JSON here"></textarea></p>
<p><button type="submit">Render</button></p>
</form>
</body>
</html>
`
