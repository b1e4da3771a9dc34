// Package web is the HTTP presentation host. It keeps one playthrough per
// browser session and renders the current scene with htmx fragments.
package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"sceneplay/internal/game"
	"sceneplay/internal/metrics"
	"sceneplay/internal/playback"
	"sceneplay/internal/session"
)

const cookieName = "sceneplay_sid"

// Delays the browser waits before firing a scene's timer. The timer posts
// the scene id it was armed for, so a late fire is rejected as stale.
const (
	AutoAdvanceDelay = 3 * time.Second
	GiftCheckDelay   = 1 * time.Second
)

type Server struct {
	Doc       *game.Document
	Store     session.Store[game.State]
	Tmpl      *template.Template
	Log       *zap.Logger
	Metrics   *metrics.Collector
	AssetsDir string

	sessions sync.Map // session id -> *liveSession
	now      func() time.Time
}

// liveSession is the in-process side of a browser session. Its mutex
// serialises the session's requests.
type liveSession struct {
	mu     sync.Mutex
	closed bool // set under mu once swept
	player *playback.Session
	seen   atomic.Int64 // unix nanos of the last request
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/play", s.handlePlay)

	mux.HandleFunc("/choice", s.action(true, s.doChoice))
	mux.HandleFunc("/outcome", s.action(true, s.doOutcome))
	mux.HandleFunc("/advance", s.action(true, s.doAdvance))
	mux.HandleFunc("/gift-check", s.action(true, s.doGiftCheck))
	mux.HandleFunc("/checkpoint", s.action(true, s.doCheckpoint))
	mux.HandleFunc("/restart", s.action(false, s.doRestart))
	mux.HandleFunc("/volume", s.handleVolume)

	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/map", s.handleMap)
	mux.HandleFunc("/media/", s.handleMedia)
	if s.Metrics != nil {
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	return s.logRequests(mux)
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// ParseTemplates loads layout.html and scene.html from dir with the
// template functions the pages use.
func ParseTemplates(dir string) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(funcMap()).ParseFiles(
		filepath.Join(dir, "layout.html"),
		filepath.Join(dir, "scene.html"),
	)
	if err != nil {
		return nil, fmt.Errorf("parse templates in %s: %w", dir, err)
	}
	return tmpl, nil
}

// unsafeHrefRe matches href/src attributes with dangerous URL schemes in goldmark output.
var unsafeHrefRe = regexp.MustCompile(`(?i)(href|src)="(?:javascript|vbscript|data):[^"]*"`)

func funcMap() template.FuncMap {
	md := goldmark.New(
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
	return template.FuncMap{
		"markdown": func(s string) template.HTML {
			var buf bytes.Buffer
			if err := md.Convert([]byte(s), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(s))
			}
			return template.HTML(unsafeHrefRe.ReplaceAllString(buf.String(), `$1="#"`))
		},
		"mediaURL": mediaURL,
		"millis":   func(d time.Duration) int64 { return d.Milliseconds() },
	}
}

// mediaURL maps a document media value to a URL. Absolute URLs and paths
// are used as given; bare names are served from /media/.
func mediaURL(v string) string {
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(v, "/"), strings.Contains(v, "://"):
		return v
	default:
		return "/media/" + v
	}
}

// sessionID returns the browser's session id, issuing a cookie when there
// is none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := s.Store.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// acquire locks the session's live state, creating it on first use. The
// returned func releases the lock.
func (s *Server) acquire(id string) (*liveSession, func()) {
	for {
		v, ok := s.sessions.Load(id)
		if !ok {
			v, _ = s.sessions.LoadOrStore(id, &liveSession{player: playback.NewSession()})
		}
		ls := v.(*liveSession)
		ls.mu.Lock()
		if ls.closed {
			ls.mu.Unlock()
			continue
		}
		ls.seen.Store(s.clock().UnixNano())
		return ls, ls.mu.Unlock
	}
}

// Sweep releases the live state of sessions idle for longer than idle:
// playback is cleaned up and the entry dropped. Sessions busy with a
// request are left alone. It returns the number released.
func (s *Server) Sweep(idle time.Duration) int {
	cutoff := s.clock().Add(-idle).UnixNano()
	n := 0
	s.sessions.Range(func(k, v any) bool {
		ls := v.(*liveSession)
		if ls.seen.Load() > cutoff || !ls.mu.TryLock() {
			return true
		}
		if ls.seen.Load() <= cutoff {
			ls.closed = true
			ls.player.Cleanup()
			s.sessions.CompareAndDelete(k, v)
			n++
		}
		ls.mu.Unlock()
		return true
	})
	return n
}

// RunSweeper sweeps idle live sessions, and expired entries of a store
// that supports it, every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			released := s.Sweep(idle)
			expired := 0
			if sw, ok := s.Store.(session.Sweeper); ok {
				expired = sw.Sweep()
			}
			if released > 0 || expired > 0 {
				s.logger().Debug("sessions swept", zap.Int("released", released), zap.Int("expired", expired))
			}
		}
	}
}

// engine rebuilds the session's engine from the store. A missing state, or
// one that no longer fits the loaded story, starts a new playthrough and
// releases the session's playback.
func (s *Server) engine(ctx context.Context, id string, ls *liveSession) (*game.Engine, error) {
	opts := []game.Option{
		game.WithLogger(s.logger().With(zap.String("session", id))),
		game.WithObserver(s.observer(ls)),
	}
	st, ok, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		eng, err := game.Resume(s.Doc.Graph, st, opts...)
		if err == nil {
			return eng, nil
		}
		s.logger().Warn("discarding saved playthrough", zap.String("session", id), zap.Error(err))
	}
	eng, err := game.NewEngine(s.Doc.Graph, s.Doc.StartSceneID, opts...)
	if err != nil {
		return nil, err
	}
	ls.player.Cleanup()
	if s.Metrics != nil {
		s.Metrics.Started()
	}
	s.logger().Info("playthrough started", zap.String("session", id), zap.String("scene", string(eng.CurrentID())))
	if err := s.Store.Put(ctx, id, eng.State()); err != nil {
		return nil, err
	}
	return eng, nil
}

// observer releases the session's audio on every scene change.
func (s *Server) observer(ls *liveSession) func(game.Transition) {
	return func(t game.Transition) {
		if s.Metrics != nil {
			s.Metrics.Observe(t)
		}
		ls.player.Stop()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}
