// Package playback tracks the audio cue of one presentation session. Each
// session owns its own Session value; nothing is shared between players.
package playback

import "sync"

// Track is the audio currently assigned to a session.
type Track struct {
	Path   string
	Loop   bool
	Volume float64
}

// Session holds the current track and the set of preloaded paths.
type Session struct {
	mu      sync.Mutex
	current *Track
	volume  float64
	cache   map[string]struct{}
}

func NewSession() *Session {
	return &Session{volume: 1, cache: map[string]struct{}{}}
}

// Preload remembers path so the client can fetch it ahead of time.
func (s *Session) Preload(path string) {
	if path == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[path] = struct{}{}
}

// Play replaces the current track with path. An empty path only stops
// playback.
func (s *Session) Play(path string, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	if path == "" {
		return
	}
	s.cache[path] = struct{}{}
	s.current = &Track{Path: path, Loop: loop, Volume: s.volume}
}

// Stop releases the current track.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// SetVolume clamps v to [0, 1] and applies it to the current and later tracks.
func (s *Session) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = max(0, min(1, v))
	if s.current != nil {
		s.current.Volume = s.volume
	}
}

// Volume returns the session volume.
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Current returns a copy of the current track.
func (s *Session) Current() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Track{}, false
	}
	return *s.current, true
}

// Preloaded reports whether path was preloaded or played before.
func (s *Session) Preloaded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[path]
	return ok
}

// Cleanup stops playback and forgets preloaded paths.
func (s *Session) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	clear(s.cache)
}
