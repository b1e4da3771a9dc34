package web

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const assetCacheControl = "public, max-age=3600"

// mediaExtensions are tried in order when the requested name has none, so
// a document can say "audio/theme" and ship theme.ogg.
var mediaExtensions = []string{".mp3", ".ogg", ".wav", ".m4a", ".mp4", ".webm", ".png", ".jpg", ".webp"}

var mediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// mediaCandidates validates the request path and returns the files that
// may satisfy it, all under AssetsDir/media.
func (s *Server) mediaCandidates(urlPath string) ([]string, bool) {
	name := strings.Trim(strings.TrimPrefix(urlPath, "/media/"), "/")
	if name == "" || strings.Contains(name, "\\") {
		return nil, false
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, false
	}

	baseDir := filepath.Join(s.AssetsDir, "media")
	resolved := filepath.Join(baseDir, clean)
	rel, err := filepath.Rel(baseDir, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}

	candidates := []string{resolved}
	if filepath.Ext(resolved) == "" {
		for _, ext := range mediaExtensions {
			candidates = append(candidates, resolved+ext)
		}
	}
	return candidates, true
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	candidates, ok := s.mediaCandidates(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	for _, p := range candidates {
		f, err := os.Open(p) // #nosec G304 -- p is under validated AssetsDir/media
		if err != nil {
			continue
		}
		info, err := f.Stat()
		if err != nil || info.IsDir() {
			_ = f.Close()
			continue
		}
		defer f.Close()

		if ct, ok := mediaTypes[strings.ToLower(filepath.Ext(p))]; ok {
			w.Header().Set("Content-Type", ct)
		}
		w.Header().Set("Cache-Control", assetCacheControl)
		http.ServeContent(w, r, filepath.Base(p), info.ModTime(), f)
		return
	}
	http.NotFound(w, r)
}
