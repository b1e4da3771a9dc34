package web

import (
	"net/http"

	"go.uber.org/zap"

	"sceneplay/internal/mapgen"
)

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		http.Redirect(w, r, "/play", http.StatusFound)
		return
	}
	st, ok, err := s.Store.Get(r.Context(), c.Value)
	if err != nil || !ok {
		http.Redirect(w, r, "/play", http.StatusFound)
		return
	}
	title := s.Doc.Title
	if title == "" {
		title = string(s.Doc.StartSceneID)
	}
	pdf, err := mapgen.Generate(s.Doc.Graph, st.Visited, st.CurrentSceneID, title)
	if err != nil {
		s.logger().Error("generate map", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="story-map.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		s.logger().Warn("write map", zap.Error(err))
	}
}
