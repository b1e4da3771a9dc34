package web

import (
	"time"

	"sceneplay/internal/game"
	"sceneplay/internal/playback"
)

// SceneView is the data behind layout.html and scene.html. Exactly one of
// Story, Game, Video and Gift is set.
type SceneView struct {
	Title        string
	Scene        game.Scene
	Wins         int
	RequiredWins int
	IsEnding     bool
	IsTerminal   bool
	Message      string

	Story *game.StoryScene
	Game  *game.MiniGameScene
	Video *game.VideoScene
	Gift  *game.GiftScene

	Audio            *playback.Track
	Volume           float64
	Preload          []string // audio not handed to this session before
	AutoAdvanceDelay time.Duration
	GiftCheckDelay   time.Duration
}

// stateView is the JSON body of /api/state and of JSON action replies.
type stateView struct {
	Scene        game.Scene `json:"scene"`
	State        game.State `json:"state"`
	IsEnding     bool       `json:"isEnding"`
	IsTerminal   bool       `json:"isTerminal"`
	RequiredWins int        `json:"requiredWins"`
	Error        string     `json:"error,omitempty"`
}

func (s *Server) makeViewModel(ls *liveSession, eng *game.Engine, msg string) (SceneView, error) {
	sc, err := eng.CurrentScene()
	if err != nil {
		return SceneView{}, err
	}
	vm := SceneView{
		Title:            s.Doc.Title,
		Scene:            sc,
		Wins:             eng.WinCount(),
		RequiredWins:     s.Doc.RequiredWins,
		IsEnding:         eng.IsEnding(),
		IsTerminal:       eng.IsTerminalByChoices(),
		Message:          msg,
		AutoAdvanceDelay: AutoAdvanceDelay,
		GiftCheckDelay:   GiftCheckDelay,
	}
	switch v := sc.Variant().(type) {
	case game.StoryScene:
		vm.Story = &v
	case game.MiniGameScene:
		vm.Game = &v
	case game.VideoScene:
		vm.Video = &v
	case game.GiftScene:
		vm.Gift = &v
	}

	p := ls.player
	if src := mediaURL(sc.Audio); src != "" {
		if cur, ok := p.Current(); !ok || cur.Path != src {
			p.Play(src, true)
		}
	}
	if t, ok := p.Current(); ok {
		vm.Audio = &t
	}
	vm.Volume = p.Volume()
	vm.Preload = s.preload(p, sc)
	return vm, nil
}

// preload collects the audio of scenes reachable in one step that the
// session has not preloaded or played yet.
func (s *Server) preload(p *playback.Session, sc game.Scene) []string {
	targets := []game.SceneID{sc.Next, sc.WinTarget, sc.LoseTarget, sc.Checkpoint}
	for _, c := range sc.Choices {
		targets = append(targets, c.Next)
	}
	var out []string
	seen := map[string]bool{}
	for _, id := range targets {
		next, ok := s.Doc.Graph.Scene(id)
		if !ok {
			continue
		}
		src := mediaURL(next.Audio)
		if src == "" || seen[src] || p.Preloaded(src) {
			continue
		}
		seen[src] = true
		p.Preload(src)
		out = append(out, src)
	}
	return out
}

func (s *Server) makeStateView(eng *game.Engine, msg string) (stateView, error) {
	sc, err := eng.CurrentScene()
	if err != nil {
		return stateView{}, err
	}
	return stateView{
		Scene:        sc,
		State:        eng.State(),
		IsEnding:     eng.IsEnding(),
		IsTerminal:   eng.IsTerminalByChoices(),
		RequiredWins: s.Doc.RequiredWins,
		Error:        msg,
	}, nil
}
