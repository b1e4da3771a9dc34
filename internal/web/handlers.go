package web

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"sceneplay/internal/game"
)

var errBadForm = errors.New("bad form")

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/play", http.StatusFound)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := s.sessionID(w, r)
	ls, release := s.acquire(id)
	defer release()

	eng, err := s.engine(r.Context(), id, ls)
	if err != nil {
		s.serverError(w, err)
		return
	}
	vm, err := s.makeViewModel(ls, eng, "")
	if err != nil {
		s.serverError(w, err)
		return
	}
	if err := s.Tmpl.ExecuteTemplate(w, "layout", vm); err != nil {
		s.logger().Error("render page", zap.Error(err))
	}
}

// action wraps one engine operation. A rejected operation leaves the
// playthrough unchanged and is shown to the player as a message.
func (s *Server) action(checkScene bool, op func(*game.Engine, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		ctx := r.Context()
		id := s.sessionID(w, r)
		ls, release := s.acquire(id)
		defer release()

		eng, err := s.engine(ctx, id, ls)
		if err != nil {
			s.serverError(w, err)
			return
		}

		if checkScene {
			err = eng.ExpectScene(game.SceneID(r.FormValue("scene")))
		}
		if err == nil {
			err = op(eng, r)
		}
		if errors.Is(err, errBadForm) {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		msg := ""
		if err != nil {
			msg = userMessage(err)
			if s.Metrics != nil {
				s.Metrics.Rejected(err)
			}
			s.logger().Info("action rejected", zap.String("session", id), zap.String("path", r.URL.Path), zap.Error(err))
		} else if err := s.Store.Put(ctx, id, eng.State()); err != nil {
			s.serverError(w, err)
			return
		}

		if wantsJSON(r) {
			s.writeState(w, eng, msg)
			return
		}
		vm, err := s.makeViewModel(ls, eng, msg)
		if err != nil {
			s.serverError(w, err)
			return
		}
		// htmx: return fragment for #scene only
		if err := s.Tmpl.ExecuteTemplate(w, "scene", vm); err != nil {
			s.logger().Error("render scene", zap.Error(err))
		}
	}
}

func (s *Server) doChoice(eng *game.Engine, r *http.Request) error {
	return eng.SelectChoice(game.SceneID(r.FormValue("next")))
}

func (s *Server) doOutcome(eng *game.Engine, r *http.Request) error {
	won, err := strconv.ParseBool(r.FormValue("won"))
	if err != nil {
		return errBadForm
	}
	return eng.CompleteMiniGame(won)
}

func (s *Server) doAdvance(eng *game.Engine, _ *http.Request) error {
	return eng.AutoAdvance()
}

func (s *Server) doGiftCheck(eng *game.Engine, _ *http.Request) error {
	return eng.CheckGift(s.Doc.RequiredWins, s.Doc.GiftUnlocked, s.Doc.GiftLocked)
}

func (s *Server) doCheckpoint(eng *game.Engine, _ *http.Request) error {
	return eng.GoToCheckpoint()
}

func (s *Server) doRestart(eng *game.Engine, _ *http.Request) error {
	eng.Restart()
	if s.Metrics != nil {
		s.Metrics.Started()
	}
	return nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := s.sessionID(w, r)
	ls, release := s.acquire(id)
	defer release()

	eng, err := s.engine(r.Context(), id, ls)
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeState(w, eng, "")
}

// handleVolume sets the playback volume of the session, 0 to 1.
func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	v, err := strconv.ParseFloat(r.FormValue("volume"), 64)
	if err != nil || math.IsNaN(v) {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	ls, release := s.acquire(s.sessionID(w, r))
	defer release()
	ls.player.SetVolume(v)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeState(w http.ResponseWriter, eng *game.Engine, msg string) {
	v, err := s.makeStateView(eng, msg)
	if err != nil {
		s.serverError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if msg != "" {
		w.WriteHeader(http.StatusConflict)
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger().Error("encode state", zap.Error(err))
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// userMessage turns an engine error into text for the player.
func userMessage(err error) string {
	var (
		stale   *game.StaleActionError
		unknown *game.UnknownSceneError
		choice  *game.InvalidChoiceError
		noCP    *game.NoCheckpointError
		outcome *game.MissingOutcomeTargetError
		noNext  *game.NoAutoAdvanceError
		notGift *game.NotGiftCheckError
	)
	switch {
	case errors.As(err, &stale):
		return "That action belonged to an earlier scene."
	case errors.As(err, &choice):
		return "That choice is not available here."
	case errors.As(err, &noCP):
		return "There is no checkpoint to go back to."
	case errors.As(err, &outcome):
		return "This game has nowhere to go after that result."
	case errors.As(err, &noNext):
		return "This scene does not continue on its own."
	case errors.As(err, &notGift):
		return "The gift can only be opened at the gift check."
	case errors.As(err, &unknown):
		return "The story does not have that scene."
	default:
		return "Something went wrong."
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger().Error("request failed", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
