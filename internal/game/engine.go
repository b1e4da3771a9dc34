package game

import (
	"errors"
	"slices"

	"go.uber.org/zap"
)

// maxVisited bounds the entry history kept for the story map.
const maxVisited = 256

// Engine navigates one playthrough of a story graph. It is owned by a
// single caller and is not safe for concurrent use; the graph it reads may
// be shared.
type Engine struct {
	graph     *Graph
	state     State
	log       *zap.Logger
	observers []func(Transition)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for rejected transitions.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithObserver registers fn to be called after every successful transition.
func WithObserver(fn func(Transition)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.observers = append(e.observers, fn)
		}
	}
}

var errNilGraph = errors.New("game: nil graph")

// NewEngine starts a playthrough at initial.
func NewEngine(g *Graph, initial SceneID, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, errNilGraph
	}
	if !g.Has(initial) {
		return nil, &UnknownSceneError{ID: initial}
	}
	return newEngine(g, State{
		CurrentSceneID: initial,
		InitialSceneID: initial,
		Visited:        []SceneID{initial},
	}, opts), nil
}

// Resume rebuilds an engine from a saved state.
func Resume(g *Graph, st State, opts ...Option) (*Engine, error) {
	if g == nil {
		return nil, errNilGraph
	}
	for _, id := range []SceneID{st.InitialSceneID, st.CurrentSceneID} {
		if !g.Has(id) {
			return nil, &UnknownSceneError{ID: id}
		}
	}
	st.Visited = slices.Clone(st.Visited)
	return newEngine(g, st, opts), nil
}

func newEngine(g *Graph, st State, opts []Option) *Engine {
	e := &Engine{graph: g, state: st, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Graph returns the graph the engine navigates.
func (e *Engine) Graph() *Graph { return e.graph }

// State returns a copy of the playthrough state.
func (e *Engine) State() State {
	st := e.state
	st.Visited = slices.Clone(st.Visited)
	return st
}

func (e *Engine) CurrentID() SceneID { return e.state.CurrentSceneID }
func (e *Engine) InitialID() SceneID { return e.state.InitialSceneID }
func (e *Engine) WinCount() int      { return e.state.WinCount }

// Visited returns the scenes entered so far, oldest first.
func (e *Engine) Visited() []SceneID { return slices.Clone(e.state.Visited) }

// CurrentScene returns the descriptor of the current scene.
func (e *Engine) CurrentScene() (Scene, error) {
	s, ok := e.graph.Scene(e.state.CurrentSceneID)
	if !ok {
		return Scene{}, &UnknownSceneError{ID: e.state.CurrentSceneID}
	}
	return s, nil
}

// IsEnding reports whether the current scene is marked as an ending.
func (e *Engine) IsEnding() bool {
	s, err := e.CurrentScene()
	return err == nil && s.IsEnding
}

// IsTerminalByChoices reports whether the current scene offers no choices.
// Such a scene is not necessarily an ending; it may wait for an outcome.
func (e *Engine) IsTerminalByChoices() bool {
	s, err := e.CurrentScene()
	return err == nil && len(s.Choices) == 0
}

// GoToScene moves to target. Entering a scene with awardsWin adds one win,
// every time it is entered.
func (e *Engine) GoToScene(target SceneID) error {
	return e.move(TransitionGoTo, target)
}

// SelectChoice moves along one of the current scene's choices.
func (e *Engine) SelectChoice(next SceneID) error {
	cur, err := e.CurrentScene()
	if err != nil {
		return err
	}
	for _, c := range cur.Choices {
		if c.Next == next {
			return e.move(TransitionChoice, next)
		}
	}
	e.reject(TransitionChoice, next, "choice not offered by current scene")
	return &InvalidChoiceError{Scene: cur.ID, Next: next}
}

// Restart returns to the initial scene. The win count is kept.
func (e *Engine) Restart() {
	from := e.state.CurrentSceneID
	e.state.CurrentSceneID = e.state.InitialSceneID
	e.record(e.state.InitialSceneID)
	e.notify(Transition{Kind: TransitionRestart, From: from, To: e.state.InitialSceneID, Wins: e.state.WinCount})
}

// GoToCheckpoint rewinds to the current scene's checkpoint.
func (e *Engine) GoToCheckpoint() error {
	cur, err := e.CurrentScene()
	if err != nil {
		return err
	}
	if cur.Checkpoint == "" {
		e.reject(TransitionCheckpoint, "", "current scene has no checkpoint")
		return &NoCheckpointError{Scene: cur.ID}
	}
	return e.move(TransitionCheckpoint, cur.Checkpoint)
}

// CompleteMiniGame moves to the win or lose target of the current scene.
func (e *Engine) CompleteMiniGame(won bool) error {
	cur, err := e.CurrentScene()
	if err != nil {
		return err
	}
	next, err := Resolve(cur, won)
	if err != nil {
		e.reject(TransitionOutcome, "", err.Error())
		return err
	}
	return e.move(TransitionOutcome, next)
}

// AutoAdvance follows the current scene's next target.
func (e *Engine) AutoAdvance() error {
	cur, err := e.CurrentScene()
	if err != nil {
		return err
	}
	if cur.Next == "" {
		e.reject(TransitionAdvance, "", "current scene does not auto-advance")
		return &NoAutoAdvanceError{Scene: cur.ID}
	}
	return e.move(TransitionAdvance, cur.Next)
}

// CheckGift moves to unlocked when the player has at least requiredWins
// wins, otherwise to locked. Only the gift check scene may do this.
func (e *Engine) CheckGift(requiredWins int, unlocked, locked SceneID) error {
	cur, err := e.CurrentScene()
	if err != nil {
		return err
	}
	if gift, ok := cur.Variant().(GiftScene); !ok || !gift.Check {
		e.reject(TransitionGift, "", "current scene is not a gift check")
		return &NotGiftCheckError{Scene: cur.ID}
	}
	target := locked
	if e.state.WinCount >= requiredWins {
		target = unlocked
	}
	return e.move(TransitionGift, target)
}

// ExpectScene fails with *StaleActionError unless id is the current scene.
// Callers use it to drop events that were armed for an earlier scene.
func (e *Engine) ExpectScene(id SceneID) error {
	if id == e.state.CurrentSceneID {
		return nil
	}
	e.reject("", id, "action addressed to another scene")
	return &StaleActionError{Scene: id, Current: e.state.CurrentSceneID}
}

// move applies a transition to target. On failure nothing changes.
func (e *Engine) move(kind TransitionKind, target SceneID) error {
	dst, ok := e.graph.Scene(target)
	if !ok {
		e.reject(kind, target, "unknown scene")
		return &UnknownSceneError{ID: target}
	}
	from := e.state.CurrentSceneID
	if dst.AwardsWin {
		e.state.WinCount++
	}
	e.state.CurrentSceneID = target
	e.record(target)
	e.notify(Transition{Kind: kind, From: from, To: target, Awarded: dst.AwardsWin, Wins: e.state.WinCount})
	return nil
}

func (e *Engine) record(id SceneID) {
	e.state.Visited = append(e.state.Visited, id)
	if n := len(e.state.Visited); n > maxVisited {
		e.state.Visited = slices.Clone(e.state.Visited[n-maxVisited:])
	}
}

func (e *Engine) notify(t Transition) {
	for _, fn := range e.observers {
		fn(t)
	}
}

func (e *Engine) reject(kind TransitionKind, target SceneID, reason string) {
	e.log.Warn("scene transition rejected",
		zap.String("kind", string(kind)),
		zap.String("from", string(e.state.CurrentSceneID)),
		zap.String("to", string(target)),
		zap.String("reason", reason),
	)
}
