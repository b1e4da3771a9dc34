package game

import (
	"fmt"
	"maps"
	"slices"
)

// Graph is a validated, read-only set of scenes. It is only built through
// NewGraph or Parse, so every reference inside it resolves.
type Graph struct {
	scenes map[SceneID]Scene
	ids    []SceneID
}

// ref is a scene reference that must resolve inside the graph.
type ref struct {
	scene  SceneID
	field  string
	target SceneID
}

// NewGraph validates scenes and returns the graph, or a
// *GraphValidationError naming every dangling reference and malformed scene.
// The input map is not modified.
func NewGraph(scenes map[SceneID]Scene) (*Graph, error) {
	return buildGraph(scenes, nil)
}

func buildGraph(scenes map[SceneID]Scene, extra []ref) (*Graph, error) {
	g := &Graph{
		scenes: make(map[SceneID]Scene, len(scenes)),
		ids:    slices.Sorted(maps.Keys(scenes)),
	}
	var problems []Problem

	for _, key := range g.ids {
		s := scenes[key].clone()
		if s.ID == "" {
			s.ID = key
		}
		if s.ID != key {
			problems = append(problems, Problem{Scene: key, Field: "id", Target: s.ID, Reason: "does not match scene key"})
		}
		g.scenes[key] = s
	}

	for _, key := range g.ids {
		s := g.scenes[key]
		for _, r := range s.refs() {
			if _, ok := g.scenes[r.target]; !ok {
				problems = append(problems, Problem{Scene: key, Field: r.field, Target: r.target, Reason: "references unknown scene"})
			}
		}
		if s.Type != "" && !knownType(s.Type) {
			problems = append(problems, Problem{Scene: key, Field: "type", Reason: fmt.Sprintf("unknown scene type %q", s.Type)})
		}
		if s.GameType != "" && !knownGame(s.GameType) {
			problems = append(problems, Problem{Scene: key, Field: "gameType", Reason: fmt.Sprintf("unknown game type %q", s.GameType)})
		}
	}

	for _, r := range extra {
		if _, ok := g.scenes[r.target]; !ok {
			problems = append(problems, Problem{Scene: r.scene, Field: r.field, Target: r.target, Reason: "references unknown scene"})
		}
	}

	if len(problems) > 0 {
		return nil, &GraphValidationError{Problems: problems}
	}
	return g, nil
}

// Scene returns a copy of the scene with the given id.
func (g *Graph) Scene(id SceneID) (Scene, bool) {
	s, ok := g.scenes[id]
	if !ok {
		return Scene{}, false
	}
	return s.clone(), true
}

// Has reports whether id is a scene of the graph.
func (g *Graph) Has(id SceneID) bool {
	_, ok := g.scenes[id]
	return ok
}

// IDs returns the scene ids in sorted order.
func (g *Graph) IDs() []SceneID {
	return slices.Clone(g.ids)
}

// Len returns the number of scenes.
func (g *Graph) Len() int {
	return len(g.ids)
}

// refs lists the non-empty references a scene makes to other scenes.
func (s Scene) refs() []ref {
	out := make([]ref, 0, len(s.Choices)+4)
	for i, c := range s.Choices {
		out = append(out, ref{scene: s.ID, field: fmt.Sprintf("choices[%d].next", i), target: c.Next})
	}
	for _, r := range []ref{
		{field: "checkpoint", target: s.Checkpoint},
		{field: "winTarget", target: s.WinTarget},
		{field: "loseTarget", target: s.LoseTarget},
		{field: "next", target: s.Next},
	} {
		if r.target != "" {
			r.scene = s.ID
			out = append(out, r)
		}
	}
	return out
}

// clone copies the slices and maps of a scene so callers cannot reach
// into the graph. Absent choices become an empty slice.
func (s Scene) clone() Scene {
	if s.Choices == nil {
		s.Choices = []Choice{}
	} else {
		s.Choices = slices.Clone(s.Choices)
	}
	if s.Extra != nil {
		s.Extra = maps.Clone(s.Extra)
	}
	return s
}

func knownType(t string) bool {
	switch t {
	case TypeStory, TypeMiniGame, TypeVideo, TypeGift:
		return true
	}
	return false
}

func knownGame(g string) bool {
	switch g {
	case GameCatchHearts, GameSimplePuzzle, GameMatchPairs:
		return true
	}
	return false
}
