package game

import (
	"fmt"
	"strings"
)

// Problem is one defect found while validating a story graph.
type Problem struct {
	Scene  SceneID // scene holding the bad field, empty for document-level fields
	Field  string
	Target SceneID
	Reason string
}

func (p Problem) String() string {
	where := p.Field
	if p.Scene != "" {
		where = string(p.Scene) + "." + p.Field
	}
	if p.Target != "" {
		return fmt.Sprintf("%s: %s %q", where, p.Reason, p.Target)
	}
	return fmt.Sprintf("%s: %s", where, p.Reason)
}

// GraphValidationError lists every problem found in a story graph.
type GraphValidationError struct {
	Problems []Problem
}

func (e *GraphValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid story graph: " + e.Problems[0].String()
	}
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("invalid story graph: %d problems: %s", len(e.Problems), strings.Join(parts, "; "))
}

// UnknownSceneError reports a scene id that is not in the graph.
type UnknownSceneError struct {
	ID SceneID
}

func (e *UnknownSceneError) Error() string {
	return fmt.Sprintf("unknown scene: %s", e.ID)
}

// InvalidChoiceError reports a choice target the current scene does not offer.
type InvalidChoiceError struct {
	Scene SceneID
	Next  SceneID
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("scene %s has no choice leading to %s", e.Scene, e.Next)
}

// NoCheckpointError reports a checkpoint rewind from a scene without one.
type NoCheckpointError struct {
	Scene SceneID
}

func (e *NoCheckpointError) Error() string {
	return fmt.Sprintf("scene %s has no checkpoint", e.Scene)
}

// MissingOutcomeTargetError reports an outcome with no target declared for it.
type MissingOutcomeTargetError struct {
	Scene SceneID
	Won   bool
}

func (e *MissingOutcomeTargetError) Error() string {
	return fmt.Sprintf("scene %s has no %s", e.Scene, outcomeField(e.Won))
}

// NoAutoAdvanceError reports an auto-advance from a scene without a next target.
type NoAutoAdvanceError struct {
	Scene SceneID
}

func (e *NoAutoAdvanceError) Error() string {
	return fmt.Sprintf("scene %s does not auto-advance", e.Scene)
}

func outcomeField(won bool) string {
	if won {
		return "winTarget"
	}
	return "loseTarget"
}

// NotGiftCheckError reports a gift check requested from a scene that is not
// the gift check scene.
type NotGiftCheckError struct {
	Scene SceneID
}

func (e *NotGiftCheckError) Error() string {
	return fmt.Sprintf("scene %s is not a gift check", e.Scene)
}

// StaleActionError reports an action addressed to a scene other than the
// current one, typically a presentation timer that fired late.
type StaleActionError struct {
	Scene   SceneID
	Current SceneID
}

func (e *StaleActionError) Error() string {
	return fmt.Sprintf("action for scene %s but current scene is %s", e.Scene, e.Current)
}
