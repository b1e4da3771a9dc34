package game

// Resolve maps a mini-game or story result to the scene declared for it.
// It never falls back to a default target.
func Resolve(scene Scene, won bool) (SceneID, error) {
	next := scene.LoseTarget
	if won {
		next = scene.WinTarget
	}
	if next == "" {
		return "", &MissingOutcomeTargetError{Scene: scene.ID, Won: won}
	}
	return next, nil
}
