package game

// SceneID identifies a scene within a story graph.
type SceneID string

// Scene types accepted in the "type" field of a scene.
const (
	TypeStory    = "story"
	TypeMiniGame = "minigame"
	TypeVideo    = "video"
	TypeGift     = "gift"
)

// Mini-game kinds accepted in the "gameType" field of a minigame scene.
const (
	GameCatchHearts  = "catchHearts"
	GameSimplePuzzle = "simplePuzzle"
	GameMatchPairs   = "matchPairs"
)

const (
	// DefaultStartScene is used when a document has no startSceneId.
	DefaultStartScene SceneID = "intro"
	// DefaultRequiredWins is the number of wins needed to unlock the gift.
	DefaultRequiredWins = 2
	// DefaultGiftUnlocked and DefaultGiftLocked are the gift check targets.
	DefaultGiftUnlocked SceneID = "gift_unlocked"
	DefaultGiftLocked   SceneID = "gift_locked"
)

// Choice is a labeled edge to another scene.
type Choice struct {
	Label string  `yaml:"label" json:"label"`
	Next  SceneID `yaml:"next" json:"next"`
}

// Scene describes one node of the story graph. Every field except ID is
// optional. Keys the engine does not know about are kept in Extra.
type Scene struct {
	ID        SceneID `yaml:"id" json:"id"`
	Type      string  `yaml:"type,omitempty" json:"type,omitempty"`
	Title     string  `yaml:"title,omitempty" json:"title,omitempty"`
	Text      string  `yaml:"text,omitempty" json:"text,omitempty"`
	Character string  `yaml:"character,omitempty" json:"character,omitempty"`

	Choices    []Choice `yaml:"choices" json:"choices"`
	IsEnding   bool     `yaml:"isEnding,omitempty" json:"isEnding,omitempty"`
	Checkpoint SceneID  `yaml:"checkpoint,omitempty" json:"checkpoint,omitempty"`
	Next       SceneID  `yaml:"next,omitempty" json:"next,omitempty"` // auto-advance when there are no choices

	Video           string `yaml:"video,omitempty" json:"video,omitempty"`
	BackgroundImage string `yaml:"backgroundImage,omitempty" json:"backgroundImage,omitempty"`
	Audio           string `yaml:"audio,omitempty" json:"audio,omitempty"`

	GameType   string  `yaml:"gameType,omitempty" json:"gameType,omitempty"`
	WinTarget  SceneID `yaml:"winTarget,omitempty" json:"winTarget,omitempty"`
	LoseTarget SceneID `yaml:"loseTarget,omitempty" json:"loseTarget,omitempty"`
	AwardsWin  bool    `yaml:"awardsWin,omitempty" json:"awardsWin,omitempty"`

	Extra map[string]any `yaml:",inline" json:"extra,omitempty"`
}

// Document is a parsed story file.
type Document struct {
	StartSceneID SceneID `yaml:"startSceneId" json:"startSceneId"`
	RequiredWins int     `yaml:"requiredWins" json:"requiredWins"`
	GiftUnlocked SceneID `yaml:"giftUnlockedSceneId" json:"giftUnlockedSceneId"`
	GiftLocked   SceneID `yaml:"giftLockedSceneId" json:"giftLockedSceneId"`
	Title        string  `yaml:"title" json:"title"`

	Graph *Graph `yaml:"-" json:"-"`
}

// State is the mutable part of a playthrough. It is a plain value so that
// a session store can keep it between requests.
type State struct {
	CurrentSceneID SceneID   `json:"currentSceneId"`
	InitialSceneID SceneID   `json:"initialSceneId"`
	WinCount       int       `json:"winCount"`
	Visited        []SceneID `json:"visited,omitempty"`
}

// TransitionKind names the operation that moved the engine.
type TransitionKind string

const (
	TransitionGoTo       TransitionKind = "goto"
	TransitionChoice     TransitionKind = "choice"
	TransitionRestart    TransitionKind = "restart"
	TransitionCheckpoint TransitionKind = "checkpoint"
	TransitionOutcome    TransitionKind = "outcome"
	TransitionAdvance    TransitionKind = "advance"
	TransitionGift       TransitionKind = "gift"
)

// Transition is reported to observers after a successful move.
type Transition struct {
	Kind    TransitionKind
	From    SceneID
	To      SceneID
	Awarded bool
	Wins    int
}
