package game

// GiftCheckScene is the gift scene that evaluates the win count instead of
// showing the gift.
const GiftCheckScene SceneID = "gift_check"

// Variant is the presentation shape of a scene. The set of implementations
// is closed: StoryScene, MiniGameScene, VideoScene and GiftScene.
type Variant interface {
	sceneVariant()
}

// StoryScene is dialogue text with choices or an auto-advance target.
type StoryScene struct {
	Text            string
	Character       string
	BackgroundImage string
	Audio           string
	Choices         []Choice
	Next            SceneID
	IsEnding        bool
	Checkpoint      SceneID
}

// MiniGameScene hands control to a mini-game until it reports an outcome.
type MiniGameScene struct {
	Game            string
	Text            string
	BackgroundImage string
	Audio           string
	WinTarget       SceneID
	LoseTarget      SceneID
}

// VideoScene plays a clip and then offers choices or ending actions.
type VideoScene struct {
	VideoURL   string
	Choices    []Choice
	IsEnding   bool
	Checkpoint SceneID
}

// GiftScene shows the gift; Check is set on the scene that decides between
// the locked and unlocked gift.
type GiftScene struct {
	Text            string
	BackgroundImage string
	Audio           string
	Check           bool
}

func (StoryScene) sceneVariant()    {}
func (MiniGameScene) sceneVariant() {}
func (VideoScene) sceneVariant()    {}
func (GiftScene) sceneVariant()     {}

// Kind returns the scene type, inferring it from the media fields when the
// document leaves it out.
func (s Scene) Kind() string {
	switch {
	case s.Type != "":
		return s.Type
	case s.Video != "":
		return TypeVideo
	case s.GameType != "":
		return TypeMiniGame
	default:
		return TypeStory
	}
}

// Variant returns the scene as its presentation variant.
func (s Scene) Variant() Variant {
	s = s.clone()
	switch s.Kind() {
	case TypeMiniGame:
		return MiniGameScene{
			Game:            s.GameType,
			Text:            s.Text,
			BackgroundImage: s.BackgroundImage,
			Audio:           s.Audio,
			WinTarget:       s.WinTarget,
			LoseTarget:      s.LoseTarget,
		}
	case TypeVideo:
		return VideoScene{
			VideoURL:   s.Video,
			Choices:    s.Choices,
			IsEnding:   s.IsEnding,
			Checkpoint: s.Checkpoint,
		}
	case TypeGift:
		return GiftScene{
			Text:            s.Text,
			BackgroundImage: s.BackgroundImage,
			Audio:           s.Audio,
			Check:           s.ID == GiftCheckScene,
		}
	default:
		return StoryScene{
			Text:            s.Text,
			Character:       s.Character,
			BackgroundImage: s.BackgroundImage,
			Audio:           s.Audio,
			Choices:         s.Choices,
			Next:            s.Next,
			IsEnding:        s.IsEnding,
			Checkpoint:      s.Checkpoint,
		}
	}
}
