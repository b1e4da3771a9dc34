package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStory(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDocument_YAML(t *testing.T) {
	path := writeStory(t, "story.yaml", `startSceneId: "node1"
requiredWins: 3
title: "Birthday"
scenes:
  node1:
    text: "First node"
    lottieAnimation: "/anim/wave.json"
    choices:
      - label: "Go to next"
        next: "node2"
  node2:
    text: "Second node"
    isEnding: true
    checkpoint: node1
`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, SceneID("node1"), doc.StartSceneID)
	assert.Equal(t, 3, doc.RequiredWins)
	assert.Equal(t, "Birthday", doc.Title)
	assert.Equal(t, DefaultGiftUnlocked, doc.GiftUnlocked)
	assert.Equal(t, DefaultGiftLocked, doc.GiftLocked)
	require.NotNil(t, doc.Graph)
	assert.Equal(t, 2, doc.Graph.Len())

	node1, ok := doc.Graph.Scene("node1")
	require.True(t, ok)
	assert.Equal(t, SceneID("node1"), node1.ID, "id is filled from the key")
	assert.Equal(t, []Choice{{Label: "Go to next", Next: "node2"}}, node1.Choices)
	assert.Equal(t, "/anim/wave.json", node1.Extra["lottieAnimation"])

	node2, ok := doc.Graph.Scene("node2")
	require.True(t, ok)
	assert.True(t, node2.IsEnding)
	assert.Equal(t, SceneID("node1"), node2.Checkpoint)
	assert.NotNil(t, node2.Choices, "absent choices become an empty slice")
	assert.Empty(t, node2.Choices)
}

func TestLoadDocument_JSONWithLegacyKeys(t *testing.T) {
	path := writeStory(t, "story.json", `{
	"startSceneId": "intro",
	"scenes": {
		"intro": {
			"id": "intro",
			"type": "story",
			"text": "Hi!",
			"backgroundImage": "/img/sky.png",
			"choices": [{"text": "Play", "nextSceneId": "hearts"}]
		},
		"hearts": {
			"id": "hearts",
			"type": "minigame",
			"gameType": "catchHearts",
			"winSceneId": "yay",
			"loseSceneId": "intro"
		},
		"yay": {"id": "yay", "type": "story", "awardsWin": true, "nextSceneId": "clip"},
		"clip": {"id": "clip", "videoUrl": "/videos/end.mp4", "isEnding": true, "checkpoint": "intro"}
	}
}`)

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRequiredWins, doc.RequiredWins)

	intro, _ := doc.Graph.Scene("intro")
	assert.Equal(t, []Choice{{Label: "Play", Next: "hearts"}}, intro.Choices)
	assert.Equal(t, "/img/sky.png", intro.BackgroundImage)
	assert.Nil(t, intro.Extra)

	hearts, _ := doc.Graph.Scene("hearts")
	assert.Equal(t, SceneID("yay"), hearts.WinTarget)
	assert.Equal(t, SceneID("intro"), hearts.LoseTarget)

	yay, _ := doc.Graph.Scene("yay")
	assert.True(t, yay.AwardsWin)
	assert.Equal(t, SceneID("clip"), yay.Next)

	clip, _ := doc.Graph.Scene("clip")
	assert.Equal(t, "/videos/end.mp4", clip.Video)
	assert.Equal(t, TypeVideo, clip.Kind())
}

func TestParse_DefaultStartScene(t *testing.T) {
	doc, err := Parse([]byte("scenes:\n  intro:\n    text: hello\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, DefaultStartScene, doc.StartSceneID)
}

func TestParse_MissingStartScene(t *testing.T) {
	_, err := Parse([]byte("startSceneId: nope\nscenes:\n  intro:\n    text: hello\n"), FormatYAML)
	var verr *GraphValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Problems, 1)
	assert.Equal(t, Problem{Field: "startSceneId", Target: "nope", Reason: "references unknown scene"}, verr.Problems[0])
}

func TestParse_CollectsAllProblems(t *testing.T) {
	_, err := Parse([]byte(`startSceneId: a
scenes:
  a:
    choices:
      - label: x
        next: ghost1
      - label: y
        next: b
  b:
    checkpoint: ghost2
    winTarget: ghost3
    loseTarget: a
`), FormatYAML)

	var verr *GraphValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []Problem{
		{Scene: "a", Field: "choices[0].next", Target: "ghost1", Reason: "references unknown scene"},
		{Scene: "b", Field: "checkpoint", Target: "ghost2", Reason: "references unknown scene"},
		{Scene: "b", Field: "winTarget", Target: "ghost3", Reason: "references unknown scene"},
	}, verr.Problems)
	assert.Contains(t, err.Error(), "3 problems")
}

func TestLoadDocument_InvalidFile(t *testing.T) {
	_, err := LoadDocument("non_existent_file.yaml")
	assert.Error(t, err)
}

func TestLoadDocument_InvalidYAML(t *testing.T) {
	path := writeStory(t, "invalid.yaml", `startSceneId: "node1"
scenes:
  node1:
    text: "First node"
    invalid: [unclosed bracket
`)
	_, err := LoadDocument(path)
	require.Error(t, err)
	var verr *GraphValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestLoadDocument_InvalidJSON(t *testing.T) {
	path := writeStory(t, "invalid.json", `{"scenes": {`)
	_, err := LoadDocument(path)
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatForPath("story/story.JSON"))
	assert.Equal(t, FormatYAML, FormatForPath("story/story.yaml"))
	assert.Equal(t, FormatYAML, FormatForPath("story/story"))
}

func TestLoadDocument_SampleStory(t *testing.T) {
	doc, err := LoadDocument(filepath.Join("..", "..", "stories", "story.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultStartScene, doc.StartSceneID)
	assert.Equal(t, 2, doc.RequiredWins)

	for _, id := range doc.Graph.IDs() {
		s, ok := doc.Graph.Scene(id)
		require.True(t, ok)
		assert.NotNil(t, s.Variant(), id)
	}
	gift, ok := doc.Graph.Scene(GiftCheckScene)
	require.True(t, ok)
	assert.Equal(t, GiftScene{Text: gift.Text, Check: true}, gift.Variant())
}

func TestParse_JSONKeysAnyCase(t *testing.T) {
	doc, err := Parse([]byte(`{"scenes": {"intro": {
		"Text": "Hi",
		"AwardsWin": true,
		"IsEnding": true,
		"mood": "happy"
	}}}`), FormatJSON)
	require.NoError(t, err)

	s, ok := doc.Graph.Scene("intro")
	require.True(t, ok)
	assert.Equal(t, "Hi", s.Text)
	assert.True(t, s.AwardsWin)
	assert.True(t, s.IsEnding)
	assert.Equal(t, map[string]any{"mood": "happy"}, s.Extra)
}

func TestParse_TrailingJSON(t *testing.T) {
	for name, body := range map[string]string{
		"second document": `{"scenes": {"intro": {}}}{"scenes": {}}`,
		"stray brace":     `{"scenes": {"intro": {}}}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body), FormatJSON)
			assert.ErrorIs(t, err, errTrailingJSON)
		})
	}

	_, err := Parse([]byte("{\"scenes\": {\"intro\": {}}}\n\t \n"), FormatJSON)
	assert.NoError(t, err, "trailing whitespace is fine")
}
