package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the decoder for a story document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatForPath picks the format from a file extension; anything that is
// not .json is read as YAML.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type rawDocument struct {
	StartSceneID SceneID           `yaml:"startSceneId" json:"startSceneId"`
	RequiredWins *int              `yaml:"requiredWins" json:"requiredWins"`
	GiftUnlocked SceneID           `yaml:"giftUnlockedSceneId" json:"giftUnlockedSceneId"`
	GiftLocked   SceneID           `yaml:"giftLockedSceneId" json:"giftLockedSceneId"`
	Title        string            `yaml:"title" json:"title"`
	Scenes       map[SceneID]Scene `yaml:"scenes" json:"scenes"`
}

// LoadDocument loads and validates a story document from a file.
func LoadDocument(path string) (*Document, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, fmt.Errorf("read story %s: %w", cleanPath, err)
	}
	doc, err := Parse(b, FormatForPath(cleanPath))
	if err != nil {
		return nil, fmt.Errorf("load story %s: %w", cleanPath, err)
	}
	return doc, nil
}

// Parse decodes a story document and validates its scene graph. A decode
// failure is returned as is; graph defects come back as a single
// *GraphValidationError that also covers the start scene.
func Parse(data []byte, format Format) (*Document, error) {
	var raw rawDocument
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errTrailingJSON
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	doc := &Document{
		StartSceneID: raw.StartSceneID,
		RequiredWins: DefaultRequiredWins,
		GiftUnlocked: raw.GiftUnlocked,
		GiftLocked:   raw.GiftLocked,
		Title:        raw.Title,
	}
	if doc.StartSceneID == "" {
		doc.StartSceneID = DefaultStartScene
	}
	if raw.RequiredWins != nil {
		doc.RequiredWins = *raw.RequiredWins
	}
	if doc.GiftUnlocked == "" {
		doc.GiftUnlocked = DefaultGiftUnlocked
	}
	if doc.GiftLocked == "" {
		doc.GiftLocked = DefaultGiftLocked
	}

	g, err := buildGraph(raw.Scenes, []ref{{field: "startSceneId", target: doc.StartSceneID}})
	if err != nil {
		return nil, err
	}
	doc.Graph = g
	return doc, nil
}

// choiceDoc accepts both the current keys and the older text/nextSceneId pair.
type choiceDoc struct {
	Label       string  `yaml:"label" json:"label"`
	Text        string  `yaml:"text" json:"text"`
	Next        SceneID `yaml:"next" json:"next"`
	NextSceneID SceneID `yaml:"nextSceneId" json:"nextSceneId"`
}

func (d choiceDoc) choice() Choice {
	c := Choice{Label: d.Label, Next: d.Next}
	if c.Label == "" {
		c.Label = d.Text
	}
	if c.Next == "" {
		c.Next = d.NextSceneID
	}
	return c
}

func (c *Choice) UnmarshalYAML(value *yaml.Node) error {
	var d choiceDoc
	if err := value.Decode(&d); err != nil {
		return err
	}
	*c = d.choice()
	return nil
}

func (c *Choice) UnmarshalJSON(b []byte) error {
	var d choiceDoc
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*c = d.choice()
	return nil
}

func (s *Scene) UnmarshalYAML(value *yaml.Node) error {
	type plain Scene
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = Scene(p)
	s.adoptLegacyKeys()
	return nil
}

var errTrailingJSON = errors.New("decode json: unexpected data after the document")

// sceneKeys are the JSON keys decoded into named Scene fields. encoding/json
// matches them case-insensitively, so Extra drops them the same way.
var sceneKeys = []string{
	"id", "type", "title", "text", "character", "choices", "isEnding", "checkpoint", "next",
	"video", "backgroundImage", "audio", "gameType", "winTarget", "loseTarget", "awardsWin",
}

func (s *Scene) UnmarshalJSON(b []byte) error {
	type plain Scene
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range all {
		if isSceneKey(k) {
			delete(all, k)
		}
	}
	p.Extra = all
	*s = Scene(p)
	s.adoptLegacyKeys()
	return nil
}

func isSceneKey(k string) bool {
	for _, known := range sceneKeys {
		if strings.EqualFold(k, known) {
			return true
		}
	}
	return false
}

// adoptLegacyKeys moves the key names used by older story files into their
// fields. A value already set under the current name wins.
func (s *Scene) adoptLegacyKeys() {
	take := func(key string) SceneID {
		v, ok := s.Extra[key].(string)
		if !ok {
			return ""
		}
		delete(s.Extra, key)
		return SceneID(v)
	}
	if v := take("winSceneId"); s.WinTarget == "" {
		s.WinTarget = v
	}
	if v := take("loseSceneId"); s.LoseTarget == "" {
		s.LoseTarget = v
	}
	if v := take("nextSceneId"); s.Next == "" {
		s.Next = v
	}
	if v := take("videoUrl"); s.Video == "" {
		s.Video = string(v)
	}
	if len(s.Extra) == 0 {
		s.Extra = nil
	}
}
