package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_Valid(t *testing.T) {
	path := writeFile(t, "ok.yaml", `scenes:
  intro:
    text: hi
    isEnding: true
`)
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run([]string{path}, &out, &errOut))
	assert.Contains(t, out.String(), "ok (1 scenes, start intro)")
	assert.Empty(t, errOut.String())
}

func TestRun_ReportsEveryProblem(t *testing.T) {
	path := writeFile(t, "bad.json", `{
  "startSceneId": "intro",
  "scenes": {
    "intro": {"choices": [{"label": "a", "next": "nowhere"}], "checkpoint": "gone"},
    "game": {"type": "minigame", "gameType": "chess"}
  }
}`)
	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &out, &errOut))

	lines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, errOut.String(), `"nowhere"`)
	assert.Contains(t, errOut.String(), `"gone"`)
	assert.Contains(t, errOut.String(), "chess")
}

func TestRun_MixedFiles(t *testing.T) {
	good := writeFile(t, "good.yaml", "scenes:\n  intro: {isEnding: true}\n")
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	var out, errOut bytes.Buffer
	assert.Equal(t, 1, run([]string{good, missing}, &out, &errOut))
	assert.Contains(t, out.String(), good)
	assert.Contains(t, errOut.String(), missing)
}

func TestRun_NoArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "usage")
}
