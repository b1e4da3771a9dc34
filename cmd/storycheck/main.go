// Command storycheck validates story documents and prints every problem
// it finds.
//
//	storycheck stories/story.json stories/extra.yaml
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"sceneplay/internal/game"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(paths []string, stdout, stderr io.Writer) int {
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "usage: storycheck <story file>...")
		return 2
	}
	code := 0
	for _, path := range paths {
		doc, err := game.LoadDocument(path)
		if err == nil {
			fmt.Fprintf(stdout, "%s: ok (%d scenes, start %s)\n", path, doc.Graph.Len(), doc.StartSceneID)
			continue
		}
		code = 1
		var verr *game.GraphValidationError
		if !errors.As(err, &verr) {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			continue
		}
		for _, p := range verr.Problems {
			fmt.Fprintf(stderr, "%s: %s\n", path, p)
		}
	}
	return code
}
