// glossa annotates text with dictionary phrases and words.
// Single binary: CLI annotation, dictionary management, and an HTTP API.
package main

import (
	"os"

	"github.com/corey/glossa/cmd/glossa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
