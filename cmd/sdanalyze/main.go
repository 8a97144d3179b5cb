// Command sdanalyze runs the semantic analysis pipeline over an
// already-parsed system-dynamics model and prints its evaluation-order
// listing.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
