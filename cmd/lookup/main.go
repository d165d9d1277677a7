// Command lookup resolves athlete names and scores them from the shell.
package main

import (
	"os"

	"github.com/okian/playerhunt/cmd/lookup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
