// Command tsi is the TokenScript interpreter CLI.
package main

import (
	"os"

	"github.com/tokenscript-lang/tsi/cmd/tsi/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
