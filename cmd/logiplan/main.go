// Command logiplan is a thin CLI over the analyzer package: it lists the
// demo catalog's tables or runs its demo query through the resolution
// analyzer and prints the plan before and after.
package main

import (
	"os"

	"github.com/efeller/logiplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
