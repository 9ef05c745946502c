// Command gradebook manages a school's academic records from the terminal.
package main

import (
	"os"

	"github.com/roach88/gradebook/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	os.Exit(cli.GetExitCode(err))
}
