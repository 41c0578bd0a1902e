// Command kumihimo is the marudai braiding simulator.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/kumihimo/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
