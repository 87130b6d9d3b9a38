// Command quench runs store and join scenarios.
package main

import (
	"fmt"
	"os"

	"github.com/adv0cat/quench-store/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
