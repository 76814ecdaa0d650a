// Command janus is the command-line front end for the sync engine: a
// thin cobra/pflag wrapper that loads configuration, builds the
// transport, and drives either a server or a client run.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var ec *exitCodeError
		if asExitCodeError(err, &ec) {
			if ec.err != nil {
				fmt.Fprintln(os.Stderr, ec.err)
			}
			return ec.code
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
