// Package main provides the csgen command-line interface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/csgen/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
