package main

import (
	"os"

	"github.com/wishub-ai/wishub-mcp/cli"
)

func main() {
	if err := cli.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
