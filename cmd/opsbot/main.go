package main

import (
	"os"

	"github.com/opsbot/opsbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
