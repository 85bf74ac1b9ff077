package main

import (
	"os"

	"github.com/csoc-tools/attacksheet/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
