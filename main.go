package main

import (
	"os"

	"github.com/matchsense/matchsense/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
