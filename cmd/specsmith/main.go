package main

import (
	"os"

	"github.com/specsmith/specsmith/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
