package main

import (
	"os"

	"github.com/naoko-ai/naoko/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
