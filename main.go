package main

import (
	"os"

	"github.com/abhisek/mathia/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
