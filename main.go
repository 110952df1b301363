package main

import (
	"os"

	"github.com/go-coastline/coastline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
