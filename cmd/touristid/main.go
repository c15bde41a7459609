package main

import (
	"os"

	"touristid/cmd/touristid/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
