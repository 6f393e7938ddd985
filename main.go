package main

import (
	"os"

	"github.com/rotaops/rota/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
