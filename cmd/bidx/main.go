package main

import (
	"os"

	"bibleidx/internal/bidxcli"
)

func main() {
	if err := bidxcli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
