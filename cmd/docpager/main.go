package main

import (
	"os"

	"github.com/Alp4ka/docpager/cmd/docpager/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
