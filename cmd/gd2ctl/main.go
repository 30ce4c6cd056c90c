package main

import (
	"os"

	"github.com/glustolibs/go-gd2/cmd/gd2ctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
