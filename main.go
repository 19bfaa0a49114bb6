package main

import (
	"os"

	"github.com/rtzll/ytdownloader/cmd"
	"github.com/rtzll/ytdownloader/internal"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(internal.ExitCode(err))
	}
}
